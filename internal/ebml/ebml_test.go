package ebml

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestVintLength(t *testing.T) {
	tests := []struct {
		first byte
		want  int
	}{
		{0x80, 1},
		{0xFF, 1},
		{0x40, 2},
		{0x20, 3},
		{0x10, 4},
		{0x08, 5},
		{0x01, 8},
		{0x00, 0},
	}

	for _, tt := range tests {
		if got := vintLength(tt.first); got != tt.want {
			t.Errorf("vintLength(%#02x) = %d, want %d", tt.first, got, tt.want)
		}
	}
}

func TestAppendHeaderMinimalSize(t *testing.T) {
	tests := []struct {
		size int64
		want []byte
	}{
		{0, []byte{0x80}},
		{1, []byte{0x81}},
		{126, []byte{0xFE}},
		// 127 is the reserved all-ones 1-byte vint, so it needs 2 bytes
		{127, []byte{0x40, 0x7F}},
		{200, []byte{0x40, 0xC8}},
		{16382, []byte{0x7F, 0xFE}},
		{16383, []byte{0x20, 0x3F, 0xFF}},
	}

	for _, tt := range tests {
		got := appendHeader(nil, 0xEC, tt.size)
		// Strip the 1-byte ID
		if !bytes.Equal(got[1:], tt.want) {
			t.Errorf("appendHeader(size=%d) = % x, want % x", tt.size, got[1:], tt.want)
		}
	}
}

func TestAppendID(t *testing.T) {
	tests := []struct {
		id   ID
		want []byte
	}{
		{0xEC, []byte{0xEC}},
		{IDDuration, []byte{0x44, 0x89}},
		{IDTimecodeScale, []byte{0x2A, 0xD7, 0xB1}},
		{IDSegment, []byte{0x18, 0x53, 0x80, 0x67}},
	}

	for _, tt := range tests {
		if got := appendID(nil, tt.id); !bytes.Equal(got, tt.want) {
			t.Errorf("appendID(%s) = % x, want % x", tt.id, got, tt.want)
		}
	}
}

func TestScalarAccessors(t *testing.T) {
	if got := NewUint(IDPixelWidth, 1920).Uint(); got != 1920 {
		t.Errorf("Uint round trip = %d, want 1920", got)
	}
	if got := NewUint(IDPixelWidth, 0).Uint(); got != 0 {
		t.Errorf("Uint(0) = %d, want 0", got)
	}
	if data := NewUint(IDPixelWidth, 0).Data; len(data) != 1 {
		t.Errorf("NewUint(0) payload length = %d, want 1", len(data))
	}
	if got := NewFloat(IDDuration, 1234.5).Float(); got != 1234.5 {
		t.Errorf("Float round trip = %v, want 1234.5", got)
	}

	// 4-byte floats appear in real files
	f32 := Tag{ID: IDDuration, Data: []byte{0x44, 0x9A, 0x52, 0x2B}} // 1234.5677 as float32
	if got := f32.Float(); got < 1234.5 || got > 1234.6 {
		t.Errorf("4-byte Float = %v, want ~1234.57", got)
	}

	// Trailing NUL padding is stripped from strings
	padded := Tag{ID: IDTitle, Data: []byte("Some Movie\x00\x00")}
	if got := padded.String(); got != "Some Movie" {
		t.Errorf("String() = %q, want %q", got, "Some Movie")
	}
}

// buildSegment serializes a small document through the Writer and returns
// its bytes along with the tag sequence that produced it.
func buildSegment(t *testing.T) ([]byte, []Tag) {
	t.Helper()
	tags := []Tag{
		Start(IDSegment),
		Start(IDInfo),
		NewUint(IDTimecodeScale, 1_000_000),
		NewFloat(IDDuration, 60_000),
		NewString(IDTitle, "Some Movie"),
		End(IDInfo),
		Start(IDCluster),
		{ID: IDCRC32, Data: []byte{1, 2, 3, 4}},
		End(IDCluster),
		End(IDSegment),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, tag := range tags {
		if err := w.Write(tag); err != nil {
			t.Fatalf("Write(%s): %v", tag.ID, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes(), tags
}

func TestWriterReaderRoundTrip(t *testing.T) {
	encoded, want := buildSegment(t)

	r := NewReader(bytes.NewReader(encoded))
	var got []Tag
	for {
		tag, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, tag)
	}

	if len(got) != len(want) {
		t.Fatalf("read %d tags, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Mode != want[i].Mode {
			t.Errorf("tag %d = %s/%d, want %s/%d", i, got[i].ID, got[i].Mode, want[i].ID, want[i].Mode)
		}
		if !bytes.Equal(got[i].Data, want[i].Data) {
			t.Errorf("tag %d payload = % x, want % x", i, got[i].Data, want[i].Data)
		}
	}

	// Re-serializing the read stream must reproduce the bytes exactly
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, tag := range got {
		if err := w.Write(tag); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("rewrite close: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), encoded) {
		t.Errorf("rewritten stream differs:\n got % x\nwant % x", buf.Bytes(), encoded)
	}
}

func TestReaderFullMode(t *testing.T) {
	encoded, _ := buildSegment(t)

	r := NewReader(bytes.NewReader(encoded), IDInfo)

	first, err := r.Next()
	if err != nil || first.ID != IDSegment || first.Mode != ModeStart {
		t.Fatalf("first tag = %v, %v; want Segment Start", first, err)
	}

	info, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if info.ID != IDInfo || info.Mode != ModeFull {
		t.Fatalf("second tag = %s/%d, want Info Full", info.ID, info.Mode)
	}
	if len(info.Children) != 3 {
		t.Fatalf("Info has %d children, want 3", len(info.Children))
	}

	title, ok := info.FindChild(IDTitle)
	if !ok || title.String() != "Some Movie" {
		t.Errorf("FindChild(Title) = %q, %v; want \"Some Movie\", true", title.String(), ok)
	}
	scale, ok := info.FindChild(IDTimecodeScale)
	if !ok || scale.Uint() != 1_000_000 {
		t.Errorf("FindChild(TimecodeScale) = %d, %v", scale.Uint(), ok)
	}
	if _, ok := info.FindChild(IDDateUTC); ok {
		t.Error("FindChild(DateUTC) found a child that does not exist")
	}
}

func TestUnknownSizeSegment(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	tags := []Tag{
		{ID: IDSegment, Mode: ModeStart, UnknownSize: true},
		Start(IDInfo),
		NewUint(IDTimecodeScale, 1_000_000),
		End(IDInfo),
		End(IDSegment),
	}
	for _, tag := range tags {
		if err := w.Write(tag); err != nil {
			t.Fatalf("Write(%s): %v", tag.ID, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	encoded := buf.Bytes()
	// Segment header must be the 4-byte ID plus the reserved 0xFF size
	wantPrefix := []byte{0x18, 0x53, 0x80, 0x67, 0xFF}
	if !bytes.HasPrefix(encoded, wantPrefix) {
		t.Fatalf("stream starts % x, want prefix % x", encoded[:5], wantPrefix)
	}

	r := NewReader(bytes.NewReader(encoded))
	first, err := r.Next()
	if err != nil || !first.UnknownSize {
		t.Fatalf("first tag UnknownSize = %v, err %v; want true, nil", first.UnknownSize, err)
	}

	var got []Tag
	got = append(got, first)
	for {
		tag, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, tag)
	}

	// The unsized Segment is closed at end of stream
	last := got[len(got)-1]
	if last.ID != IDSegment || last.Mode != ModeEnd {
		t.Errorf("last tag = %s/%d, want Segment End", last.ID, last.Mode)
	}

	// Round trip
	var buf2 bytes.Buffer
	w2 := NewWriter(&buf2)
	for _, tag := range got {
		if err := w2.Write(tag); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("rewrite close: %v", err)
	}
	if !bytes.Equal(buf2.Bytes(), encoded) {
		t.Errorf("rewritten stream differs:\n got % x\nwant % x", buf2.Bytes(), encoded)
	}
}

func TestReaderTruncatedStream(t *testing.T) {
	encoded, _ := buildSegment(t)

	// Cut the stream mid-payload
	r := NewReader(bytes.NewReader(encoded[:len(encoded)-2]))
	var err error
	for {
		_, err = r.Next()
		if err != nil {
			break
		}
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}

	// The error is sticky
	if _, err2 := r.Next(); err2 != err {
		t.Errorf("second Next error = %v, want the same %v", err2, err)
	}
}

func TestReaderRejectsOverrunningChild(t *testing.T) {
	// Info claims 2 payload bytes but contains a scalar claiming 5
	stream := []byte{
		0x15, 0x49, 0xA9, 0x66, // Info
		0x82,       // size 2
		0xEC, 0x85, // Void, size 5
	}
	r := NewReader(bytes.NewReader(stream))
	if _, err := r.Next(); err != nil {
		t.Fatalf("Info start: %v", err)
	}
	_, err := r.Next()
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
}

func TestWriterMismatchedEnd(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	if err := w.Write(Start(IDSegment)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	err := w.Write(End(IDInfo))
	var encodeErr *EncodeError
	if !errors.As(err, &encodeErr) {
		t.Fatalf("error = %v, want *EncodeError", err)
	}
}

func TestWriterCloseWithOpenElement(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	if err := w.Write(Start(IDSegment)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	var encodeErr *EncodeError
	if err := w.Close(); !errors.As(err, &encodeErr) {
		t.Fatalf("Close error = %v, want *EncodeError", err)
	}
}

func TestFullTagSerialization(t *testing.T) {
	full := Full(IDSimpleTag,
		NewString(IDTagName, "IMDB"),
		NewString(IDTagString, "tt0133093"),
	)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(full); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()), IDSimpleTag)
	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Mode != ModeFull || len(got.Children) != 2 {
		t.Fatalf("read %s/%d with %d children, want Full with 2", got.ID, got.Mode, len(got.Children))
	}
	name, _ := got.FindChild(IDTagName)
	value, _ := got.FindChild(IDTagString)
	if name.String() != "IMDB" || value.String() != "tt0133093" {
		t.Errorf("children = %q/%q, want IMDB/tt0133093", name.String(), value.String())
	}
}
