package ebml

import (
	"bufio"
	"fmt"
	"io"
)

// DecodeError reports malformed EBML encountered mid-stream. The pass that
// hit it cannot continue; a fresh pass requires reopening the source.
type DecodeError struct {
	Offset int64
	Elem   ID
	Msg    string
}

func (e *DecodeError) Error() string {
	if e.Elem != 0 {
		return fmt.Sprintf("ebml: decode error at offset %d in %s: %s", e.Offset, e.Elem, e.Msg)
	}
	return fmt.Sprintf("ebml: decode error at offset %d: %s", e.Offset, e.Msg)
}

// unknownSize is the reserved vint value meaning "size not stated".
const unknownSize = int64(-1)

type frame struct {
	id  ID
	end int64 // absolute stream offset; unknownSize when unstated
}

// Reader yields the elements of a Matroska byte stream lazily, in document
// order. Master elements surface as ModeStart/ModeEnd pairs, except those
// named in the full set, which are delivered as a single ModeFull tag with
// children resolved. The reader is single-use: it never rewinds, and the
// first decode error is sticky.
type Reader struct {
	br     *bufio.Reader
	offset int64
	stack  []frame
	full   map[ID]bool
	err    error
}

// NewReader returns a Reader over r. Master elements whose IDs appear in
// full are buffered and delivered as ModeFull tags instead of Start/End
// event pairs.
func NewReader(r io.Reader, full ...ID) *Reader {
	fullSet := make(map[ID]bool, len(full))
	for _, id := range full {
		fullSet[id] = true
	}
	return &Reader{br: bufio.NewReader(r), full: fullSet}
}

// Next returns the next tag in document order, or io.EOF once the stream is
// exhausted and all open masters have been closed.
func (r *Reader) Next() (Tag, error) {
	if r.err != nil {
		return Tag{}, r.err
	}
	t, err := r.next()
	if err != nil {
		r.err = err
	}
	return t, err
}

func (r *Reader) next() (Tag, error) {
	// Close any master whose stated extent we have fully consumed.
	if n := len(r.stack); n > 0 && r.stack[n-1].end == r.offset {
		top := r.stack[n-1]
		r.stack = r.stack[:n-1]
		return End(top.id), nil
	}

	id, err := r.readID()
	if err == io.EOF {
		// Unknown-size masters (typically the Segment) run to end of
		// stream; close them one per call before reporting EOF.
		if n := len(r.stack); n > 0 {
			top := r.stack[n-1]
			if top.end != unknownSize {
				return Tag{}, r.decodeErr(top.id, "stream ends inside sized element")
			}
			r.stack = r.stack[:n-1]
			return End(top.id), nil
		}
		return Tag{}, io.EOF
	}
	if err != nil {
		return Tag{}, err
	}

	size, err := r.readSize(id)
	if err != nil {
		return Tag{}, err
	}

	if r.overrunsParent(size) {
		return Tag{}, r.decodeErr(id, "element extends past its parent")
	}

	if id.IsMaster() {
		if r.full[id] {
			if size == unknownSize {
				return Tag{}, r.decodeErr(id, "cannot resolve unknown-size element")
			}
			return r.readFull(id, size)
		}
		end := unknownSize
		if size != unknownSize {
			end = r.offset + size
		}
		r.stack = append(r.stack, frame{id: id, end: end})
		return Tag{ID: id, Mode: ModeStart, UnknownSize: size == unknownSize}, nil
	}

	if size == unknownSize {
		return Tag{}, r.decodeErr(id, "scalar element with unknown size")
	}
	data, err := r.readPayload(id, size)
	if err != nil {
		return Tag{}, err
	}
	return Tag{ID: id, Data: data}, nil
}

// overrunsParent reports whether an element of the given size would extend
// past the innermost sized open master.
func (r *Reader) overrunsParent(size int64) bool {
	if size == unknownSize {
		return false
	}
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].end == unknownSize {
			continue
		}
		return r.offset+size > r.stack[i].end
	}
	return false
}

// readFull reads a complete master element of the stated size and resolves
// its children recursively.
func (r *Reader) readFull(id ID, size int64) (Tag, error) {
	buf, err := r.readPayload(id, size)
	if err != nil {
		return Tag{}, err
	}
	base := r.offset - size
	children, err := parseChildren(buf, base)
	if err != nil {
		return Tag{}, err
	}
	return Tag{ID: id, Mode: ModeFull, Children: children}, nil
}

// parseChildren decodes a fully buffered master payload. Nested masters are
// resolved as ModeFull. base is the payload's absolute stream offset, kept
// only for error reporting.
func parseChildren(buf []byte, base int64) ([]Tag, error) {
	var children []Tag
	pos := 0
	for pos < len(buf) {
		id, size, dataStart, err := parseHeader(buf, pos, base)
		if err != nil {
			return nil, err
		}
		dataEnd := dataStart + int(size)
		if size == unknownSize || dataEnd > len(buf) {
			return nil, &DecodeError{Offset: base + int64(pos), Elem: id, Msg: "child element overruns buffered parent"}
		}
		if id.IsMaster() {
			nested, err := parseChildren(buf[dataStart:dataEnd], base+int64(dataStart))
			if err != nil {
				return nil, err
			}
			children = append(children, Tag{ID: id, Mode: ModeFull, Children: nested})
		} else {
			data := make([]byte, size)
			copy(data, buf[dataStart:dataEnd])
			children = append(children, Tag{ID: id, Data: data})
		}
		pos = dataEnd
	}
	return children, nil
}

// parseHeader reads an element ID and size vint from buf at pos.
func parseHeader(buf []byte, pos int, base int64) (ID, int64, int, error) {
	if pos >= len(buf) {
		return 0, 0, 0, &DecodeError{Offset: base + int64(pos), Msg: "truncated element header"}
	}
	idLen := vintLength(buf[pos])
	if idLen == 0 || idLen > 4 || pos+idLen > len(buf) {
		return 0, 0, 0, &DecodeError{Offset: base + int64(pos), Msg: "invalid element ID"}
	}
	var id ID
	for i := 0; i < idLen; i++ {
		id = id<<8 | ID(buf[pos+i])
	}
	pos += idLen

	if pos >= len(buf) {
		return 0, 0, 0, &DecodeError{Offset: base + int64(pos), Elem: id, Msg: "truncated size"}
	}
	szLen := vintLength(buf[pos])
	if szLen == 0 || pos+szLen > len(buf) {
		return 0, 0, 0, &DecodeError{Offset: base + int64(pos), Elem: id, Msg: "invalid size"}
	}
	size := int64(buf[pos] & (0xFF >> szLen))
	allOnes := size == int64(0xFF>>szLen)
	for i := 1; i < szLen; i++ {
		b := buf[pos+i]
		size = size<<8 | int64(b)
		allOnes = allOnes && b == 0xFF
	}
	if allOnes {
		size = unknownSize
	}
	return id, size, pos + szLen, nil
}

// readID reads an element ID vint from the stream. io.EOF is returned only
// when the stream ends exactly on an element boundary.
func (r *Reader) readID() (ID, error) {
	first, err := r.br.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, err
	}
	r.offset++
	length := vintLength(first)
	if length == 0 || length > 4 {
		return 0, r.decodeErr(0, "invalid element ID")
	}
	id := ID(first)
	for i := 1; i < length; i++ {
		b, err := r.br.ReadByte()
		if err != nil {
			return 0, r.decodeErr(0, "truncated element ID")
		}
		r.offset++
		id = id<<8 | ID(b)
	}
	return id, nil
}

// readSize reads a size vint; the reserved all-ones value maps to
// unknownSize.
func (r *Reader) readSize(id ID) (int64, error) {
	first, err := r.br.ReadByte()
	if err != nil {
		return 0, r.decodeErr(id, "truncated size")
	}
	r.offset++
	length := vintLength(first)
	if length == 0 {
		return 0, r.decodeErr(id, "invalid size")
	}
	size := int64(first & (0xFF >> length))
	allOnes := size == int64(0xFF>>length)
	for i := 1; i < length; i++ {
		b, err := r.br.ReadByte()
		if err != nil {
			return 0, r.decodeErr(id, "truncated size")
		}
		r.offset++
		size = size<<8 | int64(b)
		allOnes = allOnes && b == 0xFF
	}
	if allOnes {
		return unknownSize, nil
	}
	return size, nil
}

func (r *Reader) readPayload(id ID, size int64) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(r.br, data); err != nil {
		return nil, r.decodeErr(id, "truncated payload")
	}
	r.offset += size
	return data, nil
}

func (r *Reader) decodeErr(id ID, msg string) error {
	return &DecodeError{Offset: r.offset, Elem: id, Msg: msg}
}

// vintLength returns the total byte length a vint occupies given its first
// byte, or zero when the byte cannot start a vint.
func vintLength(first byte) int {
	for i := 0; i < 8; i++ {
		if first&(1<<(7-uint(i))) != 0 {
			return i + 1
		}
	}
	return 0
}
