// Package ebml implements a minimal streaming tag model for Matroska/WebM
// containers: a lazy reader that yields elements in document order and a
// writer that serializes them back. Re-serializing an unmodified stream
// produced by the writer reproduces it byte for byte, which is what lets
// the metadata injector preserve untouched regions exactly.
package ebml

import (
	"encoding/binary"
	"math"
)

// MasterMode describes how a master element appears in the tag stream.
type MasterMode uint8

const (
	// ModeNone marks a scalar element.
	ModeNone MasterMode = iota
	// ModeStart opens a master element; its children follow as separate tags.
	ModeStart
	// ModeEnd closes the most recently opened master element of this ID.
	ModeEnd
	// ModeFull delivers a master element as one value with children resolved.
	ModeFull
)

// Tag is one element event in a Matroska tag stream. Scalars carry their raw
// payload bytes in Data; masters carry a Mode and, for ModeFull, their
// resolved Children.
type Tag struct {
	ID       ID
	Mode     MasterMode
	Children []Tag
	Data     []byte

	// UnknownSize is set on a ModeStart tag whose on-wire size was the
	// reserved "unknown" value (commonly the Segment in streamed files).
	// The writer re-emits such elements with an unknown size so their
	// content can stream through without buffering.
	UnknownSize bool
}

// Start returns a ModeStart tag for a master element.
func Start(id ID) Tag { return Tag{ID: id, Mode: ModeStart} }

// End returns a ModeEnd tag for a master element.
func End(id ID) Tag { return Tag{ID: id, Mode: ModeEnd} }

// Full returns a ModeFull master tag with the given children.
func Full(id ID, children ...Tag) Tag {
	return Tag{ID: id, Mode: ModeFull, Children: children}
}

// NewString returns a scalar tag holding a UTF-8 string payload.
func NewString(id ID, s string) Tag {
	return Tag{ID: id, Data: []byte(s)}
}

// NewUint returns a scalar tag holding an unsigned integer payload in the
// shortest big-endian encoding (at least one byte).
func NewUint(id ID, v uint64) Tag {
	n := 1
	for tmp := v >> 8; tmp != 0; tmp >>= 8 {
		n++
	}
	data := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		data[i] = byte(v)
		v >>= 8
	}
	return Tag{ID: id, Data: data}
}

// NewFloat returns a scalar tag holding a 64-bit float payload.
func NewFloat(id ID, v float64) Tag {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, math.Float64bits(v))
	return Tag{ID: id, Data: data}
}

// String interprets the payload as a string. Trailing NUL padding, which
// Matroska permits in string elements, is stripped.
func (t Tag) String() string {
	data := t.Data
	for len(data) > 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-1]
	}
	return string(data)
}

// Uint interprets the payload as a big-endian unsigned integer. Payloads
// longer than 8 bytes or empty yield zero.
func (t Tag) Uint() uint64 {
	if len(t.Data) == 0 || len(t.Data) > 8 {
		return 0
	}
	var v uint64
	for _, b := range t.Data {
		v = v<<8 | uint64(b)
	}
	return v
}

// Float interprets the payload as an EBML float (4 or 8 bytes). Other
// payload lengths yield zero.
func (t Tag) Float() float64 {
	switch len(t.Data) {
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(t.Data)))
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(t.Data))
	}
	return 0
}

// FindChild returns the first direct child of a ModeFull tag with the given
// ID, or false when absent.
func (t Tag) FindChild(id ID) (Tag, bool) {
	for _, c := range t.Children {
		if c.ID == id {
			return c, true
		}
	}
	return Tag{}, false
}
