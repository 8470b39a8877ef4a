package ebml

import (
	"bytes"
	"fmt"
	"io"
)

// EncodeError reports a tag that cannot be serialized, usually a
// mismatched End or a value too large to frame.
type EncodeError struct {
	Elem ID
	Msg  string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("ebml: encode error in %s: %s", e.Elem, e.Msg)
}

type wframe struct {
	id  ID
	buf *bytes.Buffer // nil for unknown-size masters, whose content streams through
}

// Writer serializes a tag sequence to a byte sink. Known-size master
// elements are buffered until their End tag so the size header can be
// computed; masters opened with UnknownSize stream straight through.
// Sizes are always written in their shortest encoding, so feeding a
// Writer's output back through a Reader and a fresh Writer reproduces it
// byte for byte. The first write error is sticky.
type Writer struct {
	w     io.Writer
	stack []wframe
	err   error
}

// NewWriter returns a Writer serializing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write serializes one tag. Start tags open a master element that must be
// closed by a matching End tag before the stream finishes.
func (w *Writer) Write(t Tag) error {
	if w.err != nil {
		return w.err
	}
	if err := w.write(t); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close verifies that every opened master element was closed. It does not
// close the underlying sink.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if n := len(w.stack); n > 0 {
		w.err = &EncodeError{Elem: w.stack[n-1].id, Msg: "stream finished with element still open"}
		return w.err
	}
	return nil
}

func (w *Writer) write(t Tag) error {
	switch t.Mode {
	case ModeStart:
		if t.UnknownSize {
			if err := w.emit(appendHeaderUnknown(nil, t.ID)); err != nil {
				return err
			}
			w.stack = append(w.stack, wframe{id: t.ID})
			return nil
		}
		w.stack = append(w.stack, wframe{id: t.ID, buf: &bytes.Buffer{}})
		return nil

	case ModeEnd:
		n := len(w.stack)
		if n == 0 || w.stack[n-1].id != t.ID {
			return &EncodeError{Elem: t.ID, Msg: "End does not match open element"}
		}
		top := w.stack[n-1]
		w.stack = w.stack[:n-1]
		if top.buf == nil {
			return nil // unknown-size content already streamed
		}
		header := appendHeader(nil, t.ID, int64(top.buf.Len()))
		if err := w.emit(header); err != nil {
			return err
		}
		return w.emit(top.buf.Bytes())

	case ModeFull:
		data, err := serializeFull(t)
		if err != nil {
			return err
		}
		return w.emit(data)

	default:
		return w.emit(appendScalar(nil, t))
	}
}

// emit writes raw bytes to the innermost buffering master, or to the
// underlying sink when none is buffering.
func (w *Writer) emit(data []byte) error {
	for i := len(w.stack) - 1; i >= 0; i-- {
		if w.stack[i].buf != nil {
			w.stack[i].buf.Write(data)
			return nil
		}
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	return nil
}

// serializeFull frames a resolved master element and its subtree.
func serializeFull(t Tag) ([]byte, error) {
	var payload []byte
	for _, c := range t.Children {
		switch c.Mode {
		case ModeFull:
			data, err := serializeFull(c)
			if err != nil {
				return nil, err
			}
			payload = append(payload, data...)
		case ModeNone:
			payload = appendScalar(payload, c)
		default:
			return nil, &EncodeError{Elem: c.ID, Msg: "Start/End inside resolved element"}
		}
	}
	out := appendHeader(nil, t.ID, int64(len(payload)))
	return append(out, payload...), nil
}

func appendScalar(dst []byte, t Tag) []byte {
	dst = appendHeader(dst, t.ID, int64(len(t.Data)))
	return append(dst, t.Data...)
}

// appendHeader appends the element ID followed by its size in the shortest
// vint encoding.
func appendHeader(dst []byte, id ID, size int64) []byte {
	dst = appendID(dst, id)
	length := 1
	for ; length < 8; length++ {
		if size <= (1<<(7*uint(length)))-2 {
			break
		}
	}
	dst = append(dst, byte(0x80>>uint(length-1))|byte(size>>uint(8*(length-1))))
	for i := length - 2; i >= 0; i-- {
		dst = append(dst, byte(size>>uint(8*i)))
	}
	return dst
}

// appendHeaderUnknown appends the element ID followed by the one-byte
// reserved "unknown size" vint.
func appendHeaderUnknown(dst []byte, id ID) []byte {
	dst = appendID(dst, id)
	return append(dst, 0xFF)
}

// appendID appends the ID's on-wire bytes; the length marker is part of the
// stored value.
func appendID(dst []byte, id ID) []byte {
	switch {
	case id >= 0x1000000:
		return append(dst, byte(id>>24), byte(id>>16), byte(id>>8), byte(id))
	case id >= 0x10000:
		return append(dst, byte(id>>16), byte(id>>8), byte(id))
	case id >= 0x100:
		return append(dst, byte(id>>8), byte(id))
	default:
		return append(dst, byte(id))
	}
}
