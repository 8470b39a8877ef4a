// Package mkv implements the two passes this tool makes over a Matroska
// container: a streaming probe for duration and resolution, and a streaming
// rewrite that merges a title and descriptive tags into the stream while
// leaving everything else untouched.
package mkv

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/marco/videoSort/internal/ebml"
	"github.com/marco/videoSort/internal/media"
)

// ErrIncompleteMetadata is returned when the stream ends before both the
// duration and a pixel resolution were found. No partial result is
// fabricated; callers decide whether to fall back to filename-derived
// metadata.
var ErrIncompleteMetadata = errors.New("mkv: stream ended before duration and resolution were found")

// defaultTimecodeScale is the Matroska default when the Info section does
// not state one (nanoseconds per timecode unit).
const defaultTimecodeScale = 1_000_000

type probe struct {
	timecodeScale uint64
	duration      float64
	hasDuration   bool
	pixelWidth    uint64
	pixelHeight   uint64
	displayWidth  uint64
	displayHeight uint64
}

func (p *probe) complete() bool {
	return p.hasDuration && p.pixelWidth > 0 && p.pixelHeight > 0
}

// build finalizes the metadata. Display dimensions, when both are present,
// take precedence over pixel dimensions so anamorphic content reports its
// intended aspect.
func (p *probe) build() media.Metadata {
	width, height := p.pixelWidth, p.pixelHeight
	if p.displayWidth > 0 && p.displayHeight > 0 {
		width, height = p.displayWidth, p.displayHeight
	}
	seconds := p.duration * float64(p.timecodeScale) / 1e9
	return media.Metadata{
		Width:  width,
		Height: height,
		Length: time.Duration(seconds * float64(time.Second)),
	}
}

// Extract streams over a Matroska container and returns its duration and
// resolution. The pass stops as soon as both are known, so clusters are
// normally never read.
func Extract(r io.Reader) (media.Metadata, error) {
	tr := ebml.NewReader(r)
	p := probe{timecodeScale: defaultTimecodeScale}

	for {
		t, err := tr.Next()
		if err == io.EOF {
			return media.Metadata{}, ErrIncompleteMetadata
		}
		if err != nil {
			return media.Metadata{}, err
		}

		switch t.ID {
		case ebml.IDTimecodeScale:
			if v := t.Uint(); v > 0 {
				p.timecodeScale = v
			}
		case ebml.IDDuration:
			p.duration = t.Float()
			p.hasDuration = true
		case ebml.IDPixelWidth:
			p.pixelWidth = t.Uint()
		case ebml.IDPixelHeight:
			p.pixelHeight = t.Uint()
		case ebml.IDDisplayWidth:
			p.displayWidth = t.Uint()
		case ebml.IDDisplayHeight:
			p.displayHeight = t.Uint()
		}

		if p.complete() {
			return p.build(), nil
		}
	}
}

// ExtractFile runs Extract over the file at path.
func ExtractFile(path string) (media.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return media.Metadata{}, err
	}
	defer f.Close()
	return Extract(f)
}
