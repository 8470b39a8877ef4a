// Package magic classifies video files by their leading magic bytes.
package magic

import (
	"io"
	"os"
)

// FileType is a container classification derived from file magic.
type FileType int

const (
	Unknown FileType = iota
	Matroska
	MP4
)

func (t FileType) String() string {
	switch t {
	case Matroska:
		return "matroska"
	case MP4:
		return "mp4"
	}
	return "unknown"
}

// ebmlMagic opens every Matroska/WebM file.
var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

// sniffLen covers the EBML magic and the ISO BMFF ftyp box name, which sits
// after the 4-byte box size.
const sniffLen = 8

// Detect reads the first bytes of r and classifies the container. Files
// shorter than the signature window classify as Unknown.
func Detect(r io.Reader) (FileType, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Unknown, err
	}
	buf = buf[:n]

	if len(buf) >= 4 && string(buf[:4]) == string(ebmlMagic) {
		return Matroska, nil
	}
	if len(buf) >= 8 && string(buf[4:8]) == "ftyp" {
		return MP4, nil
	}
	return Unknown, nil
}

// DetectFile classifies the file at path by its magic bytes.
func DetectFile(path string) (FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()
	return Detect(f)
}
