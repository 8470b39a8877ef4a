// Package media holds the descriptors a video file is organized by: its
// identity (movie or episode), its technical metadata, and the derived
// library file name and container tag values.
package media

import (
	"time"

	"github.com/marco/videoSort/internal/magic"
)

// Entity identifies a movie or a series.
type Entity struct {
	Title       string
	ReleaseYear int
	IMDBID      string // empty when no lookup result is available
}

// Episode identifies one episode of a series.
type Episode struct {
	Number int
	Season int
	Title  string // episode title; may be empty
	IMDBID string
	Series Entity
}

// Metadata is the technical description of a video stream.
type Metadata struct {
	Width  uint64
	Height uint64
	Length time.Duration // zero when unknown
}

// FromVerticalResolution synthesizes Metadata from a vertical resolution
// alone, assuming a 16:9 frame. Used when container inspection is not
// available and only a filename quality marker is known.
func FromVerticalResolution(vertical uint64, length time.Duration) Metadata {
	return Metadata{Width: vertical * 16 / 9, Height: vertical, Length: length}
}

// VideoData is the identity of a video file: exactly one of movie or
// episode. The set of implementations is closed; consumers switch
// exhaustively over MovieData and EpisodeData.
type VideoData interface {
	Meta() Metadata
	withMeta(Metadata) VideoData
	videoData()
}

// MovieData is the movie variant of VideoData.
type MovieData struct {
	Movie    Entity
	Metadata Metadata
}

func (d MovieData) Meta() Metadata { return d.Metadata }
func (d MovieData) withMeta(m Metadata) VideoData {
	d.Metadata = m
	return d
}
func (MovieData) videoData() {}

// EpisodeData is the episode variant of VideoData.
type EpisodeData struct {
	Episode  Episode
	Metadata Metadata
}

func (d EpisodeData) Meta() Metadata { return d.Metadata }
func (d EpisodeData) withMeta(m Metadata) VideoData {
	d.Metadata = m
	return d
}
func (EpisodeData) videoData() {}

// Video is one file under management: where it lives, what container it
// uses, and what it is. Info starts from the filename parse and is replaced
// wholesale when richer identity data arrives.
type Video struct {
	Path     string
	FileType magic.FileType
	Ext      string
	Info     VideoData
}

// SetMetadata replaces the technical metadata while keeping the identity.
func (v *Video) SetMetadata(m Metadata) {
	v.Info = v.Info.withMeta(m)
}
