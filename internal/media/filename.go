package media

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/marco/videoSort/internal/magic"
)

// Marker patterns scanned over filename tokens. Compiled once; the parser
// is called per file.
var (
	seasonPattern  = regexp.MustCompile(`(?i)s(\d+)`)
	episodePattern = regexp.MustCompile(`(?i)e(\d+)`)
	qualityPattern = regexp.MustCompile(`(?i)(\d{3,})p`)
)

func splitToken(r rune) bool {
	return r == '.' || r == ' ' || r == '-'
}

// NewVideo builds a Video descriptor from a file path by decomposing its
// name into title, season, episode and quality hints. The final token is
// the extension. A season or episode marker bounds the main title; a
// quality marker additionally bounds an optional embedded episode title
// sitting between the two. Metadata starts out derived from the quality
// marker alone; callers override it with container-extracted metadata when
// the file is a Matroska container.
func NewVideo(path string, fileType magic.FileType) (*Video, error) {
	name := filepath.Base(path)
	parts := strings.FieldsFunc(name, splitToken)
	if len(parts) < 2 {
		return nil, fmt.Errorf("media: cannot parse file name %q", name)
	}
	ext := parts[len(parts)-1]
	parts = parts[:len(parts)-1]

	titleEnd := len(parts)
	episodeTitleEnd := len(parts)
	season := 0
	episode := 0
	hasEpisode := false
	var quality uint64

	for i, part := range parts {
		if m := seasonPattern.FindStringSubmatch(part); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				season = n
				titleEnd = min(i, titleEnd)
			}
		}
		if m := episodePattern.FindStringSubmatch(part); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				episode = n
				hasEpisode = true
				titleEnd = min(i, titleEnd)
			}
		}
		if m := qualityPattern.FindStringSubmatch(part); m != nil {
			if n, err := strconv.ParseUint(m[1], 10, 64); err == nil {
				quality = n
				titleEnd = min(i, titleEnd)
				episodeTitleEnd = min(i, episodeTitleEnd)
			}
		}
	}

	title := strings.Join(parts[:titleEnd], " ")
	episodeTitle := ""
	if episodeTitleEnd-titleEnd > 1 {
		episodeTitle = strings.Join(parts[titleEnd+1:episodeTitleEnd], " ")
	}

	meta := FromVerticalResolution(quality, 0)

	var info VideoData
	if hasEpisode {
		if season == 0 {
			season = 1
		}
		info = EpisodeData{
			Episode: Episode{
				Number: episode,
				Season: season,
				Title:  episodeTitle,
				Series: Entity{Title: title},
			},
			Metadata: meta,
		}
	} else {
		info = MovieData{
			Movie:    Entity{Title: title},
			Metadata: meta,
		}
	}

	return &Video{
		Path:     path,
		FileType: fileType,
		Ext:      ext,
		Info:     info,
	}, nil
}

// GenerateFileName returns the canonical library file name for the video,
// e.g. "Show Name-S02E05-1080p.mkv" or "Movie Title-2160p.mp4".
func (v *Video) GenerateFileName() string {
	switch info := v.Info.(type) {
	case EpisodeData:
		return fmt.Sprintf("%s-S%02dE%02d-%dp.%s",
			info.Episode.Series.Title,
			info.Episode.Season,
			info.Episode.Number,
			info.Metadata.Resolution(),
			v.Ext)
	case MovieData:
		return fmt.Sprintf("%s-%dp.%s",
			info.Movie.Title,
			info.Metadata.Resolution(),
			v.Ext)
	}
	return filepath.Base(v.Path)
}
