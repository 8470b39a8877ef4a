package media

import "strconv"

// Reserved tag names written into a container's tag section. These are wire
// strings read by players and must match exactly.
const (
	TagKeyTitle        = "TITLE"
	TagKeyDateReleased = "DATE_RELEASED"
	TagKeyComment      = "COMMENT"
	TagKeyIMDB         = "IMDB"
	TagKeyEpisode      = "EPISODE"
	TagKeySeason       = "SEASON"
)

// TagTitle returns the value for the container's Title element: the movie
// title for movies, the episode title for episodes.
func (v *Video) TagTitle() string {
	switch info := v.Info.(type) {
	case MovieData:
		return info.Movie.Title
	case EpisodeData:
		return info.Episode.Title
	}
	return ""
}

// TagDictionary builds the reserved-key tag values for this video. An empty
// value means "do not emit this tag" but still displaces any stale tag of
// the same name already present in the container.
func (v *Video) TagDictionary() map[string]string {
	tags := map[string]string{
		TagKeyComment: "",
	}
	switch info := v.Info.(type) {
	case MovieData:
		tags[TagKeyTitle] = info.Movie.Title
		tags[TagKeyDateReleased] = yearValue(info.Movie.ReleaseYear)
		tags[TagKeyIMDB] = info.Movie.IMDBID
	case EpisodeData:
		tags[TagKeyTitle] = info.Episode.Series.Title
		tags[TagKeyDateReleased] = yearValue(info.Episode.Series.ReleaseYear)
		tags[TagKeySeason] = strconv.Itoa(info.Episode.Season)
		tags[TagKeyEpisode] = strconv.Itoa(info.Episode.Number)
		tags[TagKeyIMDB] = info.Episode.IMDBID
	}
	return tags
}

// yearValue suppresses the DATE_RELEASED tag when the year is not known.
func yearValue(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}
