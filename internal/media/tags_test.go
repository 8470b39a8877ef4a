package media

import "testing"

func TestTagDictionaryMovie(t *testing.T) {
	v := &Video{Info: MovieData{
		Movie: Entity{Title: "The Matrix", ReleaseYear: 1999, IMDBID: "tt0133093"},
	}}

	tags := v.TagDictionary()
	want := map[string]string{
		TagKeyTitle:        "The Matrix",
		TagKeyDateReleased: "1999",
		TagKeyComment:      "",
		TagKeyIMDB:         "tt0133093",
	}
	if len(tags) != len(want) {
		t.Fatalf("got %d tags, want %d: %v", len(tags), len(want), tags)
	}
	for k, v := range want {
		if tags[k] != v {
			t.Errorf("tags[%q] = %q, want %q", k, tags[k], v)
		}
	}

	if got := v.TagTitle(); got != "The Matrix" {
		t.Errorf("TagTitle() = %q, want %q", got, "The Matrix")
	}
}

func TestTagDictionaryEpisode(t *testing.T) {
	v := &Video{Info: EpisodeData{
		Episode: Episode{
			Number: 5,
			Season: 2,
			Title:  "The One Where It Happens",
			IMDBID: "tt1234567",
			Series: Entity{Title: "Some Show", ReleaseYear: 2010},
		},
	}}

	tags := v.TagDictionary()
	want := map[string]string{
		TagKeyTitle:        "Some Show",
		TagKeyDateReleased: "2010",
		TagKeyComment:      "",
		TagKeySeason:       "2",
		TagKeyEpisode:      "5",
		TagKeyIMDB:         "tt1234567",
	}
	for k, v := range want {
		if tags[k] != v {
			t.Errorf("tags[%q] = %q, want %q", k, tags[k], v)
		}
	}

	// The container Title is the episode title, not the series
	if got := v.TagTitle(); got != "The One Where It Happens" {
		t.Errorf("TagTitle() = %q, want episode title", got)
	}
}

func TestTagDictionaryUnknownYearSuppressed(t *testing.T) {
	v := &Video{Info: MovieData{Movie: Entity{Title: "Obscure Film"}}}

	tags := v.TagDictionary()
	if tags[TagKeyDateReleased] != "" {
		t.Errorf("DATE_RELEASED = %q, want empty for unknown year", tags[TagKeyDateReleased])
	}
}
