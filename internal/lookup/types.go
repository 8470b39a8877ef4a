package lookup

// tmdbSearchMovieResponse represents the response from /search/movie.
type tmdbSearchMovieResponse struct {
	Page    int         `json:"page"`
	Results []tmdbMovie `json:"results"`
}

// tmdbMovie represents a movie search result.
type tmdbMovie struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
	Popularity  float64 `json:"popularity"`
}

// tmdbSearchTVResponse represents the response from /search/tv.
type tmdbSearchTVResponse struct {
	Page    int          `json:"page"`
	Results []tmdbSeries `json:"results"`
}

// tmdbSeries represents a TV series search result.
type tmdbSeries struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	FirstAirDate string `json:"first_air_date"`
	Overview     string `json:"overview"`
}

// tmdbEpisode represents the response from /tv/{id}/season/{s}/episode/{e}.
type tmdbEpisode struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	AirDate       string `json:"air_date"`
}

// tmdbExternalIDs represents the response from the external_ids endpoints.
type tmdbExternalIDs struct {
	IMDBID string `json:"imdb_id"`
}
