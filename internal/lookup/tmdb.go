// Package lookup resolves filename-derived titles against the TMDb API,
// filling in canonical titles, release years and IMDB identifiers.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/marco/videoSort/internal/lookup/cache"
	"github.com/marco/videoSort/internal/media"
	"github.com/marco/videoSort/internal/retry"
)

const tmdbAPIBaseURL = "https://api.themoviedb.org/3"

// ErrNotFound is returned when a search yields no results.
var ErrNotFound = fmt.Errorf("no results found")

// Client is a TMDb API client with retry, rate limiting and optional
// persistent response caching.
type Client struct {
	apiKey         string
	language       string
	httpClient     *http.Client
	rateDelay      time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	cache          cache.Cache
	cacheTTL       time.Duration
}

// ClientConfig holds configuration for the TMDb client.
type ClientConfig struct {
	APIKey           string
	Language         string
	RateLimitDelayMs int
	MaxAttempts      int
	InitialBackoffMs int
	Cache            cache.Cache
	CacheTTLDays     int
}

// NewClient creates a new TMDb API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoffMs <= 0 {
		cfg.InitialBackoffMs = 1000
	}
	if cfg.CacheTTLDays <= 0 {
		cfg.CacheTTLDays = 30
	}
	return &Client{
		apiKey:         cfg.APIKey,
		language:       cfg.Language,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		rateDelay:      time.Duration(cfg.RateLimitDelayMs) * time.Millisecond,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: time.Duration(cfg.InitialBackoffMs) * time.Millisecond,
		cache:          cfg.Cache,
		cacheTTL:       time.Duration(cfg.CacheTTLDays) * 24 * time.Hour,
	}
}

// getJSON fetches a TMDb endpoint into out, consulting the cache first.
// path is relative to the API base, params must not include the api_key.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	cacheKey := "tmdb:" + path + "?" + params.Encode()

	if c.cache != nil {
		if data, found := c.cache.Get(cacheKey); found {
			slog.Debug("lookup cache hit", "key", cacheKey)
			return json.Unmarshal(data, out)
		}
	}

	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	requestURL := fmt.Sprintf("%s%s?%s", tmdbAPIBaseURL, path, params.Encode())

	var body []byte
	err := retry.Do(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if reqErr != nil {
			return reqErr
		}
		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			return reqErr
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("TMDB API error (status %d): %s", resp.StatusCode, string(msg))
		}

		body, reqErr = io.ReadAll(resp.Body)
		return reqErr
	}, c.maxAttempts, c.initialBackoff)
	if err != nil {
		return err
	}

	if c.cache != nil {
		if cacheErr := c.cache.Set(cacheKey, body, c.cacheTTL); cacheErr != nil {
			slog.Warn("failed to cache lookup response", "key", cacheKey, "error", cacheErr)
		}
	}

	// Rate limiting
	time.Sleep(c.rateDelay)

	return json.Unmarshal(body, out)
}

// LookupMovie resolves a movie title (and optional year) to a canonical
// entity with the TMDb title, release year and IMDB id.
func (c *Client) LookupMovie(ctx context.Context, title string, year int) (media.Entity, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("page", "1")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var search tmdbSearchMovieResponse
	if err := c.getJSON(ctx, "/search/movie", params, &search); err != nil {
		return media.Entity{}, fmt.Errorf("failed to search movie: %w", err)
	}
	if len(search.Results) == 0 {
		return media.Entity{}, fmt.Errorf("movie %q: %w", title, ErrNotFound)
	}
	hit := search.Results[0]

	var ids tmdbExternalIDs
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d/external_ids", hit.ID), url.Values{}, &ids); err != nil {
		return media.Entity{}, fmt.Errorf("failed to get movie external ids: %w", err)
	}

	return media.Entity{
		Title:       hit.Title,
		ReleaseYear: yearOf(hit.ReleaseDate),
		IMDBID:      ids.IMDBID,
	}, nil
}

// LookupEpisode resolves a series title plus season/episode numbers to a
// canonical episode, including the parent series entity.
func (c *Client) LookupEpisode(ctx context.Context, series string, season, episode int) (media.Episode, error) {
	params := url.Values{}
	params.Set("query", series)
	params.Set("page", "1")

	var search tmdbSearchTVResponse
	if err := c.getJSON(ctx, "/search/tv", params, &search); err != nil {
		return media.Episode{}, fmt.Errorf("failed to search series: %w", err)
	}
	if len(search.Results) == 0 {
		return media.Episode{}, fmt.Errorf("series %q: %w", series, ErrNotFound)
	}
	hit := search.Results[0]

	var seriesIDs tmdbExternalIDs
	if err := c.getJSON(ctx, fmt.Sprintf("/tv/%d/external_ids", hit.ID), url.Values{}, &seriesIDs); err != nil {
		return media.Episode{}, fmt.Errorf("failed to get series external ids: %w", err)
	}

	episodePath := fmt.Sprintf("/tv/%d/season/%d/episode/%d", hit.ID, season, episode)
	var ep tmdbEpisode
	if err := c.getJSON(ctx, episodePath, url.Values{}, &ep); err != nil {
		return media.Episode{}, fmt.Errorf("failed to get episode details: %w", err)
	}

	var epIDs tmdbExternalIDs
	if err := c.getJSON(ctx, episodePath+"/external_ids", url.Values{}, &epIDs); err != nil {
		return media.Episode{}, fmt.Errorf("failed to get episode external ids: %w", err)
	}

	return media.Episode{
		Number: episode,
		Season: season,
		Title:  ep.Name,
		IMDBID: epIDs.IMDBID,
		Series: media.Entity{
			Title:       hit.Name,
			ReleaseYear: yearOf(hit.FirstAirDate),
			IMDBID:      seriesIDs.IMDBID,
		},
	}, nil
}

// Enrich replaces the filename-derived identity of v with the canonical one
// from TMDb. On ErrNotFound the video is left untouched and nil is returned,
// the filename-derived fields remain the fallback.
func (c *Client) Enrich(ctx context.Context, v *media.Video) error {
	switch info := v.Info.(type) {
	case media.MovieData:
		entity, err := c.LookupMovie(ctx, info.Movie.Title, info.Movie.ReleaseYear)
		if err != nil {
			if isNotFound(err) {
				slog.Debug("no lookup match, keeping filename data", "title", info.Movie.Title)
				return nil
			}
			return err
		}
		info.Movie = entity
		v.Info = info
	case media.EpisodeData:
		ep, err := c.LookupEpisode(ctx, info.Episode.Series.Title,
			info.Episode.Season, info.Episode.Number)
		if err != nil {
			if isNotFound(err) {
				slog.Debug("no lookup match, keeping filename data", "series", info.Episode.Series.Title)
				return nil
			}
			return err
		}
		v.Info = media.EpisodeData{Episode: ep, Metadata: info.Metadata}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || y < 0 {
		return 0
	}
	return y
}
