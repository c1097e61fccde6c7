package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cinetrack/cinetrack/internal/model"
)

// TMDBClient resolves movie ids against a TMDB-compatible API. When no
// access token is configured every lookup reports ErrUnavailable, which
// keeps local development working without credentials.
type TMDBClient struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

func NewTMDBClient(baseURL, accessToken string, timeout time.Duration) *TMDBClient {
	return &TMDBClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

type tmdbMovie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview"`
}

func (c *TMDBClient) MovieByID(ctx context.Context, id int64) (*model.MovieSummary, error) {
	if c.accessToken == "" {
		return nil, ErrUnavailable
	}

	url := fmt.Sprintf("%s/movie/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: catalog returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var m tmdbMovie
	err = json.NewDecoder(resp.Body).Decode(&m)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode catalog response: %v", ErrUnavailable, err)
	}

	return &model.MovieSummary{
		ID:           m.ID,
		Title:        m.Title,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		ReleaseDate:  m.ReleaseDate,
		VoteAverage:  m.VoteAverage,
		Overview:     m.Overview,
	}, nil
}
