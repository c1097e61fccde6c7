package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 550,
			"title": "Fight Club",
			"poster_path": "/poster.jpg",
			"backdrop_path": "/backdrop.jpg",
			"release_date": "1999-10-15",
			"vote_average": 8.4,
			"overview": "An insomniac office worker..."
		}`))
	}))
	defer srv.Close()

	client := NewTMDBClient(srv.URL, "test-token", time.Second)
	movie, err := client.MovieByID(context.Background(), 550)
	require.NoError(t, err)

	assert.Equal(t, int64(550), movie.ID)
	assert.Equal(t, "Fight Club", movie.Title)
	assert.Equal(t, "/poster.jpg", movie.PosterPath)
	assert.Equal(t, "1999-10-15", movie.ReleaseDate)
	assert.Equal(t, 8.4, movie.VoteAverage)
}

func TestMovieByIDUnavailableWithoutToken(t *testing.T) {
	client := NewTMDBClient("https://example.invalid", "", time.Second)

	_, err := client.MovieByID(context.Background(), 550)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMovieByIDUnavailableOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewTMDBClient(srv.URL, "test-token", time.Second)
	_, err := client.MovieByID(context.Background(), 99999999)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMovieByIDUnavailableOnConnectError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewTMDBClient(srv.URL, "test-token", time.Second)
	_, err := client.MovieByID(context.Background(), 550)
	assert.ErrorIs(t, err, ErrUnavailable)
}
