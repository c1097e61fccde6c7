package watchlist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cinetrack/cinetrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLoginCapturesSessionToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/users/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "b@x.com", body["email"])
		assert.Equal(t, "123456", body["otp"])

		w.Header().Set("X-Auth-Token", "session-token")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.Account{Email: "b@x.com", Watchlist: []model.MovieSummary{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	account, err := client.LoginOTP(context.Background(), "b@x.com", "123456", "")
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", account.Email)
	assert.Equal(t, "session-token", client.Token())
}

func TestClientSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.Account{Email: "a@x.com"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.setToken("session-token")

	_, err := client.Account(context.Background(), "a@x.com")
	require.NoError(t, err)
}

func TestClientAddMovieSendsIDAndSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/a@x.com/watchlist", r.URL.Path)

		var body struct {
			MovieID int64               `json:"movieId"`
			Movie   model.MovieSummary  `json:"movie"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(550), body.MovieID)
		assert.Equal(t, "Fight Club", body.Movie.Title)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]model.MovieSummary{body.Movie})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	list, err := client.AddMovie(context.Background(), "a@x.com", model.MovieSummary{ID: 550, Title: "Fight Club"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(550), list[0].ID)
}

func TestClientRemoveMoviePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "/users/a@x.com/watchlist/550", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	list, err := client.RemoveMovie(context.Background(), "a@x.com", 550)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClientSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Movie already in watchlist"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.AddMovie(context.Background(), "a@x.com", model.MovieSummary{ID: 550})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Movie already in watchlist", apiErr.Message)
}
