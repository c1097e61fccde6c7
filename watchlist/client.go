// Package watchlist is the client-side synchronization layer shared by the
// web and mobile frontends: an HTTP client for the account API and an
// optimistic local cache that mirrors one account's watchlist.
package watchlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cinetrack/cinetrack/internal/model"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the server. Message carries the
// server's human-readable text for direct display in the UI.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the account/watchlist API. It remembers the session
// token handed back on login and sends it on subsequent requests.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if token := resp.Header.Get("X-Auth-Token"); token != "" {
		c.setToken(token)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "Server error"}
		var body struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Message != "" {
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// SendOTP requests a login code for email, creating the account server-side
// if it does not exist yet.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/users/send-otp", body, nil)
}

// LoginOTP exchanges a code for the account snapshot. A non-empty nickname
// is stored on first login.
func (c *Client) LoginOTP(ctx context.Context, email, code, nickname string) (*model.Account, error) {
	body := map[string]string{"email": email, "otp": code}
	if nickname != "" {
		body["nickname"] = nickname
	}

	var account model.Account
	err := c.do(ctx, http.MethodPost, "/users/login", body, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) LoginPassword(ctx context.Context, email, password string) (*model.Account, error) {
	body := map[string]string{"email": email, "password": password}

	var account model.Account
	err := c.do(ctx, http.MethodPost, "/users/login", body, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Signup(ctx context.Context, email, password, name, nickname string) (*model.Account, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	if nickname != "" {
		body["nickname"] = nickname
	}

	var account model.Account
	err := c.do(ctx, http.MethodPost, "/users/signup", body, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Account(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(email), nil, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// AddMovie sends both the id and the full summary; the server prefers its
// own catalog lookup and falls back to the summary when the catalog is
// unreachable.
func (c *Client) AddMovie(ctx context.Context, email string, movie model.MovieSummary) ([]model.MovieSummary, error) {
	body := map[string]any{"movieId": movie.ID, "movie": movie}

	var watchlist []model.MovieSummary
	err := c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(email)+"/watchlist", body, &watchlist)
	if err != nil {
		return nil, err
	}
	return watchlist, nil
}

func (c *Client) RemoveMovie(ctx context.Context, email string, movieID int64) ([]model.MovieSummary, error) {
	path := fmt.Sprintf("/users/%s/watchlist/%d", url.PathEscape(email), movieID)

	var watchlist []model.MovieSummary
	err := c.do(ctx, http.MethodDelete, path, nil, &watchlist)
	if err != nil {
		return nil, err
	}
	return watchlist, nil
}
