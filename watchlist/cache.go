package watchlist

import (
	"context"
	"sync"

	"github.com/cinetrack/cinetrack/internal/model"
)

// API is the server surface the cache needs. Satisfied by *Client.
type API interface {
	Account(ctx context.Context, email string) (*model.Account, error)
	AddMovie(ctx context.Context, email string, movie model.MovieSummary) ([]model.MovieSummary, error)
	RemoveMovie(ctx context.Context, email string, movieID int64) ([]model.MovieSummary, error)
}

// Cache mirrors one authenticated account's watchlist. Mutations apply
// locally first so the UI updates immediately, then revert to the
// pre-mutation snapshot if the server rejects the call. The mutex holds
// across the network call, serializing mutations per account so an
// interleaved revert can never clobber a newer optimistic state.
type Cache struct {
	api   API
	email string

	mu     sync.Mutex
	movies []model.MovieSummary
	ids    map[int64]struct{}
}

// NewCache seeds the cache from the account snapshot returned at login;
// no extra fetch is needed.
func NewCache(api API, account *model.Account) *Cache {
	c := &Cache{
		api:   api,
		email: account.Email,
	}
	c.replace(account.Watchlist)
	return c
}

// Movies returns a copy of the cached watchlist in server order.
func (c *Cache) Movies() []model.MovieSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.MovieSummary{}, c.movies...)
}

// Contains is a pure cache lookup, no network access.
func (c *Cache) Contains(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[id]
	return ok
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.movies)
}

// Refresh replaces the cache with server truth. Used for pull-to-refresh
// and to converge after another client mutated the same account.
func (c *Cache) Refresh(ctx context.Context) error {
	account, err := c.api.Account(ctx, c.email)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.replace(account.Watchlist)
	return nil
}

// Add optimistically appends the movie, then confirms with the server.
// On rejection the cache reverts to its pre-mutation snapshot; on success
// it reconciles to the server's returned sequence rather than trusting
// the optimistic guess.
func (c *Cache) Add(ctx context.Context, movie model.MovieSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Local duplicate check only; a concurrent add from another client is
	// caught server-side and resolved by the next refresh.
	if _, ok := c.ids[movie.ID]; ok {
		return nil
	}

	snapshot := c.movies
	c.replace(append(append([]model.MovieSummary{}, c.movies...), movie))

	updated, err := c.api.AddMovie(ctx, c.email, movie)
	if err != nil {
		c.replace(snapshot)
		return err
	}

	c.replace(updated)
	return nil
}

// Remove optimistically drops the movie by id, reverting on failure.
// Removing an id the server does not have succeeds and is a no-op there.
func (c *Cache) Remove(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.movies
	kept := make([]model.MovieSummary, 0, len(c.movies))
	for _, m := range c.movies {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	c.replace(kept)

	updated, err := c.api.RemoveMovie(ctx, c.email, id)
	if err != nil {
		c.replace(snapshot)
		return err
	}

	c.replace(updated)
	return nil
}

// replace must be called with the lock held (or before the cache is shared).
func (c *Cache) replace(movies []model.MovieSummary) {
	c.movies = movies
	c.ids = make(map[int64]struct{}, len(movies))
	for _, m := range movies {
		c.ids[m.ID] = struct{}{}
	}
}
