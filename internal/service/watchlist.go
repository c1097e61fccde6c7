package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinetrack/cinetrack/internal/catalog"
	"github.com/cinetrack/cinetrack/internal/model"
	"github.com/cinetrack/cinetrack/internal/repository"
)

var (
	ErrMovieRequired  = errors.New("movie id required")
	ErrDuplicateMovie = errors.New("movie already in watchlist")
)

type WatchlistService struct {
	accounts repository.AccountRepository
	catalog  catalog.Resolver
}

func NewWatchlistService(accounts repository.AccountRepository, resolver catalog.Resolver) *WatchlistService {
	return &WatchlistService{
		accounts: accounts,
		catalog:  resolver,
	}
}

// Add appends a movie to the account's watchlist and returns the full
// updated list. The stored summary is resolved from the catalog when
// possible; on any catalog failure the caller-supplied summary is stored
// verbatim. Catalog unavailability alone never fails the mutation.
func (s *WatchlistService) Add(email string, movieID int64, supplied *model.MovieSummary) ([]model.MovieSummary, error) {
	if movieID == 0 {
		if supplied == nil || supplied.ID == 0 {
			return nil, ErrMovieRequired
		}
		movieID = supplied.ID
	}

	account, err := s.accounts.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	for _, m := range account.Watchlist {
		if m.ID == movieID {
			return nil, ErrDuplicateMovie
		}
	}

	summary, err := s.catalog.MovieByID(context.Background(), movieID)
	if err != nil {
		slog.Warn("catalog lookup failed, falling back to supplied summary", "error", err, "movie_id", movieID)
		summary = supplied
	}
	if summary == nil {
		return nil, ErrMovieRequired
	}

	summary.ID = movieID
	summary.AddedAt = time.Now()

	err = s.accounts.AddMovie(account.ID, *summary)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateMovie) {
			// Lost a race with a concurrent add for the same id.
			return nil, ErrDuplicateMovie
		}
		return nil, fmt.Errorf("failed to add movie: %w", err)
	}

	return s.accounts.Watchlist(account.ID)
}

// Remove filters the movie out and returns the updated list. Removing an
// id that is not present is a successful no-op.
func (s *WatchlistService) Remove(email string, movieID int64) ([]model.MovieSummary, error) {
	account, err := s.accounts.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	err = s.accounts.RemoveMovie(account.ID, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove movie: %w", err)
	}

	return s.accounts.Watchlist(account.ID)
}

// Account returns the full snapshot, watchlist included, credential
// material stripped.
func (s *WatchlistService) Account(email string) (*model.Account, error) {
	account, err := s.accounts.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	return account.Snapshot(), nil
}
