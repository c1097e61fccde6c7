package repository

import (
	"sync"
	"time"

	"github.com/cinetrack/cinetrack/internal/model"
)

// MemoryAccountRepository is an in-memory AccountRepository used by unit
// tests and local experiments. It holds the same invariants as the SQL
// implementation: unique emails, unique movie ids per watchlist, stable
// insertion order.
type MemoryAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*model.Account // keyed by email
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[string]*model.Account),
	}
}

func (r *MemoryAccountRepository) Create(account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.Email]; ok {
		return ErrDuplicateEmail
	}

	stored := *account
	stored.Watchlist = append([]model.MovieSummary{}, account.Watchlist...)
	r.accounts[account.Email] = &stored
	return nil
}

func (r *MemoryAccountRepository) ByEmail(email string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[email]
	if !ok {
		return nil, ErrAccountNotFound
	}

	account := *stored
	account.Watchlist = append([]model.MovieSummary{}, stored.Watchlist...)
	return &account, nil
}

func (r *MemoryAccountRepository) Update(account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID(account.ID)
	if !ok {
		return ErrAccountNotFound
	}

	stored.Name = account.Name
	stored.Nickname = account.Nickname
	stored.Picture = account.Picture
	stored.PasswordHash = account.PasswordHash
	stored.UpdatedAt = account.UpdatedAt
	return nil
}

func (r *MemoryAccountRepository) SetChallenge(email, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[email]
	if !ok {
		return ErrAccountNotFound
	}

	c := code
	e := expiresAt
	stored.OTPCode = &c
	stored.OTPExpiresAt = &e
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryAccountRepository) ClearChallenge(email string, nickname *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[email]
	if !ok {
		return ErrAccountNotFound
	}

	stored.OTPCode = nil
	stored.OTPExpiresAt = nil
	if nickname != nil {
		stored.Nickname = nickname
	}
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryAccountRepository) AddMovie(accountID string, movie model.MovieSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID(accountID)
	if !ok {
		return ErrAccountNotFound
	}

	for _, m := range stored.Watchlist {
		if m.ID == movie.ID {
			return ErrDuplicateMovie
		}
	}

	stored.Watchlist = append(stored.Watchlist, movie)
	return nil
}

func (r *MemoryAccountRepository) RemoveMovie(accountID string, movieID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID(accountID)
	if !ok {
		return ErrAccountNotFound
	}

	kept := stored.Watchlist[:0]
	for _, m := range stored.Watchlist {
		if m.ID != movieID {
			kept = append(kept, m)
		}
	}
	stored.Watchlist = kept
	return nil
}

func (r *MemoryAccountRepository) Watchlist(accountID string) ([]model.MovieSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID(accountID)
	if !ok {
		return nil, ErrAccountNotFound
	}

	return append([]model.MovieSummary{}, stored.Watchlist...), nil
}

// byID must be called with the lock held.
func (r *MemoryAccountRepository) byID(id string) (*model.Account, bool) {
	for _, a := range r.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}
