package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cinetrack/cinetrack/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrDuplicateMovie  = errors.New("movie already in watchlist")
)

type AccountRepository interface {
	Create(account *model.Account) error
	ByEmail(email string) (*model.Account, error)
	Update(account *model.Account) error
	SetChallenge(email, code string, expiresAt time.Time) error
	ClearChallenge(email string, nickname *string) error
	AddMovie(accountID string, movie model.MovieSummary) error
	RemoveMovie(accountID string, movieID int64) error
	Watchlist(accountID string) ([]model.MovieSummary, error)
}

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

// isUniqueViolation works for both SQLite and PostgreSQL
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func (r *accountRepository) Create(account *model.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, name, nickname, picture, otp_code, otp_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Name,
		account.Nickname,
		account.Picture,
		account.OTPCode,
		account.OTPExpiresAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *accountRepository) ByEmail(email string) (*model.Account, error) {
	account := &model.Account{}
	query := `SELECT * FROM accounts WHERE email = $1`

	err := r.db.Get(account, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	account.Watchlist, err = r.Watchlist(account.ID)
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) Update(account *model.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, nickname = $2, picture = $3, password_hash = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.Exec(query,
		account.Name,
		account.Nickname,
		account.Picture,
		account.PasswordHash,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// SetChallenge overwrites any pending code. Two concurrent issuances race
// last-write-wins, which is fine for a single-owner inbox.
func (r *accountRepository) SetChallenge(email, code string, expiresAt time.Time) error {
	query := `UPDATE accounts SET otp_code = $1, otp_expires_at = $2, updated_at = $3 WHERE email = $4`

	result, err := r.db.Exec(query, code, expiresAt, time.Now(), email)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// ClearChallenge clears both OTP columns in a single statement so a
// half-consumed challenge can never be observed. A non-nil nickname is
// applied in the same write.
func (r *accountRepository) ClearChallenge(email string, nickname *string) error {
	query := `
		UPDATE accounts
		SET otp_code = NULL, otp_expires_at = NULL, nickname = COALESCE($1, nickname), updated_at = $2
		WHERE email = $3
	`
	result, err := r.db.Exec(query, nickname, time.Now(), email)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// AddMovie appends to the watchlist. The UNIQUE(account_id, movie_id) index
// is what serializes concurrent adds for the same account; the position
// subquery keeps insertion order stable.
func (r *accountRepository) AddMovie(accountID string, movie model.MovieSummary) error {
	query := `
		INSERT INTO watchlist_movies (account_id, movie_id, title, poster_path, backdrop_path, release_date, vote_average, overview, added_at, position)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE(MAX(position), 0) + 1
		FROM watchlist_movies WHERE account_id = $1
	`
	_, err := r.db.Exec(query,
		accountID,
		movie.ID,
		movie.Title,
		movie.PosterPath,
		movie.BackdropPath,
		movie.ReleaseDate,
		movie.VoteAverage,
		movie.Overview,
		movie.AddedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMovie
		}
		return err
	}

	return nil
}

// RemoveMovie is a no-op when the movie is absent, mirroring filter-based
// removal semantics. Callers re-read the watchlist for the response.
func (r *accountRepository) RemoveMovie(accountID string, movieID int64) error {
	query := `DELETE FROM watchlist_movies WHERE account_id = $1 AND movie_id = $2`

	_, err := r.db.Exec(query, accountID, movieID)
	return err
}

func (r *accountRepository) Watchlist(accountID string) ([]model.MovieSummary, error) {
	movies := []model.MovieSummary{}
	query := `
		SELECT movie_id, title, poster_path, backdrop_path, release_date, vote_average, overview, added_at
		FROM watchlist_movies
		WHERE account_id = $1
		ORDER BY position
	`
	err := r.db.Select(&movies, query, accountID)
	if err != nil {
		return nil, err
	}

	return movies, nil
}
