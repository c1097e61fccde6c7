package model

import (
	"time"
)

type Account struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash *string    `db:"password_hash" json:"-"` // Nullable for OTP-only accounts
	Name         string     `db:"name" json:"name"`
	Nickname     *string    `db:"nickname" json:"nickname,omitempty"`
	Picture      string     `db:"picture" json:"picture"`
	OTPCode      *string    `db:"otp_code" json:"-"`
	OTPExpiresAt *time.Time `db:"otp_expires_at" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`

	// Loaded separately (not a column)
	Watchlist []MovieSummary `db:"-" json:"watchlist"`
}

func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// HasChallenge reports whether an OTP is pending, expired or not.
func (a *Account) HasChallenge() bool {
	return a.OTPCode != nil && *a.OTPCode != "" && a.OTPExpiresAt != nil
}

// Snapshot returns a copy safe to hand to clients: credential material is
// stripped so it can never leak through a caller that bypasses JSON tags.
func (a *Account) Snapshot() *Account {
	s := *a
	s.PasswordHash = nil
	s.OTPCode = nil
	s.OTPExpiresAt = nil
	if s.Watchlist == nil {
		s.Watchlist = []MovieSummary{}
	}
	return &s
}
