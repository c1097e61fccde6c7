package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/cinetrack/cinetrack/internal/model"
	"github.com/cinetrack/cinetrack/internal/notify"
	"github.com/cinetrack/cinetrack/internal/repository"
	"github.com/cinetrack/cinetrack/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoPassword         = errors.New("account has no password, use code login")
	ErrNoChallenge        = errors.New("no login code requested")
	ErrCodeMismatch       = errors.New("incorrect login code")
	ErrCodeExpired        = errors.New("login code expired")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// OTPNotifier is the fire-and-forget boundary to the email worker.
// Implemented by notify.Dispatcher.
type OTPNotifier interface {
	Enqueue(delivery notify.Delivery)
}

type AuthService struct {
	accounts  repository.AccountRepository
	notifier  OTPNotifier
	jwtSecret string
	jwtExpiry time.Duration
	otpExpiry time.Duration
}

func NewAuthService(
	accounts repository.AccountRepository,
	notifier OTPNotifier,
	jwtSecret string,
	jwtExpiry time.Duration,
	otpExpiry time.Duration,
) *AuthService {
	return &AuthService{
		accounts:  accounts,
		notifier:  notifier,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		otpExpiry: otpExpiry,
	}
}

// SendOTP issues a login code, creating the account first if the email is
// unknown. Issuance succeeds as soon as the code is persisted; delivery
// happens off the request path and its failures are only logged.
func (s *AuthService) SendOTP(email string) error {
	err := validation.ValidateEmail(email)
	if err != nil {
		return ErrInvalidEmail
	}

	_, err = s.accounts.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return fmt.Errorf("failed to look up account: %w", err)
		}

		now := time.Now()
		name := emailLocalPart(email)
		account := &model.Account{
			ID:        uuid.New().String(),
			Email:     email,
			Name:      name,
			Picture:   avatarURL(name),
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.accounts.Create(account)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		slog.Info("new account created via otp request", "email", email)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	// Overwrites any pending code, implicitly invalidating it.
	err = s.accounts.SetChallenge(email, code, time.Now().Add(s.otpExpiry))
	if err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	s.notifier.Enqueue(notify.Delivery{Email: email, Code: code})

	slog.Info("otp issued", "email", email)
	return nil
}

// VerifyOTP consumes a pending code and logs the account in. A mismatched
// code is reported before expiry is checked, so an expired wrong guess
// still reads as a mismatch.
func (s *AuthService) VerifyOTP(email, code, nickname string) (*model.Account, error) {
	account, err := s.accounts.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !account.HasChallenge() {
		return nil, ErrNoChallenge
	}

	if code != *account.OTPCode {
		return nil, ErrCodeMismatch
	}

	if time.Now().After(*account.OTPExpiresAt) {
		return nil, ErrCodeExpired
	}

	var nick *string
	if nickname != "" {
		nick = &nickname
	}

	// Clears both OTP columns in one write; a second verify attempt with
	// the same code sees no challenge.
	err = s.accounts.ClearChallenge(email, nick)
	if err != nil {
		return nil, fmt.Errorf("failed to consume code: %w", err)
	}

	account, err = s.accounts.ByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to reload account: %w", err)
	}

	slog.Info("account logged in via otp", "email", email)
	return account.Snapshot(), nil
}

// Signup strictly creates; unlike OTP issuance it never upserts.
func (s *AuthService) Signup(email, password, name, nickname string) (*model.Account, error) {
	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, err
	}

	err = validation.ValidateName(name)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashed)

	var nick *string
	if nickname != "" {
		nick = &nickname
	}

	now := time.Now()
	account := &model.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: &hash,
		Name:         name,
		Nickname:     nick,
		Picture:      avatarURL(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.accounts.Create(account)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("account created", "email", email)
	return account.Snapshot(), nil
}

// Login verifies a password. Unknown emails and wrong passwords both map
// to ErrInvalidCredentials; a passwordless account is a distinct kind so
// the boundary can choose its own enumeration-hardening wording.
func (s *AuthService) Login(email, password string) (*model.Account, error) {
	account, err := s.accounts.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !account.HasPassword() {
		return nil, ErrNoPassword
	}

	err = bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	account.UpdatedAt = time.Now()
	err = s.accounts.Update(account)
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	slog.Info("account logged in via password", "email", email)
	return account.Snapshot(), nil
}

// GenerateSessionToken issues the HS256 token handed to clients in the
// X-Auth-Token header.
func (s *AuthService) GenerateSessionToken(account *model.Account) (string, error) {
	claims := jwt.MapClaims{
		"account_id": account.ID,
		"email":      account.Email,
		"exp":        time.Now().Add(s.jwtExpiry).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifySessionToken returns the email claim of a valid token.
func (s *AuthService) VerifySessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("token missing email claim")
	}

	return email, nil
}

// generateOTP returns a zero-padded 6-digit code, uniform over 000000-999999.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func emailLocalPart(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}
	return email[:at]
}

// avatarURL derives a deterministic avatar from the display name, matching
// what the clients showed for accounts without an uploaded picture.
func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}
