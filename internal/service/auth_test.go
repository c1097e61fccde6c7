package service

import (
	"testing"
	"time"

	"github.com/cinetrack/cinetrack/internal/model"
	"github.com/cinetrack/cinetrack/internal/notify"
	"github.com/cinetrack/cinetrack/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	deliveries []notify.Delivery
}

func (f *fakeNotifier) Enqueue(d notify.Delivery) {
	f.deliveries = append(f.deliveries, d)
}

func newTestAuthService() (*AuthService, *repository.MemoryAccountRepository, *fakeNotifier) {
	repo := repository.NewMemoryAccountRepository()
	notifier := &fakeNotifier{}
	svc := NewAuthService(repo, notifier, "test-secret", time.Hour, 10*time.Minute)
	return svc, repo, notifier
}

func TestSendOTPCreatesUnknownAccount(t *testing.T) {
	svc, repo, notifier := newTestAuthService()

	err := svc.SendOTP("b@x.com")
	require.NoError(t, err)

	account, err := repo.ByEmail("b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "b", account.Name)
	assert.NotEmpty(t, account.Picture)
	assert.Nil(t, account.PasswordHash)
	require.True(t, account.HasChallenge())

	require.Len(t, notifier.deliveries, 1)
	assert.Equal(t, "b@x.com", notifier.deliveries[0].Email)
	assert.Equal(t, *account.OTPCode, notifier.deliveries[0].Code)
	assert.Len(t, notifier.deliveries[0].Code, 6)
}

func TestSendOTPOverwritesPreviousChallenge(t *testing.T) {
	svc, repo, notifier := newTestAuthService()

	require.NoError(t, svc.SendOTP("b@x.com"))
	require.NoError(t, svc.SendOTP("b@x.com"))
	require.Len(t, notifier.deliveries, 2)

	account, err := repo.ByEmail("b@x.com")
	require.NoError(t, err)
	assert.Equal(t, notifier.deliveries[1].Code, *account.OTPCode)

	first := notifier.deliveries[0].Code
	if first == notifier.deliveries[1].Code {
		t.Skip("random codes collided")
	}

	_, err = svc.VerifyOTP("b@x.com", first, "")
	assert.ErrorIs(t, err, ErrCodeMismatch)
}

func TestVerifyOTPUnknownAccount(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.VerifyOTP("nobody@x.com", "123456", "")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestVerifyOTPNoChallenge(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	require.NoError(t, repo.Create(&model.Account{ID: "a1", Email: "b@x.com"}))

	_, err := svc.VerifyOTP("b@x.com", "123456", "")
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestVerifyOTPMismatchReportedBeforeExpiry(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	require.NoError(t, repo.Create(&model.Account{ID: "a1", Email: "b@x.com"}))
	// Both wrong and expired: mismatch wins.
	require.NoError(t, repo.SetChallenge("b@x.com", "111111", time.Now().Add(-time.Minute)))

	_, err := svc.VerifyOTP("b@x.com", "222222", "")
	assert.ErrorIs(t, err, ErrCodeMismatch)
}

func TestVerifyOTPExpired(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	require.NoError(t, repo.Create(&model.Account{ID: "a1", Email: "b@x.com"}))
	require.NoError(t, repo.SetChallenge("b@x.com", "111111", time.Now().Add(-time.Second)))

	_, err := svc.VerifyOTP("b@x.com", "111111", "")
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestVerifyOTPSuccessConsumesChallenge(t *testing.T) {
	svc, repo, notifier := newTestAuthService()

	require.NoError(t, svc.SendOTP("b@x.com"))
	code := notifier.deliveries[0].Code

	account, err := svc.VerifyOTP("b@x.com", code, "benny")
	require.NoError(t, err)
	assert.Nil(t, account.PasswordHash)
	assert.Nil(t, account.OTPCode)
	require.NotNil(t, account.Nickname)
	assert.Equal(t, "benny", *account.Nickname)

	stored, err := repo.ByEmail("b@x.com")
	require.NoError(t, err)
	assert.False(t, stored.HasChallenge())

	// Same code a second time: the challenge is gone.
	_, err = svc.VerifyOTP("b@x.com", code, "")
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestSignup(t *testing.T) {
	svc, _, _ := newTestAuthService()

	account, err := svc.Signup("a@x.com", "pw123456", "Ann", "")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Email)
	assert.Equal(t, "Ann", account.Name)
	assert.Nil(t, account.PasswordHash)
	assert.Empty(t, account.Watchlist)
	assert.NotEmpty(t, account.ID)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Signup("a@x.com", "pw123456", "Ann", "")
	require.NoError(t, err)

	_, err = svc.Signup("a@x.com", "pw123456", "Ann Again", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Signup("not-an-email", "pw123456", "Ann", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Signup("a@x.com", "short", "Ann", "")
	assert.Error(t, err)

	_, err = svc.Signup("a@x.com", "pw123456", "", "")
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Signup("a@x.com", "pw123456", "Ann", "")
	require.NoError(t, err)

	account, err := svc.Login("a@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Email)
	assert.Nil(t, account.PasswordHash)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Signup("a@x.com", "pw123456", "Ann", "")
	require.NoError(t, err)

	_, err = svc.Login("a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Login("nobody@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginPasswordlessAccountFailsDistinctly(t *testing.T) {
	svc, _, _ := newTestAuthService()

	// Account created via OTP flow has no password.
	require.NoError(t, svc.SendOTP("b@x.com"))

	_, err := svc.Login("b@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrNoPassword)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc, _, _ := newTestAuthService()

	account, err := svc.Signup("a@x.com", "pw123456", "Ann", "")
	require.NoError(t, err)

	token, err := svc.GenerateSessionToken(account)
	require.NoError(t, err)

	email, err := svc.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	_, err = svc.VerifySessionToken(token + "tampered")
	assert.Error(t, err)
}

func TestGenerateOTPFormat(t *testing.T) {
	for range 32 {
		code, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
