package ctxkeys

import (
	"context"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	AccountEmailKey contextKey = "account_email"
)

// AccountEmail returns the email claim of the authenticated session, or ""
// when the request carried no valid token.
func AccountEmail(ctx context.Context) string {
	email, _ := ctx.Value(AccountEmailKey).(string)
	return email
}

func WithAccountEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, AccountEmailKey, email)
}
