package auth

import (
	"context"
	"errors"
)

var (
	// ErrMissingToken is returned when no bearer token is present.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken is returned for malformed, badly signed or expired tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUserMismatch is returned when the user header disagrees with the token subject.
	ErrUserMismatch = errors.New("user header does not match token subject")
)

// Claims are the registered JWT claims the verifier reads. Times are Unix
// seconds; zero means absent.
type Claims struct {
	Subject   string
	ExpiresAt int64
	NotBefore int64
	IssuedAt  int64
}

// Context key for the verified user
type contextKey string

const userIDKey contextKey = "verified_user_id"

// WithUserID returns a context carrying the verified user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the verified user ID from ctx.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
