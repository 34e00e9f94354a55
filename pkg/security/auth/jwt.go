package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultUserHeader is the optional header that must match the token subject.
const DefaultUserHeader = "X-User-Id"

// Verifier authenticates requests carrying an HS256 bearer JWT. The user is
// the token's sub claim.
type Verifier struct {
	secret     []byte
	userHeader string
	leeway     time.Duration
	now        func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithUserHeader sets the optional header compared against sub.
func WithUserHeader(name string) VerifierOption {
	return func(v *Verifier) { v.userHeader = name }
}

// WithLeeway tolerates clock skew on exp and nbf.
func WithLeeway(d time.Duration) VerifierOption {
	return func(v *Verifier) { v.leeway = d }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier creates a Verifier for tokens signed with secret.
func NewVerifier(secret string, opts ...VerifierOption) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	v := &Verifier{
		secret:     []byte(secret),
		userHeader: DefaultUserHeader,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify returns the user ID of an authenticated request. When the user
// header is present it must equal the token subject.
func (v *Verifier) Verify(r *http.Request) (string, error) {
	token, ok := bearerToken(r)
	if !ok {
		return "", ErrMissingToken
	}

	claims, err := v.Parse(token)
	if err != nil {
		return "", err
	}

	if v.userHeader != "" {
		if header := strings.TrimSpace(r.Header.Get(v.userHeader)); header != "" && header != claims.Subject {
			return "", ErrUserMismatch
		}
	}
	return claims.Subject, nil
}

// Parse verifies the signature and time claims of token and returns its claims.
func (v *Verifier) Parse(token string) (*Claims, error) {
	var registered jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &registered,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if registered.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}

	return &Claims{
		Subject:   registered.Subject,
		ExpiresAt: unixSeconds(registered.ExpiresAt),
		NotBefore: unixSeconds(registered.NotBefore),
		IssuedAt:  unixSeconds(registered.IssuedAt),
	}, nil
}

// Sign issues an HS256 token for claims.
func Sign(secret string, claims Claims) (string, error) {
	registered := jwt.RegisteredClaims{
		Subject:   claims.Subject,
		ExpiresAt: numericDate(claims.ExpiresAt),
		NotBefore: numericDate(claims.NotBefore),
		IssuedAt:  numericDate(claims.IssuedAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, registered).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func numericDate(sec int64) *jwt.NumericDate {
	if sec == 0 {
		return nil
	}
	return jwt.NewNumericDate(time.Unix(sec, 0))
}

func unixSeconds(d *jwt.NumericDate) int64 {
	if d == nil {
		return 0
	}
	return d.Unix()
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}
