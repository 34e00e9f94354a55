package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"verdict-hq/verdict/pkg/telemetry/logging"
)

// ErrorWriter writes an authentication failure. message is user-facing.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, message string)

// Middleware authenticates every request with a Verifier and stores the
// user ID in the request context.
type Middleware struct {
	verifier *Verifier
	onError  ErrorWriter
}

// NewMiddleware creates the authentication middleware. onError renders 401
// responses; nil falls back to http.Error.
func NewMiddleware(verifier *Verifier, onError ErrorWriter) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, r *http.Request, message string) {
			http.Error(w, message, http.StatusUnauthorized)
		}
	}
	return &Middleware{verifier: verifier, onError: onError}
}

// Handle wraps an HTTP handler with bearer-token authentication. OPTIONS
// requests pass through for CORS preflight.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.verifier.Verify(r)
		if err != nil {
			slog.Warn("authentication failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			m.onError(w, r, Message(err))
			return
		}

		slog.Debug("request authenticated", "user_id", userID, "path", r.URL.Path)
		ctx := logging.WithUserID(WithUserID(r.Context(), userID), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Message returns the user-facing text for an authentication error.
func Message(err error) string {
	if errors.Is(err, ErrUserMismatch) {
		return "Unauthorized (mismatch)"
	}
	return "Unauthorized"
}
