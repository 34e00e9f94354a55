package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"verdict-hq/verdict/pkg/api"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and writes a 500
// with the generic internal message. The panic and stack are logged; no
// detail reaches the client.
//
// Example usage:
//
//	handler = RecoveryMiddleware(writer)(handler)
func RecoveryMiddleware(writer *api.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// The server uses this sentinel to abort a response quietly.
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writer.Error(w, r, fmt.Errorf("panic: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
