package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("handled"))
	})

	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	wrapped := CORSMiddleware(cfg)(handler)

	t.Run("echoes configured origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("Expected echoed origin, got %q", got)
		}
		if got := w.Header().Get("Vary"); got != "Origin" {
			t.Errorf("Expected Vary: Origin, got %q", got)
		}
		if w.Body.String() != "handled" {
			t.Errorf("Expected request to reach the handler, got %q", w.Body.String())
		}
	})

	t.Run("other origins get wildcard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
		req.Header.Set("Origin", "https://elsewhere.example.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Expected *, got %q", got)
		}
	})

	t.Run("no origin gets wildcard", func(t *testing.T) {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/analyze", nil))

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Expected *, got %q", got)
		}
	})

	t.Run("preflight answers ok", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/analyze", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.String() != "ok" {
			t.Errorf("Expected 200 ok, got %d %q", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
			t.Errorf("Unexpected methods %q", got)
		}
		want := "authorization, x-client-info, apikey, content-type, x-user-id"
		if got := w.Header().Get("Access-Control-Allow-Headers"); got != want {
			t.Errorf("Allowed headers = %q, want %q", got, want)
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
			t.Errorf("Expected max age 3600, got %q", got)
		}
	})

	t.Run("disabled passes through", func(t *testing.T) {
		off := CORSMiddleware(&CORSConfig{Enabled: false})(handler)
		req := httptest.NewRequest(http.MethodOptions, "/v1/analyze", nil)
		w := httptest.NewRecorder()

		off.ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("Expected no CORS headers when disabled")
		}
		if w.Body.String() != "handled" {
			t.Errorf("Expected handler response, got %q", w.Body.String())
		}
	})
}
