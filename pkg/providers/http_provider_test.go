package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestProvider(url string, timeout time.Duration) *HTTPProvider {
	return NewHTTPProvider(ProviderConfig{
		Name:    "test-provider",
		BaseURL: url,
		Timeout: timeout,
	})
}

// ============================================================================
// Status Classification
// ============================================================================

func TestHTTPProvider_SingleAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 5*time.Second)
	_, err := provider.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", got)
	}
	if !IsTransient(err) {
		t.Errorf("expected 503 to be transient, got %v", err)
	}
}

func TestHTTPProvider_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		check      func(error) bool
		transient  bool
	}{
		{
			name:       "400 bad request",
			statusCode: http.StatusBadRequest,
			check:      func(err error) bool { var e *ProviderError; return errors.As(err, &e) && e.StatusCode == 400 },
		},
		{
			name:       "401 unauthorized",
			statusCode: http.StatusUnauthorized,
			check:      func(err error) bool { var e *AuthError; return errors.As(err, &e) },
		},
		{
			name:       "403 forbidden",
			statusCode: http.StatusForbidden,
			check:      func(err error) bool { var e *AuthError; return errors.As(err, &e) },
		},
		{
			name:       "429 rate limited",
			statusCode: http.StatusTooManyRequests,
			check:      func(err error) bool { var e *RateLimitError; return errors.As(err, &e) && e.RetryAfter == 3*time.Second },
			transient:  true,
		},
		{
			name:       "500 internal",
			statusCode: http.StatusInternalServerError,
			check:      func(err error) bool { var e *ProviderError; return errors.As(err, &e) && e.StatusCode == 500 },
			transient:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.statusCode == http.StatusTooManyRequests {
					w.Header().Set("Retry-After", "3")
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte("nope"))
			}))
			defer server.Close()

			provider := newTestProvider(server.URL, 5*time.Second)
			_, err := provider.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type: %T %v", err, err)
			}
			if IsTransient(err) != tt.transient {
				t.Errorf("expected transient=%v for %v", tt.transient, err)
			}
		})
	}
}

func TestHTTPProvider_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	provider := newTestProvider(server.URL, 50*time.Millisecond)
	_, err := provider.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %T %v", err, err)
	}
	if !IsTransient(err) {
		t.Error("expected timeout to be transient")
	}
}

func TestHTTPProvider_DoJSONRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Test") != "yes" {
			t.Errorf("expected custom header to be forwarded")
		}
		_, _ = w.Write([]byte(`{"value":42}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 5*time.Second)
	var out struct {
		Value int `json:"value"`
	}
	err := provider.DoJSONRequest(context.Background(), "POST", server.URL, map[string]string{"a": "b"}, &out, map[string]string{"X-Test": "yes"})
	if err != nil {
		t.Fatalf("DoJSONRequest failed: %v", err)
	}
	if out.Value != 42 {
		t.Errorf("expected 42, got %d", out.Value)
	}
}

func TestHTTPProvider_DoJSONRequest_ParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 5*time.Second)
	var out map[string]interface{}
	err := provider.DoJSONRequest(context.Background(), "POST", server.URL, nil, &out, nil)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T %v", err, err)
	}
	if parseErr.RawResponse != "not json" {
		t.Errorf("expected raw response to be kept, got %q", parseErr.RawResponse)
	}
	if IsTransient(err) {
		t.Error("expected parse error to be fatal")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("expected 0 for empty header, got %v", got)
	}
	if got := parseRetryAfter("7"); got != 7*time.Second {
		t.Errorf("expected 7s, got %v", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Errorf("expected 0 for garbage, got %v", got)
	}
}
