package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// ============================================================================
// Error Formatting
// ============================================================================

func TestProviderError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &ProviderError{
			Provider:   "gemini",
			StatusCode: 500,
			Message:    "internal error",
		}

		expected := `provider "gemini" error (status 500): internal error`
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := &ProviderError{
			Provider: "gemini",
			Message:  "request failed",
			Cause:    cause,
		}

		if !errors.Is(err, cause) {
			t.Error("expected error to wrap cause")
		}
	})
}

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{Provider: "vertex", RetryAfter: 2 * time.Second, Message: "quota"}
	if !strings.Contains(err.Error(), "retry after 2s") {
		t.Errorf("expected retry hint in %q", err.Error())
	}

	err = &RateLimitError{Provider: "vertex", Message: "quota"}
	if strings.Contains(err.Error(), "retry after") {
		t.Errorf("expected no retry hint in %q", err.Error())
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Provider: "vertex", Field: "model", Message: "bad format"}
	expected := `provider "vertex" configuration error for field "model": bad format`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestParseError_Unwrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &ParseError{Provider: "gemini", RawResponse: "{", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected ParseError to wrap cause")
	}
}

// ============================================================================
// Classification
// ============================================================================

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &RateLimitError{Provider: "gemini"}, true},
		{"timeout", &TimeoutError{Provider: "gemini", Timeout: time.Minute}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"status 429", &ProviderError{StatusCode: 429}, true},
		{"status 500", &ProviderError{StatusCode: 500}, true},
		{"status 503", &ProviderError{StatusCode: 503}, true},
		{"status 502", &ProviderError{StatusCode: 502}, false},
		{"status 400", &ProviderError{StatusCode: 400}, false},
		{"transport", &ProviderError{Message: "request failed", Cause: errors.New("dial")}, false},
		{"auth", &AuthError{Provider: "gemini"}, false},
		{"config", &ConfigError{Provider: "vertex"}, false},
		{"parse", &ParseError{Provider: "gemini", Cause: errors.New("bad")}, false},
		{"canceled", context.Canceled, false},
		{"wrapped provider", fmt.Errorf("chunk 2: %w", &ProviderError{StatusCode: 503}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
