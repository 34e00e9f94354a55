package vertex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"verdict-hq/verdict/pkg/providers"
)

func newTestProvider(t *testing.T, url string) *Provider {
	t.Helper()
	p, err := NewProvider(context.Background(), Config{
		ProviderConfig: providers.ProviderConfig{BaseURL: url, Timeout: 5 * time.Second},
		Project:        "proj",
		Location:       "us-central1",
		TokenSource:    oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access-123"}),
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// ============================================================================
// Generate
// ============================================================================

func TestVertexProvider_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "/v1/projects/proj/locations/us-central1/publishers/google/models/gemini-1.5-flash-002:generateContent"
		if r.URL.Path != want {
			t.Errorf("expected path %q, got %q", want, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer access-123" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	resp, err := p.Generate(context.Background(), &providers.GenerateRequest{
		Prompt:          "p",
		MaxOutputTokens: 100,
		Model:           "gemini-1.5-flash-lite",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Text != "{}" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.Model != DefaultModel {
		t.Errorf("expected pinned model %q, got %q", DefaultModel, resp.Model)
	}
}

func TestVertexProvider_ResolveModelIsPinned(t *testing.T) {
	p := newTestProvider(t, "http://127.0.0.1:0")
	if got := p.ResolveModel("gemini-1.5-flash-lite"); got != DefaultModel {
		t.Errorf("expected %q, got %q", DefaultModel, got)
	}
	if p.Name() != ProviderName {
		t.Errorf("expected name %q, got %q", ProviderName, p.Name())
	}
}

func TestVertexProvider_ModelFormatIsConfigError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Unexpected model name format: models/x"}}`))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	_, err := p.Generate(context.Background(), &providers.GenerateRequest{Prompt: "p", MaxOutputTokens: 10})

	var cfgErr *providers.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T %v", err, err)
	}
	if cfgErr.Field != "model" {
		t.Errorf("expected field model, got %q", cfgErr.Field)
	}
	if providers.IsTransient(err) {
		t.Error("expected config error to be fatal")
	}
}

func TestVertexProvider_OtherBadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"schema too deep"}}`))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	_, err := p.Generate(context.Background(), &providers.GenerateRequest{Prompt: "p", MaxOutputTokens: 10})

	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %T %v", err, err)
	}
	if provErr.Message != "schema too deep" {
		t.Errorf("expected decoded message, got %q", provErr.Message)
	}
}

type failingTokens struct{}

func (failingTokens) Token() (*oauth2.Token, error) {
	return nil, errors.New("invalid_grant")
}

func TestVertexProvider_TokenFailureIsAuthError(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{
		ProviderConfig: providers.ProviderConfig{BaseURL: "http://127.0.0.1:0"},
		Project:        "proj",
		Location:       "eu",
		TokenSource:    failingTokens{},
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = p.Generate(context.Background(), &providers.GenerateRequest{Prompt: "p", MaxOutputTokens: 10})
	var authErr *providers.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T %v", err, err)
	}
}

func TestNewProvider_Validation(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"missing project", Config{Location: "us"}, "project"},
		{"missing location", Config{Project: "p"}, "location"},
		{"missing key", Config{Project: "p", Location: "us"}, "service_account_json"},
		{"garbage key", Config{Project: "p", Location: "us", ServiceAccountJSON: []byte("{")}, "service_account_json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.cfg)
			var cfgErr *providers.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %T %v", err, err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestEndpoint_DefaultBaseURL(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{
		Project:     "proj",
		Location:    "europe-west4",
		Model:       "gemini-2.0-flash",
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "x"}),
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	want := "https://europe-west4-aiplatform.googleapis.com/v1/projects/proj/locations/europe-west4/publishers/google/models/gemini-2.0-flash:generateContent"
	if got := p.Endpoint(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
