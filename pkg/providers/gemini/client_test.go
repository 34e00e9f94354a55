package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"verdict-hq/verdict/pkg/providers"
)

func newTestProvider(t *testing.T, url string) *Provider {
	t.Helper()
	p, err := NewProvider(Config{
		ProviderConfig: providers.ProviderConfig{BaseURL: url, Timeout: 5 * time.Second},
		APIKey:         "test-key",
		DefaultModel:   "gemini-1.5-flash",
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

func TestGeminiProvider_Generate(t *testing.T) {
	var captured Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-1.5-flash-lite:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key in query, got %q", r.URL.Query().Get("key"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"summary\":\"ok\"}"}]}}]}`))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	resp, err := p.Generate(context.Background(), &providers.GenerateRequest{
		Prompt:          "analyze this",
		Schema:          json.RawMessage(`{"type":"object"}`),
		MaxOutputTokens: 900,
		Model:           "gemini-1.5-flash-lite",
		Temperature:     0.2,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != `{"summary":"ok"}` {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.Model != "gemini-1.5-flash-lite" {
		t.Errorf("expected model gemini-1.5-flash-lite, got %q", resp.Model)
	}

	if len(captured.Contents) != 1 || captured.Contents[0].Role != "user" {
		t.Fatalf("expected one user content, got %+v", captured.Contents)
	}
	if captured.Contents[0].Parts[0].Text != "analyze this" {
		t.Errorf("unexpected prompt %q", captured.Contents[0].Parts[0].Text)
	}
	gc := captured.GenerationConfig
	if gc.MaxOutputTokens != 900 || gc.Temperature != 0.2 || gc.ResponseMimeType != "application/json" {
		t.Errorf("unexpected generation config %+v", gc)
	}
	if string(gc.ResponseSchema) != `{"type":"object"}` {
		t.Errorf("expected schema to be forwarded, got %s", gc.ResponseSchema)
	}
}

func TestGeminiProvider_DefaultModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-1.5-flash:generateContent") {
			t.Errorf("expected default model in path, got %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	resp, err := p.Generate(context.Background(), &providers.GenerateRequest{Prompt: "p", MaxOutputTokens: 10})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Text != "" {
		t.Errorf("expected empty text for no candidates, got %q", resp.Text)
	}
}

func TestGeminiProvider_ErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"The model is overloaded.","status":"UNAVAILABLE"}}`))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	_, err := p.Generate(context.Background(), &providers.GenerateRequest{Prompt: "p", MaxOutputTokens: 10})

	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %T %v", err, err)
	}
	if provErr.Message != "The model is overloaded." {
		t.Errorf("expected decoded message, got %q", provErr.Message)
	}
	if !providers.IsTransient(err) {
		t.Error("expected 503 to be transient")
	}
}

func TestGeminiProvider_Validation(t *testing.T) {
	if _, err := NewProvider(Config{}); err == nil {
		t.Error("expected error without API key")
	} else {
		var cfgErr *providers.ConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "api_key" {
			t.Errorf("expected api_key ConfigError, got %v", err)
		}
	}

	p := newTestProvider(t, "http://127.0.0.1:0")
	tests := []struct {
		name string
		req  *providers.GenerateRequest
	}{
		{"nil request", nil},
		{"empty prompt", &providers.GenerateRequest{MaxOutputTokens: 10}},
		{"zero max tokens", &providers.GenerateRequest{Prompt: "p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Generate(context.Background(), tt.req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// ============================================================================
// Wire Helpers
// ============================================================================

func TestResponseText(t *testing.T) {
	var nilResp *Response
	if nilResp.Text() != "" {
		t.Error("expected empty text for nil response")
	}
	r := &Response{Candidates: []Candidate{{Content: Content{}}}}
	if r.Text() != "" {
		t.Error("expected empty text for candidate without parts")
	}
	r = &Response{Candidates: []Candidate{{Content: Content{Parts: []Part{{Text: "a"}, {Text: "b"}}}}}}
	if r.Text() != "a" {
		t.Errorf("expected first part, got %q", r.Text())
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(`{"error":{"message":"bad key"}}`); got != "bad key" {
		t.Errorf("expected decoded message, got %q", got)
	}
	if got := ErrorMessage("plain text"); got != "plain text" {
		t.Errorf("expected raw body, got %q", got)
	}
}
