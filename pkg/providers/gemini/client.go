package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"verdict-hq/verdict/pkg/providers"
)

const (
	// DefaultBaseURL is the public Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// ProviderName identifies this adapter in cache keys and responses.
	ProviderName = "gemini"
)

// Config configures the Gemini adapter.
type Config struct {
	providers.ProviderConfig

	// APIKey is sent as the key query parameter
	APIKey string

	// DefaultModel is used when a request names no model
	DefaultModel string
}

// Provider is the Gemini API adapter. It implements providers.Analyzer.
type Provider struct {
	*providers.HTTPProvider

	apiKey       string
	baseURL      string
	defaultModel string
}

// NewProvider creates a new Gemini provider instance.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: ProviderName,
			Field:    "api_key",
			Message:  "API key is required for Gemini",
		}
	}

	if cfg.Name == "" {
		cfg.Name = ProviderName
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = 10
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(cfg.ProviderConfig),
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/"),
		defaultModel: cfg.DefaultModel,
	}

	slog.Info("Gemini provider initialized",
		"provider", cfg.Name,
		"base_url", p.baseURL,
	)

	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.GetName()
}

// ResolveModel returns requested, or the configured default when empty.
func (p *Provider) ResolveModel(requested string) string {
	if requested == "" {
		return p.defaultModel
	}
	return requested
}

// Generate sends one generateContent call.
func (p *Provider) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	body, err := BuildRequest(req)
	if err != nil {
		return nil, err
	}

	model := p.ResolveModel(req.Model)
	if strings.TrimSpace(model) == "" {
		return nil, &providers.ConfigError{
			Provider: p.GetName(),
			Field:    "model",
			Message:  "model name required",
		}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		p.baseURL, url.PathEscape(model), url.QueryEscape(p.apiKey))

	start := time.Now()
	var resp Response
	if err := p.DoJSONRequest(ctx, "POST", endpoint, body, &resp, nil); err != nil {
		return nil, withMessage(err)
	}

	slog.Debug("generate request succeeded",
		"provider", p.GetName(),
		"model", model,
		"latency", time.Since(start),
	)

	return &providers.GenerateResponse{
		Text:    resp.Text(),
		Model:   model,
		Latency: time.Since(start),
	}, nil
}

// withMessage replaces a raw JSON error body with its error.message.
func withMessage(err error) error {
	var provErr *providers.ProviderError
	if errors.As(err, &provErr) && provErr.Message != "" {
		provErr.Message = ErrorMessage(provErr.Message)
	}
	var rateErr *providers.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Message != "" {
		rateErr.Message = ErrorMessage(rateErr.Message)
	}
	return err
}
