package vertex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"verdict-hq/verdict/pkg/providers"
	"verdict-hq/verdict/pkg/providers/gemini"
)

const (
	// ProviderName identifies this adapter in cache keys and responses.
	ProviderName = "vertex"

	// DefaultModel is the pinned model when none is configured.
	DefaultModel = "gemini-1.5-flash-002"

	// CloudPlatformScope is the OAuth2 scope requested for the service account.
	CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
)

var modelFormatPattern = regexp.MustCompile(`(?i)unexpected model name format`)

// Config configures the Vertex AI adapter.
type Config struct {
	providers.ProviderConfig

	Project  string
	Location string

	// Model is pinned for every call regardless of the mode's model
	Model string

	// ServiceAccountJSON is the service-account key used to mint access tokens
	ServiceAccountJSON []byte

	// TokenSource overrides ServiceAccountJSON when set
	TokenSource oauth2.TokenSource
}

// Provider is the Vertex AI adapter. It implements providers.Analyzer.
type Provider struct {
	*providers.HTTPProvider

	project  string
	location string
	model    string
	baseURL  string
	tokens   oauth2.TokenSource
}

// NewProvider creates a new Vertex provider instance. Access tokens are
// minted from the service-account key and cached until shortly before they
// expire.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Project == "" {
		return nil, &providers.ConfigError{Provider: ProviderName, Field: "project", Message: "project is required for Vertex"}
	}
	if cfg.Location == "" {
		return nil, &providers.ConfigError{Provider: ProviderName, Field: "location", Message: "location is required for Vertex"}
	}

	tokens := cfg.TokenSource
	if tokens == nil {
		if len(cfg.ServiceAccountJSON) == 0 {
			return nil, &providers.ConfigError{
				Provider: ProviderName,
				Field:    "service_account_json",
				Message:  "service account key is required for Vertex",
			}
		}
		creds, err := google.CredentialsFromJSONWithType(ctx, cfg.ServiceAccountJSON, google.ServiceAccount, CloudPlatformScope)
		if err != nil {
			return nil, &providers.ConfigError{
				Provider: ProviderName,
				Field:    "service_account_json",
				Message:  fmt.Sprintf("failed to parse service account key: %v", err),
			}
		}
		tokens = creds.TokenSource
	}

	if cfg.Name == "" {
		cfg.Name = ProviderName
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com", cfg.Location)
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
		project:      cfg.Project,
		location:     cfg.Location,
		model:        cfg.Model,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:       oauth2.ReuseTokenSource(nil, tokens),
	}

	slog.Info("Vertex provider initialized",
		"provider", cfg.Name,
		"project", cfg.Project,
		"location", cfg.Location,
		"model", cfg.Model,
	)

	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.GetName()
}

// ResolveModel always returns the pinned model.
func (p *Provider) ResolveModel(string) string {
	return p.model
}

// Endpoint returns the generateContent URL for the pinned model.
func (p *Provider) Endpoint() string {
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		p.baseURL, url.PathEscape(p.project), url.PathEscape(p.location), url.PathEscape(p.model))
}

// Generate sends one generateContent call with a bearer access token.
func (p *Provider) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	body, err := gemini.BuildRequest(req)
	if err != nil {
		return nil, err
	}

	token, err := p.tokens.Token()
	if err != nil {
		return nil, &providers.AuthError{
			Provider: p.GetName(),
			Message:  "token exchange failed",
			Cause:    err,
		}
	}

	headers := map[string]string{
		"Authorization": "Bearer " + token.AccessToken,
	}

	start := time.Now()
	var resp gemini.Response
	if err := p.DoJSONRequest(ctx, "POST", p.Endpoint(), body, &resp, headers); err != nil {
		return nil, p.classify(err)
	}

	slog.Debug("generate request succeeded",
		"provider", p.GetName(),
		"model", p.model,
		"latency", time.Since(start),
	)

	return &providers.GenerateResponse{
		Text:    resp.Text(),
		Model:   p.model,
		Latency: time.Since(start),
	}, nil
}

// classify turns a 400 about the model name into a ConfigError and unwraps
// JSON error bodies into their message.
func (p *Provider) classify(err error) error {
	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) {
		return err
	}
	if provErr.StatusCode == http.StatusBadRequest && modelFormatPattern.MatchString(provErr.Message) {
		return &providers.ConfigError{
			Provider: p.GetName(),
			Field:    "model",
			Message:  fmt.Sprintf("unexpected model name format; use a short model id like %q", DefaultModel),
		}
	}
	provErr.Message = gemini.ErrorMessage(provErr.Message)
	return err
}
