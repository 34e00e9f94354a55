package providerfactory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"verdict-hq/verdict/pkg/config"
	"verdict-hq/verdict/pkg/providers"
	"verdict-hq/verdict/pkg/providers/gemini"
	"verdict-hq/verdict/pkg/providers/vertex"
)

// ErrDemoOnly is returned when the configuration can only serve the fixed
// demo analysis: demo is forced, or Gemini is selected without an API key.
var ErrDemoOnly = errors.New("analyzer not configured: demo mode only")

// NewAnalyzer creates the configured analyzer wrapped in the process-wide
// rate guard.
//
// Supported providers:
//   - "gemini": Gemini API with an API key
//   - "vertex": Vertex AI with a service-account key
//
// Example:
//
//	analyzer, err := providerfactory.NewAnalyzer(ctx, cfg.Analyzer, cfg.Modes.DefaultModel)
//	if errors.Is(err, providerfactory.ErrDemoOnly) {
//	    // serve demo results only
//	} else if err != nil {
//	    return err
//	}
func NewAnalyzer(ctx context.Context, cfg config.AnalyzerConfig, defaultModel string) (providers.Analyzer, error) {
	if cfg.ForceDemo {
		return nil, ErrDemoOnly
	}

	slog.Debug("creating analyzer", "provider", cfg.Provider)

	base := providers.ProviderConfig{
		Name:    cfg.Provider,
		Timeout: cfg.Timeout,
	}

	var analyzer providers.Analyzer
	switch cfg.Provider {
	case gemini.ProviderName, "":
		if cfg.Gemini.APIKey == "" {
			return nil, ErrDemoOnly
		}
		base.Name = gemini.ProviderName
		base.BaseURL = cfg.Gemini.BaseURL
		p, err := gemini.NewProvider(gemini.Config{
			ProviderConfig: base,
			APIKey:         cfg.Gemini.APIKey,
			DefaultModel:   defaultModel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %q: %w", base.Name, err)
		}
		analyzer = p

	case vertex.ProviderName:
		key, err := serviceAccountKey(cfg.Vertex)
		if err != nil {
			return nil, err
		}
		base.BaseURL = cfg.Vertex.BaseURL
		p, err := vertex.NewProvider(ctx, vertex.Config{
			ProviderConfig:     base,
			Project:            cfg.Vertex.Project,
			Location:           cfg.Vertex.Location,
			Model:              cfg.Vertex.Model,
			ServiceAccountJSON: key,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %q: %w", base.Name, err)
		}
		analyzer = p

	default:
		return nil, &providers.ConfigError{
			Provider: cfg.Provider,
			Field:    "provider",
			Message:  fmt.Sprintf("unsupported provider: %q (supported: gemini, vertex)", cfg.Provider),
		}
	}

	slog.Info("analyzer created successfully",
		"provider", analyzer.Name(),
		"requests_per_second", cfg.RequestsPerSecond,
	)

	return providers.NewRateLimited(analyzer, cfg.RequestsPerSecond, cfg.Burst), nil
}

// serviceAccountKey returns the inline key, or reads it from the configured file.
func serviceAccountKey(cfg config.VertexConfig) ([]byte, error) {
	if cfg.ServiceAccountJSON != "" {
		return []byte(cfg.ServiceAccountJSON), nil
	}
	if cfg.ServiceAccountFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}
	return data, nil
}
