package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// secretRefRegex matches ${secret:name} patterns in configuration.
var secretRefRegex = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Manager tries each provider in order until one returns a value.
type Manager struct {
	providers []SecretProvider
	logger    *slog.Logger
}

// NewManager creates a secret manager. Providers are tried in order.
func NewManager(providers ...SecretProvider) *Manager {
	return &Manager{
		providers: providers,
		logger:    slog.Default().With("component", "secrets"),
	}
}

// GetSecret retrieves a secret from the first provider that has it.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	var lastErr error
	for _, provider := range m.providers {
		value, err := provider.GetSecret(ctx, name)
		if err == nil {
			m.logger.Debug("secret resolved", "provider", provider.Provider(), "name", redactSecretName(name))
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("provider %s: %w", provider.Provider(), err)
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrNotFound
	}
	return "", fmt.Errorf("failed to get secret %q: %w", name, lastErr)
}

// ResolveReferences replaces ${secret:name} patterns with secret values.
// Every unresolved reference is reported; the input is returned unchanged
// on error.
func (m *Manager) ResolveReferences(ctx context.Context, input string) (string, error) {
	var errs []string

	output := secretRefRegex.ReplaceAllStringFunc(input, func(match string) string {
		name := secretRefRegex.FindStringSubmatch(match)[1]
		value, err := m.GetSecret(ctx, strings.TrimSpace(name))
		if err != nil {
			errs = append(errs, err.Error())
			return match
		}
		return value
	})

	if len(errs) > 0 {
		return input, fmt.Errorf("failed to resolve secret references: %s", strings.Join(errs, "; "))
	}
	return output, nil
}

// ResolveFields resolves references in place. Fields without a reference
// are left untouched.
//
//	err := m.ResolveFields(ctx,
//	    &cfg.Security.Authentication.JWTSecret,
//	    &cfg.Analyzer.Gemini.APIKey,
//	)
func (m *Manager) ResolveFields(ctx context.Context, fields ...*string) error {
	for _, field := range fields {
		if field == nil || !secretRefRegex.MatchString(*field) {
			continue
		}
		resolved, err := m.ResolveReferences(ctx, *field)
		if err != nil {
			return err
		}
		*field = resolved
	}
	return nil
}

// redactSecretName shows only the ends of a secret name in logs.
func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
