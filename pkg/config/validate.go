package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidModes lists the accepted values of modes.override.
var ValidModes = map[string]bool{"normal": true, "light": true, "critical": true}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateAnalyzer(&cfg.Analyzer)...)
	errs = append(errs, validateBudget(&cfg.Budget, &cfg.Modes)...)
	errs = append(errs, validateRuntime(cfg)...)
	errs = append(errs, validateEvidence(&cfg.Evidence)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be non-negative",
		})
	}

	return errs
}

// validateAnalyzer validates analyzer configuration.
func validateAnalyzer(cfg *AnalyzerConfig) []FieldError {
	var errs []FieldError

	switch cfg.Provider {
	case "gemini":
		if cfg.Gemini.BaseURL != "" {
			if u, err := url.Parse(cfg.Gemini.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{
					Field:   "analyzer.gemini.base_url",
					Message: fmt.Sprintf("invalid URL %q", cfg.Gemini.BaseURL),
				})
			}
		}
	case "vertex":
		// Demo mode never reaches the provider, so credentials are optional there.
		if !cfg.ForceDemo {
			if cfg.Vertex.Project == "" {
				errs = append(errs, FieldError{
					Field:   "analyzer.vertex.project",
					Message: "project is required when provider is 'vertex'",
				})
			}
			if cfg.Vertex.Location == "" {
				errs = append(errs, FieldError{
					Field:   "analyzer.vertex.location",
					Message: "location is required when provider is 'vertex'",
				})
			}
			if cfg.Vertex.ServiceAccountJSON == "" && cfg.Vertex.ServiceAccountFile == "" {
				errs = append(errs, FieldError{
					Field:   "analyzer.vertex.service_account_json",
					Message: "service account JSON or file is required when provider is 'vertex'",
				})
			}
		}
	default:
		errs = append(errs, FieldError{
			Field:   "analyzer.provider",
			Message: fmt.Sprintf("invalid provider %q: must be 'gemini' or 'vertex'", cfg.Provider),
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "analyzer.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, FieldError{
			Field:   "analyzer.temperature",
			Message: "temperature must be between 0.0 and 2.0",
		})
	}
	if cfg.RequestsPerSecond < 0 {
		errs = append(errs, FieldError{
			Field:   "analyzer.requests_per_second",
			Message: "requests per second must be non-negative",
		})
	}
	if cfg.Burst < 0 {
		errs = append(errs, FieldError{
			Field:   "analyzer.burst",
			Message: "burst must be non-negative",
		})
	}

	if cfg.Retry.MaxAttempts < 1 {
		errs = append(errs, FieldError{
			Field:   "analyzer.retry.max_attempts",
			Message: "max attempts must be at least 1",
		})
	}
	if cfg.Retry.MaxAttempts > 10 {
		errs = append(errs, FieldError{
			Field:   "analyzer.retry.max_attempts",
			Message: "max attempts exceeds reasonable limit (10)",
		})
	}
	if cfg.Retry.Multiplier < 1 {
		errs = append(errs, FieldError{
			Field:   "analyzer.retry.multiplier",
			Message: "multiplier must be at least 1.0",
		})
	}
	if cfg.Retry.Jitter < 0 || cfg.Retry.Jitter >= 1 {
		errs = append(errs, FieldError{
			Field:   "analyzer.retry.jitter",
			Message: "jitter must be between 0.0 and 1.0 (exclusive)",
		})
	}
	if cfg.Retry.MaxDelay < cfg.Retry.BaseDelay {
		errs = append(errs, FieldError{
			Field:   "analyzer.retry.max_delay",
			Message: "max delay must not be less than base delay",
		})
	}

	return errs
}

// validateBudget validates budget and mode configuration.
func validateBudget(budget *BudgetConfig, modes *ModesConfig) []FieldError {
	var errs []FieldError

	if budget.MonthlyUSD < 0 {
		errs = append(errs, FieldError{
			Field:   "budget.monthly_usd",
			Message: "monthly budget must be non-negative",
		})
	}
	if budget.InputPerMillion < 0 {
		errs = append(errs, FieldError{
			Field:   "budget.input_per_million",
			Message: "input price must be non-negative",
		})
	}
	if budget.OutputPerMillion < 0 {
		errs = append(errs, FieldError{
			Field:   "budget.output_per_million",
			Message: "output price must be non-negative",
		})
	}

	if modes.Override != "" && !ValidModes[modes.Override] {
		errs = append(errs, FieldError{
			Field:   "modes.override",
			Message: fmt.Sprintf("invalid mode %q: must be 'normal', 'light', or 'critical'", modes.Override),
		})
	}
	if modes.LightThreshold <= 0 || modes.LightThreshold > 100 {
		errs = append(errs, FieldError{
			Field:   "modes.light_threshold",
			Message: "light threshold must be between 0 and 100",
		})
	}
	if modes.CriticalThreshold < modes.LightThreshold || modes.CriticalThreshold > 100 {
		errs = append(errs, FieldError{
			Field:   "modes.critical_threshold",
			Message: "critical threshold must be between the light threshold and 100",
		})
	}
	if modes.DefaultModel == "" {
		errs = append(errs, FieldError{
			Field:   "modes.default_model",
			Message: "default model is required",
		})
	}

	return errs
}

// validateRuntime validates admission, cache, source, and security settings.
func validateRuntime(cfg *Config) []FieldError {
	var errs []FieldError

	if cfg.Admission.GlobalMaxActive < 1 {
		errs = append(errs, FieldError{
			Field:   "admission.global_max_active",
			Message: "global max active must be at least 1",
		})
	}
	if cfg.Cache.TTL < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.ttl",
			Message: "cache TTL must be positive",
		})
	}
	if cfg.Source.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "source.timeout",
			Message: "source timeout must be positive",
		})
	}
	if cfg.Source.MinTextLength < 0 {
		errs = append(errs, FieldError{
			Field:   "source.min_text_length",
			Message: "minimum text length must be non-negative",
		})
	}

	// The JWT secret is checked when the server builds its verifier, so
	// offline commands work without one.
	auth := cfg.Security.Authentication
	if auth.Leeway < 0 {
		errs = append(errs, FieldError{
			Field:   "security.authentication.leeway",
			Message: "leeway must be non-negative",
		})
	}

	if cfg.Reload.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "reload.debounce",
			Message: "debounce must be non-negative",
		})
	}

	return errs
}

// validateEvidence validates evidence configuration.
func validateEvidence(cfg *EvidenceConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "evidence.sqlite.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.Driver != "sqlite" && cfg.SQLite.Driver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "evidence.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.SQLite.Driver),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "evidence.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}

	if cfg.Recorder.AsyncBuffer < 0 {
		errs = append(errs, FieldError{
			Field:   "evidence.recorder.async_buffer",
			Message: "async buffer must be non-negative",
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "evidence.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.Days > 3650 { // 10 years is excessive
		errs = append(errs, FieldError{
			Field:   "evidence.retention.days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "evidence.retention.max_records",
			Message: "max records must be non-negative",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
