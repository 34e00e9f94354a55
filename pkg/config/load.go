package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML bytes into a Config and applies defaults.
// Booleans that default to true keep that value unless the document sets them.
func Parse(data []byte) (*Config, error) {
	cfg := seeded()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention VERDICT_SECTION_FIELD (e.g., VERDICT_SERVER_LISTEN_ADDRESS).
// A small set of short variables (MODE, BUDGET_MONTH_USD, GEMINI_API_KEY, ...)
// is also honored for deployments that predate the VERDICT_ prefix.
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from defaults.
//
// The loading sequence is:
// 1. Load YAML from file (or defaults)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// ModeOverrideFromEnv returns the operating-mode override from the
// environment, or "" when none is set. VERDICT_MODES_OVERRIDE wins over MODE.
func ModeOverrideFromEnv() string {
	if val := os.Getenv("VERDICT_MODES_OVERRIDE"); val != "" {
		return val
	}
	return os.Getenv("MODE")
}

func envString(dst *string, names ...string) {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			*dst = val
			return
		}
	}
}

func envDuration(dst *time.Duration, name string) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func envInt(dst *int, name string) {
	if val := os.Getenv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envFloat(dst *float64, names ...string) {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				*dst = f
				return
			}
		}
	}
}

func envBool(dst *bool, names ...string) {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
				return
			}
		}
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// When both a VERDICT_ variable and its short alias are set, the VERDICT_ one wins.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString(&cfg.Server.ListenAddress, "VERDICT_SERVER_LISTEN_ADDRESS")
	envDuration(&cfg.Server.ReadTimeout, "VERDICT_SERVER_READ_TIMEOUT")
	envDuration(&cfg.Server.WriteTimeout, "VERDICT_SERVER_WRITE_TIMEOUT")
	envDuration(&cfg.Server.IdleTimeout, "VERDICT_SERVER_IDLE_TIMEOUT")
	envDuration(&cfg.Server.ShutdownTimeout, "VERDICT_SERVER_SHUTDOWN_TIMEOUT")
	envInt(&cfg.Server.MaxHeaderBytes, "VERDICT_SERVER_MAX_HEADER_BYTES")

	// Analyzer overrides
	envString(&cfg.Analyzer.Provider, "VERDICT_ANALYZER_PROVIDER", "AI_PROVIDER")
	envBool(&cfg.Analyzer.ForceDemo, "VERDICT_ANALYZER_FORCE_DEMO", "FORCE_DEMO")
	envDuration(&cfg.Analyzer.Timeout, "VERDICT_ANALYZER_TIMEOUT")
	envFloat(&cfg.Analyzer.RequestsPerSecond, "VERDICT_ANALYZER_REQUESTS_PER_SECOND")
	envInt(&cfg.Analyzer.Burst, "VERDICT_ANALYZER_BURST")
	envInt(&cfg.Analyzer.Retry.MaxAttempts, "VERDICT_ANALYZER_RETRY_MAX_ATTEMPTS")
	envString(&cfg.Analyzer.Gemini.APIKey, "VERDICT_ANALYZER_GEMINI_API_KEY", "GEMINI_API_KEY")
	envString(&cfg.Analyzer.Gemini.BaseURL, "VERDICT_ANALYZER_GEMINI_BASE_URL")
	envString(&cfg.Analyzer.Vertex.Project, "VERDICT_ANALYZER_VERTEX_PROJECT", "VERTEX_PROJECT")
	envString(&cfg.Analyzer.Vertex.Location, "VERDICT_ANALYZER_VERTEX_LOCATION", "VERTEX_LOCATION")
	envString(&cfg.Analyzer.Vertex.Model, "VERDICT_ANALYZER_VERTEX_MODEL", "VERTEX_MODEL")
	envString(&cfg.Analyzer.Vertex.ServiceAccountJSON, "VERDICT_ANALYZER_VERTEX_SERVICE_ACCOUNT_JSON", "VERTEX_SA_KEY_JSON")
	envString(&cfg.Analyzer.Vertex.ServiceAccountFile, "VERDICT_ANALYZER_VERTEX_SERVICE_ACCOUNT_FILE")

	// Budget and mode overrides
	envFloat(&cfg.Budget.MonthlyUSD, "VERDICT_BUDGET_MONTHLY_USD", "BUDGET_MONTH_USD")
	envFloat(&cfg.Budget.InputPerMillion, "VERDICT_BUDGET_INPUT_PER_MILLION")
	envFloat(&cfg.Budget.OutputPerMillion, "VERDICT_BUDGET_OUTPUT_PER_MILLION")
	if val := ModeOverrideFromEnv(); val != "" {
		cfg.Modes.Override = val
	}
	envString(&cfg.Modes.DefaultModel, "VERDICT_MODES_DEFAULT_MODEL", "GEMINI_MODEL")

	// Admission and cache overrides
	envInt(&cfg.Admission.GlobalMaxActive, "VERDICT_ADMISSION_GLOBAL_MAX_ACTIVE")
	envDuration(&cfg.Cache.TTL, "VERDICT_CACHE_TTL")
	envString(&cfg.Cache.SweepSchedule, "VERDICT_CACHE_SWEEP_SCHEDULE")

	// Source overrides
	envDuration(&cfg.Source.Timeout, "VERDICT_SOURCE_TIMEOUT")

	// Security overrides
	envBool(&cfg.Security.Authentication.Enabled, "VERDICT_SECURITY_AUTHENTICATION_ENABLED")
	envString(&cfg.Security.Authentication.JWTSecret, "VERDICT_SECURITY_AUTHENTICATION_JWT_SECRET", "JWT_SECRET")
	envString(&cfg.Security.Secrets.Dir, "VERDICT_SECURITY_SECRETS_DIR")

	// Evidence overrides
	envBool(&cfg.Evidence.Enabled, "VERDICT_EVIDENCE_ENABLED")
	envString(&cfg.Evidence.Backend, "VERDICT_EVIDENCE_BACKEND")
	envString(&cfg.Evidence.SQLite.Path, "VERDICT_EVIDENCE_SQLITE_PATH")
	envString(&cfg.Evidence.SQLite.Driver, "VERDICT_EVIDENCE_SQLITE_DRIVER")
	envInt(&cfg.Evidence.Retention.Days, "VERDICT_EVIDENCE_RETENTION_DAYS")

	// Telemetry overrides
	envString(&cfg.Telemetry.Logging.Level, "VERDICT_TELEMETRY_LOGGING_LEVEL")
	envString(&cfg.Telemetry.Logging.Format, "VERDICT_TELEMETRY_LOGGING_FORMAT")
	envBool(&cfg.Telemetry.Metrics.Enabled, "VERDICT_TELEMETRY_METRICS_ENABLED")
	envString(&cfg.Telemetry.Metrics.Path, "VERDICT_TELEMETRY_METRICS_PATH")
	envBool(&cfg.Telemetry.Tracing.Enabled, "VERDICT_TELEMETRY_TRACING_ENABLED")
	envString(&cfg.Telemetry.Tracing.Endpoint, "VERDICT_TELEMETRY_TRACING_ENDPOINT")
	envFloat(&cfg.Telemetry.Tracing.SampleRatio, "VERDICT_TELEMETRY_TRACING_SAMPLE_RATIO")

	// Reload overrides
	envBool(&cfg.Reload.Watch, "VERDICT_RELOAD_WATCH")
}
