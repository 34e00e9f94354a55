package config

import "time"

// Config is the root configuration structure for Verdict.
// It contains all configuration sections for the HTTP server, the external
// analyzer, budget and mode handling, admission limits, caching, the file
// source, security, the evidence journal, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Analyzer contains configuration for the external text-generation
	// provider, including provider selection, credentials, retry policy,
	// and the per-call timeout.
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// Budget contains the monthly spend ceiling and token pricing used by
	// the usage ledger.
	Budget BudgetConfig `yaml:"budget"`

	// Modes contains operating-mode selection settings (override, thresholds,
	// default model).
	Modes ModesConfig `yaml:"modes"`

	// Admission contains process-wide concurrency settings.
	Admission AdmissionConfig `yaml:"admission"`

	// Cache contains result cache settings.
	Cache CacheConfig `yaml:"cache"`

	// Source contains document retrieval settings.
	Source SourceConfig `yaml:"source"`

	// Security contains request authentication settings.
	Security SecurityConfig `yaml:"security"`

	// Evidence contains configuration for the analysis journal including
	// backend selection and retention.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Reload controls hot reload of this configuration file.
	Reload ReloadConfig `yaml:"reload"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Analyses of long documents are paced, so this is generous.
	// Default: 10m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight analyses
	// during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes caps the JSON request body of the analyze endpoint.
	// Default: 65536
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled determines whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is the list of origins that are echoed back. Requests
	// from any other origin (or without an Origin header) receive "*".
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	// Default: ["POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is the list of allowed request headers.
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is how long (in seconds) the preflight result can be cached.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// AnalyzerConfig configures the external analyzer used for chunk and merge calls.
type AnalyzerConfig struct {
	// Provider selects the analyzer backend: "gemini" or "vertex".
	// Default: "gemini"
	Provider string `yaml:"provider"`

	// ForceDemo makes every request return the fixed demo analysis.
	// Default: false
	ForceDemo bool `yaml:"force_demo"`

	// Timeout is the hard deadline for one analyzer call.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// Temperature is the sampling temperature sent with each call.
	// Default: 0.2
	Temperature float64 `yaml:"temperature"`

	// MergeFloorTokens is the minimum output-token budget of the merge call.
	// Default: 1200
	MergeFloorTokens int `yaml:"merge_floor_tokens"`

	// RequestsPerSecond bounds the process-wide analyzer call rate.
	// Zero disables the guard.
	// Default: 2
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the token bucket burst for RequestsPerSecond.
	// Default: 2
	Burst int `yaml:"burst"`

	// Retry configures backoff for transient analyzer failures.
	Retry RetryConfig `yaml:"retry"`

	// Gemini contains settings for the API-key Gemini backend.
	Gemini GeminiConfig `yaml:"gemini"`

	// Vertex contains settings for the service-account Vertex backend.
	Vertex VertexConfig `yaml:"vertex"`
}

// RetryConfig configures the retry policy for transient analyzer failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Default: 4
	MaxAttempts int `yaml:"max_attempts"`

	// BaseDelay is the wait after the first failed attempt.
	// Default: 600ms
	BaseDelay time.Duration `yaml:"base_delay"`

	// Multiplier grows the delay after each failed attempt.
	// Default: 2
	Multiplier float64 `yaml:"multiplier"`

	// MaxDelay caps a single wait.
	// Default: 15s
	MaxDelay time.Duration `yaml:"max_delay"`

	// Jitter is the relative spread applied to each wait (0.3 = ±30%).
	// Default: 0.3
	Jitter float64 `yaml:"jitter"`
}

// GeminiConfig configures the Gemini generateContent backend.
type GeminiConfig struct {
	// APIKey authenticates requests. When empty and the provider is
	// "gemini", the service answers every request in demo mode.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the API endpoint.
	// Default: "https://generativelanguage.googleapis.com"
	BaseURL string `yaml:"base_url"`
}

// VertexConfig configures the Vertex AI generateContent backend.
type VertexConfig struct {
	// Project is the Google Cloud project ID.
	Project string `yaml:"project"`

	// Location is the Vertex AI region (e.g., "us-central1").
	Location string `yaml:"location"`

	// Model is the pinned Vertex model name. Mode policies do not change it.
	// Default: "gemini-1.5-flash-002"
	Model string `yaml:"model"`

	// ServiceAccountJSON is the inline service account key.
	ServiceAccountJSON string `yaml:"service_account_json"`

	// ServiceAccountFile is a path to the service account key. Used when
	// ServiceAccountJSON is empty.
	ServiceAccountFile string `yaml:"service_account_file"`

	// BaseURL overrides the regional endpoint (used in tests).
	BaseURL string `yaml:"base_url"`
}

// BudgetConfig contains the monthly budget and the token pricing.
type BudgetConfig struct {
	// MonthlyUSD is the hard monthly spend ceiling.
	// Default: 20
	MonthlyUSD float64 `yaml:"monthly_usd"`

	// InputPerMillion is the estimated USD price per million input tokens.
	// Default: 0.30
	InputPerMillion float64 `yaml:"input_per_million"`

	// OutputPerMillion is the estimated USD price per million output tokens.
	// Default: 2.50
	OutputPerMillion float64 `yaml:"output_per_million"`
}

// ModesConfig contains operating-mode selection settings.
type ModesConfig struct {
	// Override pins the mode ("normal", "light", "critical"). Empty means the
	// mode follows budget consumption.
	Override string `yaml:"override"`

	// LightThreshold is the budget percentage at which "light" starts.
	// Default: 50
	LightThreshold float64 `yaml:"light_threshold"`

	// CriticalThreshold is the budget percentage at which "critical" starts.
	// Default: 75
	CriticalThreshold float64 `yaml:"critical_threshold"`

	// DefaultModel is the model used by the "normal" policy.
	// Default: "gemini-1.5-flash"
	DefaultModel string `yaml:"default_model"`
}

// AdmissionConfig contains process-wide admission settings.
type AdmissionConfig struct {
	// GlobalMaxActive is the number of analyses that may run at once across
	// all users, independent of mode.
	// Default: 3
	GlobalMaxActive int `yaml:"global_max_active"`
}

// CacheConfig contains result cache settings.
type CacheConfig struct {
	// TTL is how long a chunk or merge result stays reusable.
	// Default: 24h
	TTL time.Duration `yaml:"ttl"`

	// SweepSchedule is a cron expression for removing expired entries.
	// Empty disables the sweep (expiry is still enforced on read).
	// Default: "@every 10m"
	SweepSchedule string `yaml:"sweep_schedule"`
}

// SourceConfig contains document retrieval settings.
type SourceConfig struct {
	// Timeout is the hard deadline for downloading a document.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// AllowedContentTypes is the content-type allow-list.
	// Default: ["application/pdf", "text/plain", "application/octet-stream"]
	AllowedContentTypes []string `yaml:"allowed_content_types"`

	// MinTextLength is the minimum normalized text length (in characters)
	// worth analyzing.
	// Default: 80
	MinTextLength int `yaml:"min_text_length"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// Authentication configures bearer token verification.
	Authentication AuthenticationConfig `yaml:"authentication"`

	// Secrets configures ${secret:name} resolution for credential fields.
	Secrets SecretsConfig `yaml:"secrets"`
}

// SecretsConfig configures where secret references are looked up. The
// environment is searched first, then Dir.
type SecretsConfig struct {
	// EnvPrefix is prepended to upper-cased secret names.
	// Default: "VERDICT_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret, as mounted by Kubernetes or Docker.
	// Empty disables file lookup.
	Dir string `yaml:"dir"`
}

// AuthenticationConfig configures HS256 bearer token verification.
type AuthenticationConfig struct {
	// Enabled requires a valid bearer token on the analyze endpoint.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// JWTSecret is the HS256 signing secret.
	JWTSecret string `yaml:"jwt_secret"`

	// UserHeader is an optional header that, when present, must match the
	// token subject.
	// Default: "X-User-Id"
	UserHeader string `yaml:"user_header"`

	// Leeway tolerates clock skew when checking exp and nbf.
	// Default: 30s
	Leeway time.Duration `yaml:"leeway"`
}

// EvidenceConfig contains configuration for the analysis journal.
type EvidenceConfig struct {
	// Enabled determines whether analyses are journaled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend is the storage backend ("memory" or "sqlite").
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains async recorder settings.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains pruning settings.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite storage configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/evidence.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver: "sqlite" (pure Go) or
	// "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains async recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the write channel.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single storage write and the enqueue wait.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains journal retention configuration.
type RetentionConfig struct {
	// Days is how long records are kept. 0 keeps them forever.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the number of records kept. 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks bearer tokens and API keys in log attributes.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint and records metrics.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "verdict"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled turns on span export.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported as service.name.
	// Default: "verdict"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces sampled (0.0-1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// ReloadConfig controls configuration hot reload.
type ReloadConfig struct {
	// Watch re-reads the configuration file when it changes and applies
	// the mode override and monthly budget to the running process.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is how long to wait after the last change event.
	// Default: 200ms
	Debounce time.Duration `yaml:"debounce"`
}
