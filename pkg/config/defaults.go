package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 10 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxBodyBytes    = int64(64 * 1024)

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Analyzer defaults
	DefaultAnalyzerProvider    = "gemini"
	DefaultAnalyzerTimeout     = 60 * time.Second
	DefaultAnalyzerTemperature = 0.2
	DefaultMergeFloorTokens    = 1200
	DefaultRequestsPerSecond   = 2.0
	DefaultBurst               = 2
	DefaultGeminiBaseURL       = "https://generativelanguage.googleapis.com"
	DefaultVertexModel         = "gemini-1.5-flash-002"

	// Retry defaults
	DefaultRetryMaxAttempts = 4
	DefaultRetryBaseDelay   = 600 * time.Millisecond
	DefaultRetryMultiplier  = 2.0
	DefaultRetryMaxDelay    = 15 * time.Second
	DefaultRetryJitter      = 0.3

	// Budget defaults
	DefaultMonthlyBudgetUSD = 20.0
	DefaultInputPerMillion  = 0.30
	DefaultOutputPerMillion = 2.50

	// Mode defaults
	DefaultLightThreshold    = 50.0
	DefaultCriticalThreshold = 75.0
	DefaultModel             = "gemini-1.5-flash"

	// Admission defaults
	DefaultGlobalMaxActive = 3

	// Cache defaults
	DefaultCacheTTL           = 24 * time.Hour
	DefaultCacheSweepSchedule = "@every 10m"

	// Source defaults
	DefaultSourceTimeout = 30 * time.Second
	DefaultMinTextLength = 80

	// Security defaults
	DefaultAuthEnabled    = true
	DefaultAuthUserHeader = "X-User-Id"
	DefaultAuthLeeway     = 30 * time.Second

	DefaultSecretsEnvPrefix = "VERDICT_SECRET_"

	// Evidence defaults
	DefaultEvidenceEnabled              = true
	DefaultEvidenceBackend              = "memory"
	DefaultEvidenceSQLitePath           = "data/evidence.db"
	DefaultEvidenceSQLiteDriver         = "sqlite"
	DefaultEvidenceSQLiteMaxOpenConns   = 10
	DefaultEvidenceSQLiteMaxIdleConns   = 5
	DefaultEvidenceSQLiteWALMode        = true
	DefaultEvidenceSQLiteBusyTimeout    = 5 * time.Second
	DefaultEvidenceRecorderAsyncBuffer  = 1000
	DefaultEvidenceRecorderWriteTimeout = 5 * time.Second
	DefaultEvidenceRetentionDays        = 90
	DefaultEvidenceRetentionSchedule    = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultMetricsEnabled      = true
	DefaultMetricsPath         = "/metrics"
	DefaultMetricsNamespace    = "verdict"
	DefaultMetricsSubsystem    = "engine"
	DefaultTracingEndpoint     = "localhost:4317"
	DefaultTracingServiceName  = "verdict"
	DefaultTracingSampleRatio  = 1.0
	DefaultTracingTimeout      = 10 * time.Second
	DefaultReloadDebounce      = 200 * time.Millisecond
)

// DefaultAllowedContentTypes is the default document content-type allow-list.
var DefaultAllowedContentTypes = []string{"application/pdf", "text/plain", "application/octet-stream"}

// DefaultCORSAllowedHeaders are the request headers browsers and mobile
// clients send to the analyze endpoint.
var DefaultCORSAllowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type", "x-user-id"}

// DefaultCORSAllowedMethods are the methods the analyze endpoint accepts.
var DefaultCORSAllowedMethods = []string{"POST", "OPTIONS"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := seeded()
	ApplyDefaults(cfg)
	return cfg
}

// seeded returns a Config whose true-by-default booleans are set. These
// cannot be told apart from an explicit false after YAML decoding, so they
// are seeded before the document is parsed.
func seeded() *Config {
	cfg := &Config{}
	cfg.Server.CORS.Enabled = DefaultCORSEnabled
	cfg.Security.Authentication.Enabled = DefaultAuthEnabled
	cfg.Evidence.Enabled = DefaultEvidenceEnabled
	cfg.Evidence.SQLite.WALMode = DefaultEvidenceSQLiteWALMode
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Logging.RedactSecrets = true
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyAnalyzerDefaults(&cfg.Analyzer)

	if cfg.Budget.MonthlyUSD == 0 {
		cfg.Budget.MonthlyUSD = DefaultMonthlyBudgetUSD
	}
	if cfg.Budget.InputPerMillion == 0 {
		cfg.Budget.InputPerMillion = DefaultInputPerMillion
	}
	if cfg.Budget.OutputPerMillion == 0 {
		cfg.Budget.OutputPerMillion = DefaultOutputPerMillion
	}

	if cfg.Modes.LightThreshold == 0 {
		cfg.Modes.LightThreshold = DefaultLightThreshold
	}
	if cfg.Modes.CriticalThreshold == 0 {
		cfg.Modes.CriticalThreshold = DefaultCriticalThreshold
	}
	if cfg.Modes.DefaultModel == "" {
		cfg.Modes.DefaultModel = DefaultModel
	}

	if cfg.Admission.GlobalMaxActive == 0 {
		cfg.Admission.GlobalMaxActive = DefaultGlobalMaxActive
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.SweepSchedule == "" {
		cfg.Cache.SweepSchedule = DefaultCacheSweepSchedule
	}

	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = DefaultSourceTimeout
	}
	if len(cfg.Source.AllowedContentTypes) == 0 {
		cfg.Source.AllowedContentTypes = append([]string(nil), DefaultAllowedContentTypes...)
	}
	if cfg.Source.MinTextLength == 0 {
		cfg.Source.MinTextLength = DefaultMinTextLength
	}

	if cfg.Security.Authentication.UserHeader == "" {
		cfg.Security.Authentication.UserHeader = DefaultAuthUserHeader
	}
	if cfg.Security.Authentication.Leeway == 0 {
		cfg.Security.Authentication.Leeway = DefaultAuthLeeway
	}
	if cfg.Security.Secrets.EnvPrefix == "" {
		cfg.Security.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}

	applyEvidenceDefaults(&cfg.Evidence)
	applyTelemetryDefaults(&cfg.Telemetry)

	if cfg.Reload.Debounce == 0 {
		cfg.Reload.Debounce = DefaultReloadDebounce
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.MaxHeaderBytes == 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = append([]string(nil), DefaultCORSAllowedMethods...)
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = append([]string(nil), DefaultCORSAllowedHeaders...)
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = DefaultCORSMaxAge
	}
}

func applyAnalyzerDefaults(cfg *AnalyzerConfig) {
	if cfg.Provider == "" {
		cfg.Provider = DefaultAnalyzerProvider
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultAnalyzerTimeout
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultAnalyzerTemperature
	}
	if cfg.MergeFloorTokens == 0 {
		cfg.MergeFloorTokens = DefaultMergeFloorTokens
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst == 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = DefaultRetryMaxAttempts
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = DefaultRetryBaseDelay
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = DefaultRetryMultiplier
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = DefaultRetryMaxDelay
	}
	if cfg.Retry.Jitter == 0 {
		cfg.Retry.Jitter = DefaultRetryJitter
	}
	if cfg.Gemini.BaseURL == "" {
		cfg.Gemini.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.Vertex.Model == "" {
		cfg.Vertex.Model = DefaultVertexModel
	}
}

func applyEvidenceDefaults(cfg *EvidenceConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultEvidenceBackend
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultEvidenceSQLitePath
	}
	if cfg.SQLite.Driver == "" {
		cfg.SQLite.Driver = DefaultEvidenceSQLiteDriver
	}
	if cfg.SQLite.MaxOpenConns == 0 {
		cfg.SQLite.MaxOpenConns = DefaultEvidenceSQLiteMaxOpenConns
	}
	if cfg.SQLite.MaxIdleConns == 0 {
		cfg.SQLite.MaxIdleConns = DefaultEvidenceSQLiteMaxIdleConns
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultEvidenceSQLiteBusyTimeout
	}
	if cfg.Recorder.AsyncBuffer == 0 {
		cfg.Recorder.AsyncBuffer = DefaultEvidenceRecorderAsyncBuffer
	}
	if cfg.Recorder.WriteTimeout == 0 {
		cfg.Recorder.WriteTimeout = DefaultEvidenceRecorderWriteTimeout
	}
	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultEvidenceRetentionDays
	}
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = DefaultEvidenceRetentionSchedule
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
}
