package metrics

import (
	"verdict-hq/verdict/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// providerLatencyBuckets cover one generateContent call (250ms - 60s).
var providerLatencyBuckets = []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60}

// ProviderMetrics tracks calls to the external analyzer.
//
// Metrics:
//   - verdict_engine_provider_health: provider health status (1=healthy, 0=unhealthy)
//   - verdict_engine_provider_latency_seconds: per-attempt latency
//   - verdict_engine_provider_calls_total: attempts by status
//   - verdict_engine_provider_errors_total: failed attempts by status
//   - verdict_engine_provider_retries_total: retried attempts
type ProviderMetrics struct {
	health  *prometheus.GaugeVec
	latency *prometheus.HistogramVec
	calls   *prometheus.CounterVec
	errors  *prometheus.CounterVec
	retries *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_health",
				Help:      "Provider health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_latency_seconds",
				Help:      "Provider call latency in seconds",
				Buckets:   providerLatencyBuckets,
			},
			[]string{"provider", "model"},
		),

		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_calls_total",
				Help:      "Total number of provider call attempts by status",
			},
			[]string{"provider", "model", "status"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_errors_total",
				Help:      "Total number of failed provider call attempts by status",
			},
			[]string{"provider", "status"},
		),

		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_retries_total",
				Help:      "Total number of retried provider calls",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		pm.health,
		pm.latency,
		pm.calls,
		pm.errors,
		pm.retries,
	)

	return pm
}

// UpdateHealth sets the health gauge for provider.
func (pm *ProviderMetrics) UpdateHealth(provider string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	pm.health.WithLabelValues(provider).Set(value)
}

// RecordCall records one attempt. Any status other than "ok" also counts as
// an error.
func (pm *ProviderMetrics) RecordCall(provider, model, status string, latencySeconds float64) {
	pm.calls.WithLabelValues(provider, model, status).Inc()
	pm.latency.WithLabelValues(provider, model).Observe(latencySeconds)
	if status != "ok" {
		pm.errors.WithLabelValues(provider, status).Inc()
	}
}

// RecordRetry records that a call is about to be retried.
func (pm *ProviderMetrics) RecordRetry(provider string) {
	pm.retries.WithLabelValues(provider).Inc()
}
