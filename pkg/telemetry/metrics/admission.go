package metrics

import (
	"verdict-hq/verdict/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AdmissionMetrics tracks request admission.
//
// Metrics:
//   - verdict_engine_admission_denied_total: denials by reason
//   - verdict_engine_active_analyses: globally admitted analyses in flight
type AdmissionMetrics struct {
	denied *prometheus.CounterVec
	active prometheus.Gauge
}

// NewAdmissionMetrics creates and registers admission metrics with the provided registry.
func NewAdmissionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AdmissionMetrics {
	am := &AdmissionMetrics{
		denied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "admission_denied_total",
				Help:      "Total number of denied analyses by reason",
			},
			[]string{"reason"},
		),

		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "active_analyses",
				Help:      "Analyses currently holding a global slot",
			},
		),
	}

	registry.MustRegister(am.denied, am.active)

	return am
}

// RecordDenied records a denial.
func (am *AdmissionMetrics) RecordDenied(reason string) {
	am.denied.WithLabelValues(reason).Inc()
}

// SetActive sets the number of held global slots.
func (am *AdmissionMetrics) SetActive(n int64) {
	am.active.Set(float64(n))
}
