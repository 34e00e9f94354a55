package metrics

import (
	"verdict-hq/verdict/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UsageMetrics tracks spend against the monthly budget and the active mode.
//
// Metrics:
//   - verdict_engine_tokens_total: estimated tokens by direction (input, output)
//   - verdict_engine_cost_usd_total: estimated spend in USD
//   - verdict_engine_cost_per_request_usd: estimated spend per analysis
//   - verdict_engine_budget_spent_usd: spend in the current month
//   - verdict_engine_budget_percent: spend as a percentage of the budget
//   - verdict_engine_mode: 1 for the active mode, 0 otherwise
type UsageMetrics struct {
	tokensTotal    *prometheus.CounterVec
	costTotal      prometheus.Counter
	costPerRequest prometheus.Histogram
	budgetSpent    prometheus.Gauge
	budgetPercent  prometheus.Gauge
	mode           *prometheus.GaugeVec
}

// NewUsageMetrics creates and registers usage metrics with the provided registry.
func NewUsageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UsageMetrics {
	um := &UsageMetrics{
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tokens_total",
				Help:      "Estimated tokens recorded against the budget",
			},
			[]string{"direction"},
		),

		costTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cost_usd_total",
				Help:      "Estimated spend in USD",
			},
		),

		costPerRequest: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cost_per_request_usd",
				Help:      "Estimated spend per analysis in USD",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),

		budgetSpent: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "budget_spent_usd",
				Help:      "Estimated spend in the current budget period",
			},
		),

		budgetPercent: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "budget_percent",
				Help:      "Spend as a percentage of the monthly budget",
			},
		),

		mode: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "mode",
				Help:      "Active operating mode (1 for the active mode)",
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(
		um.tokensTotal,
		um.costTotal,
		um.costPerRequest,
		um.budgetSpent,
		um.budgetPercent,
		um.mode,
	)

	return um
}

// RecordUsage adds one analysis' estimated tokens and cost.
func (um *UsageMetrics) RecordUsage(tokensIn, tokensOut int, costUSD float64) {
	um.tokensTotal.WithLabelValues("input").Add(float64(tokensIn))
	um.tokensTotal.WithLabelValues("output").Add(float64(tokensOut))
	if costUSD > 0 {
		um.costTotal.Add(costUSD)
		um.costPerRequest.Observe(costUSD)
	}
}

// UpdateBudget sets the spend gauges.
func (um *UsageMetrics) UpdateBudget(spentUSD, percent float64) {
	um.budgetSpent.Set(spentUSD)
	um.budgetPercent.Set(percent)
}

// SetMode marks active as the current mode.
func (um *UsageMetrics) SetMode(active string, all ...string) {
	for _, m := range all {
		um.mode.WithLabelValues(m).Set(0)
	}
	um.mode.WithLabelValues(active).Set(1)
}
