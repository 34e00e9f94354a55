package metrics

import (
	"time"

	"verdict-hq/verdict/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// requestDurationBuckets span single-chunk text files to multi-chunk PDFs
// with paced calls (100ms - 5m).
var requestDurationBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// RequestMetrics tracks analyze requests.
//
// Metrics:
//   - verdict_engine_requests_total: requests by mode and outcome kind
//   - verdict_engine_request_duration_seconds: request duration histogram
//   - verdict_engine_document_pages / verdict_engine_document_chunks: document shape
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	pages           prometheus.Histogram
	chunks          prometheus.Histogram
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of analyze requests by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of analyze requests in seconds",
				Buckets:   requestDurationBuckets,
			},
			[]string{"mode"},
		),

		pages: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_pages",
				Help:      "Pages per analyzed document",
				Buckets:   []float64{1, 2, 5, 10, 20, 40, 80, 160},
			},
		),

		chunks: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_chunks",
				Help:      "Chunks per analyzed document",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.pages,
		rm.chunks,
	)

	return rm
}

// RecordRequest records one finished request. outcome is "ok", "demo" or the
// engine error kind.
func (rm *RequestMetrics) RecordRequest(mode, outcome string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(mode, outcome).Inc()
	rm.requestDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordDocument records the page and chunk counts of an analyzed document.
func (rm *RequestMetrics) RecordDocument(pages, chunks int) {
	rm.pages.Observe(float64(pages))
	rm.chunks.Observe(float64(chunks))
}
