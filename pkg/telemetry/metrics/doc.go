// Package metrics records Prometheus metrics for the analysis engine.
//
// # Overview
//
// A single Collector owns one registry and five metric groups:
//
//   - Request: analyze requests by mode and outcome, duration, pages, chunks
//   - Provider: model call latency, calls by status, errors, retries, health
//   - Usage: estimated tokens and spend, budget gauges, active mode
//   - Cache: result cache hits, misses, entries and evictions
//   - Admission: denials by reason and held global slots
//
// The Collector implements the small observer interfaces declared by the
// cache, admission and orchestrator packages, so it is passed to them
// directly at wiring time.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	results := cache.New(ttl, cache.WithObserver(collector))
//
//	collector.RecordRequest("normal", "ok", 4200*time.Millisecond)
//	collector.RecordUsage(12000, 900, 0.0021)
//
//	mux.Handle("/metrics", collector.Handler())
//
// # Naming
//
// Metric names are prefixed with the configured namespace and subsystem,
// "verdict_engine_" by default:
//
//	# HELP verdict_engine_requests_total Total number of analyze requests by mode and outcome
//	# TYPE verdict_engine_requests_total counter
//	verdict_engine_requests_total{mode="normal",outcome="ok"} 42
package metrics
