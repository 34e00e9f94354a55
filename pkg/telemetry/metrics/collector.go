package metrics

import (
	"time"

	"verdict-hq/verdict/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ResultCache is the cache label used for the chunk result cache.
const ResultCache = "results"

// knownModes are reset to 0 whenever the active mode changes.
var knownModes = []string{"normal", "light", "critical"}

// Collector owns every Prometheus metric the engine records and exposes them
// through a single registry. It satisfies the observer interfaces of the
// cache, admission and orchestrator packages so those packages never import
// Prometheus directly.
//
// When metrics are disabled every method is a no-op.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requests  *RequestMetrics
	providers *ProviderMetrics
	usage     *UsageMetrics
	cache     *CacheMetrics
	admission *AdmissionMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "verdict",
//		Subsystem: "engine",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}
	if !cfg.Enabled {
		return c
	}

	c.requests = NewRequestMetrics(cfg, registry)
	c.providers = NewProviderMetrics(cfg, registry)
	c.usage = NewUsageMetrics(cfg, registry)
	c.cache = NewCacheMetrics(cfg, registry)
	c.admission = NewAdmissionMetrics(cfg, registry)

	return c
}

// Enabled reports whether metrics are being recorded.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRequest records a finished analyze request.
//
// Parameters:
//   - mode: operating mode the request ran under
//   - outcome: "ok" or the error kind (e.g. "budget_exhausted")
//   - duration: total request duration
func (c *Collector) RecordRequest(mode, outcome string, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.requests.RecordRequest(mode, outcome, duration)
}

// RecordDocument records the page and chunk counts of an analyzed document.
func (c *Collector) RecordDocument(pages, chunks int) {
	if !c.Enabled() {
		return
	}
	c.requests.RecordDocument(pages, chunks)
}

// RecordUsage records the estimated tokens and cost of one analysis.
func (c *Collector) RecordUsage(tokensIn, tokensOut int, costUSD float64) {
	if !c.Enabled() {
		return
	}
	c.usage.RecordUsage(tokensIn, tokensOut, costUSD)
}

// UpdateBudget sets the spend gauges from a ledger snapshot.
func (c *Collector) UpdateBudget(spentUSD, percent float64) {
	if !c.Enabled() {
		return
	}
	c.usage.UpdateBudget(spentUSD, percent)
}

// SetMode marks mode as the active operating mode.
func (c *Collector) SetMode(mode string) {
	if !c.Enabled() {
		return
	}
	c.usage.SetMode(mode, knownModes...)
}

// UpdateProviderHealth updates the health gauge of a provider.
// The gauge is 1 when healthy and 0 otherwise.
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.Enabled() {
		return
	}
	c.providers.UpdateHealth(provider, healthy)
}

// ProviderCall records one model call. status is "ok" on success.
func (c *Collector) ProviderCall(provider, model, status string, latency time.Duration) {
	if !c.Enabled() {
		return
	}
	c.providers.RecordCall(provider, model, status, latency.Seconds())
}

// ProviderRetry records a retried model call.
func (c *Collector) ProviderRetry(provider string) {
	if !c.Enabled() {
		return
	}
	c.providers.RecordRetry(provider)
}

// CacheHit records a result cache hit.
func (c *Collector) CacheHit() {
	if !c.Enabled() {
		return
	}
	c.cache.RecordHit(ResultCache)
}

// CacheMiss records a result cache miss.
func (c *Collector) CacheMiss() {
	if !c.Enabled() {
		return
	}
	c.cache.RecordMiss(ResultCache)
}

// CacheEvicted records entries removed by the sweeper.
func (c *Collector) CacheEvicted(n int) {
	if !c.Enabled() {
		return
	}
	c.cache.RecordEvictions(ResultCache, n)
}

// CacheEntries sets the current result cache size.
func (c *Collector) CacheEntries(n int) {
	if !c.Enabled() {
		return
	}
	c.cache.UpdateSize(ResultCache, n)
}

// AdmissionDenied records a request rejected by admission control.
func (c *Collector) AdmissionDenied(reason string) {
	if !c.Enabled() {
		return
	}
	c.admission.RecordDenied(reason)
}

// GlobalActive sets the number of held global analysis slots.
func (c *Collector) GlobalActive(n int64) {
	if !c.Enabled() {
		return
	}
	c.admission.SetActive(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
