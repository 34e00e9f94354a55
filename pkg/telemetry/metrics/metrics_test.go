package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"verdict-hq/verdict/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	cfg := &config.MetricsConfig{Enabled: true, Namespace: "verdict", Subsystem: "engine"}
	return NewCollector(cfg, prometheus.NewRegistry())
}

// ============================================================================
// Collector Tests
// ============================================================================

func TestNewCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	c := NewCollector(cfg, nil)

	if c.Registry() == nil {
		t.Fatal("Expected a registry to be created")
	}
	if cfg.Namespace != "verdict" || cfg.Subsystem != "engine" {
		t.Errorf("Expected default namespace/subsystem, got %q/%q", cfg.Namespace, cfg.Subsystem)
	}
}

func TestCollector_Disabled(t *testing.T) {
	c := NewCollector(&config.MetricsConfig{Enabled: false}, prometheus.NewRegistry())

	// None of these may panic on a disabled collector.
	c.RecordRequest("normal", "ok", time.Second)
	c.RecordDocument(3, 1)
	c.RecordUsage(100, 10, 0.01)
	c.UpdateBudget(1, 10)
	c.SetMode("light")
	c.ProviderCall("gemini", "m", "ok", time.Second)
	c.ProviderRetry("gemini")
	c.CacheHit()
	c.CacheMiss()
	c.CacheEvicted(2)
	c.CacheEntries(5)
	c.AdmissionDenied("daily_cap")
	c.GlobalActive(1)
	c.UpdateProviderHealth("gemini", true)

	n, err := testutil.GatherAndCount(c.Registry())
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected no metrics registered, got %d", n)
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	c := newTestCollector(t)

	c.RecordRequest("normal", "ok", 2*time.Second)
	c.RecordRequest("normal", "ok", 3*time.Second)
	c.RecordRequest("critical", "budget_exhausted", 10*time.Millisecond)

	if got := testutil.ToFloat64(c.requests.requestsTotal.WithLabelValues("normal", "ok")); got != 2 {
		t.Errorf("Expected 2 ok requests, got %v", got)
	}
	if got := testutil.ToFloat64(c.requests.requestsTotal.WithLabelValues("critical", "budget_exhausted")); got != 1 {
		t.Errorf("Expected 1 budget_exhausted request, got %v", got)
	}
	if n := testutil.CollectAndCount(c.requests.requestDuration); n != 2 {
		t.Errorf("Expected 2 duration series, got %d", n)
	}
}

func TestCollector_ProviderCall(t *testing.T) {
	c := newTestCollector(t)

	c.ProviderCall("gemini", "gemini-2.5-flash", "ok", 800*time.Millisecond)
	c.ProviderCall("gemini", "gemini-2.5-flash", "429", 100*time.Millisecond)
	c.ProviderRetry("gemini")

	if got := testutil.ToFloat64(c.providers.calls.WithLabelValues("gemini", "gemini-2.5-flash", "ok")); got != 1 {
		t.Errorf("Expected 1 ok call, got %v", got)
	}
	if got := testutil.ToFloat64(c.providers.errors.WithLabelValues("gemini", "429")); got != 1 {
		t.Errorf("Expected 1 error, got %v", got)
	}
	if got := testutil.ToFloat64(c.providers.errors.WithLabelValues("gemini", "ok")); got != 0 {
		t.Errorf("Expected ok calls not to count as errors, got %v", got)
	}
	if got := testutil.ToFloat64(c.providers.retries.WithLabelValues("gemini")); got != 1 {
		t.Errorf("Expected 1 retry, got %v", got)
	}
}

func TestCollector_ProviderHealth(t *testing.T) {
	c := newTestCollector(t)

	c.UpdateProviderHealth("vertex", true)
	if got := testutil.ToFloat64(c.providers.health.WithLabelValues("vertex")); got != 1 {
		t.Errorf("Expected healthy=1, got %v", got)
	}

	c.UpdateProviderHealth("vertex", false)
	if got := testutil.ToFloat64(c.providers.health.WithLabelValues("vertex")); got != 0 {
		t.Errorf("Expected healthy=0, got %v", got)
	}
}

func TestCollector_Usage(t *testing.T) {
	c := newTestCollector(t)

	c.RecordUsage(1000, 200, 0.002)
	c.RecordUsage(500, 0, 0)
	c.UpdateBudget(12.5, 62.5)

	if got := testutil.ToFloat64(c.usage.tokensTotal.WithLabelValues("input")); got != 1500 {
		t.Errorf("Expected 1500 input tokens, got %v", got)
	}
	if got := testutil.ToFloat64(c.usage.tokensTotal.WithLabelValues("output")); got != 200 {
		t.Errorf("Expected 200 output tokens, got %v", got)
	}
	if got := testutil.ToFloat64(c.usage.costTotal); got != 0.002 {
		t.Errorf("Expected cost 0.002, got %v", got)
	}
	if got := testutil.ToFloat64(c.usage.budgetPercent); got != 62.5 {
		t.Errorf("Expected 62.5%%, got %v", got)
	}
}

func TestCollector_SetMode(t *testing.T) {
	c := newTestCollector(t)

	c.SetMode("normal")
	c.SetMode("light")

	if got := testutil.ToFloat64(c.usage.mode.WithLabelValues("light")); got != 1 {
		t.Errorf("Expected light=1, got %v", got)
	}
	if got := testutil.ToFloat64(c.usage.mode.WithLabelValues("normal")); got != 0 {
		t.Errorf("Expected normal=0 after switch, got %v", got)
	}
}

func TestCollector_CacheObserver(t *testing.T) {
	c := newTestCollector(t)

	c.CacheHit()
	c.CacheHit()
	c.CacheMiss()
	c.CacheEvicted(3)
	c.CacheEvicted(0)
	c.CacheEntries(7)

	if got := testutil.ToFloat64(c.cache.hitsTotal.WithLabelValues(ResultCache)); got != 2 {
		t.Errorf("Expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(c.cache.missesTotal.WithLabelValues(ResultCache)); got != 1 {
		t.Errorf("Expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(c.cache.evictionsTotal.WithLabelValues(ResultCache)); got != 3 {
		t.Errorf("Expected 3 evictions, got %v", got)
	}
	if got := testutil.ToFloat64(c.cache.entries.WithLabelValues(ResultCache)); got != 7 {
		t.Errorf("Expected 7 entries, got %v", got)
	}
}

func TestCollector_AdmissionObserver(t *testing.T) {
	c := newTestCollector(t)

	c.AdmissionDenied("daily_cap")
	c.AdmissionDenied("daily_cap")
	c.AdmissionDenied("server_busy")
	c.GlobalActive(4)

	if got := testutil.ToFloat64(c.admission.denied.WithLabelValues("daily_cap")); got != 2 {
		t.Errorf("Expected 2 daily_cap denials, got %v", got)
	}
	if got := testutil.ToFloat64(c.admission.active); got != 4 {
		t.Errorf("Expected 4 active, got %v", got)
	}
}

// ============================================================================
// Handler Tests
// ============================================================================

func TestCollector_Handler(t *testing.T) {
	c := newTestCollector(t)
	c.RecordRequest("normal", "ok", time.Second)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `verdict_engine_requests_total{mode="normal",outcome="ok"} 1`) {
		t.Errorf("Expected request counter in exposition, got:\n%s", body)
	}
}
