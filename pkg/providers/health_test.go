package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ============================================================================
// Health Tracking
// ============================================================================

func TestHealth_UnhealthyAfterConsecutiveFailures(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 5*time.Second)
	ctx := context.Background()

	for i := 0; i < UnhealthyAfter-1; i++ {
		_, _ = provider.DoRequest(ctx, "POST", server.URL, []byte(`{}`), nil)
	}
	if !provider.IsHealthy() {
		t.Fatalf("expected provider to stay healthy below %d failures", UnhealthyAfter)
	}

	_, _ = provider.DoRequest(ctx, "POST", server.URL, []byte(`{}`), nil)
	if provider.IsHealthy() {
		t.Fatal("expected provider to be unhealthy")
	}

	health := provider.GetHealth()
	if health.ConsecutiveFailures != UnhealthyAfter {
		t.Errorf("expected %d consecutive failures, got %d", UnhealthyAfter, health.ConsecutiveFailures)
	}
	if health.LastError == nil {
		t.Error("expected last error to be recorded")
	}

	failing.Store(false)
	resp, err := provider.DoRequest(ctx, "POST", server.URL, []byte(`{}`), nil)
	if err != nil {
		t.Fatalf("expected recovery request to succeed: %v", err)
	}
	resp.Body.Close()

	if !provider.IsHealthy() {
		t.Error("expected provider to recover after a success")
	}
	health = provider.GetHealth()
	if health.TotalRequests != int64(UnhealthyAfter+1) {
		t.Errorf("expected %d total requests, got %d", UnhealthyAfter+1, health.TotalRequests)
	}
	if health.FailedRequests != int64(UnhealthyAfter) {
		t.Errorf("expected %d failed requests, got %d", UnhealthyAfter, health.FailedRequests)
	}
}

func TestHealth_ConcurrentAccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 5*time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			resp, err := provider.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)
			if err == nil {
				resp.Body.Close()
			}
		}()
		go func() {
			defer wg.Done()
			_ = provider.GetHealth()
			_ = provider.IsHealthy()
		}()
	}
	wg.Wait()

	if got := provider.GetHealth().TotalRequests; got != 20 {
		t.Errorf("expected 20 total requests, got %d", got)
	}
}

func TestHealthOf(t *testing.T) {
	if _, ok := HealthOf(nil); ok {
		t.Error("expected no health for a nil analyzer")
	}
	if _, ok := HealthOf(NewRateLimited(&countingAnalyzer{}, 0, 1)); ok {
		t.Error("expected no health for an analyzer without tracking")
	}

	tracked := &trackedAnalyzer{countingAnalyzer: &countingAnalyzer{}, HTTPProvider: newTestProvider("http://127.0.0.1:1", time.Second)}
	tracked.updateHealth(false, context.DeadlineExceeded)

	health, ok := HealthOf(NewRateLimited(tracked, 0, 1))
	if !ok {
		t.Fatal("expected health through the rate guard")
	}
	if health.ConsecutiveFailures != 1 || !health.IsHealthy {
		t.Errorf("unexpected health: %+v", health)
	}
}

// trackedAnalyzer is an Analyzer backed by an HTTPProvider for health.
type trackedAnalyzer struct {
	*countingAnalyzer
	*HTTPProvider
}

func (t *trackedAnalyzer) Name() string { return "tracked" }
