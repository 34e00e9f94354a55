package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// ============================================================================
// Checker Tests
// ============================================================================

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{"default timeout", 0, 5 * time.Second},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("Expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if len(checker.ListChecks()) != 0 {
				t.Errorf("Expected no checks, got %v", checker.ListChecks())
			}
		})
	}
}

func TestRegisterCheck_Replaces(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("provider", func(ctx context.Context) error { return errors.New("old") })
	checker.RegisterCheck("provider", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("evidence", func(ctx context.Context) error { return nil })

	names := checker.ListChecks()
	if len(names) != 2 || names[0] != "evidence" || names[1] != "provider" {
		t.Errorf("Expected [evidence provider], got %v", names)
	}

	if status := checker.CheckReadiness(context.Background()); !status.Ready() {
		t.Errorf("Expected replaced check to pass, got %+v", status)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"evidence": func(ctx context.Context) error { return nil },
				"provider": func(ctx context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one unhealthy",
			checks: map[string]CheckFunc{
				"evidence": func(ctx context.Context) error { return nil },
				"provider": func(ctx context.Context) error { return errors.New("3 consecutive failures") },
			},
			wantStatus: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("Expected %s, got %s", tt.wantStatus, status.Status)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("Expected %d results, got %d", len(tt.checks), len(status.Checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})

	start := time.Now()
	status := checker.CheckReadiness(context.Background())
	if time.Since(start) > 300*time.Millisecond {
		t.Errorf("Expected readiness to return after the check timeout, took %v", time.Since(start))
	}
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != "health check timeout" {
		t.Errorf("Expected timeout result, got %+v", result)
	}
}

// ============================================================================
// Endpoint Tests
// ============================================================================

func TestReadinessHandler(t *testing.T) {
	checker := New(time.Second)
	healthy := true
	checker.RegisterCheck("provider", func(ctx context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	})

	rec := httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	healthy = false
	rec = httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}

	var body ReadinessStatus
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Checks["provider"].Message != "down" {
		t.Errorf("Expected failure message in body, got %+v", body.Checks)
	}
}

func TestReadinessHandler_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	New(time.Second).ReadinessHandler()(rec, httptest.NewRequest(http.MethodPost, "/ready", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestReadinessHandler_Head(t *testing.T) {
	rec := httptest.NewRecorder()
	New(time.Second).ReadinessHandler()(rec, httptest.NewRequest(http.MethodHead, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty body for HEAD, got %q", rec.Body.String())
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.2.0", "abc123", "2026-10-01")(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if info.Version != "1.2.0" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("Unexpected version info: %+v", info)
	}
}

func TestRateLimitedHandler(t *testing.T) {
	calls := 0
	handler := RateLimitedHandler(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		codes = append(codes, rec.Code)
	}

	if calls != 2 {
		t.Errorf("Expected burst of 2 calls, got %d", calls)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected third request to be limited, got %v", codes)
	}
}

func TestRateLimitedHandler_Disabled(t *testing.T) {
	called := false
	handler := RateLimitedHandler(func(w http.ResponseWriter, r *http.Request) { called = true }, 0)
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ready", nil))
	if !called {
		t.Error("Expected handler to run when limiting is disabled")
	}
}
