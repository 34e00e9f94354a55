package retention

import (
	"context"
	"testing"
	"time"

	"verdict-hq/verdict/pkg/evidence/storage"
)

// ============================================================================
// Scheduler Tests
// ============================================================================

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{"valid daily schedule", "0 3 * * *", true, false},
		{"descriptor", "@every 1h", true, false},
		{"empty schedule - not running", "", false, false},
		{"invalid schedule", "invalid cron", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pruner := NewPruner(storage.NewMemoryStorage(), &Config{
				PruneSchedule: tt.schedule,
				RetentionDays: 90,
			})

			err := pruner.Start(context.Background())
			defer pruner.Stop()

			if (err != nil) != tt.wantError {
				t.Fatalf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if got := pruner.scheduler.IsRunning(); got != tt.wantRunning {
				t.Errorf("Expected running=%v, got %v", tt.wantRunning, got)
			}
		})
	}
}

func TestScheduler_NextRun(t *testing.T) {
	pruner := NewPruner(storage.NewMemoryStorage(), &Config{PruneSchedule: "@every 1h", RetentionDays: 1})

	if pruner.NextPruning() != nil {
		t.Error("Expected no next run before Start")
	}

	if err := pruner.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer pruner.Stop()

	next := pruner.NextPruning()
	if next == nil {
		t.Fatal("Expected a next run after Start")
	}
	if next.Before(time.Now()) {
		t.Errorf("Expected next run in the future, got %v", next)
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	pruner := NewPruner(storage.NewMemoryStorage(), &Config{PruneSchedule: "@every 1h"})

	ctx, cancel := context.WithCancel(context.Background())
	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for pruner.scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if pruner.scheduler.IsRunning() {
		t.Error("Expected scheduler to stop after context cancellation")
	}

	// Stop after cancellation is a no-op.
	pruner.Stop()
}

func TestScheduler_RunPruning(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store, time.Now(), 10*day, time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 7})
	pruner.scheduler.runPruning(context.Background())

	if store.Size() != 1 {
		t.Errorf("Expected 1 record after scheduled prune, got %d", store.Size())
	}
}
