package retention

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"verdict-hq/verdict/pkg/evidence"
	"verdict-hq/verdict/pkg/evidence/storage"
)

func seed(t *testing.T, store evidence.Storage, now time.Time, ages ...time.Duration) {
	t.Helper()
	for i, age := range ages {
		err := store.Store(context.Background(), &evidence.Record{
			ID:     fmt.Sprintf("rec-%d", i),
			Time:   now.Add(-age),
			Status: evidence.StatusSuccess,
		})
		if err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}
}

// countErrStorage fails Count to exercise error propagation.
type countErrStorage struct {
	*storage.MemoryStorage
}

func (c *countErrStorage) Count(ctx context.Context, q *evidence.Query) (int64, error) {
	return 0, errors.New("count unavailable")
}

// deleteErrStorage fails Delete.
type deleteErrStorage struct {
	*storage.MemoryStorage
}

func (d *deleteErrStorage) Delete(ctx context.Context, q *evidence.Query) (int64, error) {
	return 0, errors.New("locked")
}

const day = 24 * time.Hour

// ============================================================================
// Pruner Tests
// ============================================================================

func TestPruner_PruneByAge(t *testing.T) {
	store := storage.NewMemoryStorage()
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	seed(t, store, now, 10*day, 8*day, 5*day, 3*day)

	pruner := NewPruner(store, &Config{RetentionDays: 7})
	pruner.now = func() time.Time { return now }

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}
	if store.Size() != 2 {
		t.Errorf("Expected 2 remaining, got %d", store.Size())
	}
	if store.GetByID("rec-0") != nil || store.GetByID("rec-1") != nil {
		t.Error("Expected the two oldest records to be pruned")
	}
}

func TestPruner_PruneByCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	now := time.Now()
	seed(t, store, now, 5*time.Hour, 4*time.Hour, 3*time.Hour, 2*time.Hour, time.Hour)

	pruner := NewPruner(store, &Config{MaxRecords: 3})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}
	if store.Size() != 3 {
		t.Errorf("Expected 3 remaining, got %d", store.Size())
	}
	if store.GetByID("rec-4") == nil {
		t.Error("Expected the newest record to survive")
	}
}

func TestPruner_AgeThenCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	seed(t, store, now, 40*day, 20*day, 3*day, 2*day, day)

	pruner := NewPruner(store, &Config{RetentionDays: 30, MaxRecords: 2})
	pruner.now = func() time.Time { return now }

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted (1 by age, 2 by count), got %d", deleted)
	}
	if store.Size() != 2 {
		t.Errorf("Expected 2 remaining, got %d", store.Size())
	}
}

func TestPruner_NothingToPrune(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		ages   []time.Duration
	}{
		{"keep forever", &Config{RetentionDays: 0, MaxRecords: 0}, []time.Duration{100 * day, time.Hour}},
		{"within limits", &Config{RetentionDays: 30, MaxRecords: 10}, []time.Duration{2 * day, time.Hour}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			seed(t, store, time.Now(), tt.ages...)

			deleted, err := NewPruner(store, tt.config).Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() failed: %v", err)
			}
			if deleted != 0 {
				t.Errorf("Expected 0 deleted, got %d", deleted)
			}
		})
	}
}

func TestPruner_Errors(t *testing.T) {
	t.Run("delete failure wraps RetentionError", func(t *testing.T) {
		store := &deleteErrStorage{MemoryStorage: storage.NewMemoryStorage()}
		_, err := NewPruner(store, &Config{RetentionDays: 7}).Prune(context.Background())
		var retErr *evidence.RetentionError
		if !errors.As(err, &retErr) {
			t.Fatalf("Expected RetentionError, got %v", err)
		}
		if retErr.RetentionDays != 7 {
			t.Errorf("Expected retention days 7, got %d", retErr.RetentionDays)
		}
	})

	t.Run("count failure", func(t *testing.T) {
		store := &countErrStorage{MemoryStorage: storage.NewMemoryStorage()}
		_, err := NewPruner(store, &Config{MaxRecords: 1}).Prune(context.Background())
		if err == nil {
			t.Fatal("Expected error when count fails")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RetentionDays != 90 {
		t.Errorf("Expected 90 retention days, got %d", cfg.RetentionDays)
	}
	if cfg.PruneSchedule != "0 3 * * *" {
		t.Errorf("Expected daily 3 AM schedule, got %q", cfg.PruneSchedule)
	}
}
