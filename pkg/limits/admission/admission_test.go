package admission

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"verdict-hq/verdict/pkg/limits"
	"verdict-hq/verdict/pkg/limits/modes"
)

type recordingObserver struct {
	mu      sync.Mutex
	denials map[string]int
	active  int64
}

func (o *recordingObserver) AdmissionDenied(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.denials == nil {
		o.denials = make(map[string]int)
	}
	o.denials[reason]++
}

func (o *recordingObserver) GlobalActive(n int64) {
	o.mu.Lock()
	o.active = n
	o.mu.Unlock()
}

func policy(dailyCap, perUser int) modes.Policy {
	p := modes.PolicyFor(modes.Normal, "m")
	p.DailyCap = dailyCap
	p.MaxConcurrentPerUser = perUser
	return p
}

// ============================================================================
// Per-user gate
// ============================================================================

func TestTryAcquire_DailyCap(t *testing.T) {
	c := NewController(3)
	p := policy(1, 2)

	if err := c.TryAcquire("alice", p); err != nil {
		t.Fatalf("First acquire should succeed, got %v", err)
	}
	c.Release("alice")

	err := c.TryAcquire("alice", p)
	if !errors.Is(err, limits.ErrDailyCapReached) {
		t.Fatalf("Expected ErrDailyCapReached, got %v", err)
	}
	var le *limits.LimitError
	if !errors.As(err, &le) || le.Identifier != "alice" {
		t.Errorf("Expected LimitError for alice, got %#v", err)
	}

	// Other users are unaffected.
	if err := c.TryAcquire("bob", p); err != nil {
		t.Errorf("Bob should be admitted, got %v", err)
	}
}

func TestTryAcquire_CapCheckedBeforeBusy(t *testing.T) {
	c := NewController(3)
	p := policy(1, 1)

	if err := c.TryAcquire("alice", p); err != nil {
		t.Fatal(err)
	}
	// Alice is both capped and busy; the cap wins.
	if err := c.TryAcquire("alice", p); !errors.Is(err, limits.ErrDailyCapReached) {
		t.Errorf("Expected ErrDailyCapReached, got %v", err)
	}
}

func TestTryAcquire_UserBusy(t *testing.T) {
	c := NewController(3)
	p := policy(10, 1)

	if err := c.TryAcquire("alice", p); err != nil {
		t.Fatal(err)
	}
	if err := c.TryAcquire("alice", p); !errors.Is(err, limits.ErrUserBusy) {
		t.Fatalf("Expected ErrUserBusy, got %v", err)
	}

	c.Release("alice")
	if err := c.TryAcquire("alice", p); err != nil {
		t.Errorf("Expected acquire after release, got %v", err)
	}

	rec := c.Snapshot("alice")
	if rec.Count != 2 || rec.Active != 1 {
		t.Errorf("Expected count=2 active=1, got %+v", rec)
	}
}

func TestRelease_FloorsAtZero(t *testing.T) {
	c := NewController(3)
	c.Release("ghost")
	c.Release("ghost")

	if rec := c.Snapshot("ghost"); rec.Active != 0 {
		t.Errorf("Expected active 0, got %d", rec.Active)
	}
}

func TestTryAcquire_DayRollover(t *testing.T) {
	now := time.Date(2026, 7, 1, 23, 59, 0, 0, time.UTC)
	c := NewController(3, WithClock(func() time.Time { return now }))
	p := policy(1, 1)

	if err := c.TryAcquire("alice", p); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if err := c.TryAcquire("alice", p); err != nil {
		t.Errorf("Expected new day to reset quota, got %v", err)
	}
	if rec := c.Snapshot("alice"); rec.Day != "2026-07-02" || rec.Count != 1 {
		t.Errorf("Unexpected record after rollover: %+v", rec)
	}
}

func TestTryAcquire_BurstHoldsLimits(t *testing.T) {
	c := NewController(100)
	p := policy(5, 2)

	var granted atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if c.TryAcquire("alice", p) == nil {
				granted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if granted.Load() != 2 {
		t.Errorf("Expected 2 concurrent grants, got %d", granted.Load())
	}
	if rec := c.Snapshot("alice"); rec.Active != 2 || rec.Count != 2 {
		t.Errorf("Unexpected record: %+v", rec)
	}
}

// ============================================================================
// Global gate
// ============================================================================

func TestTryAcquireGlobal(t *testing.T) {
	obs := &recordingObserver{}
	c := NewController(2, WithObserver(obs))

	if c.TryAcquireGlobal() != nil || c.TryAcquireGlobal() != nil {
		t.Fatal("First two global acquires should succeed")
	}
	if err := c.TryAcquireGlobal(); !errors.Is(err, limits.ErrServerBusy) {
		t.Fatalf("Expected ErrServerBusy, got %v", err)
	}
	if obs.denials["server_busy"] != 1 {
		t.Errorf("Expected 1 server_busy denial, got %d", obs.denials["server_busy"])
	}

	c.ReleaseGlobal()
	if c.GlobalActive() != 1 || obs.active != 1 {
		t.Errorf("Expected 1 active, got %d (observer %d)", c.GlobalActive(), obs.active)
	}
}

func TestSetGlobalMax(t *testing.T) {
	c := NewController(1)
	if err := c.TryAcquireGlobal(); err != nil {
		t.Fatalf("First acquire should succeed: %v", err)
	}

	c.SetGlobalMax(2)
	if c.GlobalMax() != 2 {
		t.Errorf("Expected ceiling 2, got %d", c.GlobalMax())
	}
	if err := c.TryAcquireGlobal(); err != nil {
		t.Errorf("Expected acquire under the raised ceiling, got %v", err)
	}

	c.SetGlobalMax(1)
	if c.GlobalActive() != 2 {
		t.Errorf("Expected running analyses to keep their slots, got %d", c.GlobalActive())
	}
	c.ReleaseGlobal()
	if err := c.TryAcquireGlobal(); !errors.Is(err, limits.ErrServerBusy) {
		t.Errorf("Expected ErrServerBusy at the lowered ceiling, got %v", err)
	}
}

// ============================================================================
// Admit
// ============================================================================

func TestAdmit_GlobalDenialReleasesUserSlot(t *testing.T) {
	c := NewController(1)
	p := policy(10, 1)

	release, err := c.Admit("alice", p)
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	_, err = c.Admit("bob", p)
	if !errors.Is(err, limits.ErrServerBusy) {
		t.Fatalf("Expected ErrServerBusy, got %v", err)
	}
	rec := c.Snapshot("bob")
	if rec.Active != 0 {
		t.Errorf("Expected bob's user slot released, active=%d", rec.Active)
	}
	// The attempt still counted toward bob's daily cap.
	if rec.Count != 1 {
		t.Errorf("Expected bob's count 1, got %d", rec.Count)
	}
}

func TestAdmit_ReleaseIsIdempotent(t *testing.T) {
	c := NewController(2)
	p := policy(10, 2)

	r1, err := c.Admit("alice", p)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := c.Admit("alice", p)
	if err != nil {
		t.Fatal(err)
	}

	r1()
	r1()

	if got := c.GlobalActive(); got != 1 {
		t.Errorf("Expected 1 global slot held, got %d", got)
	}
	if rec := c.Snapshot("alice"); rec.Active != 1 {
		t.Errorf("Expected 1 user slot held, got %d", rec.Active)
	}

	r2()
	if c.GlobalActive() != 0 || c.Snapshot("alice").Active != 0 {
		t.Error("Expected all slots released")
	}
}
