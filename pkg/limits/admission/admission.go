// Package admission decides whether an analysis may start.
//
// Two independent gates apply. The per-user gate enforces the mode's daily
// cap and per-user concurrency; the global gate enforces a fixed ceiling on
// analyses in flight across all users.
package admission

import (
	"sync"

	"verdict-hq/verdict/pkg/limits"
	"verdict-hq/verdict/pkg/limits/modes"
	"verdict-hq/verdict/pkg/limits/ratelimit"
)

// DayLayout formats the UTC calendar day a quota record belongs to.
const DayLayout = "2006-01-02"

// QuotaRecord is one user's usage for one UTC day.
type QuotaRecord struct {
	Day    string `json:"day"`
	Count  int    `json:"count"`
	Active int    `json:"active"`
}

// Observer receives admission outcomes. Implemented by the metrics collector.
type Observer interface {
	AdmissionDenied(reason string)
	GlobalActive(n int64)
}

// Controller holds per-user quota records and the global slot counter.
// It is safe for concurrent use.
type Controller struct {
	mu    sync.Mutex
	users map[string]*QuotaRecord

	global   *ratelimit.ConcurrentLimiter
	now      limits.Clock
	observer Observer
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source. Defaults to limits.UTCNow.
func WithClock(clock limits.Clock) Option {
	return func(c *Controller) { c.now = clock }
}

// WithObserver reports denials and global slot usage.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// NewController creates an admission controller with the given global
// ceiling.
func NewController(globalMax int, opts ...Option) *Controller {
	c := &Controller{
		users:  make(map[string]*QuotaRecord),
		global: ratelimit.NewConcurrentLimiter(globalMax),
		now:    limits.UTCNow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// record returns the user's record for today, resetting it when the day
// has changed. Callers must hold c.mu.
func (c *Controller) record(user string) *QuotaRecord {
	day := c.now().UTC().Format(DayLayout)
	rec, ok := c.users[user]
	if !ok {
		rec = &QuotaRecord{Day: day}
		c.users[user] = rec
	}
	if rec.Day != day {
		rec.Day = day
		rec.Count = 0
		rec.Active = 0
	}
	return rec
}

// TryAcquire takes a per-user slot under policy. The daily cap is checked
// before concurrency. A grant counts toward today's cap immediately, even
// if the analysis later fails.
func (c *Controller) TryAcquire(user string, policy modes.Policy) error {
	c.mu.Lock()
	rec := c.record(user)

	if rec.Count >= policy.DailyCap {
		count := rec.Count
		c.mu.Unlock()
		c.denied("daily_cap")
		return &limits.LimitError{
			Type:       "daily_cap",
			Identifier: user,
			Limit:      policy.DailyCap,
			Current:    count,
			Err:        limits.ErrDailyCapReached,
		}
	}
	if rec.Active >= policy.MaxConcurrentPerUser {
		active := rec.Active
		c.mu.Unlock()
		c.denied("user_busy")
		return &limits.LimitError{
			Type:       "user_concurrency",
			Identifier: user,
			Limit:      policy.MaxConcurrentPerUser,
			Current:    active,
			Err:        limits.ErrUserBusy,
		}
	}

	rec.Count++
	rec.Active++
	c.mu.Unlock()
	return nil
}

// Release returns a per-user slot. The active count never goes below zero.
func (c *Controller) Release(user string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.record(user)
	if rec.Active > 0 {
		rec.Active--
	}
}

// TryAcquireGlobal takes one of the process-wide slots.
func (c *Controller) TryAcquireGlobal() error {
	if !c.global.Acquire() {
		c.denied("server_busy")
		return &limits.LimitError{
			Type:       "global_concurrency",
			Identifier: "global",
			Limit:      c.global.Limit(),
			Current:    c.global.Current(),
			Err:        limits.ErrServerBusy,
		}
	}
	c.reportGlobal()
	return nil
}

// ReleaseGlobal returns a process-wide slot.
func (c *Controller) ReleaseGlobal() {
	c.global.Release()
	c.reportGlobal()
}

// Admit takes the user slot and then the global slot. If the global slot
// is unavailable the user slot is given back before returning. On success
// the returned release func frees both slots; calling it more than once
// has no further effect.
//
// Example:
//
//	release, err := ctrl.Admit(user, policy)
//	if err != nil {
//	    return err
//	}
//	defer release()
func (c *Controller) Admit(user string, policy modes.Policy) (func(), error) {
	if err := c.TryAcquire(user, policy); err != nil {
		return func() {}, err
	}
	if err := c.TryAcquireGlobal(); err != nil {
		c.Release(user)
		return func() {}, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.ReleaseGlobal()
			c.Release(user)
		})
	}, nil
}

// Snapshot returns a copy of the user's record for today.
func (c *Controller) Snapshot(user string) QuotaRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.record(user)
}

// SetGlobalMax changes the global ceiling. Analyses already running keep
// their slots.
func (c *Controller) SetGlobalMax(n int) {
	c.global.SetLimit(n)
}

// GlobalMax returns the global ceiling.
func (c *Controller) GlobalMax() int64 {
	return c.global.Limit()
}

// GlobalActive returns the number of global slots in use.
func (c *Controller) GlobalActive() int64 {
	return c.global.Current()
}

func (c *Controller) denied(reason string) {
	if c.observer != nil {
		c.observer.AdmissionDenied(reason)
	}
}

func (c *Controller) reportGlobal() {
	if c.observer != nil {
		c.observer.GlobalActive(c.global.Current())
	}
}
