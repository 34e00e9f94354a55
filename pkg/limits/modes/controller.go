package modes

import (
	"log/slog"
	"sync"

	"verdict-hq/verdict/pkg/limits/ledger"
)

// Thresholds are budget percentages at which stricter modes start.
type Thresholds struct {
	Light    float64
	Critical float64
}

// DefaultThresholds are 50% for light and 75% for critical.
var DefaultThresholds = Thresholds{Light: 50, Critical: 75}

// OverrideSource returns the current mode override, or "" for none.
type OverrideSource func() string

// Controller derives the active mode from the ledger, unless an override
// pins it. Current is a pure read; the engine calls it when a request
// starts and again after usage is recorded, so a request never changes the
// mode it runs under.
type Controller struct {
	ledger       *ledger.Ledger
	thresholds   Thresholds
	defaultModel string
	source       OverrideSource
	logger       *slog.Logger

	mu       sync.RWMutex
	override Mode
	last     Mode
	period   string
}

// NewController creates a mode controller reading the given ledger.
// source is consulted at construction and again whenever Current first
// sees a new billing period; it may be nil.
func NewController(l *ledger.Ledger, thresholds Thresholds, defaultModel string, source OverrideSource) *Controller {
	c := &Controller{
		ledger:       l,
		thresholds:   thresholds,
		defaultModel: defaultModel,
		source:       source,
		logger:       slog.Default().With("component", "modes"),
		period:       l.Snapshot().Period,
	}
	c.reloadOverride()
	return c
}

// Current returns the active mode.
func (c *Controller) Current() Mode {
	// Any ledger read may perform the rollover, so compare periods rather
	// than relying on Roll's result.
	snap := c.ledger.Snapshot()
	c.mu.Lock()
	rolled := snap.Period != c.period
	c.period = snap.Period
	c.mu.Unlock()
	if rolled {
		c.reloadOverride()
	}

	c.mu.RLock()
	override := c.override
	c.mu.RUnlock()
	if override != "" {
		c.noteChange(override)
		return override
	}

	m := c.forPercent(snap.BudgetPercent)
	c.noteChange(m)
	return m
}

// Policy returns the policy of the active mode.
func (c *Controller) Policy() Policy {
	return PolicyFor(c.Current(), c.defaultModel)
}

// PolicyFor returns the policy of mode m with this controller's default model.
func (c *Controller) PolicyFor(m Mode) Policy {
	return PolicyFor(m, c.defaultModel)
}

// SetOverride pins the mode. An empty string or an unknown mode clears the
// override.
func (c *Controller) SetOverride(s string) {
	m, err := Parse(s)
	if s != "" && err != nil {
		c.logger.Warn("Ignoring unknown mode override", "override", s)
	}
	c.mu.Lock()
	c.override = m
	c.mu.Unlock()
}

func (c *Controller) forPercent(pct float64) Mode {
	switch {
	case pct >= c.thresholds.Critical:
		return Critical
	case pct >= c.thresholds.Light:
		return Light
	default:
		return Normal
	}
}

func (c *Controller) reloadOverride() {
	if c.source == nil {
		return
	}
	c.SetOverride(c.source())
}

func (c *Controller) noteChange(m Mode) {
	c.mu.Lock()
	prev := c.last
	c.last = m
	c.mu.Unlock()

	if prev != "" && prev != m {
		c.logger.Info("Operating mode changed", "from", prev, "to", m)
	}
}
