// Package ledger tracks estimated token usage for the current billing month.
package ledger

import (
	"sync"

	"verdict-hq/verdict/pkg/limits"
	"verdict-hq/verdict/pkg/processing/costs"
)

// PeriodLayout formats a billing period ("2026-10").
const PeriodLayout = "2006-01"

// Snapshot is a point-in-time copy of the ledger.
type Snapshot struct {
	// Period is the billing month, "YYYY-MM" in UTC.
	Period string `json:"period"`

	// TokensIn is the estimated input tokens spent this period.
	TokensIn int64 `json:"tokens_in"`

	// TokensOut is the estimated output tokens spent this period.
	TokensOut int64 `json:"tokens_out"`

	// Calls is the number of completed requests that recorded usage.
	Calls int64 `json:"calls"`

	// CostUSD is the estimated spend.
	CostUSD float64 `json:"cost_usd"`

	// BudgetUSD is the monthly ceiling in effect.
	BudgetUSD float64 `json:"budget_usd"`

	// BudgetPercent is spend as a percentage of the ceiling, capped at 100.
	BudgetPercent float64 `json:"budget_pct"`
}

// Exhausted reports whether spend has reached the ceiling.
func (s Snapshot) Exhausted() bool {
	return s.CostUSD >= s.BudgetUSD
}

// RolloverFunc is called (outside the ledger lock) when a new period starts.
type RolloverFunc func(previous, current string)

// Ledger accumulates usage for one billing period at a time. Counters only
// grow within a period and drop to zero exactly when the period changes.
// The period is checked lazily on every access.
//
// Ledger is safe for concurrent use.
type Ledger struct {
	mu        sync.Mutex
	period    string
	tokensIn  int64
	tokensOut int64
	calls     int64

	budgetUSD  float64
	calculator *costs.Calculator
	now        limits.Clock
	onRollover []RolloverFunc
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source. Defaults to limits.UTCNow.
func WithClock(clock limits.Clock) Option {
	return func(l *Ledger) { l.now = clock }
}

// OnRollover registers a callback fired when the billing period changes.
func OnRollover(fn RolloverFunc) Option {
	return func(l *Ledger) { l.onRollover = append(l.onRollover, fn) }
}

// New creates a ledger with the given monthly budget and pricing.
//
// Example:
//
//	calc := costs.NewCalculator(costs.Pricing{InputPerMillion: 0.30, OutputPerMillion: 2.50})
//	l := ledger.New(20, calc)
//	l.Record(1200, 400)
//	fmt.Printf("%.1f%%\n", l.Snapshot().BudgetPercent)
func New(budgetUSD float64, calculator *costs.Calculator, opts ...Option) *Ledger {
	l := &Ledger{
		budgetUSD:  budgetUSD,
		calculator: calculator,
		now:        limits.UTCNow,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.period = l.now().UTC().Format(PeriodLayout)
	return l
}

// Roll advances the period if the clock has moved into a new month and
// reports whether it did. Every other method calls it implicitly.
func (l *Ledger) Roll() bool {
	l.mu.Lock()
	prev, rolled := l.rollLocked()
	cur := l.period
	l.mu.Unlock()

	if rolled {
		for _, fn := range l.onRollover {
			fn(prev, cur)
		}
	}
	return rolled
}

func (l *Ledger) rollLocked() (string, bool) {
	current := l.now().UTC().Format(PeriodLayout)
	// Periods are zero-padded "YYYY-MM", so string order is time order and
	// a clock that steps backwards never rewinds the ledger.
	if current <= l.period {
		return l.period, false
	}
	prev := l.period
	l.period = current
	l.tokensIn = 0
	l.tokensOut = 0
	l.calls = 0
	return prev, true
}

// Record adds one completed request's estimated tokens. Negative values
// are ignored so the counters never decrease.
func (l *Ledger) Record(tokensIn, tokensOut int64) Snapshot {
	l.Roll()

	l.mu.Lock()
	defer l.mu.Unlock()
	if tokensIn > 0 {
		l.tokensIn += tokensIn
	}
	if tokensOut > 0 {
		l.tokensOut += tokensOut
	}
	l.calls++
	return l.snapshotLocked()
}

// Snapshot returns the current totals.
func (l *Ledger) Snapshot() Snapshot {
	l.Roll()

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// SetBudget changes the monthly ceiling. Spend is unaffected.
func (l *Ledger) SetBudget(budgetUSD float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.budgetUSD = budgetUSD
}

func (l *Ledger) snapshotLocked() Snapshot {
	cost := l.calculator.Cost(l.tokensIn, l.tokensOut)
	return Snapshot{
		Period:        l.period,
		TokensIn:      l.tokensIn,
		TokensOut:     l.tokensOut,
		Calls:         l.calls,
		CostUSD:       cost,
		BudgetUSD:     l.budgetUSD,
		BudgetPercent: Percent(cost, l.budgetUSD),
	}
}

// Percent returns cost as a percentage of budget, capped at 100. A zero or
// negative budget counts as fully spent.
func Percent(cost, budget float64) float64 {
	if budget <= 0 {
		return 100
	}
	pct := cost / budget * 100
	if pct > 100 {
		return 100
	}
	return pct
}
