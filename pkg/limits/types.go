package limits

import (
	"errors"
	"fmt"
	"time"
)

// Error types for admission and budget denials.
var (
	// ErrDailyCapReached is returned when a user has used up today's analyses.
	ErrDailyCapReached = errors.New("daily cap reached")

	// ErrUserBusy is returned when a user already has the maximum number of
	// analyses in flight.
	ErrUserBusy = errors.New("user busy")

	// ErrServerBusy is returned when every global analysis slot is taken.
	ErrServerBusy = errors.New("server busy")

	// ErrBudgetExhausted is returned when the monthly budget is spent.
	ErrBudgetExhausted = errors.New("budget exhausted")
)

// LimitError provides detailed context about a limit violation.
// This wraps the sentinel errors with the counters that triggered it.
type LimitError struct {
	// Type is the error type (daily_cap, user_concurrency, global_concurrency, budget).
	Type string

	// Identifier is the user the limit applies to, or "global".
	Identifier string

	// Limit is the configured limit value.
	Limit interface{}

	// Current is the current value that hit the limit.
	Current interface{}

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit reached for %s: current=%v, limit=%v",
		e.Type, e.Identifier, e.Current, e.Limit)
}

// Unwrap returns the underlying error for error wrapping.
func (e *LimitError) Unwrap() error {
	return e.Err
}

// Clock returns the current time. Stores take one so tests can move across
// day and month boundaries.
type Clock func() time.Time

// UTCNow is the default Clock.
func UTCNow() time.Time {
	return time.Now().UTC()
}
