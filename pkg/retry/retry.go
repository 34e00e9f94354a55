// Package retry runs an operation with capped exponential backoff.
//
// A Policy describes the schedule; Do applies it to any operation and a
// caller-supplied classifier decides which failures are worth retrying.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Policy is a retry schedule.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the wait after the first failed attempt.
	BaseDelay time.Duration

	// Multiplier grows the wait after each further failure.
	Multiplier float64

	// MaxDelay caps a single wait.
	MaxDelay time.Duration

	// Jitter is the relative spread of each wait: 0.3 draws a factor from
	// [0.7, 1.3].
	Jitter float64
}

// DefaultPolicy is four attempts starting at 600ms, doubling, capped at 15s,
// with ±30% jitter.
var DefaultPolicy = Policy{
	MaxAttempts: 4,
	BaseDelay:   600 * time.Millisecond,
	Multiplier:  2,
	MaxDelay:    15 * time.Second,
	Jitter:      0.3,
}

// Backoff returns the wait after failed attempt n (1-based), given a random
// value r in [0, 1): min(MaxDelay, BaseDelay × Multiplier^(n-1) × factor),
// where factor = 1 - Jitter + r × 2 × Jitter. The result is rounded to the
// millisecond.
func (p Policy) Backoff(attempt int, r float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	factor := 1 - p.Jitter + r*2*p.Jitter
	raw := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1)) * factor
	d := time.Duration(math.Round(raw/float64(time.Millisecond))) * time.Millisecond
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	if d < 0 {
		return 0
	}
	return d
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	// Attempts is the number of attempts made.
	Attempts int

	// Err is the last failure.
	Err error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the last failure.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type options struct {
	sleep   Sleeper
	rand    func() float64
	onRetry func(attempt int, delay time.Duration, err error)
}

// Option configures a Do call.
type Option func(*options)

// WithSleeper replaces the wait between attempts.
func WithSleeper(s Sleeper) Option {
	return func(o *options) { o.sleep = s }
}

// WithRand replaces the jitter source. fn must return values in [0, 1).
func WithRand(fn func() float64) Option {
	return func(o *options) { o.rand = fn }
}

// WithOnRetry registers a callback fired before each wait.
func WithOnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(o *options) { o.onRetry = fn }
}

// Do calls op until it succeeds, returns an error that retryable rejects,
// or MaxAttempts is reached. op receives the 1-based attempt number.
//
// Non-retryable errors are returned unchanged after a single attempt. When
// attempts run out, the last error is wrapped in *ExhaustedError. If ctx is
// done while waiting, ctx.Err() is returned.
//
// Example:
//
//	resp, err := retry.Do(ctx, retry.DefaultPolicy, providers.IsTransient,
//	    func(ctx context.Context, attempt int) (*Response, error) {
//	        return client.Call(ctx, req)
//	    })
func Do[T any](ctx context.Context, p Policy, retryable func(error) bool, op func(ctx context.Context, attempt int) (T, error), opts ...Option) (T, error) {
	o := options{sleep: SleepContext, rand: rand.Float64}
	for _, opt := range opts {
		opt(&o)
	}

	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := op(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}

		delay := p.Backoff(attempt, o.rand())
		if o.onRetry != nil {
			o.onRetry(attempt, delay, err)
		}
		if serr := o.sleep(ctx, delay); serr != nil {
			return zero, serr
		}
	}

	return zero, &ExhaustedError{Attempts: maxAttempts, Err: lastErr}
}
