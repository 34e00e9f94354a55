package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited guards an Analyzer with a process-wide token bucket so bursts of
// concurrent requests cannot exceed the provider's requests-per-second quota.
type RateLimited struct {
	next    Analyzer
	limiter *rate.Limiter
}

// NewRateLimited wraps next. A non-positive rps disables the guard and
// returns a wrapper with an infinite limit.
func NewRateLimited(next Analyzer, rps float64, burst int) *RateLimited {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Generate waits for a token, honouring ctx, and then delegates. A wait
// that cannot finish before ctx's deadline fails with a *TimeoutError, the
// same as a provider call that overruns it.
func (r *RateLimited) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("failed to wait for provider rate limit: %w", err)
		}
		var timeout time.Duration
		if deadline, ok := ctx.Deadline(); ok {
			timeout = max(time.Until(deadline), 0)
		}
		return nil, &TimeoutError{Provider: r.next.Name(), Timeout: timeout}
	}
	return r.next.Generate(ctx, req)
}

// Name returns the wrapped analyzer's name.
func (r *RateLimited) Name() string {
	return r.next.Name()
}

// ResolveModel delegates to the wrapped analyzer.
func (r *RateLimited) ResolveModel(requested string) string {
	return r.next.ResolveModel(requested)
}

// Unwrap returns the guarded analyzer.
func (r *RateLimited) Unwrap() Analyzer {
	return r.next
}
