// Package ratelimit provides the lock-free counting semaphore used for the
// process-wide analysis ceiling.
//
//	limiter := ratelimit.NewConcurrentLimiter(3)
//	if limiter.Acquire() {
//	    defer limiter.Release()
//	    // run analysis
//	}
//
// Request-rate limiting toward the analyzer lives in the providers package,
// built on golang.org/x/time/rate.
package ratelimit
