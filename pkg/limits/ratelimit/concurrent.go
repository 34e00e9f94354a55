package ratelimit

import (
	"sync/atomic"
)

// ConcurrentLimiter limits the number of simultaneous in-flight analyses.
//
// This implements a counting semaphore using atomic operations for
// lock-free performance. The engine uses one instance as the process-wide
// analysis ceiling, independent of the operating mode.
//
// # Algorithm
//
//  1. Atomically increment counter
//  2. Check if counter exceeds limit
//  3. If yes: decrement and reject
//  4. If no: allow request
//  5. On completion: decrement counter, never below zero
//
// # Thread Safety
//
// ConcurrentLimiter is lock-free and thread-safe using atomic operations.
type ConcurrentLimiter struct {
	limit   atomic.Int64 // Maximum concurrent analyses
	current atomic.Int64 // Current number of in-flight analyses
}

// NewConcurrentLimiter creates a new concurrent limiter.
//
// Example:
//
//	limiter := NewConcurrentLimiter(3) // Max 3 analyses at once
//	if limiter.Acquire() {
//	    defer limiter.Release()
//	    // Run analysis
//	} else {
//	    // Server busy
//	}
func NewConcurrentLimiter(limit int) *ConcurrentLimiter {
	cl := &ConcurrentLimiter{}
	cl.limit.Store(int64(limit))
	return cl
}

// Acquire attempts to acquire a slot.
// Returns true if acquired, false if limit reached.
//
// If this returns true, the caller MUST call Release() when done.
func (cl *ConcurrentLimiter) Acquire() bool {
	current := cl.current.Add(1)
	if current > cl.limit.Load() {
		cl.current.Add(-1)
		return false
	}
	return true
}

// Release releases a slot. Extra calls are absorbed: the counter never
// goes below zero.
func (cl *ConcurrentLimiter) Release() {
	for {
		cur := cl.current.Load()
		if cur <= 0 {
			return
		}
		if cl.current.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// Current returns the current number of in-flight analyses.
func (cl *ConcurrentLimiter) Current() int64 {
	return cl.current.Load()
}

// Limit returns the configured limit.
func (cl *ConcurrentLimiter) Limit() int64 {
	return cl.limit.Load()
}

// SetLimit changes the limit. Slots already held are kept; new acquisitions
// see the new limit.
func (cl *ConcurrentLimiter) SetLimit(limit int) {
	cl.limit.Store(int64(limit))
}
