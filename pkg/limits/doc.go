// Package limits contains the spend and fairness controls that sit in front
// of every analysis.
//
// # Architecture
//
// The package is organized into sub-packages:
//
//   - ledger: monthly token usage and estimated cost
//   - modes: operating mode (normal, light, critical) and its policy
//   - admission: per-user daily quota and concurrency, plus the global ceiling
//   - ratelimit: the lock-free counting semaphore behind the global ceiling
//
// Denials are reported as *LimitError values wrapping one of the sentinel
// errors, so callers can branch with errors.Is:
//
//	release, err := admission.Admit(user, policy)
//	if errors.Is(err, limits.ErrUserBusy) {
//	    // tell the user to wait
//	}
//	defer release()
//
// # State
//
// All state is in memory and resets when the process restarts. Each store
// owns its own lock; none are package globals.
package limits
