// Package health provides the readiness and version endpoints.
//
// The liveness endpoint (/health) is served by the API package because it
// reports the operating mode and budget. This package covers the probes
// that inspect dependencies:
//
//   - /ready: runs every registered check concurrently; 200 when all pass,
//     503 otherwise
//   - /version: build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("evidence", func(ctx context.Context) error {
//	    _, err := store.Count(ctx, &evidence.Query{})
//	    return err
//	})
//
//	mux.Handle("/ready", health.RateLimitedHandler(checker.ReadinessHandler(), 5))
//	mux.Handle("/version", health.VersionHandler(version, commit, buildTime))
package health
