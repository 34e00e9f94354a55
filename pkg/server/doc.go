// Package server runs the HTTP server of the analysis service.
//
// It mounts the routes, chains the middleware and manages graceful
// shutdown.
//
// # Basic Usage
//
//	srv := server.NewServer(&cfg.Server, server.Routes{
//	    Analyze: handlers.NewAnalyzeHandler(eng, writer),
//	    Health:  handlers.NewHealthHandler(eng),
//	    Ready:   checker.ReadinessHandler(),
//	    Metrics: collector.Handler(),
//	}, server.WithAuth(authMiddleware), server.WithWriter(writer))
//
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start returns after ctx is cancelled (or Stop is called) and in-flight
// requests have finished, up to server.shutdown_timeout.
//
// # Routes
//
//   - POST /v1/analyze - Analyze a contract (authenticated)
//   - GET /health - Liveness with mode and budget
//   - GET /ready - Readiness checks
//   - GET /version - Build information
//   - GET /metrics - Prometheus exposition
//
// # Middleware Chain
//
// Outermost first: recovery, request ID, logging, tracing, CORS, timeout.
// Authentication wraps only the analyze route, so preflight and probes
// never need a token.
package server
