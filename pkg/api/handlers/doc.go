// Package handlers implements the HTTP handlers of the analysis service.
//
// # Endpoints
//
//	POST /v1/analyze   {"fileUrl": "...", "demo": false}
//	GET  /health       {"status":"ok","mode":"normal","budget_pct":12,"period":"2026-10"}
//
// Readiness, version and metrics endpoints come from the telemetry
// packages and are mounted by the server.
//
// # Caller identity
//
// With authentication on, the caller is the subject verified by the auth
// middleware. WithUnverifiedUser is for deployments without a signing
// secret: the caller is taken from the X-User-Id header, or "anonymous".
package handlers
