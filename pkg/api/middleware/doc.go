// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server chains middleware in this order, outermost first:
//
//	Recovery → RequestID → Logging → Tracing → CORS → Timeout → Auth → mux
//
// RequestID runs before Logging so the completion line carries the ID.
// CORS runs before authentication so preflight requests never need a token.
//
// # Request ID
//
// RequestIDMiddleware keeps a client X-Request-ID (up to 128 bytes) or
// generates a UUID v4. The ID is stored with logging.WithRequestID, so
// every log line written with the request context includes it, and echoed
// in the response header.
//
// # Logging
//
// LoggingMiddleware writes one "request completed" line per request:
//
//	{
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/v1/analyze",
//	  "status": 200,
//	  "bytes": 1834,
//	  "latency_ms": 8421,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
//
// # CORS
//
// Origins listed in the configuration are echoed back with Vary: Origin;
// anything else gets "*". OPTIONS is answered with 200 "ok".
//
// # Recovery and Timeout
//
// Both render failures with api.Writer so the body has the same shape as
// every other error, including the current mode. A timeout is a 504.
package middleware
