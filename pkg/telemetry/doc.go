// Package telemetry groups the engine's observability packages.
//
//   - logging: slog construction with request context fields and credential redaction
//   - metrics: Prometheus collector for requests, providers, usage, cache and admission
//   - tracing: OpenTelemetry tracer with OTLP gRPC export
//   - health: readiness and version endpoints
package telemetry
