// Package tracing provides OpenTelemetry tracing for the analysis engine.
//
// # Overview
//
// New builds an SDK tracer provider that batches spans to an OTLP gRPC
// collector and installs it globally together with the W3C Trace Context
// propagator. When tracing is disabled every span is a noop.
//
// A request produces this span tree:
//
//	POST /v1/analyze           (HTTPMiddleware, server span)
//	└── engine.analyze         (mode, user, pages, chunks, usage, risk)
//	    ├── orchestrator.chunk (provider, model, chunk index, cache hit)
//	    └── orchestrator.merge (provider, model, tokens)
//
// # Sampling
//
// telemetry.tracing.sample_ratio selects the fraction of root traces kept.
// Child spans follow their parent's decision.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "engine.analyze")
//	defer span.End()
//	tracing.SetRequestAttributes(span, requestID, userID, "normal", false)
package tracing
