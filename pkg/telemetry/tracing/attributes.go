package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys use the "verdict.*" namespace.
const (
	AttrProvider = "verdict.provider"
	AttrModel    = "verdict.model"

	AttrRequestID = "verdict.request_id"
	AttrUser      = "verdict.user"
	AttrMode      = "verdict.mode"
	AttrDemo      = "verdict.demo"

	AttrPages  = "verdict.document.pages"
	AttrChunks = "verdict.document.chunks"
	AttrChunk  = "verdict.chunk.index"

	AttrTokensIn  = "verdict.tokens.in"
	AttrTokensOut = "verdict.tokens.out"
	AttrCost      = "verdict.cost_usd"

	AttrCacheHit  = "verdict.cache.hit"
	AttrCacheName = "verdict.cache.name"

	AttrErrorKind = "verdict.error.kind"
	AttrRiskScore = "verdict.risk.score"
	AttrRiskLabel = "verdict.risk.label"
)

// SetProviderAttributes sets the provider and model on a span.
func SetProviderAttributes(span trace.Span, provider, model string) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	)
}

// SetRequestAttributes sets request identity and mode on a span.
func SetRequestAttributes(span trace.Span, requestID, user, mode string, demo bool) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrMode, mode),
		attribute.Bool(AttrDemo, demo),
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	if user != "" {
		attrs = append(attrs, attribute.String(AttrUser, user))
	}
	span.SetAttributes(attrs...)
}

// SetDocumentAttributes sets the page and chunk counts on a span.
func SetDocumentAttributes(span trace.Span, pages, chunks int) {
	span.SetAttributes(
		attribute.Int(AttrPages, pages),
		attribute.Int(AttrChunks, chunks),
	)
}

// SetChunkAttribute sets the zero-based chunk index on a span.
func SetChunkAttribute(span trace.Span, index int) {
	span.SetAttributes(attribute.Int(AttrChunk, index))
}

// SetTokenAttributes sets estimated token counts on a span.
func SetTokenAttributes(span trace.Span, tokensIn, tokensOut int) {
	span.SetAttributes(
		attribute.Int(AttrTokensIn, tokensIn),
		attribute.Int(AttrTokensOut, tokensOut),
	)
}

// SetUsageAttributes sets token counts and estimated cost on a span.
func SetUsageAttributes(span trace.Span, tokensIn, tokensOut int, costUSD float64) {
	SetTokenAttributes(span, tokensIn, tokensOut)
	span.SetAttributes(attribute.Float64(AttrCost, costUSD))
}

// SetCacheAttributes records whether a lookup was served from cache.
func SetCacheAttributes(span trace.Span, hit bool, cacheName string) {
	span.SetAttributes(
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheName, cacheName),
	)
}

// SetRiskAttributes sets the final score and label on a span.
func SetRiskAttributes(span trace.Span, score int, label string) {
	span.SetAttributes(
		attribute.Int(AttrRiskScore, score),
		attribute.String(AttrRiskLabel, label),
	)
}

// SetErrorKind marks the span failed with the engine error kind.
func SetErrorKind(span trace.Span, kind string, err error) {
	span.SetAttributes(attribute.String(AttrErrorKind, kind))
	SetStatus(span, err)
}
