package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"verdict-hq/verdict/pkg/analysis"
	"verdict-hq/verdict/pkg/cache"
	"verdict-hq/verdict/pkg/limits/modes"
	"verdict-hq/verdict/pkg/processing/tokens"
	"verdict-hq/verdict/pkg/providers"
	"verdict-hq/verdict/pkg/retry"
	"verdict-hq/verdict/pkg/telemetry/tracing"
)

// Stage names the step that failed.
type Stage string

const (
	StageChunk Stage = "chunk"
	StageMerge Stage = "merge"
)

// StageError reports which call of a job failed. Err is the provider error,
// possibly wrapped in *retry.ExhaustedError, or an output parse error.
type StageError struct {
	Stage Stage

	// Index is the chunk index; -1 for the merge call.
	Index int

	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Stage == StageMerge {
		return fmt.Sprintf("merge failed: %v", e.Err)
	}
	return fmt.Sprintf("chunk %d failed: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Job is one document to analyze.
type Job struct {
	// Chunks are the planned excerpts, in document order.
	Chunks []string

	// Fingerprint identifies the source bytes.
	Fingerprint string

	// Policy is the mode policy the request was admitted under.
	Policy modes.Policy
}

// Outcome is the merged analysis of a job plus the usage it incurred.
// Usage fields are filled even when Analyze fails.
type Outcome struct {
	Result *analysis.Result

	// Provider and Model identify what served (or would have served) the calls.
	Provider string
	Model    string

	// TokensIn and TokensOut are the running usage estimates.
	TokensIn  int64
	TokensOut int64

	// Calls is the number of provider calls sent, retries included.
	Calls int

	// CacheHits is the number of chunk and merge results replayed from the cache.
	CacheHits int

	Chunks int
}

// Observer receives provider call events. Implemented by the metrics collector.
type Observer interface {
	ProviderCall(provider, model, status string, latency time.Duration)
	ProviderRetry(provider string)
}

// Config tunes the orchestrator.
type Config struct {
	// Retry is applied to every provider call.
	Retry retry.Policy

	// CallTimeout is the deadline of one provider call.
	CallTimeout time.Duration

	// MergeFloorTokens is the minimum output budget of the merge call.
	MergeFloorTokens int

	// Temperature is sent with every call.
	Temperature float64

	// PaceJitter spreads the inter-call delay: 0.3 draws from [0.7, 1.3].
	PaceJitter float64
}

// DefaultConfig matches the production tuning.
var DefaultConfig = Config{
	Retry:            retry.DefaultPolicy,
	CallTimeout:      60 * time.Second,
	MergeFloorTokens: 1200,
	Temperature:      0.2,
	PaceJitter:       0.3,
}

// Orchestrator runs the per-chunk analyses of a document and merges them.
// Chunks run sequentially and the merge sees the partials in plan order.
type Orchestrator struct {
	analyzer providers.Analyzer
	cache    *cache.Cache
	cfg      Config

	sleep    retry.Sleeper
	rand     func() float64
	observer Observer
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSleeper replaces the wait used for pacing and backoff.
func WithSleeper(s retry.Sleeper) Option {
	return func(o *Orchestrator) { o.sleep = s }
}

// WithRand replaces the jitter source. fn must return values in [0, 1).
func WithRand(fn func() float64) Option {
	return func(o *Orchestrator) { o.rand = fn }
}

// WithObserver reports provider calls.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithTracer sets the tracer used for chunk and merge spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// New creates an orchestrator over analyzer, reading and writing results
// through c.
func New(analyzer providers.Analyzer, c *cache.Cache, cfg Config, opts ...Option) *Orchestrator {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultConfig.CallTimeout
	}
	if cfg.MergeFloorTokens <= 0 {
		cfg.MergeFloorTokens = DefaultConfig.MergeFloorTokens
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultConfig.Retry
	}

	o := &Orchestrator{
		analyzer: analyzer,
		cache:    c,
		cfg:      cfg,
		sleep:    retry.SleepContext,
		rand:     rand.Float64,
		tracer:   otel.Tracer("verdict/orchestrator"),
		logger:   slog.Default().With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Provider returns the analyzer name used in cache keys.
func (o *Orchestrator) Provider() string {
	return o.analyzer.Name()
}

// MergeTokens returns the merge call's output budget for a chunk budget.
func (o *Orchestrator) MergeTokens(maxOut int) int {
	if maxOut > o.cfg.MergeFloorTokens {
		return maxOut
	}
	return o.cfg.MergeFloorTokens
}

// Analyze runs every chunk and the merge. The returned Outcome is never nil;
// on error it carries the usage accrued before the failure.
//
// Provider calls are detached from ctx cancellation: a client hanging up
// does not abort a call the budget is already paying for. Each call has its
// own CallTimeout deadline instead.
func (o *Orchestrator) Analyze(ctx context.Context, job Job) (*Outcome, error) {
	provider := o.analyzer.Name()
	model := o.analyzer.ResolveModel(job.Policy.Model)
	out := &Outcome{Provider: provider, Model: model, Chunks: len(job.Chunks)}

	if len(job.Chunks) == 0 {
		return out, errors.New("no chunks to analyze")
	}

	callCtx := context.WithoutCancel(ctx)
	maxOut := job.Policy.MaxOutputTokens

	partials := make([]*analysis.Result, 0, len(job.Chunks))
	for i, excerpt := range job.Chunks {
		key := cache.ChunkKey(job.Fingerprint, i, provider, model, maxOut)
		prompt := analysis.ChunkPrompt(excerpt)

		spanCtx, span := o.tracer.Start(callCtx, "orchestrator.chunk")
		tracing.SetProviderAttributes(span, provider, model)
		tracing.SetChunkAttribute(span, i)

		var delay time.Duration
		if i > 0 {
			delay = job.Policy.CallDelay
		}
		payload, err := o.step(spanCtx, span, out, key, prompt, model, maxOut, delay)
		if err == nil {
			var partial *analysis.Result
			partial, err = analysis.Decode(payload)
			if err == nil {
				partials = append(partials, partial)
			}
		}
		tracing.SetStatus(span, err)
		span.End()
		if err != nil {
			return out, &StageError{Stage: StageChunk, Index: i, Err: err}
		}
	}

	mergeOut := o.MergeTokens(maxOut)
	key := cache.MergeKey(job.Fingerprint, provider, model, mergeOut)
	prompt, err := analysis.MergePrompt(partials)
	if err != nil {
		return out, &StageError{Stage: StageMerge, Index: -1, Err: err}
	}

	spanCtx, span := o.tracer.Start(callCtx, "orchestrator.merge")
	defer span.End()
	tracing.SetProviderAttributes(span, provider, model)

	var delay time.Duration
	if len(job.Chunks) > 1 {
		delay = job.Policy.CallDelay
	}
	payload, err := o.step(spanCtx, span, out, key, prompt, model, mergeOut, delay)
	if err == nil {
		out.Result, err = analysis.Decode(payload)
	}
	tracing.SetTokenAttributes(span, int(out.TokensIn), int(out.TokensOut))
	tracing.SetStatus(span, err)
	if err != nil {
		return out, &StageError{Stage: StageMerge, Index: -1, Err: err}
	}

	o.logger.Debug("analysis complete",
		"fingerprint", job.Fingerprint,
		"chunks", len(job.Chunks),
		"calls", out.Calls,
		"cache_hits", out.CacheHits,
		"tokens_in", out.TokensIn,
		"tokens_out", out.TokensOut,
	)
	return out, nil
}

// step returns the payload for key: replayed from the cache, or produced by
// a retried provider call and written through. A miss first waits delay,
// jittered. Usage is accumulated into out in both cases.
func (o *Orchestrator) step(ctx context.Context, span trace.Span, out *Outcome, key, prompt, model string, maxOut int, delay time.Duration) ([]byte, error) {
	computed := false
	payload, source, err := o.cache.Fetch(key, func() ([]byte, error) {
		if delay > 0 {
			if err := o.sleep(ctx, o.paceDelay(delay)); err != nil {
				return nil, err
			}
		}
		p, err := o.call(ctx, out, prompt, model, maxOut)
		if err != nil {
			return nil, err
		}
		computed = true
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	if computed {
		out.TokensIn += tokens.Estimate(prompt)
	} else {
		out.CacheHits++
	}
	out.TokensOut += tokens.EstimateBytes(payload)

	tracing.SetCacheAttributes(span, source != cache.Computed, "results")
	return payload, nil
}

// call sends prompt with retries on transient failures. Output that does not
// parse or validate is fatal.
func (o *Orchestrator) call(ctx context.Context, out *Outcome, prompt, model string, maxOut int) ([]byte, error) {
	provider := o.analyzer.Name()
	req := &providers.GenerateRequest{
		Prompt:          prompt,
		Schema:          analysis.Schema(),
		MaxOutputTokens: maxOut,
		Model:           model,
		Temperature:     o.cfg.Temperature,
	}

	return retry.Do(ctx, o.cfg.Retry, providers.IsTransient,
		func(ctx context.Context, attempt int) ([]byte, error) {
			callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
			defer cancel()

			out.Calls++
			start := time.Now()
			resp, err := o.analyzer.Generate(callCtx, req)
			latency := time.Since(start)
			if err != nil {
				o.report(provider, model, callStatus(err), latency)
				return nil, err
			}

			payload, err := analysis.Extract(resp.Text)
			if err != nil {
				o.report(provider, model, "invalid_output", latency)
				return nil, &providers.ParseError{Provider: provider, RawResponse: resp.Text, Cause: err}
			}
			o.report(provider, model, "ok", latency)
			return payload, nil
		},
		retry.WithSleeper(o.sleep),
		retry.WithRand(o.rand),
		retry.WithOnRetry(func(attempt int, delay time.Duration, err error) {
			o.logger.Warn("provider call failed, retrying",
				"provider", provider,
				"attempt", attempt,
				"delay", delay,
				"error", err,
			)
			if o.observer != nil {
				o.observer.ProviderRetry(provider)
			}
		}),
	)
}

func (o *Orchestrator) report(provider, model, status string, latency time.Duration) {
	if o.observer != nil {
		o.observer.ProviderCall(provider, model, status, latency)
	}
}

// paceDelay returns d scaled by a factor drawn from [1-PaceJitter, 1+PaceJitter],
// rounded to the millisecond.
func (o *Orchestrator) paceDelay(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	j := o.cfg.PaceJitter
	factor := 1 - j + o.rand()*2*j
	return time.Duration(math.Round(float64(d)*factor/float64(time.Millisecond))) * time.Millisecond
}

func callStatus(err error) string {
	var rateErr *providers.RateLimitError
	var timeoutErr *providers.TimeoutError
	var authErr *providers.AuthError
	var cfgErr *providers.ConfigError
	var provErr *providers.ProviderError
	switch {
	case errors.As(err, &rateErr):
		return "rate_limited"
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &authErr):
		return "auth_error"
	case errors.As(err, &cfgErr):
		return "config_error"
	case errors.As(err, &provErr) && provErr.StatusCode == 0:
		return "transport_error"
	case errors.As(err, &provErr):
		return fmt.Sprintf("status_%d", provErr.StatusCode)
	}
	return "error"
}
