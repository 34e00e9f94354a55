package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"verdict-hq/verdict/pkg/analysis"
	"verdict-hq/verdict/pkg/evidence"
	"verdict-hq/verdict/pkg/limits/admission"
	"verdict-hq/verdict/pkg/limits/ledger"
	"verdict-hq/verdict/pkg/limits/modes"
	"verdict-hq/verdict/pkg/orchestrator"
	"verdict-hq/verdict/pkg/processing/chunking"
	"verdict-hq/verdict/pkg/processing/costs"
	"verdict-hq/verdict/pkg/processing/extract"
	"verdict-hq/verdict/pkg/risk"
	"verdict-hq/verdict/pkg/source"
	"verdict-hq/verdict/pkg/telemetry/tracing"
)

// DemoProvider is reported as the provider of demo answers.
const DemoProvider = "demo"

// DefaultMinTextLength is the shortest normalized text worth analyzing, in runes.
const DefaultMinTextLength = 80

// Request is one analysis request from an authenticated caller.
type Request struct {
	RequestID string

	// UserID is the verified subject. Empty means unauthenticated.
	UserID string

	// FileURL is the presigned URL of the document.
	FileURL string

	// Demo asks for the fixed demo analysis.
	Demo bool
}

// Response is a successful analysis.
type Response struct {
	Result *analysis.Result `json:"result"`

	// Mode is the operating mode the request ran under.
	Mode string `json:"mode"`

	Provider string `json:"provider,omitempty"`

	// BudgetPercent is the spend after this request, rounded.
	BudgetPercent int `json:"budget_pct"`

	// BudgetWarning is set once this request reached the ceiling.
	BudgetWarning string `json:"budget_warn,omitempty"`

	TotalPages int  `json:"total_pages,omitempty"`
	Chunks     int  `json:"chunks,omitempty"`
	Demo       bool `json:"demo,omitempty"`
}

// Fetcher downloads a document. Implemented by *source.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, maxBytes int64) (*source.Document, error)
}

// Journal receives one evidence record per analysis. Implemented by
// *recorder.Recorder.
type Journal interface {
	Record(ctx context.Context, record *evidence.Record) error
}

// Observer receives request and usage events. Implemented by the metrics
// collector.
type Observer interface {
	RecordRequest(mode, outcome string, duration time.Duration)
	RecordDocument(pages, chunks int)
	RecordUsage(tokensIn, tokensOut int, costUSD float64)
	UpdateBudget(spentUSD, percent float64)
	SetMode(mode string)
}

// Components are the stores and services an Engine drives. Calculator must
// be the one the ledger prices with. Fetcher is required unless Orchestrator
// is nil. A nil Orchestrator means every request is answered with the demo
// analysis.
type Components struct {
	Modes        *modes.Controller
	Ledger       *ledger.Ledger
	Admission    *admission.Controller
	Fetcher      Fetcher
	Orchestrator *orchestrator.Orchestrator
	Calculator   *costs.Calculator
}

// Config tunes the engine.
type Config struct {
	// ForceDemo answers every request with the demo analysis.
	ForceDemo bool

	// MinTextLength is the shortest normalized text accepted, in runes.
	MinTextLength int
}

// Engine runs the analysis pipeline for one request at a time per caller.
// It is safe for concurrent use.
type Engine struct {
	components Components
	cfg        Config
	risk       *risk.Engine

	journal  Journal
	observer Observer
	tracer   trace.Tracer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal records an evidence entry for every analysis.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithObserver reports request, usage and budget events.
func WithObserver(obs Observer) Option {
	return func(e *Engine) { e.observer = obs }
}

// WithTracer overrides the tracer used for the request span.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithRiskEngine overrides the default override rules.
func WithRiskEngine(r *risk.Engine) Option {
	return func(e *Engine) { e.risk = r }
}

// WithClock overrides the clock used for record timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine.
func New(c Components, cfg Config, opts ...Option) (*Engine, error) {
	if c.Modes == nil || c.Ledger == nil || c.Admission == nil || c.Calculator == nil {
		return nil, errors.New("engine: modes, ledger, admission and calculator are required")
	}
	if c.Fetcher == nil && c.Orchestrator != nil {
		return nil, errors.New("engine: fetcher is required")
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = DefaultMinTextLength
	}

	e := &Engine{
		components: c,
		cfg:        cfg,
		risk:       risk.New(),
		tracer:     otel.Tracer("verdict/engine"),
		logger:     slog.Default().With("component", "engine"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Status is the operating state reported by the health endpoint.
type Status struct {
	Mode string `json:"mode"`

	// BudgetPercent is the month's spend, rounded.
	BudgetPercent int `json:"budget_pct"`

	Period string `json:"period"`
}

// Status returns the current mode and spend.
func (e *Engine) Status() Status {
	mode := e.components.Modes.Current()
	snap := e.components.Ledger.Snapshot()
	return Status{
		Mode:          mode.String(),
		BudgetPercent: int(math.Round(snap.BudgetPercent)),
		Period:        snap.Period,
	}
}

// Mode returns the current operating mode.
func (e *Engine) Mode() string {
	return e.components.Modes.Current().String()
}

// DemoOnly reports whether every request is answered with the demo analysis.
func (e *Engine) DemoOnly() bool {
	return e.cfg.ForceDemo || e.components.Orchestrator == nil
}

// Analyze runs req through the pipeline. A failure is always an *Error
// carrying the mode the request ran under.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Response, error) {
	start := e.now()
	ctx, span := e.tracer.Start(ctx, "engine.analyze")
	defer span.End()

	// Reading the mode also rolls the ledger into a new month.
	mode := e.components.Modes.Current()
	policy := e.components.Modes.PolicyFor(mode)

	demo := req.Demo || e.DemoOnly()
	tracing.SetRequestAttributes(span, req.RequestID, req.UserID, mode.String(), demo)

	rec := &evidence.Record{
		RequestID: req.RequestID,
		UserID:    req.UserID,
		Time:      start.UTC(),
		Mode:      mode.String(),
		Demo:      demo,
	}

	var resp *Response
	var err *Error
	if req.UserID == "" {
		err = newError(KindUnauthenticated, mode.String(), MsgUnauthorized, nil)
	} else if demo {
		resp = e.demo(mode)
		rec.Provider = DemoProvider
	} else {
		resp, err = e.run(ctx, span, req, policy, rec)
	}

	e.finish(ctx, span, rec, resp, err, start)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// demo answers with the fixed analysis. It takes no slot and spends nothing.
func (e *Engine) demo(mode modes.Mode) *Response {
	result, _ := e.risk.Finalize(analysis.Demo())
	snap := e.components.Ledger.Snapshot()
	return &Response{
		Result:        result,
		Mode:          mode.String(),
		Provider:      DemoProvider,
		BudgetPercent: int(math.Round(snap.BudgetPercent)),
		Demo:          true,
	}
}

func (e *Engine) run(ctx context.Context, span trace.Span, req Request, policy modes.Policy, rec *evidence.Record) (*Response, *Error) {
	mode := policy.Mode.String()

	if err := source.ValidateURL(req.FileURL); err != nil {
		return nil, newError(KindInvalidInput, mode, MsgInvalidURL, err)
	}

	if e.components.Ledger.Snapshot().Exhausted() {
		return nil, newError(KindBudgetExhausted, mode, MsgBudgetExhausted, nil)
	}

	release, err := e.components.Admission.Admit(req.UserID, policy)
	if err != nil {
		return nil, admissionError(mode, err)
	}
	defer release()

	doc, err := e.components.Fetcher.Fetch(ctx, strings.TrimSpace(req.FileURL), policy.MaxBytes)
	if err != nil {
		return nil, fetchError(mode, err)
	}

	sum := sha256.Sum256(doc.Bytes)
	rec.Fingerprint = hex.EncodeToString(sum[:])

	text, err := extract.Document(doc.Bytes, doc.ContentType, doc.URL, doc.SniffedType, policy.MaxPages, mode)
	if err != nil {
		return nil, extractError(mode, err)
	}
	rec.Pages = text.TotalPages
	if utf8.RuneCountInString(text.Text) < e.cfg.MinTextLength {
		return nil, newError(KindInvalidInput, mode, MsgNoText, nil)
	}

	chunks := chunking.Plan(text.Text, policy.ChunkSize, policy.ChunkOverlap)
	rec.Chunks = len(chunks)
	tracing.SetDocumentAttributes(span, text.TotalPages, len(chunks))
	if e.observer != nil {
		e.observer.RecordDocument(text.TotalPages, len(chunks))
	}

	outcome, err := e.components.Orchestrator.Analyze(ctx, orchestrator.Job{
		Chunks:      chunks,
		Fingerprint: rec.Fingerprint,
		Policy:      policy,
	})
	rec.Provider = outcome.Provider
	rec.Model = outcome.Model
	rec.Calls = outcome.Calls
	rec.CacheHits = outcome.CacheHits

	// Spend is booked whenever the provider was called, failed or not.
	var snap ledger.Snapshot
	if err == nil || outcome.Calls > 0 {
		snap = e.book(span, rec, outcome)
	}
	if err != nil {
		return nil, analysisError(mode, err)
	}

	result, fired := e.risk.Finalize(outcome.Result)
	rec.RiskScore = *result.RiskScore
	rec.RiskLabel = result.RiskLabel
	tracing.SetRiskAttributes(span, rec.RiskScore, rec.RiskLabel)
	if len(fired) > 0 {
		e.logger.DebugContext(ctx, "risk overrides applied", "rules", fired, "score", rec.RiskScore)
	}

	resp := &Response{
		Result:        result,
		Mode:          mode,
		Provider:      outcome.Provider,
		BudgetPercent: int(math.Round(snap.BudgetPercent)),
		TotalPages:    text.TotalPages,
		Chunks:        len(chunks),
	}
	if snap.Exhausted() {
		resp.BudgetWarning = MsgBudgetWarning
	}
	return resp, nil
}

// book adds the outcome's usage to the ledger and re-evaluates the mode.
func (e *Engine) book(span trace.Span, rec *evidence.Record, outcome *orchestrator.Outcome) ledger.Snapshot {
	snap := e.components.Ledger.Record(outcome.TokensIn, outcome.TokensOut)
	cost := e.components.Calculator.Cost(outcome.TokensIn, outcome.TokensOut)

	rec.TokensIn = int(outcome.TokensIn)
	rec.TokensOut = int(outcome.TokensOut)
	rec.EstimatedCost = cost
	tracing.SetUsageAttributes(span, rec.TokensIn, rec.TokensOut, cost)

	next := e.components.Modes.Current()
	if e.observer != nil {
		e.observer.RecordUsage(rec.TokensIn, rec.TokensOut, cost)
		e.observer.UpdateBudget(snap.CostUSD, snap.BudgetPercent)
		e.observer.SetMode(next.String())
	}
	return snap
}

// finish closes the span, reports the request and writes the journal entry.
func (e *Engine) finish(ctx context.Context, span trace.Span, rec *evidence.Record, resp *Response, err *Error, start time.Time) {
	rec.Duration = e.now().Sub(start)

	outcome := "ok"
	if resp != nil && resp.Demo {
		outcome = DemoProvider
	}
	if err != nil {
		outcome = string(err.Kind)
		rec.Status = evidence.StatusError
		rec.ErrorKind = string(err.Kind)
		rec.Error = err.Error()
		tracing.SetErrorKind(span, string(err.Kind), err)

		level := slog.LevelWarn
		if err.HTTPStatus() >= 500 {
			level = slog.LevelError
		}
		e.logger.Log(ctx, level, "analysis failed",
			"kind", err.Kind,
			"mode", err.Mode,
			"error", err.Error(),
		)
	} else {
		rec.Status = evidence.StatusSuccess
		tracing.SetStatus(span, nil)
		e.logger.InfoContext(ctx, "analysis complete",
			"mode", rec.Mode,
			"provider", rec.Provider,
			"pages", rec.Pages,
			"chunks", rec.Chunks,
			"score", rec.RiskScore,
			"duration_ms", rec.Duration.Milliseconds(),
		)
	}

	if e.observer != nil {
		e.observer.RecordRequest(rec.Mode, outcome, rec.Duration)
	}

	// Unauthenticated requests have no one to attribute a record to.
	if e.journal == nil || rec.UserID == "" {
		return
	}
	if jerr := e.journal.Record(context.WithoutCancel(ctx), rec); jerr != nil {
		e.logger.WarnContext(ctx, "failed to journal analysis", "error", jerr)
	}
}
