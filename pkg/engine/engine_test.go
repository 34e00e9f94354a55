package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"verdict-hq/verdict/pkg/cache"
	"verdict-hq/verdict/pkg/evidence"
	"verdict-hq/verdict/pkg/limits/admission"
	"verdict-hq/verdict/pkg/limits/ledger"
	"verdict-hq/verdict/pkg/limits/modes"
	"verdict-hq/verdict/pkg/orchestrator"
	"verdict-hq/verdict/pkg/processing/costs"
	"verdict-hq/verdict/pkg/providers"
	"verdict-hq/verdict/pkg/source"
)

const contractText = "The Artist agrees to deliver two studio albums during the term of this agreement. "

func payloadFor(summary string) string {
	return fmt.Sprintf(`{"summary":%q,"pros":[],"cons":[],"red_flags":[],"key_clauses":[],"questions_for_counterparty":[],"negotiation_levers":[]}`, summary)
}

// fakeAnalyzer answers every call with a valid payload unless err, text or
// panics is set.
type fakeAnalyzer struct {
	mu     sync.Mutex
	calls  int
	err    error
	text   string
	panics bool
}

func (f *fakeAnalyzer) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panics {
		panic("analyzer blew up")
	}
	if f.err != nil {
		return nil, f.err
	}
	text := f.text
	if text == "" {
		text = payloadFor(fmt.Sprintf("call %d", f.calls))
	}
	return &providers.GenerateResponse{Text: text, Model: req.Model}, nil
}

func (f *fakeAnalyzer) Name() string                 { return "fake" }
func (f *fakeAnalyzer) ResolveModel(m string) string { return m }

type fakeFetcher struct {
	mu    sync.Mutex
	doc   *source.Document
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string, maxBytes int64) (*source.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func textDoc(body string) *source.Document {
	return &source.Document{URL: "https://files.example.com/contract.txt", ContentType: "text/plain", Bytes: []byte(body)}
}

type memJournal struct {
	mu      sync.Mutex
	records []*evidence.Record
}

func (j *memJournal) Record(ctx context.Context, rec *evidence.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return nil
}

func (j *memJournal) last(t *testing.T) *evidence.Record {
	t.Helper()
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.records) == 0 {
		t.Fatal("Expected a journal record, got none")
	}
	return j.records[len(j.records)-1]
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	usage    int
	mode     string
}

func (o *recordingObserver) RecordRequest(mode, outcome string, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}
func (o *recordingObserver) RecordDocument(pages, chunks int) {}
func (o *recordingObserver) RecordUsage(in, out int, cost float64) {
	o.mu.Lock()
	o.usage++
	o.mu.Unlock()
}
func (o *recordingObserver) UpdateBudget(spent, pct float64) {}
func (o *recordingObserver) SetMode(mode string) {
	o.mu.Lock()
	o.mode = mode
	o.mu.Unlock()
}

type fixture struct {
	engine    *Engine
	ledger    *ledger.Ledger
	admission *admission.Controller
	modes     *modes.Controller
	analyzer  *fakeAnalyzer
	fetcher   *fakeFetcher
	journal   *memJournal
	observer  *recordingObserver
}

func newFixture(t *testing.T, budget float64, globalMax int) *fixture {
	t.Helper()
	calc := costs.NewCalculator(costs.Pricing{InputPerMillion: 0.30, OutputPerMillion: 2.50})
	l := ledger.New(budget, calc)
	f := &fixture{
		ledger:    l,
		admission: admission.NewController(globalMax),
		modes:     modes.NewController(l, modes.DefaultThresholds, "gemini-1.5-flash", nil),
		analyzer:  &fakeAnalyzer{},
		fetcher:   &fakeFetcher{doc: textDoc(strings.Repeat(contractText, 3))},
		journal:   &memJournal{},
		observer:  &recordingObserver{},
	}
	orch := orchestrator.New(f.analyzer, cache.New(24*time.Hour), orchestrator.DefaultConfig,
		orchestrator.WithSleeper(func(context.Context, time.Duration) error { return nil }),
		orchestrator.WithRand(func() float64 { return 0.5 }),
	)

	e, err := New(Components{
		Modes:        f.modes,
		Ledger:       l,
		Admission:    f.admission,
		Fetcher:      f.fetcher,
		Orchestrator: orch,
		Calculator:   calc,
	}, Config{}, WithJournal(f.journal), WithObserver(f.observer))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	f.engine = e
	return f
}

func request() Request {
	return Request{RequestID: "req-1", UserID: "user-1", FileURL: "https://files.example.com/contract.txt?sig=abc"}
}

func expectKind(t *testing.T, err error, kind Kind, status int) *Error {
	t.Helper()
	var engErr *Error
	if !errors.As(err, &engErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if engErr.Kind != kind {
		t.Errorf("Expected kind %s, got %s (%v)", kind, engErr.Kind, err)
	}
	if engErr.HTTPStatus() != status {
		t.Errorf("Expected status %d, got %d", status, engErr.HTTPStatus())
	}
	return engErr
}

// ============================================================================
// Construction
// ============================================================================

func TestNew_RequiresStores(t *testing.T) {
	if _, err := New(Components{}, Config{}); err == nil {
		t.Error("Expected error for missing components")
	}
}

func TestNew_NilOrchestratorIsDemoOnly(t *testing.T) {
	calc := costs.NewCalculator(costs.Pricing{})
	l := ledger.New(20, calc)
	e, err := New(Components{
		Modes:      modes.NewController(l, modes.DefaultThresholds, "m", nil),
		Ledger:     l,
		Admission:  admission.NewController(1),
		Calculator: calc,
	}, Config{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if !e.DemoOnly() {
		t.Error("Expected demo-only engine without an orchestrator")
	}

	resp, err := e.Analyze(context.Background(), request())
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if !resp.Demo {
		t.Error("Expected demo response")
	}
}

// ============================================================================
// Success Path
// ============================================================================

func TestAnalyze_Success(t *testing.T) {
	f := newFixture(t, 20, 3)

	resp, err := f.engine.Analyze(context.Background(), request())
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if resp.Mode != "normal" {
		t.Errorf("Expected normal mode, got %q", resp.Mode)
	}
	if resp.Provider != "fake" {
		t.Errorf("Expected provider fake, got %q", resp.Provider)
	}
	if resp.TotalPages != 1 || resp.Chunks != 1 {
		t.Errorf("Expected 1 page and 1 chunk, got %d and %d", resp.TotalPages, resp.Chunks)
	}
	if resp.Result.RiskScore == nil || resp.Result.RiskLabel == "" {
		t.Errorf("Expected finalized score and label, got %+v", resp.Result)
	}
	if resp.BudgetWarning != "" {
		t.Errorf("Expected no budget warning, got %q", resp.BudgetWarning)
	}

	// One chunk call plus the merge.
	if f.analyzer.calls != 2 {
		t.Errorf("Expected 2 analyzer calls, got %d", f.analyzer.calls)
	}

	snap := f.ledger.Snapshot()
	if snap.Calls != 1 || snap.TokensIn == 0 || snap.TokensOut == 0 {
		t.Errorf("Expected usage booked once, got %+v", snap)
	}
	if q := f.admission.Snapshot("user-1"); q.Count != 1 || q.Active != 0 {
		t.Errorf("Expected 1 admission and no active slot, got %+v", q)
	}
	if f.admission.GlobalActive() != 0 {
		t.Errorf("Expected global slot released, got %d", f.admission.GlobalActive())
	}
}

func TestAnalyze_JournalsSuccess(t *testing.T) {
	f := newFixture(t, 20, 3)

	if _, err := f.engine.Analyze(context.Background(), request()); err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}

	rec := f.journal.last(t)
	if rec.Status != evidence.StatusSuccess {
		t.Errorf("Expected success status, got %q", rec.Status)
	}
	if rec.RequestID != "req-1" || rec.UserID != "user-1" {
		t.Errorf("Expected request identity, got %q/%q", rec.RequestID, rec.UserID)
	}
	if len(rec.Fingerprint) != 64 {
		t.Errorf("Expected sha256 hex fingerprint, got %q", rec.Fingerprint)
	}
	if rec.Provider != "fake" || rec.Model != "gemini-1.5-flash" {
		t.Errorf("Expected fake/gemini-1.5-flash, got %s/%s", rec.Provider, rec.Model)
	}
	if rec.Calls != 2 || rec.Chunks != 1 || rec.Pages != 1 {
		t.Errorf("Unexpected document counters: %+v", rec)
	}
	if rec.TokensIn == 0 || rec.EstimatedCost <= 0 {
		t.Errorf("Expected usage on the record, got in=%d cost=%f", rec.TokensIn, rec.EstimatedCost)
	}
	if rec.RiskLabel == "" {
		t.Error("Expected risk label on the record")
	}
}

func TestAnalyze_ReplayUsesCache(t *testing.T) {
	f := newFixture(t, 20, 3)

	first, err := f.engine.Analyze(context.Background(), request())
	if err != nil {
		t.Fatalf("First Analyze() failed: %v", err)
	}
	second, err := f.engine.Analyze(context.Background(), request())
	if err != nil {
		t.Fatalf("Second Analyze() failed: %v", err)
	}

	if f.analyzer.calls != 2 {
		t.Errorf("Expected no new analyzer calls on replay, got %d total", f.analyzer.calls)
	}
	if first.Result.Summary != second.Result.Summary {
		t.Errorf("Expected identical results, got %q and %q", first.Result.Summary, second.Result.Summary)
	}
	if rec := f.journal.last(t); rec.CacheHits != 2 {
		t.Errorf("Expected 2 cache hits, got %d", rec.CacheHits)
	}
}

func TestAnalyze_BudgetWarningAndModeReport(t *testing.T) {
	// Any spend exhausts a budget this small.
	f := newFixture(t, 0.000001, 3)

	resp, err := f.engine.Analyze(context.Background(), request())
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if resp.BudgetWarning != MsgBudgetWarning {
		t.Errorf("Expected budget warning, got %q", resp.BudgetWarning)
	}
	if resp.BudgetPercent != 100 {
		t.Errorf("Expected budget_pct 100, got %d", resp.BudgetPercent)
	}
	if resp.Mode != "normal" {
		t.Errorf("Expected the mode the request ran under, got %q", resp.Mode)
	}
	if f.observer.mode != "critical" {
		t.Errorf("Expected re-evaluated mode critical, got %q", f.observer.mode)
	}

	_, err = f.engine.Analyze(context.Background(), request())
	engErr := expectKind(t, err, KindBudgetExhausted, http.StatusPaymentRequired)
	if engErr.Mode != "critical" {
		t.Errorf("Expected failure to carry critical mode, got %q", engErr.Mode)
	}
}

// ============================================================================
// Demo
// ============================================================================

func TestAnalyze_Demo(t *testing.T) {
	f := newFixture(t, 20, 3)
	req := request()
	req.Demo = true
	req.FileURL = ""

	resp, err := f.engine.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if !resp.Demo || resp.Provider != DemoProvider {
		t.Errorf("Expected demo response, got %+v", resp)
	}
	if resp.Result.RiskScore == nil || *resp.Result.RiskScore > 10 {
		t.Errorf("Expected the income override to cap the demo score at 10, got %v", resp.Result.RiskScore)
	}
	if f.fetcher.calls != 0 || f.analyzer.calls != 0 {
		t.Error("Expected demo to skip fetch and analysis")
	}
	if q := f.admission.Snapshot("user-1"); q.Count != 0 {
		t.Errorf("Expected demo to take no admission, got %+v", q)
	}
	if snap := f.ledger.Snapshot(); snap.Calls != 0 {
		t.Errorf("Expected demo to leave the ledger alone, got %+v", snap)
	}
	if rec := f.journal.last(t); !rec.Demo || rec.Provider != DemoProvider {
		t.Errorf("Expected demo journal record, got %+v", rec)
	}
	if f.observer.outcomes[0] != "demo" {
		t.Errorf("Expected demo outcome, got %v", f.observer.outcomes)
	}
}

// ============================================================================
// Rejections
// ============================================================================

func TestAnalyze_Unauthenticated(t *testing.T) {
	f := newFixture(t, 20, 3)
	req := request()
	req.UserID = ""

	_, err := f.engine.Analyze(context.Background(), req)
	expectKind(t, err, KindUnauthenticated, http.StatusUnauthorized)
	if len(f.journal.records) != 0 {
		t.Error("Expected no journal record without a user")
	}
}

func TestAnalyze_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://files.example.com/a.pdf", "/relative/path.pdf"} {
		t.Run(raw, func(t *testing.T) {
			f := newFixture(t, 20, 3)
			req := request()
			req.FileURL = raw

			_, err := f.engine.Analyze(context.Background(), req)
			engErr := expectKind(t, err, KindInvalidInput, http.StatusBadRequest)
			if engErr.Message != MsgInvalidURL {
				t.Errorf("Expected %q, got %q", MsgInvalidURL, engErr.Message)
			}
			if engErr.Mode != "normal" {
				t.Errorf("Expected mode on the failure, got %q", engErr.Mode)
			}
			if f.admission.Snapshot("user-1").Count != 0 {
				t.Error("Expected no admission for an invalid URL")
			}
		})
	}
}

func TestAnalyze_BudgetExhaustedBeforeAdmission(t *testing.T) {
	f := newFixture(t, 0, 3)

	_, err := f.engine.Analyze(context.Background(), request())
	engErr := expectKind(t, err, KindBudgetExhausted, http.StatusPaymentRequired)
	if engErr.Message != MsgBudgetExhausted {
		t.Errorf("Expected %q, got %q", MsgBudgetExhausted, engErr.Message)
	}
	if f.admission.Snapshot("user-1").Count != 0 {
		t.Error("Expected no admission when the budget is spent")
	}
	if rec := f.journal.last(t); rec.ErrorKind != string(KindBudgetExhausted) || !rec.Failed() {
		t.Errorf("Expected failed journal record, got %+v", rec)
	}
}

func TestAnalyze_AdmissionDenials(t *testing.T) {
	policy := modes.PolicyFor(modes.Normal, "gemini-1.5-flash")

	t.Run("daily cap", func(t *testing.T) {
		f := newFixture(t, 20, 3)
		for i := 0; i < policy.DailyCap; i++ {
			release, err := f.admission.Admit("user-1", policy)
			if err != nil {
				t.Fatalf("Admit %d failed: %v", i, err)
			}
			release()
		}
		_, err := f.engine.Analyze(context.Background(), request())
		engErr := expectKind(t, err, KindDailyCapReached, http.StatusTooManyRequests)
		if engErr.Message != MsgDailyCap {
			t.Errorf("Expected %q, got %q", MsgDailyCap, engErr.Message)
		}
	})

	t.Run("user busy", func(t *testing.T) {
		f := newFixture(t, 20, 5)
		for i := 0; i < policy.MaxConcurrentPerUser; i++ {
			if _, err := f.admission.Admit("user-1", policy); err != nil {
				t.Fatalf("Admit %d failed: %v", i, err)
			}
		}
		_, err := f.engine.Analyze(context.Background(), request())
		expectKind(t, err, KindUserBusy, http.StatusTooManyRequests)
	})

	t.Run("server busy releases the user slot", func(t *testing.T) {
		f := newFixture(t, 20, 1)
		if _, err := f.admission.Admit("someone-else", policy); err != nil {
			t.Fatalf("Admit failed: %v", err)
		}
		_, err := f.engine.Analyze(context.Background(), request())
		expectKind(t, err, KindServerBusy, http.StatusTooManyRequests)
		if q := f.admission.Snapshot("user-1"); q.Active != 0 {
			t.Errorf("Expected user slot given back, got %+v", q)
		}
	})
}

// ============================================================================
// Document Failures
// ============================================================================

func TestAnalyze_FetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    Kind
		status  int
		message string
	}{
		{"too large", &source.TooLargeError{Limit: 10, Size: 11}, KindTooLarge, 413, "File too large for normal mode."},
		{"content type", &source.UnsupportedTypeError{ContentType: "application/zip"}, KindUnsupportedType, 415, "Unsupported content-type: application/zip"},
		{"upstream status", &source.FetchError{StatusCode: 403}, KindFetchFailed, 500, "Fetch failed: 403"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 20, 3)
			f.fetcher.err = tt.err

			_, err := f.engine.Analyze(context.Background(), request())
			engErr := expectKind(t, err, tt.kind, tt.status)
			if engErr.Message != tt.message {
				t.Errorf("Expected %q, got %q", tt.message, engErr.Message)
			}
			if f.admission.Snapshot("user-1").Active != 0 {
				t.Error("Expected slot released after failure")
			}
			if f.ledger.Snapshot().Calls != 0 {
				t.Error("Expected no usage booked without provider calls")
			}
		})
	}
}

func TestAnalyze_UnsupportedDocument(t *testing.T) {
	f := newFixture(t, 20, 3)
	f.fetcher.doc = &source.Document{URL: "https://files.example.com/a.bin", ContentType: "application/octet-stream", Bytes: []byte("PK\x03\x04")}

	_, err := f.engine.Analyze(context.Background(), request())
	engErr := expectKind(t, err, KindUnsupportedType, http.StatusUnsupportedMediaType)
	if !strings.HasPrefix(engErr.Message, "Unsupported file type.") {
		t.Errorf("Unexpected message %q", engErr.Message)
	}
}

func TestAnalyze_ShortText(t *testing.T) {
	f := newFixture(t, 20, 3)
	f.fetcher.doc = textDoc("  too short  \n\n\n\n")

	_, err := f.engine.Analyze(context.Background(), request())
	engErr := expectKind(t, err, KindInvalidInput, http.StatusBadRequest)
	if engErr.Message != MsgNoText {
		t.Errorf("Expected %q, got %q", MsgNoText, engErr.Message)
	}
	if f.analyzer.calls != 0 {
		t.Error("Expected no analyzer calls for short text")
	}
}

func TestAnalyze_MinTextCountsRunes(t *testing.T) {
	f := newFixture(t, 20, 3)
	// 80 runes, 160 bytes.
	f.fetcher.doc = textDoc(strings.Repeat("é", 80))

	if _, err := f.engine.Analyze(context.Background(), request()); err != nil {
		t.Errorf("Expected 80 runes to be accepted, got %v", err)
	}
}

// ============================================================================
// Provider Failures
// ============================================================================

func TestAnalyze_ProviderFailureBooksUsage(t *testing.T) {
	f := newFixture(t, 20, 3)
	f.analyzer.err = &providers.AuthError{Provider: "fake", Message: "bad key"}

	_, err := f.engine.Analyze(context.Background(), request())
	engErr := expectKind(t, err, KindProviderFailed, http.StatusInternalServerError)
	if engErr.Message != MsgProvider {
		t.Errorf("Expected generic provider message, got %q", engErr.Message)
	}
	if strings.Contains(engErr.Message, "bad key") {
		t.Error("Expected provider detail to stay out of the message")
	}

	if snap := f.ledger.Snapshot(); snap.Calls != 1 {
		t.Errorf("Expected the failed request to be booked, got %+v", snap)
	}
	rec := f.journal.last(t)
	if rec.Status != evidence.StatusError || rec.ErrorKind != string(KindProviderFailed) {
		t.Errorf("Expected failed record, got %+v", rec)
	}
	if rec.Calls != 1 {
		t.Errorf("Expected 1 call on the record, got %d", rec.Calls)
	}
	if f.observer.usage != 1 {
		t.Errorf("Expected usage reported once, got %d", f.observer.usage)
	}
}

// ============================================================================
// Slot Release
// ============================================================================

func expectSlotsFree(t *testing.T, f *fixture) {
	t.Helper()
	if q := f.admission.Snapshot("user-1"); q.Active != 0 {
		t.Errorf("Expected user slot released, got %d active", q.Active)
	}
	if n := f.admission.GlobalActive(); n != 0 {
		t.Errorf("Expected global slot released, got %d active", n)
	}
}

func TestAnalyze_FailuresReleaseSlots(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		kind  Kind
	}{
		{"provider failure", func(f *fixture) {
			f.analyzer.err = &providers.AuthError{Provider: "fake", Message: "bad key"}
		}, KindProviderFailed},
		{"transient provider failure", func(f *fixture) {
			f.analyzer.err = &providers.ProviderError{Provider: "fake", StatusCode: 503, Message: "overloaded"}
		}, KindProviderFailed},
		{"unparseable analyzer output", func(f *fixture) {
			f.analyzer.text = "I cannot help with that."
		}, KindProviderFailed},
		{"unsupported document", func(f *fixture) {
			f.fetcher.doc = &source.Document{URL: "https://files.example.com/a.bin", ContentType: "application/octet-stream", Bytes: []byte("PK\x03\x04")}
		}, KindUnsupportedType},
		{"short text", func(f *fixture) {
			f.fetcher.doc = textDoc("too short")
		}, KindInvalidInput},
		{"fetch failure", func(f *fixture) {
			f.fetcher.err = &source.FetchError{StatusCode: 404}
		}, KindFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 20, 3)
			tt.setup(f)

			_, err := f.engine.Analyze(context.Background(), request())
			var engErr *Error
			if !errors.As(err, &engErr) || engErr.Kind != tt.kind {
				t.Fatalf("Expected kind %s, got %v", tt.kind, err)
			}
			expectSlotsFree(t, f)

			// A freed slot admits the next request.
			f.analyzer.err, f.analyzer.text = nil, ""
			f.fetcher.err, f.fetcher.doc = nil, textDoc(strings.Repeat(contractText, 3))
			if _, err := f.engine.Analyze(context.Background(), request()); err != nil {
				t.Errorf("Expected follow-up request to succeed, got %v", err)
			}
			expectSlotsFree(t, f)
		})
	}
}

func TestAnalyze_PanicReleasesSlots(t *testing.T) {
	f := newFixture(t, 20, 1)
	f.analyzer.panics = true

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected the analyzer panic to propagate")
			}
		}()
		f.engine.Analyze(context.Background(), request())
	}()
	expectSlotsFree(t, f)

	f.analyzer.panics = false
	if _, err := f.engine.Analyze(context.Background(), request()); err != nil {
		t.Errorf("Expected the server slot to be usable after a panic, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t, 0.000001, 3)

	before := f.engine.Status()
	if before.Mode != "normal" || before.BudgetPercent != 0 {
		t.Errorf("Expected fresh normal status, got %+v", before)
	}
	if len(before.Period) != len("2006-01") {
		t.Errorf("Expected YYYY-MM period, got %q", before.Period)
	}

	if _, err := f.engine.Analyze(context.Background(), request()); err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	after := f.engine.Status()
	if after.Mode != "critical" || after.BudgetPercent != 100 {
		t.Errorf("Expected critical at 100%%, got %+v", after)
	}
	if f.engine.Mode() != "critical" {
		t.Errorf("Expected Mode() critical, got %q", f.engine.Mode())
	}
}

// ============================================================================
// Error Mapping
// ============================================================================

func TestAnalysisError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"chunk", &orchestrator.StageError{Stage: orchestrator.StageChunk, Err: errors.New("x")}, KindProviderFailed},
		{"merge", &orchestrator.StageError{Stage: orchestrator.StageMerge, Index: -1, Err: errors.New("x")}, KindMergeFailed},
		{"other", errors.New("no chunks to analyze"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysisError("light", tt.err)
			if got.Kind != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Kind)
			}
			if got.Mode != "light" {
				t.Errorf("Expected mode light, got %q", got.Mode)
			}
			if !errors.Is(got, tt.err) {
				t.Error("Expected cause to be unwrappable")
			}
		})
	}
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		KindUnauthenticated:  401,
		KindInvalidInput:     400,
		KindTooLarge:         413,
		KindUnsupportedType:  415,
		KindBudgetExhausted:  402,
		KindDailyCapReached:  429,
		KindUserBusy:         429,
		KindServerBusy:       429,
		KindExtractionFailed: 500,
		KindFetchFailed:      500,
		KindProviderFailed:   500,
		KindMergeFailed:      500,
		KindTimeout:          504,
		KindInternal:         500,
	}
	for kind, want := range tests {
		if got := kind.HTTPStatus(); got != want {
			t.Errorf("%s: expected %d, got %d", kind, want, got)
		}
	}
}
