package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"verdict-hq/verdict/pkg/api"
	"verdict-hq/verdict/pkg/api/middleware"
	"verdict-hq/verdict/pkg/engine"
	"verdict-hq/verdict/pkg/security/auth"
)

// Analyzer runs one analysis. Implemented by *engine.Engine.
type Analyzer interface {
	Analyze(ctx context.Context, req engine.Request) (*engine.Response, error)
}

// AnalyzeHandler serves POST /v1/analyze.
type AnalyzeHandler struct {
	engine       Analyzer
	writer       *api.Writer
	maxBodyBytes int64

	// userHeader names the caller when authentication is disabled.
	// Empty means authentication is on and the user comes from the token.
	userHeader string
}

// AnalyzeOption configures an AnalyzeHandler.
type AnalyzeOption func(*AnalyzeHandler)

// WithMaxBodyBytes caps the request body.
func WithMaxBodyBytes(n int64) AnalyzeOption {
	return func(h *AnalyzeHandler) { h.maxBodyBytes = n }
}

// WithUnverifiedUser trusts header for the caller identity, falling back
// to api.AnonymousUser. Only for deployments with authentication disabled.
func WithUnverifiedUser(header string) AnalyzeOption {
	return func(h *AnalyzeHandler) {
		if header == "" {
			header = auth.DefaultUserHeader
		}
		h.userHeader = header
	}
}

// NewAnalyzeHandler creates the analyze handler.
func NewAnalyzeHandler(e Analyzer, writer *api.Writer, opts ...AnalyzeOption) *AnalyzeHandler {
	h := &AnalyzeHandler{engine: e, writer: writer, maxBodyBytes: api.DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		h.writer.Fail(w, r, engine.KindInvalidInput, "Method not allowed")
		return
	}

	ctx := r.Context()
	body, err := api.ParseAnalyzeRequest(r, h.maxBodyBytes)
	if err != nil {
		h.writer.Error(w, r, err)
		return
	}

	req := engine.Request{
		RequestID: middleware.GetRequestID(ctx),
		UserID:    h.user(r),
		FileURL:   body.FileURL,
		Demo:      body.Demo,
	}

	slog.DebugContext(ctx, "analysis requested",
		"user_id", req.UserID,
		"demo", req.Demo,
	)

	resp, err := h.engine.Analyze(ctx, req)
	if err != nil {
		h.writer.Error(w, r, err)
		return
	}
	h.writer.Success(w, r, resp)
}

// user returns the verified subject, or the unverified header when
// authentication is disabled.
func (h *AnalyzeHandler) user(r *http.Request) string {
	if id, ok := auth.UserIDFromContext(r.Context()); ok {
		return id
	}
	if h.userHeader == "" {
		return ""
	}
	if id := strings.TrimSpace(r.Header.Get(h.userHeader)); id != "" {
		return id
	}
	return api.AnonymousUser
}
