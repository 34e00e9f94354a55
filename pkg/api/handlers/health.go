package handlers

import (
	"log/slog"
	"net/http"

	"verdict-hq/verdict/pkg/api"
	"verdict-hq/verdict/pkg/engine"
	"verdict-hq/verdict/pkg/telemetry/health"
)

// StatusReporter reports the operating state. Implemented by *engine.Engine.
type StatusReporter interface {
	Status() engine.Status
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Mode          string `json:"mode"`
	BudgetPercent int    `json:"budget_pct"`
	Period        string `json:"period"`
}

// HealthHandler serves the liveness probe. It always answers 200 while the
// process is up and reports the mode and spend alongside.
type HealthHandler struct {
	reporter StatusReporter
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(reporter StatusReporter) *HealthHandler {
	return &HealthHandler{reporter: reporter}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st := h.reporter.Status()
	resp := HealthResponse{
		Status:        health.StatusOK,
		Mode:          st.Mode,
		BudgetPercent: st.BudgetPercent,
		Period:        st.Period,
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := api.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write health response", "error", err)
	}
}
