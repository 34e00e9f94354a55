package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"verdict-hq/verdict/pkg/engine"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Mode  string `json:"mode"`
}

// AnalyzeResponse is the body of a successful analysis.
type AnalyzeResponse struct {
	OK bool `json:"ok"`
	*engine.Response
}

// WriteJSONResponse writes data as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// Writer renders responses. Failures raised outside the engine are stamped
// with the mode reported by the mode func.
type Writer struct {
	mode func() string
}

// NewWriter creates a Writer. mode may be nil.
func NewWriter(mode func() string) *Writer {
	if mode == nil {
		mode = func() string { return "" }
	}
	return &Writer{mode: mode}
}

// Success writes a successful analysis.
func (wr *Writer) Success(w http.ResponseWriter, r *http.Request, resp *engine.Response) {
	if err := WriteJSONResponse(w, http.StatusOK, AnalyzeResponse{OK: true, Response: resp}); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

// Error maps err with HandleError and writes it.
func (wr *Writer) Error(w http.ResponseWriter, r *http.Request, err error) {
	engErr := HandleError(err, wr.mode)
	body := ErrorResponse{
		Error: engErr.Message,
		Kind:  string(engErr.Kind),
		Mode:  engErr.Mode,
	}
	if werr := WriteJSONResponse(w, engErr.HTTPStatus(), body); werr != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", werr)
	}
}

// Fail writes a failure of the given kind.
func (wr *Writer) Fail(w http.ResponseWriter, r *http.Request, kind engine.Kind, message string) {
	wr.Error(w, r, &engine.Error{Kind: kind, Message: message})
}

// Unauthorized writes a 401. It satisfies auth.ErrorWriter.
func (wr *Writer) Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	wr.Fail(w, r, engine.KindUnauthenticated, message)
}

// HandleError converts any error into an *engine.Error. Engine errors pass
// through; a missing mode is filled from mode. Request errors become
// InvalidInput and anything else is Internal with a generic message.
func HandleError(err error, mode func() string) *engine.Error {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		out := *engErr
		if out.Mode == "" && mode != nil {
			out.Mode = mode()
		}
		return &out
	}

	current := ""
	if mode != nil {
		current = mode()
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return &engine.Error{Kind: engine.KindInvalidInput, Message: reqErr.Message, Mode: current, Err: err}
	}
	return &engine.Error{Kind: engine.KindInternal, Message: engine.MsgInternal, Mode: current, Err: err}
}
