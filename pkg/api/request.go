package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultMaxBodyBytes caps the analyze request body.
	DefaultMaxBodyBytes = 64 * 1024

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"

	// AnonymousUser is the caller of an unauthenticated deployment that sent
	// no user header.
	AnonymousUser = "anonymous"
)

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	// FileURL is a presigned URL of the contract.
	FileURL string `json:"fileUrl"`

	// Demo asks for the fixed demo analysis.
	Demo bool `json:"demo,omitempty"`
}

// RequestError is a body that could not be read or decoded.
type RequestError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the decode error.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// ParseAnalyzeRequest decodes the request body. Bodies over maxBytes (or
// DefaultMaxBodyBytes when not positive) are rejected. The URL itself is
// validated by the engine so the failure carries the active mode.
//
// Example usage:
//
//	req, err := api.ParseAnalyzeRequest(r, cfg.Server.MaxBodyBytes)
//	if err != nil {
//	    writer.Error(w, r, err)
//	    return
//	}
func ParseAnalyzeRequest(r *http.Request, maxBytes int64) (*AnalyzeRequest, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return nil, &RequestError{Message: "Failed to read request body", Cause: err}
	}
	if int64(len(body)) > maxBytes {
		return nil, &RequestError{Message: fmt.Sprintf("Request body exceeds %d bytes", maxBytes)}
	}

	var req AnalyzeRequest
	if len(strings.TrimSpace(string(body))) == 0 {
		return &req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{Message: "Invalid JSON body", Cause: err}
	}
	req.FileURL = strings.TrimSpace(req.FileURL)
	return &req, nil
}
