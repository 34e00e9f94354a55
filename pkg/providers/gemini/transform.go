package gemini

import (
	"encoding/json"
	"errors"
	"fmt"

	"verdict-hq/verdict/pkg/providers"
)

// The generateContent wire format is shared by the Gemini API and Vertex AI.

// Request represents a generateContent request body.
type Request struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// Content is one turn of the conversation.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a text fragment of a Content.
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig asks for schema-constrained JSON output.
type GenerationConfig struct {
	Temperature      float64         `json:"temperature"`
	MaxOutputTokens  int             `json:"maxOutputTokens"`
	ResponseMimeType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

// Response represents a generateContent response body.
type Response struct {
	Candidates   []Candidate `json:"candidates"`
	ModelVersion string      `json:"modelVersion,omitempty"`
}

// Candidate is one generated alternative.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// ErrorEnvelope is the error body returned on non-2xx answers.
type ErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// BuildRequest transforms a provider-agnostic request into the wire format.
func BuildRequest(req *providers.GenerateRequest) (*Request, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if req.Prompt == "" {
		return nil, errors.New("prompt cannot be empty")
	}
	if req.MaxOutputTokens <= 0 {
		return nil, fmt.Errorf("max output tokens must be positive, got %d", req.MaxOutputTokens)
	}

	return &Request{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: req.Prompt}},
		}},
		GenerationConfig: GenerationConfig{
			Temperature:      req.Temperature,
			MaxOutputTokens:  req.MaxOutputTokens,
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		},
	}, nil
}

// Text returns candidates[0].content.parts[0].text, or "" when any level is
// missing. An empty text is left to the caller's JSON parser to reject.
func (r *Response) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}

// ErrorMessage extracts error.message from an error body, falling back to the
// raw body.
func ErrorMessage(body string) string {
	var env ErrorEnvelope
	if err := json.Unmarshal([]byte(body), &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return body
}
