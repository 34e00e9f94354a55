package providers

import (
	"encoding/json"
	"time"
)

// GenerateRequest is a provider-agnostic structured generation request.
type GenerateRequest struct {
	// Prompt is the full user prompt sent as a single content part
	Prompt string

	// Schema is the JSON schema the response must follow
	Schema json.RawMessage

	// MaxOutputTokens caps the generated output
	MaxOutputTokens int

	// Model is the requested model; providers may pin their own (see ResolveModel)
	Model string

	// Temperature is the sampling temperature
	Temperature float64
}

// GenerateResponse carries the raw text produced by the provider.
type GenerateResponse struct {
	// Text is candidates[0].content.parts[0].text, empty when absent
	Text string

	// Model is the model that actually served the request
	Model string

	// Latency is the wall time of the HTTP exchange
	Latency time.Duration
}

// ProviderHealth contains health status information for a provider.
type ProviderHealth struct {
	// IsHealthy indicates whether the provider is currently healthy
	IsHealthy bool

	// LastCheck is the timestamp of the last recorded outcome
	LastCheck time.Time

	// LastError is the most recent error encountered (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential failed requests
	ConsecutiveFailures int

	// LastSuccessfulRequest is the timestamp of the last successful request
	LastSuccessfulRequest time.Time

	// TotalRequests is the total number of requests sent to this provider
	TotalRequests int64

	// FailedRequests is the total number of failed requests
	FailedRequests int64
}

// ProviderConfig contains the transport settings shared by HTTP adapters.
type ProviderConfig struct {
	// Name is the provider identifier ("gemini", "vertex")
	Name string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// Timeout is the per-call deadline
	Timeout time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// UnhealthyAfter is the number of consecutive failures that marks a provider unhealthy.
const UnhealthyAfter = 3
