package providers

import "context"

// Analyzer is the contract every model adapter implements. A single call is
// a single attempt: retries and pacing belong to the caller.
//
// Implementations must respect context cancellation and classify failures
// with the typed errors in this package so IsTransient can tell retryable
// outcomes from fatal ones.
//
// Example usage:
//
//	resp, err := analyzer.Generate(ctx, &providers.GenerateRequest{
//	    Prompt:          prompt,
//	    Schema:          analysis.Schema(),
//	    MaxOutputTokens: 900,
//	    Model:           analyzer.ResolveModel(policy.Model),
//	})
//	if err != nil {
//	    return err
//	}
//	payload, err := analysis.Extract(resp.Text)
type Analyzer interface {
	// Generate sends one structured generation request.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider identifier used in cache keys and responses.
	Name() string

	// ResolveModel maps the mode's requested model to the one the provider
	// will actually call.
	ResolveModel(requested string) string
}

// HealthReporter is implemented by analyzers that track request outcomes.
type HealthReporter interface {
	GetHealth() ProviderHealth
	IsHealthy() bool
}
