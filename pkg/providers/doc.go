// Package providers defines the analyzer abstraction used to call hosted
// language models, together with the HTTP plumbing shared by the concrete
// adapters.
//
// # Architecture
//
//  1. Analyzer interface - one structured generation call per Generate
//  2. HTTPProvider - connection pooling, per-call timeout, status classification, health
//  3. Adapters - gemini (API key) and vertex (service-account OAuth2)
//  4. RateLimited - a process-wide requests-per-second guard in front of any Analyzer
//
// # Error Classification
//
// Adapters never retry. They return typed errors and callers decide:
//
//   - RateLimitError (429), ProviderError with 500 or 503, TimeoutError: transient
//   - AuthError, ConfigError, ParseError, any other status: fatal
//
// IsTransient encodes that split and is what the orchestrator's retry policy
// consults.
//
// # Basic Usage
//
//	analyzer, err := gemini.NewProvider(gemini.Config{APIKey: key, DefaultModel: "gemini-1.5-flash"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	guarded := providers.NewRateLimited(analyzer, 2, 2)
//
//	resp, err := guarded.Generate(ctx, &providers.GenerateRequest{
//	    Prompt:          prompt,
//	    Schema:          analysis.Schema(),
//	    MaxOutputTokens: 900,
//	    Model:           guarded.ResolveModel("gemini-1.5-flash"),
//	    Temperature:     0.2,
//	})
package providers
