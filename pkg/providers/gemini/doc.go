// Package gemini implements the Gemini API analyzer adapter.
//
// Requests go to {base}/v1beta/models/{model}:generateContent?key={apiKey}
// with generationConfig asking for application/json output constrained by
// the response schema. The generated text is read from
// candidates[0].content.parts[0].text.
//
// The wire types in this package are shared with the vertex adapter, which
// speaks the same generateContent format.
//
// # Basic Usage
//
//	provider, err := gemini.NewProvider(gemini.Config{
//	    ProviderConfig: providers.ProviderConfig{Timeout: 60 * time.Second},
//	    APIKey:         os.Getenv("GEMINI_API_KEY"),
//	    DefaultModel:   "gemini-1.5-flash",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
package gemini
