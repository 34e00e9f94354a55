// Package vertex implements the Vertex AI analyzer adapter.
//
// The adapter authenticates with a service-account key through
// golang.org/x/oauth2/google and calls
//
//	https://{location}-aiplatform.googleapis.com/v1/projects/{project}/locations/{location}/publishers/google/models/{model}:generateContent
//
// The model is pinned by configuration; the mode's model is ignored. A 400
// answer complaining about the model name format is reported as a
// providers.ConfigError so operators see a configuration problem rather than
// a provider outage.
package vertex
