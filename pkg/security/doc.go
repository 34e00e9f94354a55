/*
Package security groups request authentication and credential handling.

# Authentication

auth verifies HS256 bearer tokens on the analyze endpoint and puts the
token subject on the request context:

	verifier, err := auth.NewVerifier(secret, auth.WithLeeway(30*time.Second))
	if err != nil {
		return err
	}
	mw := auth.NewMiddleware(verifier, writer.Unauthorized)
	mux.Handle("/v1/analyze", mw.Handle(analyze))

# Secret References

secrets resolves ${secret:name} references in credential settings from the
environment or a mounted secrets directory:

	m := secrets.NewManager(secrets.NewEnvProvider(secrets.DefaultEnvPrefix))
	err := m.ResolveFields(ctx, &cfg.Analyzer.Gemini.APIKey)
*/
package security
