// Package auth verifies the identity of analysis requests.
//
// Callers present an HS256-signed JWT as "Authorization: Bearer <token>".
// The verified user is the token's sub claim. When the request also carries
// the user header (X-User-Id by default) it must equal sub, otherwise the
// request is rejected as "Unauthorized (mismatch)".
//
// # Usage
//
//	verifier, err := auth.NewVerifier(cfg.Security.Authentication.JWTSecret,
//	    auth.WithLeeway(30*time.Second))
//	if err != nil {
//	    return err
//	}
//	handler = auth.NewMiddleware(verifier, writeUnauthorized).Handle(handler)
//
// Handlers read the user with auth.UserIDFromContext.
package auth
