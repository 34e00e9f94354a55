// Credential settings (the JWT secret, the Gemini API key and the Vertex
// service-account JSON) may hold a reference instead of a literal value:
//
//	security:
//	  authentication:
//	    jwt_secret: ${secret:jwt-secret}
//	analyzer:
//	  gemini:
//	    api_key: ${secret:gemini-api-key}
//
// References are resolved once at startup. The environment is tried first
// (VERDICT_SECRET_JWT_SECRET), then the configured secrets directory
// (security.secrets.dir/jwt-secret). An unresolved reference is a startup
// error, never an empty credential.
//
// # Usage
//
//	providers := []secrets.SecretProvider{secrets.NewEnvProvider(secrets.DefaultEnvPrefix)}
//	if dir != "" {
//	    fp, err := secrets.NewFileProvider(dir)
//	    if err != nil {
//	        return err
//	    }
//	    providers = append(providers, fp)
//	}
//	err := secrets.NewManager(providers...).ResolveFields(ctx, &cfg.Security.Authentication.JWTSecret)
package secrets
