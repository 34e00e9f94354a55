// Package config provides configuration management for Verdict.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("verdict.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("verdict.yaml")
//
// Passing an empty path to LoadConfigWithEnvOverrides starts from Default().
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention VERDICT_SECTION_FIELD.
// For example:
//
//   - VERDICT_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - VERDICT_BUDGET_MONTHLY_USD overrides budget.monthly_usd
//   - VERDICT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// The short variables BUDGET_MONTH_USD, MODE, FORCE_DEMO, AI_PROVIDER,
// GEMINI_API_KEY, GEMINI_MODEL, VERTEX_PROJECT, VERTEX_LOCATION, VERTEX_MODEL,
// VERTEX_SA_KEY_JSON and JWT_SECRET are honored as aliases.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// The command layer keeps the loaded configuration in a process singleton:
//
//	if err := config.Initialize("verdict.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// Components never read the singleton; they receive the values they need.
//
// # Hot Reload
//
// Watcher re-reads the file on change. The server applies the new mode
// override, monthly budget and token prices to the running process; other
// sections take effect on restart.
//
// # Secret References
//
// Credential fields may hold ${secret:name}. References are resolved by the
// command layer, not by this package; see security/secrets.
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//
//	analyzer:
//	  provider: "gemini"
//	  gemini:
//	    api_key: "${secret:gemini-api-key}"
//
//	budget:
//	  monthly_usd: 20
//
//	security:
//	  secrets:
//	    dir: "/run/secrets"
//
//	evidence:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/evidence.db"
package config
