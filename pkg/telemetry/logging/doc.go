// Package logging builds the process slog.Logger.
//
// # Overview
//
// New wraps a JSON or text handler from log/slog with two layers:
//   - a context layer that adds request_id and user_id from the context
//     passed to InfoContext and friends
//   - an optional redaction layer that masks bearer tokens, JWTs, Gemini API
//     keys, key= URL parameters and service-account private keys
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stdout))
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, requestID)
//	slog.InfoContext(ctx, "analysis started") // includes request_id
package logging
