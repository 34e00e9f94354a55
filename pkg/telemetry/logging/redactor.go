package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks credentials in log messages and attributes.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Pattern names.
const (
	PatternBearerToken  = "bearer_token"
	PatternJWT          = "jwt"
	PatternGoogleAPIKey = "google_api_key"
	PatternKeyParam     = "key_param"
	PatternPrivateKey   = "private_key"
)

// NewRedactor creates a Redactor with the built-in credential patterns.
func NewRedactor() *Redactor {
	defs := []struct {
		name        string
		regex       string
		replacement string
	}{
		// Authorization header values
		{PatternBearerToken, `(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},

		// Bare JWTs (header.payload.signature)
		{PatternJWT, `eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]*`, "***jwt***"},

		// Gemini API keys
		{PatternGoogleAPIKey, `AIza[0-9A-Za-z_\-]{35}`, "AIza***"},

		// ?key=... in generateContent URLs that surface through url.Error
		{PatternKeyParam, `([?&]key=)[^&\s"]+`, "${1}***"},

		// Service-account private keys
		{PatternPrivateKey, `-----BEGIN [A-Z ]*PRIVATE KEY-----[^-]*-----END [A-Z ]*PRIVATE KEY-----`, "***private key***"},
	}

	r := &Redactor{patterns: make([]redactPattern, 0, len(defs))}
	for _, d := range defs {
		r.patterns = append(r.patterns, redactPattern{
			name:        d.name,
			regex:       regexp.MustCompile(d.regex),
			replacement: d.replacement,
		})
	}
	return r
}

// RedactString masks every credential pattern in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr returns attr with sensitive keys masked and string, error and
// group values scrubbed.
func (r *Redactor) RedactAttr(attr slog.Attr) slog.Attr {
	if isSensitiveKey(attr.Key) && attr.Value.Kind() != slog.KindGroup {
		return slog.String(attr.Key, maskValue(attr.Value.String()))
	}

	switch attr.Value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, r.RedactString(attr.Value.String()))
	case slog.KindGroup:
		group := attr.Value.Group()
		redacted := make([]any, 0, len(group))
		for _, a := range group {
			redacted = append(redacted, r.RedactAttr(a))
		}
		return slog.Group(attr.Key, redacted...)
	case slog.KindAny:
		if err, ok := attr.Value.Any().(error); ok && err != nil {
			msg := err.Error()
			if clean := r.RedactString(msg); clean != msg {
				return slog.String(attr.Key, clean)
			}
		}
	}
	return attr
}

// isSensitiveKey reports whether an attribute key names a credential.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	// Usage counters such as tokens_in are not credentials.
	if strings.Contains(lowerKey, "tokens") {
		return false
	}

	for _, sensitive := range []string{
		"password", "secret", "token", "api_key", "apikey",
		"authorization", "private_key", "sa_key",
	} {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// maskValue keeps a short prefix for correlation.
func maskValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return "***"
	}
	return v[:4] + "***"
}
