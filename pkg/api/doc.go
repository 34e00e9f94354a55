// Package api implements the HTTP surface of Verdict.
//
// The root package decodes analyze requests and renders JSON bodies:
//
//	{"ok":true,"result":{...},"mode":"normal","provider":"gemini","budget_pct":12,"total_pages":4,"chunks":2}
//	{"ok":false,"error":"Daily limit reached. Try tomorrow.","kind":"daily_cap_reached","mode":"light"}
//
// Every failure carries the operating mode. Errors from the engine already
// have it; Writer fills it in for failures raised by middleware and request
// parsing.
//
// Subpackages:
//   - middleware: request ID, logging, recovery, timeout and CORS
//   - handlers: analyze and health endpoints
package api
