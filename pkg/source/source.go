package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verdict-hq/verdict/pkg/telemetry/tracing"
)

// DefaultAllowedTypes are the content types accepted from the file store.
var DefaultAllowedTypes = []string{"application/pdf", "text/plain", "application/octet-stream"}

// Document is a downloaded file.
type Document struct {
	// URL is the address the document was fetched from.
	URL string

	// ContentType is the lowercased Content-Type header.
	ContentType string

	// SniffedType is the MIME type detected from the leading bytes.
	SniffedType string

	Bytes []byte
}

// Size returns the number of downloaded bytes.
func (d *Document) Size() int64 {
	return int64(len(d.Bytes))
}

// InvalidURLError is returned for anything but an absolute http(s) URL.
type InvalidURLError struct {
	URL string
}

// Error implements the error interface.
func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid file url %q: must be an http or https URL", e.URL)
}

// FetchError is returned when the file store is unreachable or answers non-2xx.
type FetchError struct {
	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Fetch failed: %d", e.StatusCode)
	}
	return fmt.Sprintf("Fetch failed: %v", e.Cause)
}

// Unwrap returns the transport error.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// UnsupportedTypeError is returned when the declared content type is not allowed.
type UnsupportedTypeError struct {
	ContentType string
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("Unsupported content-type: %s", e.ContentType)
}

// TooLargeError is returned when the declared or downloaded size exceeds the ceiling.
type TooLargeError struct {
	Limit int64

	// Size is the declared or observed size; at least Limit+1.
	Size int64
}

// Error implements the error interface.
func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file of %d bytes exceeds limit of %d bytes", e.Size, e.Limit)
}

// Config configures a Fetcher.
type Config struct {
	// Timeout bounds the whole download.
	Timeout time.Duration

	// AllowedTypes are matched as substrings of the Content-Type header.
	AllowedTypes []string

	// Client overrides the HTTP client.
	Client *http.Client
}

// Fetcher downloads documents from presigned URLs.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	allowed []string
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg Config) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	allowed := cfg.AllowedTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	return &Fetcher{
		client:  client,
		timeout: timeout,
		allowed: allowed,
		tracer:  otel.Tracer("verdict/source"),
		logger:  slog.Default().With("component", "source"),
	}
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return &InvalidURLError{URL: raw}
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	}
	return &InvalidURLError{URL: raw}
}

// Fetch downloads rawURL. The content type is checked first, then a declared
// Content-Length over maxBytes is rejected before reading, and the body is
// read with a ceiling of maxBytes+1 so an undeclared oversize is caught too.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, maxBytes int64) (*Document, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	ctx, span := f.tracer.Start(ctx, "source.fetch")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	doc, err := f.fetch(ctx, rawURL, maxBytes)
	if doc != nil {
		span.SetAttributes(
			attribute.String("verdict.source.content_type", doc.ContentType),
			attribute.Int64("verdict.source.bytes", doc.Size()),
		)
	}
	tracing.SetStatus(span, err)
	return doc, err
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, maxBytes int64) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &InvalidURLError{URL: rawURL}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !f.allowedType(contentType) {
		return nil, &UnsupportedTypeError{ContentType: contentType}
	}

	if declared := declaredLength(resp); declared > 0 && maxBytes > 0 && declared > maxBytes {
		return nil, &TooLargeError{Limit: maxBytes, Size: declared}
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &FetchError{Cause: fmt.Errorf("download timed out after %v", f.timeout)}
		}
		return nil, &FetchError{Cause: fmt.Errorf("failed to read body: %w", err)}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, &TooLargeError{Limit: maxBytes, Size: int64(len(data))}
	}

	doc := &Document{
		URL:         rawURL,
		ContentType: contentType,
		SniffedType: mimetype.Detect(data).String(),
		Bytes:       data,
	}

	f.logger.Debug("document fetched",
		"content_type", doc.ContentType,
		"sniffed_type", doc.SniffedType,
		"bytes", doc.Size(),
	)
	return doc, nil
}

func (f *Fetcher) allowedType(contentType string) bool {
	for _, t := range f.allowed {
		if strings.Contains(contentType, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func declaredLength(resp *http.Response) int64 {
	if resp.ContentLength > 0 {
		return resp.ContentLength
	}
	n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
