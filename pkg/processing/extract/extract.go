package extract

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Kind is the extractor chosen for a document.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPDF
	KindText
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindText:
		return "text"
	}
	return "unsupported"
}

// UnsupportedError is returned when a document is neither PDF nor text.
type UnsupportedError struct {
	ContentType string
	URL         string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("Unsupported file type. content-type=%s url=%s", e.ContentType, e.URL)
}

// ExtractionError is returned when a document cannot be read.
type ExtractionError struct {
	Kind  Kind
	Cause error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s text: %v", e.Kind, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Classify picks the extractor. A document is PDF when its content type
// mentions pdf, or when it is application/octet-stream and either the URL or
// the sniffed bytes say PDF. It is text when the content type is text/* or
// the URL path ends in .txt.
func Classify(contentType, rawURL, sniffedType string) Kind {
	ct := strings.ToLower(contentType)
	u := strings.ToLower(rawURL)

	if strings.Contains(ct, "pdf") {
		return KindPDF
	}
	if strings.Contains(ct, "octet-stream") &&
		(strings.Contains(u, ".pdf") || strings.HasPrefix(strings.ToLower(sniffedType), "application/pdf")) {
		return KindPDF
	}
	if strings.HasPrefix(ct, "text/") || strings.HasSuffix(urlPath(u), ".txt") {
		return KindText
	}
	return KindUnsupported
}

// urlPath drops the query string so presigned URLs still match on extension.
func urlPath(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}

// Result is the extracted, normalized text of a document.
type Result struct {
	Text       string
	TotalPages int
	Kind       Kind
	Truncated  bool
}

// Document extracts and normalizes the text of data. PDFs are read up to
// pageCap pages; when the document is longer a truncation marker naming
// mode is appended. Plain text counts as one page.
func Document(data []byte, contentType, rawURL, sniffedType string, pageCap int, mode string) (*Result, error) {
	kind := Classify(contentType, rawURL, sniffedType)
	switch kind {
	case KindPDF:
		text, pages, err := PDF(data, pageCap)
		if err != nil {
			return nil, &ExtractionError{Kind: KindPDF, Cause: err}
		}
		truncated := pageCap > 0 && pages > pageCap
		if truncated {
			text += TruncationMarker(pageCap, mode)
		}
		return &Result{Text: Normalize(text), TotalPages: pages, Kind: KindPDF, Truncated: truncated}, nil

	case KindText:
		return &Result{Text: Normalize(string(data)), TotalPages: 1, Kind: KindText}, nil
	}
	return nil, &UnsupportedError{ContentType: contentType, URL: rawURL}
}

// TruncationMarker is appended to PDFs longer than the page cap.
func TruncationMarker(pageCap int, mode string) string {
	return fmt.Sprintf("\n\n[Truncated after %d pages due to %s mode]", pageCap, mode)
}

// PDF returns the text of the first pageCap pages (all pages when pageCap is
// not positive), pages joined by a blank line, and the total page count.
func PDF(data []byte, pageCap int) (text string, totalPages int, err error) {
	defer func() {
		// The PDF reader panics on some malformed streams.
		if r := recover(); r != nil {
			text, totalPages, err = "", 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open pdf: %w", err)
	}

	totalPages = reader.NumPage()
	if totalPages == 0 {
		return "", 0, errors.New("pdf has no pages")
	}

	last := totalPages
	if pageCap > 0 && pageCap < last {
		last = pageCap
	}

	parts := make([]string, 0, last)
	for i := 1; i <= last; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			parts = append(parts, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		parts = append(parts, pageText)
	}

	return strings.Join(parts, "\n\n"), totalPages, nil
}

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips NUL characters, trailing spaces and tabs before line
// breaks, collapses three or more line breaks into two, and trims.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
