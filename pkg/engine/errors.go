package engine

import (
	"errors"
	"fmt"
	"net/http"

	"verdict-hq/verdict/pkg/limits"
	"verdict-hq/verdict/pkg/orchestrator"
	"verdict-hq/verdict/pkg/processing/extract"
	"verdict-hq/verdict/pkg/source"
)

// Kind classifies an analysis failure. Each kind maps to one HTTP status.
type Kind string

const (
	KindUnauthenticated  Kind = "unauthenticated"
	KindInvalidInput     Kind = "invalid_input"
	KindTooLarge         Kind = "too_large"
	KindUnsupportedType  Kind = "unsupported_type"
	KindBudgetExhausted  Kind = "budget_exhausted"
	KindDailyCapReached  Kind = "daily_cap_reached"
	KindUserBusy         Kind = "user_busy"
	KindServerBusy       Kind = "server_busy"
	KindExtractionFailed Kind = "extraction_failed"
	KindFetchFailed      Kind = "fetch_failed"
	KindProviderFailed   Kind = "provider_failed"
	KindMergeFailed      Kind = "merge_failed"
	KindTimeout          Kind = "timeout"
	KindInternal         Kind = "internal"
)

// HTTPStatus returns the response status for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnsupportedType:
		return http.StatusUnsupportedMediaType
	case KindBudgetExhausted:
		return http.StatusPaymentRequired
	case KindDailyCapReached, KindUserBusy, KindServerBusy:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// User-facing messages.
const (
	MsgUnauthorized    = "Unauthorized"
	MsgInvalidURL      = "Missing or invalid fileUrl (must be a presigned URL)"
	MsgBudgetExhausted = "Monthly budget reached. Please try again next month."
	MsgDailyCap        = "Daily limit reached. Try tomorrow."
	MsgUserBusy        = "Another analysis in progress. Please wait."
	MsgServerBusy      = "Server busy. Please try again shortly."
	MsgNoText          = "No meaningful text extracted."
	MsgExtraction      = "Could not read text from the document."
	MsgProvider        = "Analysis failed. Please try again shortly."
	MsgMerge           = "Could not combine the partial analyses. Please try again."
	MsgInternal        = "An internal error occurred. Please try again later."
	MsgTimeout         = "Request timed out. Please try again."
	MsgBudgetWarning   = "Budget reached after this request."
)

// Error is a failed analysis. Message is safe to show to the caller; Err
// keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string

	// Mode is the operating mode the request ran under.
	Mode string

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the response status for the error.
func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

func newError(kind Kind, mode, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Mode: mode, Err: cause}
}

// tooLargeMessage names the mode whose byte ceiling was exceeded.
func tooLargeMessage(mode string) string {
	return fmt.Sprintf("File too large for %s mode.", mode)
}

// admissionError maps an admission denial to its kind and message.
func admissionError(mode string, err error) *Error {
	switch {
	case errors.Is(err, limits.ErrDailyCapReached):
		return newError(KindDailyCapReached, mode, MsgDailyCap, err)
	case errors.Is(err, limits.ErrUserBusy):
		return newError(KindUserBusy, mode, MsgUserBusy, err)
	case errors.Is(err, limits.ErrServerBusy):
		return newError(KindServerBusy, mode, MsgServerBusy, err)
	}
	return newError(KindInternal, mode, MsgInternal, err)
}

// fetchError maps a file source failure.
func fetchError(mode string, err error) *Error {
	var urlErr *source.InvalidURLError
	var typeErr *source.UnsupportedTypeError
	var sizeErr *source.TooLargeError
	var fetchErr *source.FetchError
	switch {
	case errors.As(err, &urlErr):
		return newError(KindInvalidInput, mode, MsgInvalidURL, err)
	case errors.As(err, &typeErr):
		return newError(KindUnsupportedType, mode, typeErr.Error(), err)
	case errors.As(err, &sizeErr):
		return newError(KindTooLarge, mode, tooLargeMessage(mode), err)
	case errors.As(err, &fetchErr):
		return newError(KindFetchFailed, mode, fetchErr.Error(), err)
	}
	return newError(KindFetchFailed, mode, "Fetch failed", err)
}

// extractError maps a text extraction failure.
func extractError(mode string, err error) *Error {
	var unsupported *extract.UnsupportedError
	if errors.As(err, &unsupported) {
		return newError(KindUnsupportedType, mode, unsupported.Error(), err)
	}
	return newError(KindExtractionFailed, mode, MsgExtraction, err)
}

// analysisError maps an orchestrator failure. Individual transient provider
// errors are not surfaced; only the failed stage is.
func analysisError(mode string, err error) *Error {
	var stageErr *orchestrator.StageError
	if errors.As(err, &stageErr) && stageErr.Stage == orchestrator.StageMerge {
		return newError(KindMergeFailed, mode, MsgMerge, err)
	}
	if errors.As(err, &stageErr) {
		return newError(KindProviderFailed, mode, MsgProvider, err)
	}
	return newError(KindInternal, mode, MsgInternal, err)
}
