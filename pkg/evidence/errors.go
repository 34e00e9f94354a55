package evidence

import (
	"errors"
	"fmt"
)

// Recorder refusals. Both mean the record was dropped; the analysis itself
// is unaffected.
var (
	// ErrRecorderClosed is returned once Close has started.
	ErrRecorderClosed = errors.New("evidence recorder closed")

	// ErrQueueFull is returned when the async buffer stayed full for the
	// whole write timeout.
	ErrQueueFull = errors.New("evidence queue full")
)

// StorageError wraps a failure from a journal backend.
type StorageError struct {
	Backend   string // "memory" or "sqlite"
	Operation string // e.g. "store", "query", "open"
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("evidence %s %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// RecorderError reports a record the recorder could not queue.
type RecorderError struct {
	RecordID string
	Cause    error
}

func (e *RecorderError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("evidence record dropped: %v", e.Cause)
	}
	return fmt.Sprintf("evidence record %s dropped: %v", e.RecordID, e.Cause)
}

func (e *RecorderError) Unwrap() error { return e.Cause }

// NewRecorderError creates a new RecorderError.
func NewRecorderError(recordID string, cause error) *RecorderError {
	return &RecorderError{RecordID: recordID, Cause: cause}
}

// RetentionError reports a failed prune pass.
type RetentionError struct {
	RetentionDays int
	Cause         error
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("evidence retention (%d days): %v", e.RetentionDays, e.Cause)
}

func (e *RetentionError) Unwrap() error { return e.Cause }

// NewRetentionError creates a new RetentionError.
func NewRetentionError(retentionDays int, cause error) *RetentionError {
	return &RetentionError{RetentionDays: retentionDays, Cause: cause}
}
