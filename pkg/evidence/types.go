package evidence

import (
	"context"
	"time"
)

// Record statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Record is the journal entry written for every completed or failed
// analysis. Records are append-only; nothing in the process reads them back
// to rebuild usage state.
type Record struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // HTTP request ID
	UserID    string `json:"user_id"`    // Verified subject

	// Timestamps
	Time         time.Time     `json:"time"`          // When the analysis started
	RecordedTime time.Time     `json:"recorded_time"` // When the record was queued
	Duration     time.Duration `json:"duration"`      // Wall time of the analysis

	// Execution context
	Mode     string `json:"mode"`     // "normal", "light" or "critical"
	Provider string `json:"provider"` // Analyzer name, "demo" for demo answers
	Model    string `json:"model"`    // Model actually called
	Demo     bool   `json:"demo,omitempty"`

	// Document
	Fingerprint string `json:"fingerprint,omitempty"` // sha256 hex of the document bytes
	Pages       int    `json:"pages"`
	Chunks      int    `json:"chunks"`

	// Usage
	Calls         int     `json:"calls"`
	CacheHits     int     `json:"cache_hits"`
	TokensIn      int     `json:"tokens_in"`
	TokensOut     int     `json:"tokens_out"`
	EstimatedCost float64 `json:"estimated_cost"`

	// Outcome
	RiskScore int    `json:"risk_score"`
	RiskLabel string `json:"risk_label,omitempty"`
	Status    string `json:"status"`               // StatusSuccess or StatusError
	ErrorKind string `json:"error_kind,omitempty"` // Engine error kind
	Error     string `json:"error,omitempty"`
}

// Failed reports whether the record describes a failed analysis.
func (r *Record) Failed() bool {
	return r.Status == StatusError
}

// Query defines filters for retrieving journal records.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	UserID    string `json:"user_id,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Status    string `json:"status,omitempty"`     // "success" or "error"
	ErrorKind string `json:"error_kind,omitempty"` // e.g. "ProviderFailed"

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return, 0 for all
	Offset int `json:"offset,omitempty"` // Skip N records

	// SortOrder orders by Time: "asc" or "desc" (default).
	SortOrder string `json:"sort_order,omitempty"`
}

// Ascending reports whether results are ordered oldest first.
func (q *Query) Ascending() bool {
	return q.SortOrder == "asc" || q.SortOrder == "ASC"
}

// Storage defines the interface for journal storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the query filters ordered by Time.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the query filters and returns how
	// many were removed. Pagination fields are ignored.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}
