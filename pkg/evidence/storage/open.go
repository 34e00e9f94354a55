package storage

import (
	"fmt"

	"verdict-hq/verdict/pkg/evidence"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open builds the backend named by backend. sqlite may be nil for the
// memory backend.
func Open(backend string, sqlite *SQLiteConfig) (evidence.Storage, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStorage(), nil
	case BackendSQLite:
		return NewSQLiteStorage(sqlite)
	default:
		return nil, evidence.NewStorageError(backend, "open", fmt.Errorf("unknown backend %q", backend))
	}
}
