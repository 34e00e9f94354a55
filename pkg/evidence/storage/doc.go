// Package storage provides storage backends for analysis journal records.
//
// # Storage Backends
//
//   - Memory: process-local map, the default
//   - SQLite: durable single-node storage
//
// # SQLite Backend
//
// Two database/sql drivers are registered and selected by SQLiteConfig.Driver:
//
//   - "sqlite": modernc.org/sqlite, pure Go, works with CGO_ENABLED=0
//   - "sqlite3": github.com/mattn/go-sqlite3, requires cgo
//
// The backend enables WAL mode and a busy timeout, creates the schema on
// open and verifies the schema version.
//
// # Basic Usage
//
//	store, err := storage.Open(storage.BackendSQLite, &storage.SQLiteConfig{
//	    Path:        "data/evidence.db",
//	    Driver:      storage.DriverModernc,
//	    WALMode:     true,
//	    BusyTimeout: 5 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	failed, err := store.Count(ctx, &evidence.Query{Status: evidence.StatusError})
package storage
