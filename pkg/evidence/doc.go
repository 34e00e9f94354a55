// Package evidence defines the analysis journal: one immutable record per
// completed or failed contract analysis.
//
// # Architecture
//
// The journal consists of three layers:
//
//  1. Recorder - queues records from the engine without blocking requests
//  2. Storage - persists records (memory or SQLite)
//  3. Retention - prunes records by age and count on a cron schedule
//
// # Records
//
// Each record captures the requesting user, the mode the request ran in, the
// provider and model, the document fingerprint and shape (pages, chunks),
// usage (calls, cache hits, estimated tokens and cost) and the outcome (risk
// score and label, or the error kind on failure).
//
// The journal is write-only from the engine's point of view. Monthly usage
// and daily quotas live in memory and are never rebuilt from it.
//
// # Basic Usage
//
//	store, err := storage.Open(storage.BackendSQLite, &storage.SQLiteConfig{
//	    Path:    "data/evidence.db",
//	    Driver:  "sqlite",
//	    WALMode: true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	rec := recorder.NewRecorder(store, recorder.DefaultConfig())
//	defer rec.Close()
//
//	rec.Record(ctx, &evidence.Record{UserID: "user-1", Mode: "full", Status: evidence.StatusSuccess})
package evidence
