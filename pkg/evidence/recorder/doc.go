// Package recorder queues analysis journal records and writes them to a
// storage backend from a background worker.
//
// Record never blocks on storage. When the buffer is full it waits up to
// WriteTimeout and then drops the record with a RecorderError. Close drains
// the buffer before returning.
//
//	rec := recorder.NewRecorder(store, &recorder.Config{
//	    Enabled:      true,
//	    AsyncBuffer:  1000,
//	    WriteTimeout: 5 * time.Second,
//	})
//	defer rec.Close()
//
//	rec.Record(ctx, &evidence.Record{UserID: userID, Mode: "full", Status: evidence.StatusSuccess})
package recorder
