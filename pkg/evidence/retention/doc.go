// Package retention prunes analysis journal records.
//
// Records are removed when they are older than the retention period, and the
// oldest records are removed when the journal holds more than MaxRecords.
// Pruning runs on a cron schedule (github.com/robfig/cron/v3).
//
// # Basic Usage
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	    MaxRecords:    100000,
//	})
//	if err := pruner.Start(ctx); err != nil {
//	    return err
//	}
//	defer pruner.Stop()
package retention
