package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"verdict-hq/verdict/pkg/cli"
	"verdict-hq/verdict/pkg/config"
	"verdict-hq/verdict/pkg/evidence"
	"verdict-hq/verdict/pkg/evidence/storage"
)

var journalFlags struct {
	since    time.Duration
	user     string
	mode     string
	status   string
	kind     string
	provider string
	limit    int
	offset   int
	output   string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the analysis journal",
	Long: `Query journaled analyses from the SQLite evidence store.

Records are listed newest first.

Examples:
  # Last day of failures
  verdict journal --since 24h --status error

  # One user's analyses as JSON
  verdict journal --user user-123 --output json`,
	RunE: queryJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().DurationVar(&journalFlags.since, "since", 0, "only records newer than this (e.g. 24h)")
	journalCmd.Flags().StringVar(&journalFlags.user, "user", "", "filter by user ID")
	journalCmd.Flags().StringVar(&journalFlags.mode, "mode", "", "filter by mode (normal, light, critical)")
	journalCmd.Flags().StringVar(&journalFlags.status, "status", "", "filter by status (success, error)")
	journalCmd.Flags().StringVar(&journalFlags.kind, "kind", "", "filter by error kind")
	journalCmd.Flags().StringVar(&journalFlags.provider, "provider", "", "filter by provider")
	journalCmd.Flags().IntVar(&journalFlags.limit, "limit", 50, "max results")
	journalCmd.Flags().IntVar(&journalFlags.offset, "offset", 0, "pagination offset")
	journalCmd.Flags().StringVarP(&journalFlags.output, "output", "o", "text", "output format: text, json")
}

func queryJournal(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(journalFlags.output)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	if cfg.Evidence.Backend != storage.BackendSQLite {
		return cli.NewConfigError("evidence.backend", "the journal can only be queried from the sqlite backend")
	}

	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:         cfg.Evidence.SQLite.Path,
		Driver:       cfg.Evidence.SQLite.Driver,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		WALMode:      cfg.Evidence.SQLite.WALMode,
		BusyTimeout:  cfg.Evidence.SQLite.BusyTimeout,
	})
	if err != nil {
		return cli.NewCommandError("journal", err)
	}
	defer store.Close()

	records, err := store.Query(context.Background(), journalQuery(time.Now()))
	if err != nil {
		return cli.NewCommandError("journal", fmt.Errorf("query failed: %w", err))
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), records)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), recordTable(records))
}

// journalQuery builds the storage query from the command flags.
func journalQuery(now time.Time) *evidence.Query {
	q := &evidence.Query{
		UserID:    journalFlags.user,
		Mode:      journalFlags.mode,
		Status:    journalFlags.status,
		ErrorKind: journalFlags.kind,
		Provider:  journalFlags.provider,
		Limit:     journalFlags.limit,
		Offset:    journalFlags.offset,
		SortOrder: "desc",
	}
	if journalFlags.since > 0 {
		start := now.Add(-journalFlags.since)
		q.StartTime = &start
	}
	return q
}

// recordTable renders records as aligned columns.
type recordTable []*evidence.Record

func (t recordTable) String() string {
	if len(t) == 0 {
		return "No journal records found."
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tUSER\tMODE\tSTATUS\tSCORE\tPAGES\tCOST\tKIND")
	for _, r := range t {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t$%.4f\t%s\n",
			r.Time.Format(time.RFC3339), r.UserID, r.Mode, r.Status,
			r.RiskScore, r.Pages, r.EstimatedCost, r.ErrorKind)
	}
	_ = tw.Flush()
	fmt.Fprintf(&b, "%d record(s)", len(t))
	return b.String()
}
