package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"verdict-hq/verdict/pkg/cli"
	"verdict-hq/verdict/pkg/engine"
)

var analyzeFlags struct {
	user   string
	demo   bool
	output string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file-or-url>",
	Short: "Analyze one contract",
	Long: `Analyze one contract through the same pipeline the server uses.

The argument is an http(s) URL or a local .pdf or .txt file. Usage is
recorded against the in-process ledger, so the budget, mode and quota
rules apply exactly as they would for a server request.

Examples:
  # Analyze a local PDF
  verdict analyze ./lease.pdf

  # Analyze a presigned URL and print JSON
  verdict analyze "https://files.example.com/nda.pdf?sig=..." --output json

  # Print the demo analysis
  verdict analyze --demo ./anything.txt`,
	Args: cobra.ExactArgs(1),
	RunE: analyzeDocument,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFlags.user, "user", "cli", "user ID the analysis is attributed to")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.demo, "demo", false, "return the fixed demo analysis")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.output, "output", "o", "text", "output format: text, json")
}

func analyzeDocument(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(analyzeFlags.output)
	if err != nil {
		return err
	}

	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	fileURL, cleanup, err := documentURL(args[0])
	if err != nil {
		return cli.NewCommandError("analyze", err)
	}
	defer cleanup()

	resp, err := a.engine.Analyze(ctx, engine.Request{
		RequestID: uuid.NewString(),
		UserID:    analyzeFlags.user,
		FileURL:   fileURL,
		Demo:      analyzeFlags.demo,
	})
	if err != nil {
		return cli.NewCommandError("analyze", err)
	}

	var data any = resp
	if format == cli.FormatText {
		data = textSummary{resp}
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}

// documentURL returns arg unchanged when it is an http(s) URL. A local file
// is served from a loopback listener for the duration of the command.
func documentURL(arg string) (string, func(), error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return arg, func() {}, nil
	}

	info, err := os.Stat(arg)
	if err != nil {
		return "", nil, err
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory", arg)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to serve local file: %w", err)
	}
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, arg)
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() { _ = srv.Serve(ln) }()

	u := url.URL{Scheme: "http", Host: ln.Addr().String(), Path: "/" + filepath.Base(arg)}
	return u.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// textSummary renders a response for the terminal.
type textSummary struct {
	resp *engine.Response
}

func (s textSummary) String() string {
	var b strings.Builder
	r := s.resp.Result

	score := 0
	if r.RiskScore != nil {
		score = *r.RiskScore
	}
	fmt.Fprintf(&b, "Risk: %d/100 (%s)\n", score, r.RiskLabel)
	fmt.Fprintf(&b, "Mode: %s  Budget: %d%%", s.resp.Mode, s.resp.BudgetPercent)
	if s.resp.Demo {
		b.WriteString("  [demo]")
	}
	b.WriteString("\n")
	if s.resp.TotalPages > 0 {
		fmt.Fprintf(&b, "Pages: %d  Chunks: %d\n", s.resp.TotalPages, s.resp.Chunks)
	}
	if s.resp.BudgetWarning != "" {
		fmt.Fprintf(&b, "Warning: %s\n", s.resp.BudgetWarning)
	}

	fmt.Fprintf(&b, "\n%s\n", r.Summary)

	if len(r.RedFlags) > 0 {
		b.WriteString("\nRed flags:\n")
		for _, f := range r.RedFlags {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", f.Severity, f.Clause, f.Explanation)
		}
	}
	if len(r.QuestionsForCounterparty) > 0 {
		b.WriteString("\nQuestions:\n")
		for _, q := range r.QuestionsForCounterparty {
			fmt.Fprintf(&b, "  - %s\n", q)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
