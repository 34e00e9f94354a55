package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"verdict-hq/verdict/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "verdict",
	Short: "Verdict - budget-adaptive contract risk analysis",
	Long: `Verdict analyzes contracts for risk with a Gemini model while keeping
model spend under a monthly budget.

As the budget is consumed the service moves from normal to light to
critical mode, shrinking document limits, daily quotas and concurrency.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and environment only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
