package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"verdict-hq/verdict/pkg/cli"
	"verdict-hq/verdict/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load the configuration file with defaults and environment overrides
applied, and report every invalid field.

Examples:
  verdict config validate --config config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(out, "✗ %d invalid field(s):\n", len(verr.Errors))
			for _, fe := range verr.Errors {
				fmt.Fprintf(out, "  - %s: %s\n", fe.Field, fe.Message)
			}
		}
		return cli.NewConfigError("", err.Error())
	}

	fmt.Fprintln(out, "✓ Configuration valid")
	if verbose {
		fmt.Fprintf(out, "  listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(out, "  analyzer:       %s (force demo: %t)\n", cfg.Analyzer.Provider, cfg.Analyzer.ForceDemo)
		fmt.Fprintf(out, "  budget:         $%.2f/month\n", cfg.Budget.MonthlyUSD)
		fmt.Fprintf(out, "  evidence:       %s (enabled: %t)\n", cfg.Evidence.Backend, cfg.Evidence.Enabled)
		if cfg.Security.Authentication.Enabled && cfg.Security.Authentication.JWTSecret == "" {
			fmt.Fprintln(out, "  warning: authentication is enabled but no jwt_secret is set")
		}
	}
	return nil
}
