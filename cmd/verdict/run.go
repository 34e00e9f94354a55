package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"verdict-hq/verdict/pkg/cli"
	"verdict-hq/verdict/pkg/config"
	"verdict-hq/verdict/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the analysis server",
	Long: `Start the analysis server with the specified configuration.

The server listens on the configured address and serves POST /v1/analyze,
along with /health, /ready, /version and /metrics.

Examples:
  # Start with defaults and environment overrides
  verdict run

  # Start with a config file
  verdict run --config /etc/verdict/config.yaml

  # Override listen address
  verdict run --listen 0.0.0.0:8080

  # Validate config and wiring without starting the server
  verdict run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

// loadConfig initializes the process configuration and logger.
func loadConfig(logLevel string) (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	} else if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runFlags.logLevel)
	if err != nil {
		return err
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			slog.Error("shutdown cleanup failed", "error", err)
		}
	}()

	srv, err := a.server()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	if err := a.start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	if cfg.Reload.Watch && cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, cfg.Reload.Debounce, slog.Default())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()
		go func() {
			err := watcher.Watch(ctx, func(next *config.Config) {
				if err := resolveSecrets(ctx, next); err != nil {
					slog.Warn("config reload rejected", "error", err)
					return
				}
				config.Replace(next)
				a.apply(next)
			})
			if err != nil {
				slog.Error("config watcher exited", "error", err)
			}
		}()
	}

	status := a.engine.Status()
	slog.Info("verdict starting",
		"version", Version,
		"address", cfg.Server.ListenAddress,
		"mode", status.Mode,
		"budget_pct", status.BudgetPercent,
		"demo_only", a.engine.DemoOnly(),
		"journal", cfg.Evidence.Enabled,
	)

	// Start blocks until the signal context is cancelled and in-flight
	// analyses have drained.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}
