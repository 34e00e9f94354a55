package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"verdict-hq/verdict/pkg/api"
	"verdict-hq/verdict/pkg/api/handlers"
	"verdict-hq/verdict/pkg/cache"
	"verdict-hq/verdict/pkg/cli"
	"verdict-hq/verdict/pkg/config"
	"verdict-hq/verdict/pkg/engine"
	"verdict-hq/verdict/pkg/evidence"
	"verdict-hq/verdict/pkg/evidence/recorder"
	"verdict-hq/verdict/pkg/evidence/retention"
	"verdict-hq/verdict/pkg/evidence/storage"
	"verdict-hq/verdict/pkg/limits/admission"
	"verdict-hq/verdict/pkg/limits/ledger"
	"verdict-hq/verdict/pkg/limits/modes"
	"verdict-hq/verdict/pkg/orchestrator"
	"verdict-hq/verdict/pkg/processing/costs"
	"verdict-hq/verdict/pkg/providerfactory"
	"verdict-hq/verdict/pkg/providers"
	"verdict-hq/verdict/pkg/retry"
	"verdict-hq/verdict/pkg/security/auth"
	"verdict-hq/verdict/pkg/security/secrets"
	"verdict-hq/verdict/pkg/server"
	"verdict-hq/verdict/pkg/source"
	"verdict-hq/verdict/pkg/telemetry/health"
	"verdict-hq/verdict/pkg/telemetry/metrics"
	"verdict-hq/verdict/pkg/telemetry/tracing"
)

// readyRequestsPerSecond bounds readiness probes, which touch the journal.
const readyRequestsPerSecond = 10

// app is the wired process: engine, background jobs and telemetry.
type app struct {
	mu  sync.RWMutex
	cfg *config.Config

	engine     *engine.Engine
	ledger     *ledger.Ledger
	modes      *modes.Controller
	admission  *admission.Controller
	calculator *costs.Calculator
	collector  *metrics.Collector
	tracer     *tracing.Tracer
	checker    *health.Checker

	sweeper  *cache.Sweeper
	store    evidence.Storage
	recorder *recorder.Recorder
	pruner   *retention.Pruner

	logger  *slog.Logger
	closers []func() error
}

// newApp builds every component from cfg. Background jobs are not started;
// see start.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:    cfg,
		logger: slog.Default().With("component", "app"),
	}
	built := false
	defer func() {
		if !built {
			_ = a.close()
		}
	}()

	if err := resolveSecrets(ctx, cfg); err != nil {
		return nil, err
	}

	var err error

	a.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	a.tracer, err = tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	a.onClose(func() error { return a.tracer.Shutdown(context.Background()) })

	a.calculator = costs.NewCalculator(costs.Pricing{
		InputPerMillion:  cfg.Budget.InputPerMillion,
		OutputPerMillion: cfg.Budget.OutputPerMillion,
	})
	a.ledger = ledger.New(cfg.Budget.MonthlyUSD, a.calculator, ledger.OnRollover(a.rolledOver))
	a.modes = modes.NewController(a.ledger, modes.Thresholds{
		Light:    cfg.Modes.LightThreshold,
		Critical: cfg.Modes.CriticalThreshold,
	}, cfg.Modes.DefaultModel, a.modeOverride)

	a.admission = admission.NewController(cfg.Admission.GlobalMaxActive, admission.WithObserver(a.collector))

	c := cache.New(cfg.Cache.TTL, cache.WithObserver(a.collector))
	if cfg.Cache.SweepSchedule != "" {
		a.sweeper = cache.NewSweeper(c, cfg.Cache.SweepSchedule, a.logger)
	}

	components := engine.Components{
		Modes:      a.modes,
		Ledger:     a.ledger,
		Admission:  a.admission,
		Calculator: a.calculator,
		Fetcher: source.NewFetcher(source.Config{
			Timeout:      cfg.Source.Timeout,
			AllowedTypes: cfg.Source.AllowedContentTypes,
		}),
	}

	analyzer, err := providerfactory.NewAnalyzer(ctx, cfg.Analyzer, cfg.Modes.DefaultModel)
	switch {
	case errors.Is(err, providerfactory.ErrDemoOnly):
		a.logger.Warn("no analyzer configured, serving demo analyses only", "provider", cfg.Analyzer.Provider)
	case err != nil:
		return nil, cli.NewConfigError("analyzer", err.Error())
	default:
		components.Orchestrator = orchestrator.New(analyzer, c, orchestrator.Config{
			Retry: retry.Policy{
				MaxAttempts: cfg.Analyzer.Retry.MaxAttempts,
				BaseDelay:   cfg.Analyzer.Retry.BaseDelay,
				Multiplier:  cfg.Analyzer.Retry.Multiplier,
				MaxDelay:    cfg.Analyzer.Retry.MaxDelay,
				Jitter:      cfg.Analyzer.Retry.Jitter,
			},
			CallTimeout:      cfg.Analyzer.Timeout,
			MergeFloorTokens: cfg.Analyzer.MergeFloorTokens,
			Temperature:      cfg.Analyzer.Temperature,
			PaceJitter:       orchestrator.DefaultConfig.PaceJitter,
		},
			orchestrator.WithObserver(a.collector),
			orchestrator.WithTracer(a.tracer.Tracer()),
		)
	}

	opts := []engine.Option{
		engine.WithObserver(a.collector),
		engine.WithTracer(a.tracer.Tracer()),
	}

	a.checker = health.New(0)
	a.checker.RegisterCheck("analyzer", func(ctx context.Context) error {
		if components.Orchestrator == nil {
			if cfg.Analyzer.ForceDemo {
				return nil
			}
			return errors.New("no analyzer configured: demo mode only")
		}
		if h, ok := providers.HealthOf(analyzer); ok && !h.IsHealthy {
			return fmt.Errorf("%d consecutive failures: %v", h.ConsecutiveFailures, h.LastError)
		}
		return nil
	})

	if cfg.Evidence.Enabled {
		if err := a.openJournal(); err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithJournal(a.recorder))
	}

	a.engine, err = engine.New(components, engine.Config{
		ForceDemo:     cfg.Analyzer.ForceDemo,
		MinTextLength: cfg.Source.MinTextLength,
	}, opts...)
	if err != nil {
		return nil, err
	}

	snap := a.ledger.Snapshot()
	a.collector.UpdateBudget(snap.CostUSD, snap.BudgetPercent)
	a.collector.SetMode(a.modes.Current().String())

	built = true
	return a, nil
}

// openJournal opens the evidence store, its async recorder and the pruner.
func (a *app) openJournal() error {
	cfg := a.cfg.Evidence

	store, err := storage.Open(cfg.Backend, &storage.SQLiteConfig{
		Path:         cfg.SQLite.Path,
		Driver:       cfg.SQLite.Driver,
		MaxOpenConns: cfg.SQLite.MaxOpenConns,
		MaxIdleConns: cfg.SQLite.MaxIdleConns,
		WALMode:      cfg.SQLite.WALMode,
		BusyTimeout:  cfg.SQLite.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to open evidence store: %w", err)
	}
	a.store = store
	a.onClose(store.Close)

	a.recorder = recorder.NewRecorder(store, &recorder.Config{
		Enabled:      true,
		AsyncBuffer:  cfg.Recorder.AsyncBuffer,
		WriteTimeout: cfg.Recorder.WriteTimeout,
	})
	a.onClose(a.recorder.Close)

	a.pruner = retention.NewPruner(store, &retention.Config{
		RetentionDays: cfg.Retention.Days,
		PruneSchedule: cfg.Retention.PruneSchedule,
		MaxRecords:    cfg.Retention.MaxRecords,
	})

	a.checker.RegisterCheck("evidence", func(ctx context.Context) error {
		_, err := store.Count(ctx, &evidence.Query{Limit: 1})
		return err
	})

	a.logger.Info("evidence journal opened", "backend", cfg.Backend)
	return nil
}

// start launches the cache sweeper and the retention scheduler. Both stop
// on close; the pruner also stops with ctx.
func (a *app) start(ctx context.Context) error {
	if a.sweeper != nil {
		if err := a.sweeper.Start(); err != nil {
			return err
		}
		a.onClose(func() error { a.sweeper.Stop(); return nil })
	}
	if a.pruner != nil {
		if err := a.pruner.Start(ctx); err != nil {
			return fmt.Errorf("failed to start retention scheduler: %w", err)
		}
		a.onClose(func() error { a.pruner.Stop(); return nil })
		if next := a.pruner.NextPruning(); next != nil {
			a.logger.Debug("evidence retention scheduler started", "next_pruning", next)
		}
	}
	return nil
}

// apply hot-reloads the settings that can change without a restart: the
// mode override, the monthly budget, token prices and the global ceiling.
func (a *app) apply(cfg *config.Config) {
	a.mu.Lock()
	prev := a.cfg
	a.cfg = cfg
	a.mu.Unlock()

	if cfg.Budget.MonthlyUSD != prev.Budget.MonthlyUSD {
		a.ledger.SetBudget(cfg.Budget.MonthlyUSD)
		a.logger.Info("monthly budget updated", "budget_usd", cfg.Budget.MonthlyUSD)
	}
	if cfg.Budget.InputPerMillion != prev.Budget.InputPerMillion || cfg.Budget.OutputPerMillion != prev.Budget.OutputPerMillion {
		a.calculator.UpdatePricing(costs.Pricing{
			InputPerMillion:  cfg.Budget.InputPerMillion,
			OutputPerMillion: cfg.Budget.OutputPerMillion,
		})
		a.logger.Info("token pricing updated",
			"input_per_million", cfg.Budget.InputPerMillion,
			"output_per_million", cfg.Budget.OutputPerMillion,
		)
	}
	if cfg.Admission.GlobalMaxActive != prev.Admission.GlobalMaxActive {
		a.admission.SetGlobalMax(cfg.Admission.GlobalMaxActive)
		a.logger.Info("global concurrency ceiling updated", "global_max_active", cfg.Admission.GlobalMaxActive)
	}
	if cfg.Modes.Override != prev.Modes.Override {
		a.modes.SetOverride(cfg.Modes.Override)
	}

	snap := a.ledger.Snapshot()
	a.collector.UpdateBudget(snap.CostUSD, snap.BudgetPercent)
	a.collector.SetMode(a.modes.Current().String())
}

// modeOverride is the override source of the mode controller. The
// environment is read again on every call and wins over the loaded config,
// the same precedence the loader applies.
func (a *app) modeOverride() string {
	if env := config.ModeOverrideFromEnv(); env != "" {
		return env
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.Modes.Override
}

// rolledOver runs when the ledger starts a new billing period.
func (a *app) rolledOver(previous, current string) {
	snap := a.ledger.Snapshot()
	a.collector.UpdateBudget(snap.CostUSD, snap.BudgetPercent)
	a.logger.Info("billing period rolled over", "previous", previous, "current", current)
}

// server builds the HTTP server around the engine.
func (a *app) server() (*server.Server, error) {
	cfg := a.cfg
	writer := api.NewWriter(a.engine.Mode)

	analyzeOpts := []handlers.AnalyzeOption{handlers.WithMaxBodyBytes(cfg.Server.MaxBodyBytes)}
	opts := []server.Option{
		server.WithWriter(writer),
		server.WithTracer(a.tracer),
	}

	authCfg := cfg.Security.Authentication
	if authCfg.Enabled {
		if authCfg.JWTSecret == "" {
			return nil, cli.NewConfigError("security.authentication.jwt_secret", "required when authentication is enabled")
		}
		verifier, err := auth.NewVerifier(authCfg.JWTSecret,
			auth.WithUserHeader(authCfg.UserHeader),
			auth.WithLeeway(authCfg.Leeway),
		)
		if err != nil {
			return nil, cli.NewConfigError("security.authentication", err.Error())
		}
		opts = append(opts, server.WithAuth(auth.NewMiddleware(verifier, writer.Unauthorized)))
	} else {
		a.logger.Warn("authentication disabled, trusting the user header", "header", authCfg.UserHeader)
		analyzeOpts = append(analyzeOpts, handlers.WithUnverifiedUser(authCfg.UserHeader))
	}

	routes := server.Routes{
		Analyze: handlers.NewAnalyzeHandler(a.engine, writer, analyzeOpts...),
		Health:  handlers.NewHealthHandler(a.engine),
		Ready:   health.RateLimitedHandler(a.checker.ReadinessHandler(), readyRequestsPerSecond),
		Version: health.VersionHandler(Version, GitCommit, BuildDate),
	}
	if a.collector.Enabled() {
		routes.Metrics = a.collector.Handler()
		routes.MetricsPath = cfg.Telemetry.Metrics.Path
	}

	return server.NewServer(&cfg.Server, routes, opts...), nil
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition. The recorder
// drains its queue before the store closes.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// resolveSecrets replaces ${secret:name} references in credential fields.
func resolveSecrets(ctx context.Context, cfg *config.Config) error {
	chain := []secrets.SecretProvider{secrets.NewEnvProvider(cfg.Security.Secrets.EnvPrefix)}
	if dir := cfg.Security.Secrets.Dir; dir != "" {
		fp, err := secrets.NewFileProvider(dir)
		if err != nil {
			return cli.NewConfigError("security.secrets.dir", err.Error())
		}
		chain = append(chain, fp)
	}

	err := secrets.NewManager(chain...).ResolveFields(ctx,
		&cfg.Security.Authentication.JWTSecret,
		&cfg.Analyzer.Gemini.APIKey,
		&cfg.Analyzer.Vertex.ServiceAccountJSON,
	)
	if err != nil {
		return cli.NewConfigError("security.secrets", err.Error())
	}
	return nil
}
