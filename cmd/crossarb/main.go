// Package main is the entry point for the cross-venue arbitrage bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/crossarb/crossarb/business/arbitrage"
	arbitrageDI "github.com/crossarb/crossarb/business/arbitrage/di"
	"github.com/crossarb/crossarb/business/market"
	marketDI "github.com/crossarb/crossarb/business/market/di"
	"github.com/crossarb/crossarb/internal/apm"
	"github.com/crossarb/crossarb/internal/config"
	"github.com/crossarb/crossarb/internal/health"
	"github.com/crossarb/crossarb/internal/logger"
	"github.com/crossarb/crossarb/internal/metrics"
	"github.com/crossarb/crossarb/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("crossarb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
	log.Info(ctx, "starting cross-venue arbitrage bot",
		"version", version,
		"environment", cfg.App.Environment,
		"dry_run", cfg.App.DryRun,
	)

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		provider := apm.ConsoleProvider
		if cfg.Telemetry.ZipkinEndpoint != "" {
			provider = apm.ZipkinProvider
		}
		traceProvider = apm.NewTraceProvider(cfg.Telemetry.ServiceName,
			apm.WithProvider(provider, cfg.Telemetry.ZipkinEndpoint, log))
		log.Info(ctx, "tracing initialized", "provider", string(provider))

		metrics.NewMetricProvider(metrics.WithServiceName(cfg.Telemetry.ServiceName))

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Health check server
	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Application container
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Modules in dependency order
	modules := []monolith.Module{
		&market.Module{},    // venue adapters, FX rates, price aggregation
		&arbitrage.Module{}, // depends on market
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	registerVenueChecks(healthServer, mono)

	if journal := arbitrageDI.GetJournal(mono.Services()); journal != nil {
		mono.AddCloser(journal)
	}

	orchestrator := arbitrageDI.GetOrchestrator(mono.Services())

	err = orchestrator.Run(ctx)
	if err != nil && ctx.Err() == nil {
		return err
	}

	// Cooperative shutdown: give in-flight work a bounded grace period.
	grace := cfg.Arbitrage.ShutdownGrace
	if grace > 0 {
		log.Info(ctx, "shutting down", "grace", grace.String())
		time.Sleep(grace)
	}
	return nil
}

// registerVenueChecks exposes per-venue liveness through the health server.
func registerVenueChecks(hs *health.Server, mono monolith.Monolith) {
	for _, adapter := range marketDI.GetVenueAdapters(mono.Services()) {
		adapter := adapter
		hs.RegisterCheck("venue."+adapter.Name(), func(ctx context.Context) (bool, string) {
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if _, err := adapter.FetchBalances(checkCtx); err != nil {
				return false, err.Error()
			}
			return true, ""
		})
	}
}
