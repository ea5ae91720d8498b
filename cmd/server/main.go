// Package main is the entry point for the ledgersync server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ledgersync/internal/brain"
	"ledgersync/internal/config"
	"ledgersync/internal/controller"
	"ledgersync/internal/controller/handlers"
	"ledgersync/internal/ingest"
	"ledgersync/internal/logger"
	"ledgersync/internal/observability"
	"ledgersync/internal/provider"
	"ledgersync/internal/schedule"
	"ledgersync/internal/store"
	"ledgersync/internal/store/postgres"
	"ledgersync/internal/token"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	configPath := flag.String("config", "", "Path to config file (default: ledgersync.yaml in current directory)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New(parseLevel(cfg.LogLevel))
	slog.SetDefault(slogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Postgres (the "Store")
	pg, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pg.Close()

	if *migrateFlag {
		slogger.Info("running database migrations")
		if err := postgres.Migrate(pg.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		slogger.Info("migrations completed")
	}

	// Tracing
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "ledgersync", cfg.OTELEndpoint)
		if err != nil {
			log.Fatalf("Failed to init tracing: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slogger.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slogger.Error("failed to shutdown metrics", "error", err)
		}
	}()

	// Token manager and API clients
	tokens := token.NewManager(pg, token.ManagerConfig{
		ClientID:     cfg.ProviderClientID,
		ClientSecret: cfg.ProviderClientSecret,
		TokenURL:     cfg.ProviderTokenURL,
		DefaultScope: cfg.ProviderScope,
	}, slogger)
	providerClient := provider.NewClient(cfg.ProviderBaseURL, tokens)
	brainClient := brain.NewClient(cfg.BrainBaseURL, cfg.BrainAPIKey)

	// Execution pipeline: queue, cron triggers, orchestrator
	runner := schedule.NewRunner(ctx, slogger)
	scheduler := schedule.NewScheduler(cfg.Schedule, runner, slogger)

	if err := observability.RegisterQueueDepth(runner.Len); err != nil {
		slogger.Error("failed to register queue depth metric", "error", err)
	}

	orch := schedule.NewManager(schedule.ManagerDeps{
		Jobs:      pg,
		Users:     pg,
		Tenants:   pg,
		Scheduler: scheduler,
		Runner:    runner,
		Ingestors: map[store.JobType]schedule.Ingestor{
			store.JobTypeInvoice:   ingest.NewInvoiceIngestor(providerClient, brainClient, slogger),
			store.JobTypeStatement: ingest.NewStatementIngestor(pg, brainClient, slogger),
		},
		Log:        slogger,
		JobTimeout: cfg.JobTimeout,
	})

	// Rebuild triggers from the registry before accepting traffic.
	if err := orch.RestoreJobs(ctx); err != nil {
		log.Fatalf("Failed to restore jobs: %v", err)
	}
	scheduler.Start()

	// HTTP API
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	h := handlers.New(orch, pg, tokens, pg, pg, slogger)
	srv := controller.New(addr, cfg.APIKey, metricsHandler, h)

	go func() {
		slogger.Info("ledgersync server starting", "addr", addr, "schedule", scheduler.Describe())
		if err := srv.Run(ctx); err != nil {
			slogger.Error("server stopped", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slogger.Error("server forced to shutdown", "error", err)
	}

	scheduler.Stop()
	if err := runner.Shutdown(shutdownCtx); err != nil {
		slogger.Error("queue did not drain in time", "error", err)
	}
	slogger.Info("server exited properly")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
