package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmelo/timeclerk/internal/backend"
	"github.com/dmelo/timeclerk/internal/config"
	"github.com/dmelo/timeclerk/internal/journal"
	"github.com/dmelo/timeclerk/internal/sync"
	"github.com/dmelo/timeclerk/internal/tracker"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/robfig/cron/v3"
)

func main() {
	// Parse command-line flags
	one := flag.Bool("one", false, "Process only the first day in the window, then stop")
	flag.BoolVar(one, "o", false, "Shorthand for --one")
	projectsOnly := flag.Bool("projects_only", false, "Skip the date loop, only reconcile and archive projects")
	flag.BoolVar(projectsOnly, "p", false, "Shorthand for --projects_only")
	configFile := flag.String("config", "", "Path to configuration file (TOML)")
	cronSpec := flag.String("cron", "", "Run on a cron schedule instead of once")
	flag.Parse()

	// A .env file is honored when present; the real environment wins.
	godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("starting timeclerk",
		"backend", cfg.Backend.URL,
		"workspace", cfg.Tracker.Workspace,
		"rounding_minutes", cfg.Sync.RoundingMinutes)

	// Open the audit journal when configured
	var recorder sync.Recorder
	if cfg.Journal.DSN != "" {
		j, err := journal.Open(cfg.Journal.DSN)
		if err != nil {
			slog.Error("failed to open journal", "error", err, "dsn", cfg.Journal.DSN)
			os.Exit(1)
		}
		defer j.Close()
		recorder = j
		slog.Info("journal enabled", "dsn", cfg.Journal.DSN)
	}

	backendClient := backend.NewClient(cfg.Backend)
	trackerClient := tracker.NewClient(cfg.Tracker)

	options := sync.Options{
		Login:          cfg.Backend.Login,
		One:            *one,
		ProjectsOnly:   *projectsOnly,
		RoundingUnit:   time.Duration(cfg.Sync.RoundingMinutes) * time.Minute,
		RequireFullDay: cfg.Sync.RequireFullDay,
	}

	runner := sync.NewRunner(backendClient, trackerClient, recorder, options, logger)

	runOnce := func() error {
		ctx := context.Background()

		if err := backendClient.Login(ctx); err != nil {
			return err
		}
		if err := trackerClient.Handshake(ctx); err != nil {
			return err
		}

		return runner.Run(ctx)
	}

	// Scheduled mode: keep running, one pass per tick. A failed pass is
	// logged (and journaled) but does not take the daemon down.
	if *cronSpec != "" {
		scheduler, err := newScheduler(*cronSpec, logger, runOnce)
		if err != nil {
			slog.Error("invalid cron schedule", "error", err, "spec", *cronSpec)
			os.Exit(1)
		}

		scheduler.Start()
		slog.Info("scheduler started", "spec", *cronSpec)

		// Wait for interrupt signal
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		slog.Info("shutting down")
		scheduler.Stop()
		return
	}

	if err := runOnce(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// newScheduler builds the cron scheduler for scheduled mode. Ticks fire in
// their own goroutines but the runner is not safe for concurrent use, so a
// tick that lands while the previous pass is still running is skipped.
func newScheduler(spec string, logger *slog.Logger, runOnce func() error) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})))

	_, err := scheduler.AddFunc(spec, func() {
		if err := runOnce(); err != nil {
			logger.Error("run failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return scheduler, nil
}

// cronLogger adapts slog to the cron logging interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
