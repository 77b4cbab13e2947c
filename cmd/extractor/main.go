package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jfeld/tickstore/internal/checkpoint"
	"github.com/jfeld/tickstore/internal/config"
	"github.com/jfeld/tickstore/internal/database"
	"github.com/jfeld/tickstore/internal/extract"
	"github.com/jfeld/tickstore/internal/sink"
	"github.com/jfeld/tickstore/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/extractor.local.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single extraction cycle and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting extractor",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)
	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"data_root", cfg.Data.Root,
		"contracts", len(cfg.Contracts),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Load checkpoints. Corrupt state needs operator attention before any
	// extraction runs, otherwise a wrong offset would sink garbage rows.
	store := checkpoint.NewStore(cfg.Data.CheckpointFile)
	state, err := store.Load()
	if err != nil {
		logger.Error("failed to load checkpoints", "error", err, "path", cfg.Data.CheckpointFile)
		os.Exit(1)
	}
	logger.Info("checkpoints loaded",
		"path", cfg.Data.CheckpointFile,
		"contracts", len(state),
	)

	pg := sink.NewPostgres(pool, logger)
	engine := extract.New(extract.Config{
		DataRoot:    cfg.Data.Root,
		Contracts:   cfg.Contracts,
		Delay:       cfg.Cycle.Delay,
		Concurrency: cfg.Cycle.Concurrency,
	}, store, pg, logger)

	if *once {
		report := engine.RunCycle(ctx)
		logger.Info("cycle complete",
			"cycle_id", report.CycleID,
			"records", report.Records(),
			"skips", report.Skips(),
			"failures", report.Failures(),
			"duration", report.Duration,
		)
		// Transient failures are retried by the next invocation; only
		// corrupt checkpoint state needs an operator and a non-zero exit.
		for _, c := range report.Contracts {
			if errors.Is(c.Trades.Err, checkpoint.ErrConfigCorrupt) ||
				errors.Is(c.Depth.Err, checkpoint.ErrConfigCorrupt) {
				os.Exit(1)
			}
		}
		return
	}

	if err := engine.Run(ctx); err != nil {
		logger.Error("extractor failed", "error", err)
		os.Exit(1)
	}

	logger.Info("extractor stopped")
}

// newLogger builds the process logger. With a log directory configured,
// output goes to stdout and a size-rotated file; otherwise stdout only.
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

	var w io.Writer = os.Stdout
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err == nil {
			w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   filepath.Join(cfg.Dir, "extractor.log"),
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		}
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
