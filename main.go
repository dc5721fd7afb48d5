// Package main provides the entry point for the drivescribe daemon.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"drivescribe/internal/bootstrap"
	"drivescribe/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create structured logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting drivescribe",
		slog.String("log_format", cfg.LogFormat),
		slog.String("log_level", cfg.LogLevel),
		slog.String("data_dir", cfg.DataDir),
		slog.Duration("poll_interval", cfg.PollInterval),
		slog.Duration("error_cooldown", cfg.ErrorCooldown),
		slog.Bool("s3_source", cfg.S3Enabled()),
	)

	// Cancel the run context on interrupt so the poll loop stops cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies using bootstrap
	deps, err := bootstrap.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}
	defer func() {
		if err := deps.Store.Close(); err != nil {
			logger.Error("close metadata store",
				slog.String("error", err.Error()),
			)
		}
	}()

	if err := deps.Poller.Run(ctx); err != nil {
		return fmt.Errorf("poll loop: %w", err)
	}

	logger.Info("daemon stopped gracefully")
	return nil
}
