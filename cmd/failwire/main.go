package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/failwire/config"
	"github.com/target/failwire/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}

	logger := bootstrap.InitLogger(cfg.IsDev)
	if err := run(ctx, &cfg, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (err error) {
	if err = bootstrap.ValidateConfig(cfg); err != nil {
		return err
	}

	logStartupInfo(ctx, logger, cfg)

	pipeline, err := bootstrap.NewPipeline(ctx, bootstrap.PipelineDeps{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pipeline.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return bootstrap.Serve(ctx, bootstrap.ServerOptions{
		Config:   cfg.HTTP,
		Pipeline: pipeline,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting failwire",
		"app", cfg.AppName,
		"dev", cfg.IsDev,
		"http_addr", cfg.HTTP.Addr,
		"notify_transport", cfg.Notify.Transport,
		"statsd", cfg.Observability.Metrics.IsEnabled(),
		"prometheus", cfg.Observability.Prometheus.Enabled,
	)
}
