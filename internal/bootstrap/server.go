package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/target/failwire/config"
	httpx "github.com/target/failwire/internal/http"
)

// ServerOptions contains dependencies for the HTTP server.
type ServerOptions struct {
	Config   config.HTTPConfig
	Pipeline *Pipeline
	Logger   *slog.Logger
	// Listener overrides Config.Addr (tests bind to :0).
	Listener net.Listener
}

// NewHandler builds the router around the pipeline.
func NewHandler(opts ServerOptions) http.Handler {
	services := httpx.RouterServices{
		Failures:        opts.Pipeline.Failures,
		TestFireEnabled: opts.Config.TestFireEnabled,
		Logger:          opts.Logger,
	}
	if reg := opts.Pipeline.Metrics.Registry; reg != nil {
		services.Gatherer = reg
	}
	return httpx.NewRouter(services)
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down
// gracefully within Config.ShutdownTimeout.
func Serve(ctx context.Context, opts ServerOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := &http.Server{
		Addr:              opts.Config.Addr,
		Handler:           NewHandler(opts),
		ReadHeaderTimeout: opts.Config.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		if opts.Listener != nil {
			logger.InfoContext(gctx, "starting HTTP server", "addr", opts.Listener.Addr().String())
			err = server.Serve(opts.Listener)
		} else {
			logger.InfoContext(gctx, "starting HTTP server", "addr", server.Addr)
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		timeout := opts.Config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return group.Wait()
}
