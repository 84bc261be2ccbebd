package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/library-circulation-go/circulation/httpapi"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell/config"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/oteladapters"
)

const (
	serviceName     = "library-circulation"
	serviceVersion  = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

func newServeCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, debug)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "log at debug level and run gin in debug mode")

	return cmd
}

func serve(ctx context.Context, debug bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	obs := config.Observability{Logger: logger}

	if cfg.OTLPEndpoint != "" {
		providers, provErr := config.NewObservabilityProviders(ctx, cfg.OTLPEndpoint, serviceName, serviceVersion)
		if provErr != nil {
			return provErr
		}

		defer func() {
			if shutdownErr := providers.Shutdown(); shutdownErr != nil {
				logger.Slog().Warn("telemetry shutdown failed", "error", shutdownErr)
			}
		}()

		obs.Metrics = oteladapters.NewMetricsCollector(otel.Meter(serviceName))
		obs.Tracing = oteladapters.NewTracingCollector(otel.Tracer(serviceName))
		logger.Slog().Info("telemetry enabled", "endpoint", cfg.OTLPEndpoint)
	}

	rt, err := openRuntime(ctx, obs)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			logger.Slog().Warn("closing ledger failed", "error", closeErr)
		}
	}()

	server, err := httpapi.NewServer(
		rt.ledger.Store,
		rt.handlers,
		httpapi.WithJWTSecret(cfg.JWTSecret),
		httpapi.WithContextualLogger(logger),
		httpapi.WithCORSOrigins(cfg.CORSOrigins...),
		httpapi.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Slog().Info("listening", "addr", cfg.HTTPAddr, "ledger", cfg.LedgerDriver, "finePolicy", rt.handlers.Policy.Name())
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http server: %w", err)

	case <-ctx.Done():
		logger.Slog().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
