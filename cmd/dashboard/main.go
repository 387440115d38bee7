// Package main provides the entrypoint for the homelab dashboard server.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homelabdash/homelabdash/internal/api"
	"github.com/homelabdash/homelabdash/internal/api/middleware"
	"github.com/homelabdash/homelabdash/internal/app"
	"github.com/homelabdash/homelabdash/internal/config"
	"github.com/homelabdash/homelabdash/internal/source"
	"github.com/homelabdash/homelabdash/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "homelab-dashboard"

	cfg, err := config.Load()
	if err != nil {
		errLog := app.NewLogger(os.Stderr, config.Config{}, serviceName, Version)
		errLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := app.NewLogger(os.Stdout, cfg, serviceName, Version)
	log.Info().
		Str("build_time", BuildTime).
		Str("source_mode", string(cfg.SourceMode)).
		Msg("starting homelab dashboard")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if tp.Enabled() {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	sourceMetrics, err := middleware.NewSourceMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize source metrics")
		os.Exit(1)
	}

	src, err := app.OpenSource(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open data source")
		os.Exit(1)
	}
	defer src.Close()

	loader := source.NewLoader(source.LoaderConfig{
		Source:  src.Source,
		Logger:  log,
		Metrics: sourceMetrics,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		State:       loader.State,
		ConfigDir:   cfg.ConfigDir,
		Registry:    src.Registry,
		Checks:      src.Checks,
		RequireTLS:  cfg.RequireTLS,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// The fetch source reads this server's own /config route, so the socket
	// is bound before the load starts.
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Error().Err(err).Str("addr", server.Addr).Msg("failed to listen")
		os.Exit(1)
	}

	go func() {
		log.Info().
			Str("addr", listener.Addr().String()).
			Msg("server listening")

		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	loader.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
