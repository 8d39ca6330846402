// Package main provides the entrypoint for the GeoSmoke catalog worker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/config"
	"github.com/geosmoke/geosmoke/internal/store"
	"github.com/geosmoke/geosmoke/internal/telemetry"
	"github.com/geosmoke/geosmoke/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "geosmoke-worker").
		Str("version", Version).
		Logger()

	if err := config.LoadDotenv(); err != nil {
		log.Fatal().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load(".", "/etc/geosmoke")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.PubSub.ProjectID == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID is required")
	}

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting GeoSmoke worker")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "geosmoke-worker",
		ServiceVersion: Version,
		Environment:    cfg.App.Env,
		OTLPEndpoint:   cfg.OTel.Endpoint,
		Enabled:        cfg.OTel.Enabled,
		Insecure:       cfg.OTel.Insecure,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	processor := worker.NewProcessor(worker.ProcessorConfig{
		Catalog: area.NewService(area.ServiceConfig{Repository: st.Areas, Logger: log}),
		Logger:  log,
	})

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        cfg.PubSub.ProjectID,
		SubscriptionName: cfg.PubSub.Subscription,
		Processor:        processor,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer func() {
		if err := handler.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close pubsub client")
		}
	}()

	// Worker also exposes a health endpoint for Cloud Run
	r := chi.NewRouter()
	r.Get("/health", worker.HealthHandler(processor, Version))

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	go func() {
		if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("pubsub receive stopped")
			cancel()
		}
	}()

	// Wait for interrupt signal or receiver failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
