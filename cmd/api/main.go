// Package main provides the entrypoint for the GeoSmoke API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/api"
	"github.com/geosmoke/geosmoke/internal/api/middleware"
	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/auth"
	"github.com/geosmoke/geosmoke/internal/config"
	"github.com/geosmoke/geosmoke/internal/finder"
	"github.com/geosmoke/geosmoke/internal/geo"
	"github.com/geosmoke/geosmoke/internal/geo/ipapi"
	"github.com/geosmoke/geosmoke/internal/preference"
	"github.com/geosmoke/geosmoke/internal/provider/resilience"
	"github.com/geosmoke/geosmoke/internal/store"
	"github.com/geosmoke/geosmoke/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("version", Version).
		Logger()

	if err := config.LoadDotenv(); err != nil {
		log.Fatal().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load(".", "/etc/geosmoke")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	serviceName := cfg.App.Name
	log = log.With().Str("service", serviceName).Logger()
	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.App.Env).
		Msg("starting GeoSmoke API")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTel.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTel.Endpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	finderMetrics, err := finder.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize finder metrics")
	}
	providerMetrics, err := resilience.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	areaService := area.NewService(area.ServiceConfig{
		Repository: st.Areas,
		Logger:     log,
	})
	if cfg.Store.SeedOnStart {
		seeded, err := areaService.SeedIfEmpty(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed area catalog")
		}
		if seeded {
			log.Info().Msg("area catalog seeded")
		}
	}
	preferenceService := preference.NewService(st.Preferences)

	registry := resilience.NewRegistry()
	locator := newLocator(cfg, registry, providerMetrics, log)

	areaFinder := finder.New(finder.Config{
		Areas:         areaService,
		Preferences:   preferenceService,
		Locator:       locator,
		LocateTimeout: cfg.Geolocation.Timeout,
		Logger:        log,
		Metrics:       finderMetrics,
	})

	signingKey := cfg.JWT.SigningKey
	if signingKey == "" {
		signingKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	authService := auth.NewService(auth.ServiceConfig{
		JWTService: auth.NewJWTService(auth.JWTConfig{
			SigningKey: signingKey,
			Issuer:     cfg.JWT.Issuer,
			Audience:   cfg.JWT.Audience,
		}),
		Logger: log,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		Finder:         areaFinder,
		Favorites:      areaService,
		Preferences:    preferenceService,
		AuthService:    authService,
		Store:          st,
		StoreName:      st.Name,
		Registry:       registry,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequireTLS:     cfg.App.RequireTLS,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

// newLocator returns the configured fallback position provider, or nil when
// lookups are disabled.
func newLocator(cfg *config.Config, registry *resilience.Registry, metrics *resilience.Metrics, log zerolog.Logger) geo.Provider {
	switch cfg.Geolocation.Provider {
	case config.GeoIPAPI:
		clientCfg := resilience.DefaultClientConfig(ipapi.ProviderName)
		clientCfg.Timeout = cfg.Geolocation.Timeout
		clientCfg.Registry = registry
		clientCfg.Metrics = metrics
		clientCfg.Logger = log

		log.Info().Str("base_url", cfg.Geolocation.BaseURL).Msg("ip geolocation enabled")
		return ipapi.NewClient(ipapi.ClientConfig{
			BaseURL:    cfg.Geolocation.BaseURL,
			HTTPClient: resilience.NewClient(clientCfg),
			CacheTTL:   cfg.Geolocation.CacheTTL,
			Metrics:    metrics,
			Logger:     log,
		})
	case config.GeoStatic:
		return geo.StaticProvider{Point: &geo.Point{
			Lat: cfg.Geolocation.StaticLat,
			Lon: cfg.Geolocation.StaticLon,
		}}
	default:
		return nil
	}
}
