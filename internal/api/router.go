// Package api provides the HTTP API for GeoSmoke.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/api/handler"
	"github.com/geosmoke/geosmoke/internal/api/middleware"
	"github.com/geosmoke/geosmoke/internal/api/response"
	"github.com/geosmoke/geosmoke/internal/auth"
	"github.com/geosmoke/geosmoke/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Finder      handler.AreaFinder
	Favorites   handler.FavoriteStore
	Preferences handler.PreferenceService
	AuthService *auth.Service

	// Store is pinged by the readiness and status endpoints (optional).
	Store     handler.Pinger
	StoreName string
	Registry  *resilience.Registry

	AllowedOrigins []string
	RequireTLS     bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "geosmoke-api"
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "resource not found")
	})

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		StoreName: cfg.StoreName,
		Store:     cfg.Store,
		Registry:  cfg.Registry,
	})
	metadataHandler := handler.NewMetadataHandler()
	deviceHandler := handler.NewDeviceHandler(cfg.AuthService, cfg.Logger)
	areaHandler := handler.NewAreaHandler(cfg.Finder, cfg.Favorites, cfg.Logger)
	preferenceHandler := handler.NewPreferenceHandler(cfg.Preferences, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.With(middleware.RateLimitByIP(middleware.StandardRateLimit)).
			Get("/metadata/enums", metadataHandler.GetEnums)

		// Device registration is the only way to obtain a token, so it is
		// limited per IP.
		r.With(middleware.RateLimitByIP(middleware.RegistrationRateLimit)).
			Post("/devices", deviceHandler.RegisterDevice)

		r.Route("/areas", func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(middleware.RateLimitByDevice(middleware.BrowseRateLimit)).Get("/", areaHandler.ListAreas)

			r.Route("/{areaId}", func(r chi.Router) {
				r.Use(middleware.RateLimitByDevice(middleware.StandardRateLimit))
				r.Get("/", areaHandler.GetArea)
				r.Post("/favorite:toggle", areaHandler.ToggleFavorite)
				r.Put("/favorite", areaHandler.SetFavorite)
			})
		})

		r.Route("/me/preferences", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByDevice(middleware.StandardRateLimit))
			r.Get("/", preferenceHandler.GetPreferences)
			r.Put("/", preferenceHandler.PutPreferences)
			r.Delete("/", preferenceHandler.DeletePreferences)
		})
	})

	return r
}
