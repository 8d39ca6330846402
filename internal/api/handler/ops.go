// Package handler provides HTTP handlers for the GeoSmoke API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/api/response"
	"github.com/geosmoke/geosmoke/internal/provider/resilience"
)

// readyTimeout bounds the store ping of a readiness check.
const readyTimeout = 2 * time.Second

// Pinger checks that the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// OpsConfig holds dependencies of the operational endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string
	StoreName string
	// Store is pinged by readiness and status checks. Nil means the store is
	// in-process and always ready.
	Store    Pinger
	Registry *resilience.Registry
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	storeName string
	store     Pinger
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	storeName := cfg.StoreName
	if storeName == "" {
		storeName = "store"
	}
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		storeName: storeName,
		store:     cfg.Store,
		registry:  cfg.Registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - 503 until the store answers.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.pingStore(r.Context()); err != nil {
		response.ServiceUnavailable(w, r, h.storeName+" is not reachable")
		return
	}
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	})
}

// SystemStatus handles GET /v1/ops/status - store and provider status.
// Lookup providers are optional, so an open circuit degrades the service
// but never fails it.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	store := models.SubsystemStatus{Name: h.storeName, Status: models.HealthStatusOK}
	if err := h.pingStore(r.Context()); err != nil {
		detail := err.Error()
		store.Status = models.HealthStatusFail
		store.Detail = &detail
		status.Status = models.HealthStatusFail
	}
	status.Subsystems = append(status.Subsystems, store)

	if h.registry != nil {
		for _, p := range h.registry.All() {
			ps := toProviderStatus(p)
			if ps.Status != models.HealthStatusOK && status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) pingStore(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	return h.store.Ping(ctx)
}

func toProviderStatus(p *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:     p.Name,
		Status:       models.HealthStatusOK,
		CircuitState: resilience.StateName(p.State),
	}
	switch p.State {
	case gobreaker.StateOpen:
		ps.Status = models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		ps.Status = models.HealthStatusDegraded
	}
	if p.LastSuccessAt != nil {
		ts := models.Timestamp(*p.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if p.LastFailureAt != nil {
		ts := models.Timestamp(*p.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if p.LastError != "" {
		msg := p.LastError
		ps.Message = &msg
	}
	return ps
}
