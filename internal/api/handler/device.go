package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/api/response"
	"github.com/geosmoke/geosmoke/internal/auth"
)

// DeviceRegistrar issues device identities.
type DeviceRegistrar interface {
	RegisterDevice(ctx context.Context) (*auth.Registration, error)
}

// DeviceHandler handles device registration.
type DeviceHandler struct {
	registrar DeviceRegistrar
	logger    zerolog.Logger
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(registrar DeviceRegistrar, logger zerolog.Logger) *DeviceHandler {
	return &DeviceHandler{registrar: registrar, logger: logger}
}

// RegisterDevice handles POST /v1/devices - issue a device ID and token.
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registrar.RegisterDevice(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to register device")
		response.InternalError(w, r, "failed to register device")
		return
	}

	response.Created(w, r, "", models.DeviceRegistration{
		DeviceID:    reg.DeviceID,
		AccessToken: reg.AccessToken,
		TokenType:   reg.TokenType,
		ExpiresIn:   int64(reg.ExpiresIn.Seconds()),
		ExpiresAt:   models.Timestamp(reg.ExpiresAt),
	})
}
