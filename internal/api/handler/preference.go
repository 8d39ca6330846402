package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/api/response"
	"github.com/geosmoke/geosmoke/internal/preference"
)

// PreferenceService reads and replaces a device's preference.
type PreferenceService interface {
	Current(ctx context.Context, deviceID string) (*preference.Preference, error)
	Save(ctx context.Context, deviceID string, input *models.PreferencesInput) (*preference.Preference, error)
	Reset(ctx context.Context, deviceID string) error
}

// PreferenceHandler handles /v1/me/preferences.
type PreferenceHandler struct {
	service PreferenceService
	logger  zerolog.Logger
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(service PreferenceService, logger zerolog.Logger) *PreferenceHandler {
	return &PreferenceHandler{service: service, logger: logger}
}

// GetPreferences handles GET /v1/me/preferences. A device without a stored
// preference receives the default one.
func (h *PreferenceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	id := deviceID(r)
	if id == "" {
		response.Unauthorized(w, r, "device not authenticated")
		return
	}

	p, err := h.service.Current(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("device_id", id).Msg("failed to get preferences")
		response.InternalError(w, r, "failed to get preferences")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIPreferences(p))
}

// PutPreferences handles PUT /v1/me/preferences.
func (h *PreferenceHandler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	id := deviceID(r)
	if id == "" {
		response.Unauthorized(w, r, "device not authenticated")
		return
	}

	var input models.PreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	p, err := h.service.Save(r.Context(), id, &input)
	if err != nil {
		var validationErr *preference.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation failed", validationErr.Errors)
			return
		}
		h.logger.Error().Err(err).Str("device_id", id).Msg("failed to save preferences")
		response.InternalError(w, r, "failed to save preferences")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIPreferences(p))
}

// DeletePreferences handles DELETE /v1/me/preferences. The next read
// recreates the default preference.
func (h *PreferenceHandler) DeletePreferences(w http.ResponseWriter, r *http.Request) {
	id := deviceID(r)
	if id == "" {
		response.Unauthorized(w, r, "device not authenticated")
		return
	}

	if err := h.service.Reset(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("device_id", id).Msg("failed to reset preferences")
		response.InternalError(w, r, "failed to reset preferences")
		return
	}

	response.NoContent(w, r)
}
