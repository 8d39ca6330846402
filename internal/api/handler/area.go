package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/api/response"
	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/finder"
	"github.com/geosmoke/geosmoke/internal/geo"
	"github.com/geosmoke/geosmoke/internal/ranking"
)

// AreaFinder ranks and scores smoking areas for a device.
type AreaFinder interface {
	Browse(ctx context.Context, q finder.Query) (*finder.Listing, error)
	Detail(ctx context.Context, deviceID, areaID string, origin *geo.Point, clientIP string) (*finder.Detail, error)
}

// FavoriteStore flips and sets a device's favorite flag on an area.
type FavoriteStore interface {
	ToggleFavorite(ctx context.Context, deviceID, id string) (*area.Area, error)
	SetFavorite(ctx context.Context, deviceID, id string, favorite bool) (*area.Area, error)
}

// AreaHandler handles smoking area endpoints.
type AreaHandler struct {
	finder    AreaFinder
	favorites FavoriteStore
	logger    zerolog.Logger
}

// NewAreaHandler creates a new AreaHandler.
func NewAreaHandler(f AreaFinder, favorites FavoriteStore, logger zerolog.Logger) *AreaHandler {
	return &AreaHandler{
		finder:    f,
		favorites: favorites,
		logger:    logger,
	}
}

// ListAreas handles GET /v1/areas - ranked listing.
func (h *AreaHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	mode, err := ranking.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		response.BadRequest(w, r, "invalid query parameters", []models.FieldError{
			{Field: "mode", Message: "must be one of nearest, facility, favorite"},
		})
		return
	}

	origin, fieldErrs := parseOrigin(r)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrs)
		return
	}

	listing, err := h.finder.Browse(r.Context(), finder.Query{
		DeviceID: deviceID(r),
		Mode:     mode,
		Origin:   origin,
		ClientIP: clientIP(r),
	})
	if err != nil {
		h.logger.Error().Err(err).Str("mode", string(mode)).Msg("failed to browse smoking areas")
		response.InternalError(w, r, "failed to list smoking areas")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIListing(listing))
}

// GetArea handles GET /v1/areas/{areaId} - area detail with match result.
func (h *AreaHandler) GetArea(w http.ResponseWriter, r *http.Request) {
	areaID := chi.URLParam(r, "areaId")
	if areaID == "" {
		response.BadRequest(w, r, "areaId is required", nil)
		return
	}

	origin, fieldErrs := parseOrigin(r)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrs)
		return
	}

	detail, err := h.finder.Detail(r.Context(), deviceID(r), areaID, origin, clientIP(r))
	if err != nil {
		h.writeAreaError(w, r, areaID, err, "failed to get smoking area")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIDetail(detail))
}

// ToggleFavorite handles POST /v1/areas/{areaId}/favorite:toggle.
func (h *AreaHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	areaID := chi.URLParam(r, "areaId")
	if areaID == "" {
		response.BadRequest(w, r, "areaId is required", nil)
		return
	}

	a, err := h.favorites.ToggleFavorite(r.Context(), deviceID(r), areaID)
	if err != nil {
		h.writeAreaError(w, r, areaID, err, "failed to toggle favorite")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIArea(a))
}

// SetFavorite handles PUT /v1/areas/{areaId}/favorite.
func (h *AreaHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	areaID := chi.URLParam(r, "areaId")
	if areaID == "" {
		response.BadRequest(w, r, "areaId is required", nil)
		return
	}

	var input models.FavoriteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.IsFavorite == nil {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "isFavorite", Message: "is required"},
		})
		return
	}

	a, err := h.favorites.SetFavorite(r.Context(), deviceID(r), areaID, *input.IsFavorite)
	if err != nil {
		h.writeAreaError(w, r, areaID, err, "failed to set favorite")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIArea(a))
}

func (h *AreaHandler) writeAreaError(w http.ResponseWriter, r *http.Request, areaID string, err error, msg string) {
	switch {
	case errors.Is(err, area.ErrAreaNotFound):
		response.NotFound(w, r, "smoking area not found")
		return
	case errors.Is(err, area.ErrDeviceRequired):
		response.Unauthorized(w, r, "device token required")
		return
	}
	h.logger.Error().Err(err).Str("area_id", areaID).Msg(msg)
	response.InternalError(w, r, msg)
}
