package handler

import (
	"net/http"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/api/response"
	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/matching"
	"github.com/geosmoke/geosmoke/internal/preference"
	"github.com/geosmoke/geosmoke/internal/ranking"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	enums models.Enums
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	modes := make([]models.RankingMode, 0, len(ranking.Modes))
	for _, m := range ranking.Modes {
		modes = append(modes, models.RankingMode(m))
	}
	grades := make([]string, 0, len(area.Grades))
	for _, g := range area.Grades {
		grades = append(grades, string(g))
	}
	icons := make([]string, 0, len(matching.Icons))
	for _, i := range matching.Icons {
		icons = append(icons, string(i))
	}

	return &MetadataHandler{
		enums: models.Enums{
			RankingModes:   modes,
			FacilityGrades: grades,
			Ambiences:      append([]string(nil), preference.Ambiences...),
			CrowdLevels:    append([]string(nil), preference.CrowdLevels...),
			Facilities:     append([]string(nil), preference.Facilities...),
			SmokingTypes:   append([]string(nil), preference.SmokingTypes...),
			MatchIcons:     icons,
		},
	}
}

// GetEnums handles GET /v1/metadata/enums - enum values and the settings
// vocabularies used by the API.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.enums)
}
