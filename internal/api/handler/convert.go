package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/finder"
	"github.com/geosmoke/geosmoke/internal/geo"
	"github.com/geosmoke/geosmoke/internal/matching"
	"github.com/geosmoke/geosmoke/internal/preference"
)

// parseOrigin reads the optional lat and lon query parameters. Both or
// neither must be present.
func parseOrigin(r *http.Request) (*geo.Point, []models.FieldError) {
	q := r.URL.Query()
	latRaw := strings.TrimSpace(q.Get("lat"))
	lonRaw := strings.TrimSpace(q.Get("lon"))

	if latRaw == "" && lonRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lonRaw == "" {
		return nil, []models.FieldError{{Field: "lat,lon", Message: "must be provided together"}}
	}

	var errs []models.FieldError
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || !(lat >= -90 && lat <= 90) {
		errs = append(errs, models.FieldError{Field: "lat", Message: "must be a number between -90 and 90"})
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil || !(lon >= -180 && lon <= 180) {
		errs = append(errs, models.FieldError{Field: "lon", Message: "must be a number between -180 and 180"})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return &geo.Point{Lat: lat, Lon: lon}, nil
}

func toAPIPoint(p *geo.Point) *models.Point {
	if p == nil {
		return nil
	}
	return &models.Point{Lat: p.Lat, Lon: p.Lon}
}

func toAPIArea(a *area.Area) models.SmokingArea {
	photos := make([]string, 0, len(a.Photos))
	for _, p := range a.Photos {
		photos = append(photos, p.URL)
	}
	smokingTypes := a.SmokingTypes
	if smokingTypes == nil {
		smokingTypes = []string{}
	}

	return models.SmokingArea{
		ID:                a.ID,
		Name:              a.Name,
		Location:          a.Location,
		Point:             models.Point{Lat: a.Point.Lat, Lon: a.Point.Lon},
		PhotoURL:          a.PhotoURL,
		DisposalPhotoURL:  a.DisposalPhotoURL,
		DisposalDirection: a.DisposalDirection,
		Facilities:        a.FacilityNames(),
		IsFavorite:        a.IsFavorite,
		Photos:            photos,
		FacilityGrade:     string(a.Grade),
		Ambience:          a.Ambience,
		CrowdLevel:        a.CrowdLevel,
		SmokingTypes:      smokingTypes,
		CreatedAt:         models.Timestamp(a.CreatedAt),
		UpdatedAt:         models.Timestamp(a.UpdatedAt),
	}
}

func toAPIMatch(m matching.Result) models.MatchResult {
	tags := make([]models.MatchTag, 0, len(m.Matches))
	for _, t := range m.Matches {
		tags = append(tags, models.MatchTag{Icon: string(t.Icon), Label: t.Label})
	}
	return models.MatchResult{
		Percentage:        m.Percentage,
		PercentageRounded: m.Rounded,
		Score:             m.Score,
		Total:             m.Total,
		Matches:           tags,
	}
}

func toAPIItem(it *finder.Item) models.AreaListItem {
	return models.AreaListItem{
		Area:            toAPIArea(it.Area),
		DistanceMeters:  it.DistanceMeters,
		DistanceText:    it.DistanceText,
		MatchPercentage: it.Match.Rounded,
	}
}

func toAPIListing(l *finder.Listing) models.AreaListing {
	items := make([]models.AreaListItem, 0, len(l.Items))
	for i := range l.Items {
		items = append(items, toAPIItem(&l.Items[i]))
	}

	out := models.AreaListing{
		Mode:         models.RankingMode(l.Mode),
		Origin:       toAPIPoint(l.Origin),
		OriginSource: models.OriginSource(l.OriginSource),
		Items:        items,
	}
	if l.Nearest != nil {
		nearest := toAPIItem(l.Nearest)
		out.Nearest = &nearest
	}
	return out
}

func toAPIDetail(d *finder.Detail) models.AreaDetail {
	return models.AreaDetail{
		Area:           toAPIArea(d.Area),
		DistanceMeters: d.DistanceMeters,
		DistanceText:   d.DistanceText,
		Match:          toAPIMatch(d.Match),
	}
}

func toAPIPreferences(p *preference.Preference) models.Preferences {
	facilities := p.Facilities
	if facilities == nil {
		facilities = []string{}
	}
	smokingTypes := p.SmokingTypes
	if smokingTypes == nil {
		smokingTypes = []string{}
	}
	return models.Preferences{
		Ambience:     p.Ambience,
		CrowdLevel:   p.CrowdLevel,
		Facilities:   facilities,
		SmokingTypes: smokingTypes,
		CreatedAt:    models.Timestamp(p.CreatedAt),
		UpdatedAt:    models.Timestamp(p.UpdatedAt),
	}
}
