// Package finder assembles ranked smoking-area listings for a device. It
// resolves the caller's position, ranks the catalog snapshot and scores each
// area against the device's preference.
package finder

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/geo"
	"github.com/geosmoke/geosmoke/internal/matching"
	"github.com/geosmoke/geosmoke/internal/preference"
	"github.com/geosmoke/geosmoke/internal/ranking"
)

// DefaultLocateTimeout bounds a single position lookup.
const DefaultLocateTimeout = 2 * time.Second

// OriginSource tells where the listing's origin came from.
type OriginSource string

// Origin sources.
const (
	OriginRequest  OriginSource = "REQUEST"
	OriginProvider OriginSource = "PROVIDER"
	OriginNone     OriginSource = "NONE"
)

// AreaSource reads the area catalog and the favorites of a device.
type AreaSource interface {
	List(ctx context.Context) ([]*area.Area, error)
	Get(ctx context.Context, id string) (*area.Area, error)
	Favorites(ctx context.Context, deviceID string) (map[string]bool, error)
}

// PreferenceSource returns a device's current preference.
type PreferenceSource interface {
	Current(ctx context.Context, deviceID string) (*preference.Preference, error)
}

// Config holds configuration for the finder.
type Config struct {
	Areas         AreaSource
	Preferences   PreferenceSource
	Locator       geo.Provider
	LocateTimeout time.Duration
	Logger        zerolog.Logger
	Metrics       *Metrics
}

// Finder serves ranked listings and area details.
type Finder struct {
	areas         AreaSource
	preferences   PreferenceSource
	locator       geo.Provider
	locateTimeout time.Duration
	logger        zerolog.Logger
	metrics       *Metrics
}

// New creates a new Finder.
func New(cfg Config) *Finder {
	timeout := cfg.LocateTimeout
	if timeout == 0 {
		timeout = DefaultLocateTimeout
	}
	return &Finder{
		areas:         cfg.Areas,
		preferences:   cfg.Preferences,
		locator:       cfg.Locator,
		locateTimeout: timeout,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
	}
}

// Query selects a listing.
type Query struct {
	DeviceID string
	Mode     ranking.Mode
	// Origin is an explicit caller position. When nil the locator is asked.
	Origin   *geo.Point
	ClientIP string
}

// Item is one area of a listing.
type Item struct {
	Area *area.Area
	// DistanceMeters is nil when the origin is unknown.
	DistanceMeters *float64
	DistanceText   string
	Match          matching.Result
}

// Listing is a ranked view of the catalog.
type Listing struct {
	Mode         ranking.Mode
	Origin       *geo.Point
	OriginSource OriginSource
	// Nearest is the closest area. Set only in nearest mode with a known origin.
	Nearest *Item
	Items   []Item
}

// Detail is a single area with its distance and full match result.
type Detail struct {
	Area           *area.Area
	DistanceMeters *float64
	DistanceText   string
	Match          matching.Result
}

// Browse returns the catalog ranked by q.Mode. A catalog read failure is
// logged and yields an empty listing.
func (f *Finder) Browse(ctx context.Context, q Query) (*Listing, error) {
	mode := q.Mode
	if mode == "" {
		mode = ranking.ModeNearest
	}

	origin, source := f.resolveOrigin(ctx, q.Origin, q.ClientIP)
	listing := &Listing{
		Mode:         mode,
		Origin:       origin,
		OriginSource: source,
		Items:        []Item{},
	}
	defer f.metrics.recordBrowse(ctx, string(mode), source)

	areas, err := f.areas.List(ctx)
	if err != nil {
		f.logger.Warn().
			Err(err).
			Str("mode", string(mode)).
			Msg("failed to fetch smoking areas, serving empty listing")
		return listing, nil
	}

	f.markFavorites(ctx, q.DeviceID, areas...)
	pref := f.currentPreference(ctx, q.DeviceID)

	for _, r := range ranking.Rank(areas, mode, origin) {
		item := Item{Area: r.Area, DistanceMeters: r.DistanceMeters}
		if item.DistanceMeters == nil && origin != nil {
			d := geo.Distance(*origin, r.Area.Point)
			item.DistanceMeters = &d
		}
		item.DistanceText = geo.FormatDistance(item.DistanceMeters)
		item.Match = matching.Score(r.Area, pref)
		f.metrics.recordMatch(ctx, item.Match.Percentage)
		listing.Items = append(listing.Items, item)
	}

	if mode == ranking.ModeNearest && origin != nil && len(listing.Items) > 0 {
		nearest := listing.Items[0]
		listing.Nearest = &nearest
	}

	return listing, nil
}

// Detail returns one area with its distance from the caller and the full
// match result. area.ErrAreaNotFound is returned unchanged.
func (f *Finder) Detail(ctx context.Context, deviceID, areaID string, origin *geo.Point, clientIP string) (*Detail, error) {
	a, err := f.areas.Get(ctx, areaID)
	if err != nil {
		return nil, err
	}

	f.markFavorites(ctx, deviceID, a)

	resolved, _ := f.resolveOrigin(ctx, origin, clientIP)
	d := &Detail{Area: a}
	if resolved != nil {
		dist := geo.Distance(*resolved, a.Point)
		d.DistanceMeters = &dist
	}
	d.DistanceText = geo.FormatDistance(d.DistanceMeters)
	d.Match = matching.Score(a, f.currentPreference(ctx, deviceID))

	return d, nil
}

// resolveOrigin prefers the explicit origin, then one locator request.
func (f *Finder) resolveOrigin(ctx context.Context, explicit *geo.Point, clientIP string) (*geo.Point, OriginSource) {
	if explicit != nil {
		return explicit, OriginRequest
	}

	pt, err := geo.LocateOnce(ctx, f.locator, geo.Request{ClientIP: clientIP}, f.locateTimeout)
	if err != nil {
		f.logger.Warn().Err(err).Msg("position lookup failed")
		return nil, OriginNone
	}
	if pt == nil {
		return nil, OriginNone
	}
	return pt, OriginProvider
}

// markFavorites sets IsFavorite on the given snapshot from the device's
// favorites. Without a device, or when favorites cannot be read, every flag is
// false.
func (f *Finder) markFavorites(ctx context.Context, deviceID string, areas ...*area.Area) {
	var favorites map[string]bool
	if deviceID != "" {
		var err error
		favorites, err = f.areas.Favorites(ctx, deviceID)
		if err != nil {
			f.logger.Warn().
				Err(err).
				Str("device_id", deviceID).
				Msg("failed to read favorites, serving none")
		}
	}
	for _, a := range areas {
		a.IsFavorite = favorites[a.ID]
	}
}

// currentPreference returns the device's preference, or the default one when
// it cannot be read.
func (f *Finder) currentPreference(ctx context.Context, deviceID string) *preference.Preference {
	if f.preferences == nil || deviceID == "" {
		return preference.Default(deviceID)
	}
	p, err := f.preferences.Current(ctx, deviceID)
	if err != nil {
		f.logger.Warn().
			Err(err).
			Str("device_id", deviceID).
			Msg("failed to read preference, scoring against default")
		return preference.Default(deviceID)
	}
	return p
}
