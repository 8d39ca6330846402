// Package geo provides coordinates, great-circle distances and the
// location provider abstraction used to find the caller's position.
package geo

import (
	"fmt"
	"math"
)

// EarthRadius is the mean earth radius in meters.
const EarthRadius = 6371000

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// String returns the point as "lat,lon".
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

// Valid reports whether both components are within range.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) &&
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadius * c
}

// FormatDistance renders a distance for display. A nil distance means the
// caller's position is not known yet.
func FormatDistance(meters *float64) string {
	if meters == nil {
		return "Loading..."
	}
	return fmt.Sprintf("%.0f meters", *meters)
}
