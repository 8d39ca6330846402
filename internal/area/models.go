// Package area manages the catalog of designated smoking areas.
package area

import (
	"errors"
	"time"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/geo"
)

// Repository errors.
var (
	ErrAreaNotFound   = errors.New("smoking area not found")
	ErrDeviceRequired = errors.New("device id is required")
)

// Grade is the facility grade of an area. Values outside the known set are
// kept as-is and rank after Low.
type Grade string

// Known facility grades.
const (
	GradeHigh     Grade = "High"
	GradeModerate Grade = "Moderate"
	GradeLow      Grade = "Low"
)

// Grades lists the known grades, best first.
var Grades = []Grade{GradeHigh, GradeModerate, GradeLow}

// Area is a designated smoking area. Facilities and Photos are owned by the
// area and are removed with it. IsFavorite is not part of the stored area; it
// is filled from the favorites of the device the area is shown to.
type Area struct {
	ID                string
	Name              string
	Location          string
	Point             geo.Point
	PhotoURL          string
	DisposalPhotoURL  string
	DisposalDirection string
	Facilities        []Facility
	IsFavorite        bool
	Photos            []Photo
	Grade             Grade
	Ambience          string
	CrowdLevel        string
	SmokingTypes      []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Facility is an amenity available at an area, such as a chair or a roof.
type Facility struct {
	Name string
}

// Photo is an additional photo reference for an area.
type Photo struct {
	URL string
}

// FacilityNames returns the names of the area's facilities in order.
func (a *Area) FacilityNames() []string {
	names := make([]string, 0, len(a.Facilities))
	for _, f := range a.Facilities {
		names = append(names, f.Name)
	}
	return names
}

// Clone returns a deep copy of the area.
func (a *Area) Clone() *Area {
	cpy := *a
	cpy.Facilities = append([]Facility(nil), a.Facilities...)
	cpy.Photos = append([]Photo(nil), a.Photos...)
	cpy.SmokingTypes = append([]string(nil), a.SmokingTypes...)
	return &cpy
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
