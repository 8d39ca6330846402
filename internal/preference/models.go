// Package preference stores each device's smoking area preference.
//
// A device has at most one preference record; the device ID is the key in
// every store. The record is created with defaults on first access and
// replaced wholesale when the user saves new settings.
package preference

import (
	"errors"
	"time"

	"github.com/geosmoke/geosmoke/internal/api/models"
)

// Repository errors.
var (
	ErrPreferenceNotFound = errors.New("preference not found")
)

// Preference is a device's stored preference.
type Preference struct {
	DeviceID     string
	Ambience     string
	CrowdLevel   string
	Facilities   []string
	SmokingTypes []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Default returns the preference created for a device on first use.
func Default(deviceID string) *Preference {
	now := time.Now()
	return &Preference{
		DeviceID:     deviceID,
		Ambience:     "Bright",
		CrowdLevel:   "Low",
		Facilities:   []string{"Chair", "Waste Bin"},
		SmokingTypes: []string{"Cigarette"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy of the preference.
func (p *Preference) Clone() *Preference {
	cpy := *p
	cpy.Facilities = append([]string(nil), p.Facilities...)
	cpy.SmokingTypes = append([]string(nil), p.SmokingTypes...)
	return &cpy
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
