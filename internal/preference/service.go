package preference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geosmoke/geosmoke/internal/api/models"
)

// Validation constants.
const (
	MaxValueLength  = 40
	MaxFacilities   = 20
	MaxSmokingTypes = 10
)

// Service provides preference operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new preference service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Current returns the device's preference, creating and storing the default
// preference if the device has none yet.
func (s *Service) Current(ctx context.Context, deviceID string) (*Preference, error) {
	p, err := s.repo.Get(ctx, deviceID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPreferenceNotFound) {
		return nil, err
	}

	p = Default(deviceID)
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.repo.Replace(ctx, p); err != nil {
		return nil, fmt.Errorf("store default preference: %w", err)
	}
	return p, nil
}

// Save validates input and replaces the device's preference with it.
func (s *Service) Save(ctx context.Context, deviceID string, input *models.PreferencesInput) (*Preference, error) {
	if fieldErrors := validateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := s.now()
	createdAt := now
	existing, err := s.repo.Get(ctx, deviceID)
	switch {
	case err == nil:
		createdAt = existing.CreatedAt
	case !errors.Is(err, ErrPreferenceNotFound):
		return nil, err
	}

	p := &Preference{
		DeviceID:     deviceID,
		Ambience:     strings.TrimSpace(input.Ambience),
		CrowdLevel:   strings.TrimSpace(input.CrowdLevel),
		Facilities:   normalizeList(input.Facilities),
		SmokingTypes: normalizeList(input.SmokingTypes),
		CreatedAt:    createdAt,
		UpdatedAt:    now,
	}
	if err := s.repo.Replace(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Reset removes the device's preference. The next Current call recreates
// the default.
func (s *Service) Reset(ctx context.Context, deviceID string) error {
	return s.repo.Delete(ctx, deviceID)
}

// normalizeList trims values and drops case-insensitive duplicates, keeping
// the first spelling.
func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func validateInput(input *models.PreferencesInput) []models.FieldError {
	var errs []models.FieldError

	errs = append(errs, validateValue(input.Ambience, "ambience")...)
	errs = append(errs, validateValue(input.CrowdLevel, "crowdLevel")...)
	errs = append(errs, validateList(input.Facilities, "facilities", MaxFacilities)...)
	errs = append(errs, validateList(input.SmokingTypes, "smokingTypes", MaxSmokingTypes)...)

	return errs
}

func validateValue(v, field string) []models.FieldError {
	v = strings.TrimSpace(v)
	if v == "" {
		return []models.FieldError{{Field: field, Message: "is required", Code: "REQUIRED"}}
	}
	if len(v) > MaxValueLength {
		return []models.FieldError{{Field: field, Message: "must be at most 40 characters"}}
	}
	return nil
}

func validateList(values []string, field string, maxItems int) []models.FieldError {
	if len(values) > maxItems {
		return []models.FieldError{{Field: field, Message: fmt.Sprintf("must contain at most %d items", maxItems)}}
	}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return []models.FieldError{{Field: field, Message: "must not contain empty values"}}
		}
		if len(v) > MaxValueLength {
			return []models.FieldError{{Field: field, Message: "values must be at most 40 characters"}}
		}
	}
	return nil
}
