package area

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/geo"
)

// Validation constants.
const (
	MaxNameLength      = 120
	MaxLocationLength  = 120
	MaxDirectionLength = 500
	MaxFacilities      = 20
	MaxPhotos          = 20
	MaxSmokingTypes    = 10
	MaxTagLength       = 40
)

// ServiceConfig holds configuration for the area service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
	// Catalog is preloaded by SeedIfEmpty. Defaults to DefaultCatalog().
	Catalog []models.AreaInput
}

// Service provides smoking area catalog operations.
type Service struct {
	repo    Repository
	logger  zerolog.Logger
	catalog []models.AreaInput
	now     func() time.Time
}

// NewService creates a new area service.
func NewService(cfg ServiceConfig) *Service {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	return &Service{
		repo:    cfg.Repository,
		logger:  cfg.Logger,
		catalog: catalog,
		now:     time.Now,
	}
}

// List retrieves every area, oldest first.
func (s *Service) List(ctx context.Context) ([]*Area, error) {
	return s.repo.List(ctx)
}

// Get retrieves an area by ID.
func (s *Service) Get(ctx context.Context, id string) (*Area, error) {
	return s.repo.Get(ctx, id)
}

// Count returns the number of stored areas.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Favorites returns the IDs of the areas a device marked as favorite.
func (s *Service) Favorites(ctx context.Context, deviceID string) (map[string]bool, error) {
	return s.repo.Favorites(ctx, deviceID)
}

// ToggleFavorite flips the device's favorite flag on an area and returns the
// area as that device sees it.
func (s *Service) ToggleFavorite(ctx context.Context, deviceID, id string) (*Area, error) {
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	favorites, err := s.repo.Favorites(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	return s.SetFavorite(ctx, deviceID, id, !favorites[id])
}

// SetFavorite writes the device's favorite flag on an area and returns the
// area as that device sees it.
func (s *Service) SetFavorite(ctx context.Context, deviceID, id string, favorite bool) (*Area, error) {
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}
	if err := s.repo.SetFavorite(ctx, deviceID, id, favorite); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("device_id", deviceID).
		Str("area_id", id).
		Bool("is_favorite", favorite).
		Msg("favorite updated")

	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.IsFavorite = favorite
	return a, nil
}

// Import validates and stores the given areas. Inputs carrying the ID of an
// existing area replace it; all others are created.
func (s *Service) Import(ctx context.Context, inputs []models.AreaInput) ([]*Area, error) {
	if fieldErrors := validateInputs(inputs); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := s.now()
	result := make([]*Area, 0, len(inputs))
	for i := range inputs {
		a := fromInput(&inputs[i], stagger(now, i))

		if inputs[i].ID != nil && *inputs[i].ID != "" {
			existing, err := s.repo.Get(ctx, a.ID)
			switch {
			case err == nil:
				a.CreatedAt = existing.CreatedAt
				if err := s.repo.Update(ctx, a); err != nil {
					return nil, fmt.Errorf("update area %s: %w", a.ID, err)
				}
				result = append(result, a)
				continue
			case !errors.Is(err, ErrAreaNotFound):
				return nil, err
			}
		}

		if err := s.repo.Create(ctx, a); err != nil {
			return nil, fmt.Errorf("create area %s: %w", a.ID, err)
		}
		result = append(result, a)
	}

	s.logger.Info().Int("count", len(result)).Msg("areas imported")
	return result, nil
}

// ReplaceCatalog removes every stored area and stores the given set.
func (s *Service) ReplaceCatalog(ctx context.Context, inputs []models.AreaInput) ([]*Area, error) {
	if fieldErrors := validateInputs(inputs); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := s.now()
	areas := make([]*Area, 0, len(inputs))
	for i := range inputs {
		areas = append(areas, fromInput(&inputs[i], stagger(now, i)))
	}

	if err := s.repo.ReplaceAll(ctx, areas); err != nil {
		return nil, fmt.Errorf("replace catalog: %w", err)
	}

	s.logger.Info().Int("count", len(areas)).Msg("area catalog replaced")
	return areas, nil
}

// Delete deletes an area with its facilities, photos and favorites.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SeedIfEmpty stores the configured catalog when no area exists yet.
// It reports whether seeding happened.
func (s *Service) SeedIfEmpty(ctx context.Context) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count areas: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := s.ReplaceCatalog(ctx, s.catalog); err != nil {
		return false, err
	}
	return true, nil
}

// stagger keeps batch order stable in stores that sort by creation time.
func stagger(t time.Time, i int) time.Time {
	return t.Add(time.Duration(i) * time.Microsecond)
}

func fromInput(in *models.AreaInput, now time.Time) *Area {
	id := "sa_" + uuid.New().String()[:22]
	if in.ID != nil && *in.ID != "" {
		id = *in.ID
	}

	a := &Area{
		ID:                id,
		Name:              strings.TrimSpace(in.Name),
		Location:          strings.TrimSpace(in.Location),
		Point:             geo.Point{Lat: in.Point.Lat, Lon: in.Point.Lon},
		PhotoURL:          in.PhotoURL,
		DisposalPhotoURL:  in.DisposalPhotoURL,
		DisposalDirection: in.DisposalDirection,
		Facilities:        make([]Facility, 0, len(in.Facilities)),
		Photos:            make([]Photo, 0, len(in.Photos)),
		Grade:             Grade(strings.TrimSpace(in.FacilityGrade)),
		Ambience:          strings.TrimSpace(in.Ambience),
		CrowdLevel:        strings.TrimSpace(in.CrowdLevel),
		SmokingTypes:      make([]string, 0, len(in.SmokingTypes)),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, f := range in.Facilities {
		a.Facilities = append(a.Facilities, Facility{Name: strings.TrimSpace(f)})
	}
	for _, p := range in.Photos {
		a.Photos = append(a.Photos, Photo{URL: p})
	}
	for _, t := range in.SmokingTypes {
		a.SmokingTypes = append(a.SmokingTypes, strings.TrimSpace(t))
	}
	return a
}

// validateInputs validates a batch of area inputs. Field names are prefixed
// with the item index when more than one input is given.
func validateInputs(inputs []models.AreaInput) []models.FieldError {
	var errs []models.FieldError
	for i := range inputs {
		prefix := ""
		if len(inputs) > 1 {
			prefix = fmt.Sprintf("areas[%d].", i)
		}
		errs = append(errs, validateInput(&inputs[i], prefix)...)
	}
	return errs
}

func validateInput(in *models.AreaInput, prefix string) []models.FieldError {
	var errs []models.FieldError

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs = append(errs, models.FieldError{Field: prefix + "name", Message: "is required"})
	} else if len(name) > MaxNameLength {
		errs = append(errs, models.FieldError{Field: prefix + "name", Message: "must be at most 120 characters"})
	}

	if len(in.Location) > MaxLocationLength {
		errs = append(errs, models.FieldError{Field: prefix + "location", Message: "must be at most 120 characters"})
	}
	if len(in.DisposalDirection) > MaxDirectionLength {
		errs = append(errs, models.FieldError{Field: prefix + "disposalDirection", Message: "must be at most 500 characters"})
	}

	if in.Point.Lat < -90 || in.Point.Lat > 90 {
		errs = append(errs, models.FieldError{Field: prefix + "point.lat", Message: "must be between -90 and 90"})
	}
	if in.Point.Lon < -180 || in.Point.Lon > 180 {
		errs = append(errs, models.FieldError{Field: prefix + "point.lon", Message: "must be between -180 and 180"})
	}

	errs = append(errs, validateTags(in.Facilities, prefix+"facilities", MaxFacilities)...)
	errs = append(errs, validateTags(in.SmokingTypes, prefix+"smokingTypes", MaxSmokingTypes)...)

	if len(in.Photos) > MaxPhotos {
		errs = append(errs, models.FieldError{Field: prefix + "photos", Message: "must contain at most 20 items"})
	}
	if len(in.FacilityGrade) > MaxTagLength {
		errs = append(errs, models.FieldError{Field: prefix + "facilityGrade", Message: "must be at most 40 characters"})
	}

	return errs
}

func validateTags(tags []string, field string, maxItems int) []models.FieldError {
	if len(tags) > maxItems {
		return []models.FieldError{{Field: field, Message: fmt.Sprintf("must contain at most %d items", maxItems)}}
	}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			return []models.FieldError{{Field: field, Message: "must not contain empty values"}}
		}
		if len(t) > MaxTagLength {
			return []models.FieldError{{Field: field, Message: "values must be at most 40 characters"}}
		}
	}
	return nil
}
