package area

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/geosmoke/geosmoke/internal/database"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool database.Pool
}

// NewPostgresRepository creates a new PostgreSQL area repository.
func NewPostgresRepository(pool database.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectAreaColumns = `
		SELECT
			a.id, a.name, a.location, a.lat, a.lon,
			a.photo_url, a.disposal_photo_url, a.disposal_direction,
			a.facility_grade, a.ambience, a.crowd_level,
			a.smoking_types,
			ARRAY(SELECT f.name FROM smoking_area_facilities f WHERE f.area_id = a.id ORDER BY f.position) AS facilities,
			ARRAY(SELECT p.url FROM smoking_area_photos p WHERE p.area_id = a.id ORDER BY p.position) AS photos,
			a.created_at, a.updated_at
		FROM smoking_areas a
`

// List retrieves every area, oldest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Area, error) {
	query := selectAreaColumns + `
		ORDER BY a.created_at, a.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []*Area
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return areas, nil
}

// Get retrieves an area by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Area, error) {
	query := selectAreaColumns + `
		WHERE a.id = $1
	`

	a, err := scanArea(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAreaNotFound
		}
		return nil, err
	}
	return a, nil
}

// scanArea scans an area from a query result.
func scanArea(row pgx.Row) (*Area, error) {
	var (
		a          Area
		grade      string
		facilities []string
		photos     []string
	)

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Location,
		&a.Point.Lat,
		&a.Point.Lon,
		&a.PhotoURL,
		&a.DisposalPhotoURL,
		&a.DisposalDirection,
		&grade,
		&a.Ambience,
		&a.CrowdLevel,
		&a.SmokingTypes,
		&facilities,
		&photos,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Grade = Grade(grade)
	a.Facilities = facilitiesFromNames(facilities)
	a.Photos = photosFromURLs(photos)
	return &a, nil
}

// Create stores a new area with its facilities and photos.
func (r *PostgresRepository) Create(ctx context.Context, a *Area) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback error is not critical

	if err := insertArea(ctx, tx, a); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update replaces an existing area, including its child lists.
func (r *PostgresRepository) Update(ctx context.Context, a *Area) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback error is not critical

	query := `
		UPDATE smoking_areas SET
			name = $2,
			location = $3,
			lat = $4,
			lon = $5,
			photo_url = $6,
			disposal_photo_url = $7,
			disposal_direction = $8,
			facility_grade = $9,
			ambience = $10,
			crowd_level = $11,
			smoking_types = $12,
			updated_at = $13
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query,
		a.ID,
		a.Name,
		a.Location,
		a.Point.Lat,
		a.Point.Lon,
		a.PhotoURL,
		a.DisposalPhotoURL,
		a.DisposalDirection,
		string(a.Grade),
		a.Ambience,
		a.CrowdLevel,
		nonNil(a.SmokingTypes),
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAreaNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM smoking_area_facilities WHERE area_id = $1`, a.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM smoking_area_photos WHERE area_id = $1`, a.ID); err != nil {
		return err
	}
	if err := insertChildren(ctx, tx, a); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SetFavorite marks or unmarks an area as a favorite of one device.
func (r *PostgresRepository) SetFavorite(ctx context.Context, deviceID, areaID string, favorite bool) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM smoking_areas WHERE id = $1)`, areaID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAreaNotFound
	}

	if !favorite {
		_, err = r.pool.Exec(ctx,
			`DELETE FROM area_favorites WHERE device_id = $1 AND area_id = $2`,
			deviceID, areaID,
		)
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO area_favorites (device_id, area_id)
		VALUES ($1, $2)
		ON CONFLICT (device_id, area_id) DO NOTHING
	`, deviceID, areaID)
	return err
}

// Favorites returns the IDs of the areas a device marked as favorite.
func (r *PostgresRepository) Favorites(ctx context.Context, deviceID string) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT area_id FROM area_favorites WHERE device_id = $1`, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// Delete deletes an area by ID. Facilities and photos cascade; favorites are
// removed in the same transaction.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback error is not critical

	if _, err := tx.Exec(ctx, `DELETE FROM area_favorites WHERE area_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM smoking_areas WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReplaceAll removes every area and stores the given set in one transaction.
// Favorites pointing at areas that are gone afterwards are removed.
func (r *PostgresRepository) ReplaceAll(ctx context.Context, areas []*Area) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback error is not critical

	if _, err := tx.Exec(ctx, `DELETE FROM smoking_areas`); err != nil {
		return err
	}
	for _, a := range areas {
		if err := insertArea(ctx, tx, a); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM area_favorites
		WHERE area_id NOT IN (SELECT id FROM smoking_areas)
	`); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Count returns the number of stored areas.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM smoking_areas`).Scan(&n)
	return n, err
}

func insertArea(ctx context.Context, tx pgx.Tx, a *Area) error {
	query := `
		INSERT INTO smoking_areas (
			id, name, location, lat, lon,
			photo_url, disposal_photo_url, disposal_direction,
			facility_grade, ambience, crowd_level,
			smoking_types, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := tx.Exec(ctx, query,
		a.ID,
		a.Name,
		a.Location,
		a.Point.Lat,
		a.Point.Lon,
		a.PhotoURL,
		a.DisposalPhotoURL,
		a.DisposalDirection,
		string(a.Grade),
		a.Ambience,
		a.CrowdLevel,
		nonNil(a.SmokingTypes),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return insertChildren(ctx, tx, a)
}

func insertChildren(ctx context.Context, tx pgx.Tx, a *Area) error {
	facilitiesQuery := `
		INSERT INTO smoking_area_facilities (area_id, position, name)
		SELECT $1, t.position, t.name
		FROM unnest($2::text[]) WITH ORDINALITY AS t(name, position)
	`
	if _, err := tx.Exec(ctx, facilitiesQuery, a.ID, a.FacilityNames()); err != nil {
		return err
	}

	photosQuery := `
		INSERT INTO smoking_area_photos (area_id, position, url)
		SELECT $1, t.position, t.url
		FROM unnest($2::text[]) WITH ORDINALITY AS t(url, position)
	`
	_, err := tx.Exec(ctx, photosQuery, a.ID, photoURLs(a.Photos))
	return err
}

func facilitiesFromNames(names []string) []Facility {
	facilities := make([]Facility, 0, len(names))
	for _, n := range names {
		facilities = append(facilities, Facility{Name: n})
	}
	return facilities
}

func photosFromURLs(urls []string) []Photo {
	photos := make([]Photo, 0, len(urls))
	for _, u := range urls {
		photos = append(photos, Photo{URL: u})
	}
	return photos
}

func photoURLs(photos []Photo) []string {
	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		urls = append(urls, p.URL)
	}
	return urls
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
