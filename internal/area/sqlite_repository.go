package area

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SQLiteRepository is a SQLite implementation of Repository for single-node
// and on-device deployments. Smoking types are stored as a JSON column;
// facilities and photos live in child tables with cascading deletes.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite area repository. The schema must
// already exist; see database.OpenSQLite.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sqliteSelectArea = `
SELECT id, name, location, lat, lon, photo_url, disposal_photo_url, disposal_direction,
       facility_grade, ambience, crowd_level, smoking_types_json, created_at, updated_at
FROM smoking_areas
`

// List retrieves every area, oldest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]*Area, error) {
	rows, err := r.db.QueryContext(ctx, sqliteSelectArea+` ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []*Area
	byID := make(map[string]*Area)
	for rows.Next() {
		a, err := scanSQLiteArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, a)
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadFacilities(ctx, byID, ""); err != nil {
		return nil, err
	}
	if err := r.loadPhotos(ctx, byID, ""); err != nil {
		return nil, err
	}
	return areas, nil
}

// Get retrieves an area by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Area, error) {
	a, err := scanSQLiteArea(r.db.QueryRowContext(ctx, sqliteSelectArea+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAreaNotFound
		}
		return nil, err
	}

	byID := map[string]*Area{a.ID: a}
	if err := r.loadFacilities(ctx, byID, id); err != nil {
		return nil, err
	}
	if err := r.loadPhotos(ctx, byID, id); err != nil {
		return nil, err
	}
	return a, nil
}

type sqliteScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteArea(row sqliteScanner) (*Area, error) {
	var (
		a         Area
		grade     string
		typesJSON string
	)

	err := row.Scan(
		&a.ID, &a.Name, &a.Location, &a.Point.Lat, &a.Point.Lon,
		&a.PhotoURL, &a.DisposalPhotoURL, &a.DisposalDirection,
		&grade, &a.Ambience, &a.CrowdLevel, &typesJSON,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Grade = Grade(grade)
	if err := json.Unmarshal([]byte(typesJSON), &a.SmokingTypes); err != nil {
		return nil, fmt.Errorf("decode smoking types of %s: %w", a.ID, err)
	}
	a.Facilities = []Facility{}
	a.Photos = []Photo{}
	return &a, nil
}

func (r *SQLiteRepository) loadFacilities(ctx context.Context, byID map[string]*Area, id string) error {
	query := `SELECT area_id, name FROM smoking_area_facilities`
	var args []any
	if id != "" {
		query += ` WHERE area_id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY area_id, position`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var areaID, name string
		if err := rows.Scan(&areaID, &name); err != nil {
			return err
		}
		if a, ok := byID[areaID]; ok {
			a.Facilities = append(a.Facilities, Facility{Name: name})
		}
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadPhotos(ctx context.Context, byID map[string]*Area, id string) error {
	query := `SELECT area_id, url FROM smoking_area_photos`
	var args []any
	if id != "" {
		query += ` WHERE area_id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY area_id, position`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var areaID, url string
		if err := rows.Scan(&areaID, &url); err != nil {
			return err
		}
		if a, ok := byID[areaID]; ok {
			a.Photos = append(a.Photos, Photo{URL: url})
		}
	}
	return rows.Err()
}

// Create stores a new area with its facilities and photos.
func (r *SQLiteRepository) Create(ctx context.Context, a *Area) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := sqliteInsertArea(ctx, tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

// Update replaces an existing area, including its child lists.
func (r *SQLiteRepository) Update(ctx context.Context, a *Area) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	types, err := json.Marshal(nonNil(a.SmokingTypes))
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
UPDATE smoking_areas SET
  name = ?, location = ?, lat = ?, lon = ?, photo_url = ?, disposal_photo_url = ?,
  disposal_direction = ?, facility_grade = ?, ambience = ?,
  crowd_level = ?, smoking_types_json = ?, updated_at = ?
WHERE id = ?
`,
		a.Name, a.Location, a.Point.Lat, a.Point.Lon, a.PhotoURL, a.DisposalPhotoURL,
		a.DisposalDirection, string(a.Grade), a.Ambience,
		a.CrowdLevel, string(types), a.UpdatedAt.UTC(), a.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAreaNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM smoking_area_facilities WHERE area_id = ?`, a.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM smoking_area_photos WHERE area_id = ?`, a.ID); err != nil {
		return err
	}
	if err := sqliteInsertChildren(ctx, tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

// SetFavorite marks or unmarks an area as a favorite of one device.
func (r *SQLiteRepository) SetFavorite(ctx context.Context, deviceID, areaID string, favorite bool) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM smoking_areas WHERE id = ?)`, areaID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAreaNotFound
	}

	if favorite {
		_, err = r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO area_favorites (device_id, area_id) VALUES (?, ?)`,
			deviceID, areaID,
		)
	} else {
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM area_favorites WHERE device_id = ? AND area_id = ?`,
			deviceID, areaID,
		)
	}
	return err
}

// Favorites returns the IDs of the areas a device marked as favorite.
func (r *SQLiteRepository) Favorites(ctx context.Context, deviceID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT area_id FROM area_favorites WHERE device_id = ?`, deviceID)
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

// Delete deletes an area by ID. Facilities and photos cascade.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM area_favorites WHERE area_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM smoking_areas WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceAll removes every area and stores the given set in one transaction.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, areas []*Area) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM smoking_areas`); err != nil {
		return err
	}
	for _, a := range areas {
		if err := sqliteInsertArea(ctx, tx, a); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM area_favorites WHERE area_id NOT IN (SELECT id FROM smoking_areas)`,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the number of stored areas.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM smoking_areas`).Scan(&n)
	return n, err
}

func sqliteInsertArea(ctx context.Context, tx *sql.Tx, a *Area) error {
	types, err := json.Marshal(nonNil(a.SmokingTypes))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO smoking_areas
(id, name, location, lat, lon, photo_url, disposal_photo_url, disposal_direction,
 facility_grade, ambience, crowd_level, smoking_types_json, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		a.ID, a.Name, a.Location, a.Point.Lat, a.Point.Lon, a.PhotoURL, a.DisposalPhotoURL,
		a.DisposalDirection, string(a.Grade), a.Ambience, a.CrowdLevel,
		string(types), a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	return sqliteInsertChildren(ctx, tx, a)
}

func sqliteInsertChildren(ctx context.Context, tx *sql.Tx, a *Area) error {
	for i, f := range a.Facilities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO smoking_area_facilities (area_id, position, name) VALUES (?, ?, ?)`,
			a.ID, i+1, f.Name,
		); err != nil {
			return err
		}
	}
	for i, p := range a.Photos {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO smoking_area_photos (area_id, position, url) VALUES (?, ?, ?)`,
			a.ID, i+1, p.URL,
		); err != nil {
			return err
		}
	}
	return nil
}

// Ensure SQLiteRepository implements Repository interface.
var _ Repository = (*SQLiteRepository)(nil)
