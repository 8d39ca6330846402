package preference

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SQLiteRepository is a SQLite implementation of Repository. List columns
// are stored as JSON.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite preference repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get retrieves the preference of a device.
func (r *SQLiteRepository) Get(ctx context.Context, deviceID string) (*Preference, error) {
	var (
		p                        Preference
		facilities, smokingTypes string
	)

	err := r.db.QueryRowContext(ctx, `
SELECT device_id, ambience, crowd_level, facilities_json, smoking_types_json, created_at, updated_at
FROM preferences WHERE device_id = ?
`, deviceID).Scan(&p.DeviceID, &p.Ambience, &p.CrowdLevel, &facilities, &smokingTypes, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPreferenceNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(facilities), &p.Facilities); err != nil {
		return nil, fmt.Errorf("decode facilities: %w", err)
	}
	if err := json.Unmarshal([]byte(smokingTypes), &p.SmokingTypes); err != nil {
		return nil, fmt.Errorf("decode smoking types: %w", err)
	}
	return &p, nil
}

// Replace deletes the stored preference of the device and inserts p.
func (r *SQLiteRepository) Replace(ctx context.Context, p *Preference) error {
	facilities, err := json.Marshal(nonNil(p.Facilities))
	if err != nil {
		return err
	}
	smokingTypes, err := json.Marshal(nonNil(p.SmokingTypes))
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM preferences WHERE device_id = ?`, p.DeviceID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO preferences (device_id, ambience, crowd_level, facilities_json, smoking_types_json, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, p.DeviceID, p.Ambience, p.CrowdLevel, string(facilities), string(smokingTypes), p.CreatedAt.UTC(), p.UpdatedAt.UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the preference of a device.
func (r *SQLiteRepository) Delete(ctx context.Context, deviceID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM preferences WHERE device_id = ?`, deviceID)
	return err
}

// Ensure SQLiteRepository implements Repository interface.
var _ Repository = (*SQLiteRepository)(nil)
