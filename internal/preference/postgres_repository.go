package preference

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

// NewPostgresRepository creates a new PostgreSQL preference repository.
func NewPostgresRepository(pool database.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves the preference of a device.
func (r *PostgresRepository) Get(ctx context.Context, deviceID string) (*Preference, error) {
	query := `
		SELECT device_id, ambience, crowd_level, facilities, smoking_types, created_at, updated_at
		FROM preferences
		WHERE device_id = $1
	`

	var p Preference
	err := r.pool.QueryRow(ctx, query, deviceID).Scan(
		&p.DeviceID,
		&p.Ambience,
		&p.CrowdLevel,
		&p.Facilities,
		&p.SmokingTypes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPreferenceNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Replace deletes the stored preference of the device and inserts p in one
// transaction.
func (r *PostgresRepository) Replace(ctx context.Context, p *Preference) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback error is not critical

	if _, err := tx.Exec(ctx, `DELETE FROM preferences WHERE device_id = $1`, p.DeviceID); err != nil {
		return err
	}

	query := `
		INSERT INTO preferences (device_id, ambience, crowd_level, facilities, smoking_types, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(ctx, query,
		p.DeviceID,
		p.Ambience,
		p.CrowdLevel,
		nonNil(p.Facilities),
		nonNil(p.SmokingTypes),
		p.CreatedAt,
		p.UpdatedAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete removes the preference of a device.
func (r *PostgresRepository) Delete(ctx context.Context, deviceID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM preferences WHERE device_id = $1`, deviceID)
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
