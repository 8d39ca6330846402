// Package store opens the configured persistence backend.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/config"
	"github.com/geosmoke/geosmoke/internal/database"
	"github.com/geosmoke/geosmoke/internal/preference"
)

// Store bundles the repositories of one backend.
type Store struct {
	Name        string
	Areas       area.Repository
	Preferences preference.Repository

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend's connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the backend selected by cfg.Store.Driver and makes sure
// its schema exists.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn().Msg("using in-memory store; data is lost on restart")
		return &Store{
			Name:        config.DriverMemory,
			Areas:       area.NewInMemoryRepository(),
			Preferences: preference.NewInMemoryRepository(),
		}, nil

	case config.DriverPostgres:
		dbConfig := cfg.Database()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
		return &Store{
			Name:        config.DriverPostgres,
			Areas:       area.NewPostgresRepository(pool),
			Preferences: preference.NewPostgresRepository(pool),
			ping:        pool.Ping,
			close:       pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.Store.SQLitePath).Msg("sqlite database opened")
		return &Store{
			Name:        config.DriverSQLite,
			Areas:       area.NewSQLiteRepository(db),
			Preferences: preference.NewSQLiteRepository(db),
			ping:        db.PingContext,
			close: func() {
				if err := db.Close(); err != nil {
					logger.Error().Err(err).Msg("failed to close sqlite database")
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
