package area_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/geo"
)

var areaColumns = []string{
	"id", "name", "location", "lat", "lon",
	"photo_url", "disposal_photo_url", "disposal_direction",
	"facility_grade", "ambience", "crowd_level",
	"smoking_types", "facilities", "photos", "created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPostgresRepository_List(t *testing.T) {
	mock := newMockPool(t)
	repo := area.NewPostgresRepository(mock)
	now := time.Date(2025, 4, 6, 10, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(areaColumns).
		AddRow("sa_1", "The Shady", "GOP 1", -6.3009886, 106.6510372,
			"p.png", "d.png", "left of the door",
			"Moderate", "Dim", "Quiet",
			[]string{"Cigarette"}, []string{"Chair", "Roof"}, []string{"a.png"}, now, now).
		AddRow("sa_2", "Garden Seating", "Garden", -6.3013122, 106.6522975,
			"p.png", "d.png", "path",
			"High", "Bright", "Low",
			[]string{"Cigarette", "E-cigarette"}, []string{}, []string{}, now, now)

	mock.ExpectQuery("FROM smoking_areas a").WillReturnRows(rows)

	areas, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, areas, 2)

	assert.Equal(t, "sa_1", areas[0].ID)
	assert.Equal(t, geo.Point{Lat: -6.3009886, Lon: 106.6510372}, areas[0].Point)
	assert.Equal(t, area.GradeModerate, areas[0].Grade)
	assert.Equal(t, []string{"Chair", "Roof"}, areas[0].FacilityNames())
	assert.Equal(t, []area.Photo{{URL: "a.png"}}, areas[0].Photos)
	assert.False(t, areas[1].IsFavorite, "favorites are not part of the stored area")
	assert.Empty(t, areas[1].Facilities)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Get_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := area.NewPostgresRepository(mock)

	mock.ExpectQuery("WHERE a.id = \\$1").
		WithArgs("sa_missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), "sa_missing")
	assert.ErrorIs(t, err, area.ErrAreaNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := area.NewPostgresRepository(mock)
	now := time.Now()

	a := &area.Area{
		ID:           "sa_1",
		Name:         "The Shady",
		Point:        geo.Point{Lat: 1, Lon: 2},
		Facilities:   []area.Facility{{Name: "Chair"}, {Name: "Roof"}},
		Photos:       []area.Photo{{URL: "a.png"}},
		Grade:        area.GradeHigh,
		SmokingTypes: []string{"Cigarette"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO smoking_areas").
		WithArgs("sa_1", "The Shady", "", 1.0, 2.0, "", "", "", "High", "", "",
			[]string{"Cigarette"}, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO smoking_area_facilities").
		WithArgs("sa_1", []string{"Chair", "Roof"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec("INSERT INTO smoking_area_photos").
		WithArgs("sa_1", []string{"a.png"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), a))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Update_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := area.NewPostgresRepository(mock)

	args := make([]interface{}, 13)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE smoking_areas SET").
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &area.Area{ID: "sa_missing", Name: "x"})
	assert.ErrorIs(t, err, area.ErrAreaNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SetFavorite(t *testing.T) {
	mock := newMockPool(t)
	repo := area.NewPostgresRepository(mock)
	ctx := context.Background()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("sa_1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO area_favorites").
		WithArgs("dev_a", "sa_1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("sa_1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("DELETE FROM area_favorites WHERE device_id").
		WithArgs("dev_a", "sa_1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("sa_missing").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	require.NoError(t, repo.SetFavorite(ctx, "dev_a", "sa_1", true))
	require.NoError(t, repo.SetFavorite(ctx, "dev_a", "sa_1", false))
	assert.ErrorIs(t, repo.SetFavorite(ctx, "dev_a", "sa_missing", true), area.ErrAreaNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Favorites(t *testing.T) {
	mock := newMockPool(t)
	repo := area.NewPostgresRepository(mock)

	mock.ExpectQuery("SELECT area_id FROM area_favorites").
		WithArgs("dev_a").
		WillReturnRows(pgxmock.NewRows([]string{"area_id"}).AddRow("sa_1").AddRow("sa_3"))

	favs, err := repo.Favorites(context.Background(), "dev_a")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"sa_1": true, "sa_3": true}, favs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ReplaceAll(t *testing.T) {
	mock := newMockPool(t)
	repo := area.NewPostgresRepository(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM smoking_areas").WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("INSERT INTO smoking_areas").
		WithArgs("sa_new", "New", "", 0.0, 0.0, "", "", "", "", "", "",
			[]string{}, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO smoking_area_facilities").
		WithArgs("sa_new", []string{}).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec("INSERT INTO smoking_area_photos").
		WithArgs("sa_new", []string{}).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec("DELETE FROM area_favorites").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	err := repo.ReplaceAll(context.Background(), []*area.Area{
		{ID: "sa_new", Name: "New", CreatedAt: now, UpdatedAt: now},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Count(t *testing.T) {
	mock := newMockPool(t)
	repo := area.NewPostgresRepository(mock)

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
