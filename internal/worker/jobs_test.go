package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/area"
	"github.com/geosmoke/geosmoke/internal/worker"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Import(ctx context.Context, inputs []models.AreaInput) ([]*area.Area, error) {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*area.Area), args.Error(1)
}

func (m *MockCatalog) ReplaceCatalog(ctx context.Context, inputs []models.AreaInput) ([]*area.Area, error) {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*area.Area), args.Error(1)
}

func (m *MockCatalog) SetFavorite(ctx context.Context, deviceID, id string, favorite bool) (*area.Area, error) {
	args := m.Called(ctx, deviceID, id, favorite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*area.Area), args.Error(1)
}

func (m *MockCatalog) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newProcessor(c worker.Catalog) *worker.Processor {
	return worker.NewProcessor(worker.ProcessorConfig{Catalog: c, Logger: zerolog.Nop()})
}

func TestProcessor_Decisions(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		setup   func(c *MockCatalog)
		want    worker.Decision
	}{
		{
			name:    "malformed payload is dropped",
			payload: `{"job_type":`,
			want:    worker.Ack,
		},
		{
			name:    "unknown job type is dropped",
			payload: `{"job_type":"provider_refresh"}`,
			want:    worker.Ack,
		},
		{
			name:    "health check",
			payload: `{"job_type":"health_check"}`,
			setup: func(c *MockCatalog) {
				c.On("Count", mock.Anything).Return(3, nil)
			},
			want: worker.Ack,
		},
		{
			name:    "health check store failure is retried",
			payload: `{"job_type":"health_check"}`,
			setup: func(c *MockCatalog) {
				c.On("Count", mock.Anything).Return(0, errors.New("connection refused"))
			},
			want: worker.Nack,
		},
		{
			name:    "favorite set",
			payload: `{"job_type":"favorite_set","deviceId":"dev_a","areaId":"sa_1","isFavorite":true}`,
			setup: func(c *MockCatalog) {
				c.On("SetFavorite", mock.Anything, "dev_a", "sa_1", true).Return(&area.Area{ID: "sa_1", IsFavorite: true}, nil)
			},
			want: worker.Ack,
		},
		{
			name:    "favorite set without flag is dropped",
			payload: `{"job_type":"favorite_set","deviceId":"dev_a","areaId":"sa_1"}`,
			want:    worker.Ack,
		},
		{
			name:    "favorite set without device is dropped",
			payload: `{"job_type":"favorite_set","areaId":"sa_1","isFavorite":true}`,
			want:    worker.Ack,
		},
		{
			name:    "favorite set on missing area is dropped",
			payload: `{"job_type":"favorite_set","deviceId":"dev_a","areaId":"sa_gone","isFavorite":false}`,
			setup: func(c *MockCatalog) {
				c.On("SetFavorite", mock.Anything, "dev_a", "sa_gone", false).Return(nil, area.ErrAreaNotFound)
			},
			want: worker.Ack,
		},
		{
			name:    "import without areas is dropped",
			payload: `{"job_type":"catalog_import","areas":[]}`,
			want:    worker.Ack,
		},
		{
			name:    "import validation failure is dropped",
			payload: `{"job_type":"catalog_import","areas":[{"name":""}]}`,
			setup: func(c *MockCatalog) {
				c.On("Import", mock.Anything, mock.Anything).Return(nil, &area.ValidationError{
					Errors: []models.FieldError{{Field: "areas[0].name", Message: "is required"}},
				})
			},
			want: worker.Ack,
		},
		{
			name:    "replace without areas is dropped",
			payload: `{"job_type":"catalog_replace","areas":[]}`,
			want:    worker.Ack,
		},
		{
			name:    "replace with misspelled areas key is dropped",
			payload: `{"job_type":"catalog_replace","area":[{"name":"Roof Deck"}]}`,
			want:    worker.Ack,
		},
		{
			name:    "replace store failure is retried",
			payload: `{"job_type":"catalog_replace","areas":[{"name":"Roof Deck"}]}`,
			setup: func(c *MockCatalog) {
				c.On("ReplaceCatalog", mock.Anything, mock.Anything).Return(nil, errors.New("deadlock detected"))
			},
			want: worker.Nack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(MockCatalog)
			if tt.setup != nil {
				tt.setup(c)
			}

			got := newProcessor(c).Handle(context.Background(), []byte(tt.payload))

			assert.Equal(t, tt.want, got)
			c.AssertExpectations(t)
		})
	}
}

func TestProcessor_Stats(t *testing.T) {
	c := new(MockCatalog)
	c.On("Count", mock.Anything).Return(1, nil).Once()
	c.On("Count", mock.Anything).Return(0, errors.New("timeout")).Once()
	p := newProcessor(c)

	p.Handle(context.Background(), []byte(`{"job_type":"health_check"}`))
	p.Handle(context.Background(), []byte(`{"job_type":"health_check"}`))
	p.Handle(context.Background(), []byte(`not json`))

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Processed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.False(t, stats.LastJobAt.IsZero())
}

func TestProcessor_AppliesJobsToCatalog(t *testing.T) {
	svc := area.NewService(area.ServiceConfig{
		Repository: area.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
		Catalog:    []models.AreaInput{},
	})
	p := newProcessor(svc)
	ctx := context.Background()

	importJob := `{"job_type":"catalog_import","areas":[{
		"id":"sa_roof","name":"Roof Deck","location":"Level 9",
		"point":{"lat":-6.2,"lon":106.8},"facilityGrade":"High",
		"ambience":"Bright","crowdLevel":"Quiet",
		"facilities":["Roof"],"smokingTypes":["Cigarette"]
	}]}`
	require.Equal(t, worker.Ack, p.Handle(ctx, []byte(importJob)))

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Equal(t, worker.Ack, p.Handle(ctx, []byte(
		`{"job_type":"favorite_set","deviceId":"dev_a","areaId":"sa_roof","isFavorite":true}`)))
	favs, err := svc.Favorites(ctx, "dev_a")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"sa_roof": true}, favs)

	favs, err = svc.Favorites(ctx, "dev_b")
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestProcessor_EmptyReplaceKeepsCatalog(t *testing.T) {
	svc := area.NewService(area.ServiceConfig{
		Repository: area.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
	ctx := context.Background()
	seeded, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
	p := newProcessor(svc)

	for _, payload := range []string{
		`{"job_type":"catalog_replace","areas":[]}`,
		`{"job_type":"catalog_replace","area":[]}`,
		`{"job_type":"catalog_replace"}`,
	} {
		assert.Equal(t, worker.Ack, p.Handle(ctx, []byte(payload)), payload)
	}

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(3), p.Stats().Skipped)
	assert.Zero(t, p.Stats().Processed)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "ack", worker.Ack.String())
	assert.Equal(t, "nack", worker.Nack.String())
}
