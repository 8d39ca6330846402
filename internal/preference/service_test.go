package preference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/preference"
)

// MockRepository is a mock implementation of the Repository interface.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context, deviceID string) (*preference.Preference, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preference.Preference), args.Error(1)
}

func (m *MockRepository) Replace(ctx context.Context, p *preference.Preference) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

func TestService_Current_CreatesDefaultOnFirstAccess(t *testing.T) {
	repo := preference.NewInMemoryRepository()
	svc := preference.NewService(repo)
	ctx := context.Background()

	p, err := svc.Current(ctx, "dev_1")
	require.NoError(t, err)
	assert.Equal(t, "dev_1", p.DeviceID)
	assert.Equal(t, "Bright", p.Ambience)
	assert.Equal(t, "Low", p.CrowdLevel)
	assert.Equal(t, []string{"Chair", "Waste Bin"}, p.Facilities)
	assert.Equal(t, []string{"Cigarette"}, p.SmokingTypes)

	stored, err := repo.Get(ctx, "dev_1")
	require.NoError(t, err)
	assert.Equal(t, p.Ambience, stored.Ambience)
}

func TestService_Current_ReturnsStored(t *testing.T) {
	repo := new(MockRepository)
	svc := preference.NewService(repo)
	ctx := context.Background()

	stored := &preference.Preference{DeviceID: "dev_1", Ambience: "Dark", CrowdLevel: "High"}
	repo.On("Get", ctx, "dev_1").Return(stored, nil)

	p, err := svc.Current(ctx, "dev_1")
	require.NoError(t, err)
	assert.Equal(t, "Dark", p.Ambience)

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestService_Current_PropagatesStoreErrors(t *testing.T) {
	repo := new(MockRepository)
	svc := preference.NewService(repo)
	ctx := context.Background()

	storeErr := errors.New("connection reset")
	repo.On("Get", ctx, "dev_1").Return(nil, storeErr)

	_, err := svc.Current(ctx, "dev_1")
	assert.ErrorIs(t, err, storeErr)
	repo.AssertExpectations(t)
}

func TestService_Current_DefaultWriteFails(t *testing.T) {
	repo := new(MockRepository)
	svc := preference.NewService(repo)
	ctx := context.Background()

	repo.On("Get", ctx, "dev_1").Return(nil, preference.ErrPreferenceNotFound)
	repo.On("Replace", ctx, mock.MatchedBy(func(p *preference.Preference) bool {
		return p.DeviceID == "dev_1" && p.Ambience == "Bright"
	})).Return(errors.New("disk full"))

	_, err := svc.Current(ctx, "dev_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store default preference")
	repo.AssertExpectations(t)
}

func TestService_Save_ReplacesAndNormalizes(t *testing.T) {
	repo := preference.NewInMemoryRepository()
	svc := preference.NewService(repo)
	ctx := context.Background()

	first, err := svc.Current(ctx, "dev_1")
	require.NoError(t, err)

	saved, err := svc.Save(ctx, "dev_1", &models.PreferencesInput{
		Ambience:     " Dark ",
		CrowdLevel:   "Quiet",
		Facilities:   []string{"Roof", "roof", " Chair"},
		SmokingTypes: []string{"E-cigarette"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Dark", saved.Ambience)
	assert.Equal(t, []string{"Roof", "Chair"}, saved.Facilities)
	assert.Equal(t, first.CreatedAt, saved.CreatedAt)

	current, err := svc.Current(ctx, "dev_1")
	require.NoError(t, err)
	assert.Equal(t, "Quiet", current.CrowdLevel)
	assert.Equal(t, []string{"E-cigarette"}, current.SmokingTypes)
}

func TestService_Save_IsolatesDevices(t *testing.T) {
	repo := preference.NewInMemoryRepository()
	svc := preference.NewService(repo)
	ctx := context.Background()

	_, err := svc.Save(ctx, "dev_a", &models.PreferencesInput{Ambience: "Dark", CrowdLevel: "High"})
	require.NoError(t, err)

	other, err := svc.Current(ctx, "dev_b")
	require.NoError(t, err)
	assert.Equal(t, "Bright", other.Ambience)
}

func TestService_Save_ValidationErrors(t *testing.T) {
	svc := preference.NewService(preference.NewInMemoryRepository())
	ctx := context.Background()

	tests := []struct {
		name      string
		input     models.PreferencesInput
		wantField string
	}{
		{"missing ambience", models.PreferencesInput{CrowdLevel: "Low"}, "ambience"},
		{"blank crowd level", models.PreferencesInput{Ambience: "Bright", CrowdLevel: "   "}, "crowdLevel"},
		{"empty facility", models.PreferencesInput{Ambience: "Bright", CrowdLevel: "Low", Facilities: []string{""}}, "facilities"},
		{"too many smoking types", models.PreferencesInput{Ambience: "Bright", CrowdLevel: "Low", SmokingTypes: make([]string, 11)}, "smokingTypes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, "dev_1", &tt.input)

			var validationErr *preference.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.wantField, validationErr.Errors[0].Field)
		})
	}
}

func TestService_Reset(t *testing.T) {
	repo := preference.NewInMemoryRepository()
	svc := preference.NewService(repo)
	ctx := context.Background()

	_, err := svc.Save(ctx, "dev_1", &models.PreferencesInput{Ambience: "Dark", CrowdLevel: "High"})
	require.NoError(t, err)
	require.NoError(t, svc.Reset(ctx, "dev_1"))

	p, err := svc.Current(ctx, "dev_1")
	require.NoError(t, err)
	assert.Equal(t, "Bright", p.Ambience)
}
