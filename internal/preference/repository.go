package preference

import (
	"context"
	"sync"
)

// Repository defines the interface for preference persistence.
type Repository interface {
	// Get retrieves the preference of a device.
	// Returns ErrPreferenceNotFound if none is stored.
	Get(ctx context.Context, deviceID string) (*Preference, error)

	// Replace deletes any stored preference of the device and inserts p.
	Replace(ctx context.Context, p *Preference) error

	// Delete removes the preference of a device.
	Delete(ctx context.Context, deviceID string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	prefs map[string]*Preference
}

// NewInMemoryRepository creates a new in-memory preference repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		prefs: make(map[string]*Preference),
	}
}

// Get retrieves the preference of a device.
func (r *InMemoryRepository) Get(_ context.Context, deviceID string) (*Preference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prefs[deviceID]
	if !ok {
		return nil, ErrPreferenceNotFound
	}
	return p.Clone(), nil
}

// Replace stores p as the device's only preference.
func (r *InMemoryRepository) Replace(_ context.Context, p *Preference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs[p.DeviceID] = p.Clone()
	return nil
}

// Delete removes the preference of a device.
func (r *InMemoryRepository) Delete(_ context.Context, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.prefs, deviceID)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
