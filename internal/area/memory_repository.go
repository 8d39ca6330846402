package area

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and local runs. Production should use
// PostgresRepository or SQLiteRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	areas map[string]*Area
	order []string
	// favorites maps device ID to the set of its favorite area IDs.
	favorites map[string]map[string]bool
}

// NewInMemoryRepository creates a new in-memory area repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		areas:     make(map[string]*Area),
		favorites: make(map[string]map[string]bool),
	}
}

// List retrieves every area in insertion order.
func (r *InMemoryRepository) List(_ context.Context) ([]*Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	areas := make([]*Area, 0, len(r.order))
	for _, id := range r.order {
		areas = append(areas, r.areas[id].Clone())
	}
	return areas, nil
}

// Get retrieves an area by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.areas[id]
	if !ok {
		return nil, ErrAreaNotFound
	}
	return a.Clone(), nil
}

// Create stores a new area.
func (r *InMemoryRepository) Create(_ context.Context, a *Area) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.areas[a.ID]; !ok {
		r.order = append(r.order, a.ID)
	}
	r.areas[a.ID] = a.Clone()
	return nil
}

// Update replaces an existing area.
func (r *InMemoryRepository) Update(_ context.Context, a *Area) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.areas[a.ID]; !ok {
		return ErrAreaNotFound
	}
	r.areas[a.ID] = a.Clone()
	return nil
}

// SetFavorite marks or unmarks an area as a favorite of one device.
func (r *InMemoryRepository) SetFavorite(_ context.Context, deviceID, areaID string, favorite bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.areas[areaID]; !ok {
		return ErrAreaNotFound
	}

	set := r.favorites[deviceID]
	if !favorite {
		delete(set, areaID)
		return nil
	}
	if set == nil {
		set = make(map[string]bool)
		r.favorites[deviceID] = set
	}
	set[areaID] = true
	return nil
}

// Favorites returns the IDs of the areas a device marked as favorite.
func (r *InMemoryRepository) Favorites(_ context.Context, deviceID string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make(map[string]bool, len(r.favorites[deviceID]))
	for id := range r.favorites[deviceID] {
		ids[id] = true
	}
	return ids, nil
}

// Delete deletes an area by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.areas[id]; !ok {
		return nil
	}
	delete(r.areas, id)
	for _, set := range r.favorites {
		delete(set, id)
	}
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ReplaceAll removes every area and stores the given set.
func (r *InMemoryRepository) ReplaceAll(_ context.Context, areas []*Area) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.areas = make(map[string]*Area, len(areas))
	r.order = make([]string, 0, len(areas))
	for _, a := range areas {
		if _, ok := r.areas[a.ID]; !ok {
			r.order = append(r.order, a.ID)
		}
		r.areas[a.ID] = a.Clone()
	}
	for _, set := range r.favorites {
		for id := range set {
			if _, ok := r.areas[id]; !ok {
				delete(set, id)
			}
		}
	}
	return nil
}

// Count returns the number of stored areas.
func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.areas), nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
