package area

import "context"

// Repository defines the interface for smoking area persistence.
// List returns areas in insertion order so that ranking ties are stable
// across stores.
type Repository interface {
	// List retrieves every area, oldest first.
	List(ctx context.Context) ([]*Area, error)

	// Get retrieves an area by ID.
	Get(ctx context.Context, id string) (*Area, error)

	// Create stores a new area with its facilities and photos.
	Create(ctx context.Context, area *Area) error

	// Update replaces an existing area, including its child lists.
	// Returns ErrAreaNotFound if the area doesn't exist.
	Update(ctx context.Context, area *Area) error

	// SetFavorite marks or unmarks an area as a favorite of one device.
	// Returns ErrAreaNotFound if the area doesn't exist.
	SetFavorite(ctx context.Context, deviceID, areaID string, favorite bool) error

	// Favorites returns the IDs of the areas a device marked as favorite.
	Favorites(ctx context.Context, deviceID string) (map[string]bool, error)

	// Delete deletes an area with its child rows and favorites.
	Delete(ctx context.Context, id string) error

	// ReplaceAll removes every area and stores the given set in one unit.
	// Favorites of areas whose ID survives the replacement are kept.
	ReplaceAll(ctx context.Context, areas []*Area) error

	// Count returns the number of stored areas.
	Count(ctx context.Context) (int, error)
}
