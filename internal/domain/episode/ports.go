package episode

import "context"

// ListFilter narrows an episode listing
type ListFilter struct {
	Plant  string
	Policy string
	Limit  int
}

// Repository persists episodes and their tick records
type Repository interface {
	// Save inserts or updates the episode and stores any tick records not yet persisted
	Save(ctx context.Context, e *Episode) error

	// FindByID loads an episode with all of its tick records
	FindByID(ctx context.Context, id string) (*Episode, error)

	// List returns episodes newest first, without tick records
	List(ctx context.Context, filter ListFilter) ([]*Episode, error)
}
