package driven

import (
	"context"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// RecordStore persists local records grouped by collection
// (history, favorites, or a custom provider name).
type RecordStore interface {
	// Upsert stores or replaces a record in a collection.
	Upsert(ctx context.Context, collection string, record domain.IndexableRecord) error

	// Get retrieves a record by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, collection, id string) (*domain.IndexableRecord, error)

	// List returns all records in a collection, most recent first.
	List(ctx context.Context, collection string) ([]domain.IndexableRecord, error)

	// Delete removes a record. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, collection, id string) error

	// Clear removes every record in a collection.
	Clear(ctx context.Context, collection string) error

	// Trim keeps the newest max records and returns the IDs removed.
	Trim(ctx context.Context, collection string, max int) ([]string, error)
}
