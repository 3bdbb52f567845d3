package driven

import (
	"context"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// RecordLayer is a searchable in-memory index of one provider's records.
// Engines query their layers during the suggest step.
type RecordLayer interface {
	// Name identifies the layer; it equals the provider name.
	Name() string

	// Priority orders layers; higher priority records come first.
	Priority() int

	// Upsert adds or replaces records by ID.
	Upsert(records ...domain.IndexableRecord)

	// Remove deletes records by ID. Unknown IDs are ignored.
	Remove(ids ...string)

	// Clear removes all records.
	Clear()

	// Get returns a record by ID.
	Get(id string) (domain.IndexableRecord, bool)

	// Search returns records matching query, best match first.
	Search(query string, limit int) []domain.IndexableRecord

	// Records returns all records.
	Records() []domain.IndexableRecord

	// Size returns the number of records.
	Size() int
}

// LayerFactory creates a record layer for a provider.
type LayerFactory func(name string, priority int) RecordLayer

// LayerHost is an engine that searches record layers.
type LayerHost interface {
	// AddLayer makes the layer visible to searches.
	AddLayer(layer RecordLayer)

	// RemoveLayer hides the layer with the given name.
	RemoveLayer(name string)
}

// IndexableDataProvider supplies local records to engines. The registry
// attaches a provider to a layer once and keeps it attached while at least
// one engine uses it; the provider must push later changes into every
// attached layer.
type IndexableDataProvider interface {
	// Name identifies the provider. It must be unique per registry.
	Name() string

	// Priority orders this provider's records against others.
	Priority() int

	// Attach loads all current records into layer and keeps it updated.
	Attach(ctx context.Context, layer RecordLayer) error

	// Detach stops updating layer.
	Detach(ctx context.Context, layer RecordLayer) error
}
