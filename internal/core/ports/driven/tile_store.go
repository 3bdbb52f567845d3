package driven

import (
	"context"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// TileStore provides tilesets for offline search.
type TileStore interface {
	// ListTilesets returns the names of available tilesets.
	ListTilesets(ctx context.Context) ([]string, error)

	// LoadTileset reads a tileset by name.
	// Returns domain.ErrNotFound if it does not exist.
	LoadTileset(ctx context.Context, name string) (*domain.Tileset, error)

	// Watch reports tileset changes until ctx is done. It returns after
	// the watcher is set up; changes and errors arrive on the callbacks.
	Watch(ctx context.Context, onChange func(domain.TileChange), onError func(error)) error

	// Close releases resources.
	Close() error
}
