package search

import (
	"context"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/blocking"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
)

// Searcher runs the two search steps for the view.
type Searcher interface {
	Search(ctx context.Context, query string) (blocking.Suggestions, error)
	Select(ctx context.Context, s domain.SearchSuggestion) (blocking.Selection, error)
}

// Online searches the remote backend merged with local records.
type Online struct {
	Engine  driving.SearchEngine
	Options domain.SearchOptions
}

// Search implements Searcher.
func (o Online) Search(ctx context.Context, query string) (blocking.Suggestions, error) {
	return blocking.Search(ctx, o.Engine, query, o.Options)
}

// Select implements Searcher.
func (o Online) Select(ctx context.Context, s domain.SearchSuggestion) (blocking.Selection, error) {
	return blocking.Select(ctx, o.Engine, s, nil)
}

// Offline searches loaded tilesets.
type Offline struct {
	Engine  driving.OfflineSearchEngine
	Options domain.SearchOptions
}

// Search implements Searcher.
func (o Offline) Search(ctx context.Context, query string) (blocking.Suggestions, error) {
	return blocking.OfflineSearch(ctx, o.Engine, query, o.Options)
}

// Select implements Searcher.
func (o Offline) Select(ctx context.Context, s domain.SearchSuggestion) (blocking.Selection, error) {
	return blocking.OfflineSelect(ctx, o.Engine, s)
}
