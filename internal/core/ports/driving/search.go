package driving

import (
	"github.com/custodia-labs/geosearch/internal/core/async"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
)

// SearchEngine runs two-step forward search. Every method returns at once;
// the outcome arrives on the callback, dispatched on executor (or the
// engine's default callback executor when executor is nil).
type SearchEngine interface {
	// Search runs the suggest step.
	Search(query string, opts domain.SearchOptions, executor async.Executor, cb SuggestionsCallback) async.OperationTask

	// Select resolves one suggestion. Nil opts means domain.DefaultSelectOptions.
	Select(suggestion domain.SearchSuggestion, opts *domain.SelectOptions, executor async.Executor, cb SelectionCallback) async.OperationTask

	// SelectBatch resolves several suggestions from the same request.
	SelectBatch(suggestions []domain.SearchSuggestion, executor async.Executor, cb MultipleSelectionCallback) async.OperationTask

	// ReverseGeocoding finds places at a coordinate.
	ReverseGeocoding(opts domain.ReverseGeoOptions, executor async.Executor, cb SearchCallback) async.OperationTask

	DataProviderHost
}

// CategorySearchEngine lists places in a category.
type CategorySearchEngine interface {
	Search(category string, opts domain.SearchOptions, executor async.Executor, cb SearchCallback) async.OperationTask

	DataProviderHost
}

// OfflineSearchEngine searches tilesets stored on the device.
type OfflineSearchEngine interface {
	Search(query string, opts domain.SearchOptions, executor async.Executor, cb SuggestionsCallback) async.OperationTask
	Select(suggestion domain.SearchSuggestion, executor async.Executor, cb SelectionCallback) async.OperationTask
	ReverseGeocoding(center domain.Point, radius float64, limit int, executor async.Executor, cb SearchCallback) async.OperationTask

	// AddEngineReadyCallback runs cb once tilesets are loaded, at once if
	// they already are.
	AddEngineReadyCallback(executor async.Executor, cb EngineReadyCallback)
	RemoveEngineReadyCallback(cb EngineReadyCallback)

	AddIndexChangeListener(executor async.Executor, listener OfflineIndexChangeListener)
	RemoveIndexChangeListener(listener OfflineIndexChangeListener)

	// Tilesets lists the loaded tileset names.
	Tilesets() []string

	DataProviderHost
}

// DataProviderHost lets callers attach local record providers to an engine.
type DataProviderHost interface {
	RegisterDataProvider(provider driven.IndexableDataProvider, executor async.Executor, cb func(error)) async.OperationTask
	UnregisterDataProvider(provider driven.IndexableDataProvider, executor async.Executor, cb func(error)) async.OperationTask
}
