package driving

import "github.com/custodia-labs/geosearch/internal/core/domain"

// SuggestionsCallback receives the outcome of a suggest step.
type SuggestionsCallback interface {
	OnSuggestions(suggestions []domain.SearchSuggestion, info domain.ResponseInfo)
	OnError(err error)
}

// SelectionCallback receives the outcome of selecting one suggestion.
// Exactly one method is called per select.
type SelectionCallback interface {
	// OnSuggestions is called when a query suggestion ran another suggest step.
	OnSuggestions(suggestions []domain.SearchSuggestion, info domain.ResponseInfo)

	// OnResult is called when a place or record suggestion resolved.
	OnResult(suggestion domain.SearchSuggestion, result domain.SearchResult, info domain.ResponseInfo)

	// OnResults is called when a category suggestion resolved to a list.
	OnResults(suggestion domain.SearchSuggestion, results []domain.SearchResult, info domain.ResponseInfo)

	OnError(err error)
}

// MultipleSelectionCallback receives the outcome of a batch select.
// suggestions holds the resolvable inputs, aligned with results.
type MultipleSelectionCallback interface {
	OnResults(suggestions []domain.SearchSuggestion, results []domain.SearchResult, info domain.ResponseInfo)
	OnError(err error)
}

// SearchCallback receives results of single-step searches
// (category search, reverse geocoding).
type SearchCallback interface {
	OnResults(results []domain.SearchResult, info domain.ResponseInfo)
	OnError(err error)
}

// EngineReadyCallback is notified once an offline engine has loaded.
type EngineReadyCallback interface {
	OnEngineReady()
}

// OfflineIndexChangeListener is notified when offline tilesets change.
type OfflineIndexChangeListener interface {
	OnIndexChange(event domain.OfflineIndexChangeEvent)
	OnError(err error)
}

// SuggestionsFuncs adapts functions to SuggestionsCallback.
// Nil functions are skipped.
type SuggestionsFuncs struct {
	Suggestions func([]domain.SearchSuggestion, domain.ResponseInfo)
	Error       func(error)
}

// OnSuggestions implements SuggestionsCallback.
func (f SuggestionsFuncs) OnSuggestions(s []domain.SearchSuggestion, info domain.ResponseInfo) {
	if f.Suggestions != nil {
		f.Suggestions(s, info)
	}
}

// OnError implements SuggestionsCallback.
func (f SuggestionsFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// SelectionFuncs adapts functions to SelectionCallback.
type SelectionFuncs struct {
	Suggestions func([]domain.SearchSuggestion, domain.ResponseInfo)
	Result      func(domain.SearchSuggestion, domain.SearchResult, domain.ResponseInfo)
	Results     func(domain.SearchSuggestion, []domain.SearchResult, domain.ResponseInfo)
	Error       func(error)
}

// OnSuggestions implements SelectionCallback.
func (f SelectionFuncs) OnSuggestions(s []domain.SearchSuggestion, info domain.ResponseInfo) {
	if f.Suggestions != nil {
		f.Suggestions(s, info)
	}
}

// OnResult implements SelectionCallback.
func (f SelectionFuncs) OnResult(s domain.SearchSuggestion, r domain.SearchResult, info domain.ResponseInfo) {
	if f.Result != nil {
		f.Result(s, r, info)
	}
}

// OnResults implements SelectionCallback.
func (f SelectionFuncs) OnResults(s domain.SearchSuggestion, r []domain.SearchResult, info domain.ResponseInfo) {
	if f.Results != nil {
		f.Results(s, r, info)
	}
}

// OnError implements SelectionCallback.
func (f SelectionFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// MultipleSelectionFuncs adapts functions to MultipleSelectionCallback.
type MultipleSelectionFuncs struct {
	Results func([]domain.SearchSuggestion, []domain.SearchResult, domain.ResponseInfo)
	Error   func(error)
}

// OnResults implements MultipleSelectionCallback.
func (f MultipleSelectionFuncs) OnResults(s []domain.SearchSuggestion, r []domain.SearchResult, info domain.ResponseInfo) {
	if f.Results != nil {
		f.Results(s, r, info)
	}
}

// OnError implements MultipleSelectionCallback.
func (f MultipleSelectionFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// SearchFuncs adapts functions to SearchCallback.
type SearchFuncs struct {
	Results func([]domain.SearchResult, domain.ResponseInfo)
	Error   func(error)
}

// OnResults implements SearchCallback.
func (f SearchFuncs) OnResults(r []domain.SearchResult, info domain.ResponseInfo) {
	if f.Results != nil {
		f.Results(r, info)
	}
}

// OnError implements SearchCallback.
func (f SearchFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// EngineReadyFunc adapts a function to EngineReadyCallback.
type EngineReadyFunc func()

// OnEngineReady implements EngineReadyCallback.
func (f EngineReadyFunc) OnEngineReady() {
	f()
}
