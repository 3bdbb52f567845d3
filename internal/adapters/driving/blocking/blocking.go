// Package blocking wraps the callback-based search engines in calls that
// block until the outcome arrives. The CLI, MCP server and TUI commands
// use it; callers that need search-as-you-type use the engines directly.
package blocking

import (
	"context"

	"github.com/custodia-labs/geosearch/internal/core/async"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
)

// Suggestions is the outcome of a suggest step.
type Suggestions struct {
	Suggestions []domain.SearchSuggestion `json:"suggestions"`
	Info        domain.ResponseInfo       `json:"info"`
}

// Results is the outcome of a single-step search.
type Results struct {
	Results []domain.SearchResult `json:"results"`
	Info    domain.ResponseInfo   `json:"info"`
}

// Selection is the outcome of selecting one suggestion. Exactly one of
// Result, Results or Suggestions is set.
type Selection struct {
	Suggestion  domain.SearchSuggestion   `json:"suggestion"`
	Result      *domain.SearchResult      `json:"result,omitempty"`
	Results     []domain.SearchResult     `json:"results,omitempty"`
	Suggestions []domain.SearchSuggestion `json:"suggestions,omitempty"`
	Info        domain.ResponseInfo       `json:"info"`
}

// Batch is the outcome of a batch select.
type Batch struct {
	Suggestions []domain.SearchSuggestion `json:"suggestions"`
	Results     []domain.SearchResult     `json:"results"`
	Info        domain.ResponseInfo       `json:"info"`
}

// Search runs the suggest step.
func Search(ctx context.Context, e driving.SearchEngine, query string, opts domain.SearchOptions) (Suggestions, error) {
	return async.Await(ctx, func(resolve func(Suggestions), reject func(error)) async.OperationTask {
		return e.Search(query, opts, async.Immediate, suggestionsCallback(resolve, reject))
	})
}

// Select resolves one suggestion. Nil opts uses the engine default.
func Select(ctx context.Context, e driving.SearchEngine, s domain.SearchSuggestion, opts *domain.SelectOptions) (Selection, error) {
	return async.Await(ctx, func(resolve func(Selection), reject func(error)) async.OperationTask {
		return e.Select(s, opts, async.Immediate, selectionCallback(s, resolve, reject))
	})
}

// SelectBatch resolves several suggestions from the same request.
func SelectBatch(ctx context.Context, e driving.SearchEngine, suggestions []domain.SearchSuggestion) (Batch, error) {
	return async.Await(ctx, func(resolve func(Batch), reject func(error)) async.OperationTask {
		return e.SelectBatch(suggestions, async.Immediate, driving.MultipleSelectionFuncs{
			Results: func(s []domain.SearchSuggestion, r []domain.SearchResult, info domain.ResponseInfo) {
				resolve(Batch{Suggestions: s, Results: r, Info: info})
			},
			Error: reject,
		})
	})
}

// Reverse finds places at a coordinate.
func Reverse(ctx context.Context, e driving.SearchEngine, opts domain.ReverseGeoOptions) (Results, error) {
	return async.Await(ctx, func(resolve func(Results), reject func(error)) async.OperationTask {
		return e.ReverseGeocoding(opts, async.Immediate, resultsCallback(resolve, reject))
	})
}

// Category lists places in a category.
func Category(ctx context.Context, e driving.CategorySearchEngine, category string, opts domain.SearchOptions) (Results, error) {
	return async.Await(ctx, func(resolve func(Results), reject func(error)) async.OperationTask {
		return e.Search(category, opts, async.Immediate, resultsCallback(resolve, reject))
	})
}

// OfflineSearch runs the suggest step against loaded tilesets. It waits
// for the engine to finish loading.
func OfflineSearch(ctx context.Context, e driving.OfflineSearchEngine, query string, opts domain.SearchOptions) (Suggestions, error) {
	return async.Await(ctx, func(resolve func(Suggestions), reject func(error)) async.OperationTask {
		return e.Search(query, opts, async.Immediate, suggestionsCallback(resolve, reject))
	})
}

// OfflineSelect resolves an offline suggestion.
func OfflineSelect(ctx context.Context, e driving.OfflineSearchEngine, s domain.SearchSuggestion) (Selection, error) {
	return async.Await(ctx, func(resolve func(Selection), reject func(error)) async.OperationTask {
		return e.Select(s, async.Immediate, selectionCallback(s, resolve, reject))
	})
}

// OfflineReverse finds tileset records within radius meters of center.
func OfflineReverse(ctx context.Context, e driving.OfflineSearchEngine, center domain.Point, radius float64, limit int) (Results, error) {
	return async.Await(ctx, func(resolve func(Results), reject func(error)) async.OperationTask {
		return e.ReverseGeocoding(center, radius, limit, async.Immediate, resultsCallback(resolve, reject))
	})
}

func suggestionsCallback(resolve func(Suggestions), reject func(error)) driving.SuggestionsCallback {
	return driving.SuggestionsFuncs{
		Suggestions: func(s []domain.SearchSuggestion, info domain.ResponseInfo) {
			resolve(Suggestions{Suggestions: s, Info: info})
		},
		Error: reject,
	}
}

func resultsCallback(resolve func(Results), reject func(error)) driving.SearchCallback {
	return driving.SearchFuncs{
		Results: func(r []domain.SearchResult, info domain.ResponseInfo) {
			resolve(Results{Results: r, Info: info})
		},
		Error: reject,
	}
}

func selectionCallback(s domain.SearchSuggestion, resolve func(Selection), reject func(error)) driving.SelectionCallback {
	return driving.SelectionFuncs{
		Suggestions: func(next []domain.SearchSuggestion, info domain.ResponseInfo) {
			resolve(Selection{Suggestion: s, Suggestions: next, Info: info})
		},
		Result: func(sel domain.SearchSuggestion, r domain.SearchResult, info domain.ResponseInfo) {
			resolve(Selection{Suggestion: sel, Result: &r, Info: info})
		},
		Results: func(sel domain.SearchSuggestion, r []domain.SearchResult, info domain.ResponseInfo) {
			resolve(Selection{Suggestion: sel, Results: r, Info: info})
		},
		Error: reject,
	}
}

// Register attaches a data provider to an engine and waits until its
// records are indexed.
func Register(ctx context.Context, host driving.DataProviderHost, provider driven.IndexableDataProvider) error {
	_, err := async.Await(ctx, func(resolve func(struct{}), reject func(error)) async.OperationTask {
		return host.RegisterDataProvider(provider, async.Immediate, func(err error) {
			if err != nil {
				reject(err)
				return
			}
			resolve(struct{}{})
		})
	})
	return err
}
