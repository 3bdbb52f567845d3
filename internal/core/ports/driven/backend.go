package driven

import (
	"context"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// SearchBackend is the remote search API.
// Implementations serialise requests and parse responses; they do not
// merge local records.
type SearchBackend interface {
	// Suggest returns first-step suggestions for req.Query.
	Suggest(ctx context.Context, req domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error)

	// Retrieve resolves a place suggestion into a full result.
	Retrieve(ctx context.Context, suggestion domain.SearchSuggestion) (domain.SearchResult, domain.ResponseInfo, error)

	// Category lists places in the category named by req.Query.
	Category(ctx context.Context, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error)

	// Reverse finds places at a coordinate.
	Reverse(ctx context.Context, opts domain.ReverseGeoOptions, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error)
}
