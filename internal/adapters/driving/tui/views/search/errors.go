package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearcher indicates that no searcher was provided.
	ErrNoSearcher = errors.New("search engine is required")

	// ErrNoFavorites indicates that favorites are not configured.
	ErrNoFavorites = errors.New("favorites are not available")
)
