// Package domain defines the core business entities for geosearch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Point, BoundingBox: Coordinates and areas (longitude first)
//   - SearchOptions: What a caller asks for
//   - RequestOptions, ResponseInfo: Snapshots of what was sent and received
//   - SearchSuggestion: First-step hit that needs a select to resolve
//   - SearchResult: Fully resolved place
//   - IndexableRecord: Locally stored place (history, favorites, custom)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
