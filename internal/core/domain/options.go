package domain

import (
	"fmt"
	"time"
)

// DefaultLimit is the number of suggestions returned when no limit is set.
const DefaultLimit = 10

// QueryType restricts which kinds of places a search may return.
type QueryType string

// Supported query types.
const (
	QueryTypeCountry      QueryType = "country"
	QueryTypeRegion       QueryType = "region"
	QueryTypePostcode     QueryType = "postcode"
	QueryTypeDistrict     QueryType = "district"
	QueryTypePlace        QueryType = "place"
	QueryTypeLocality     QueryType = "locality"
	QueryTypeNeighborhood QueryType = "neighborhood"
	QueryTypeStreet       QueryType = "street"
	QueryTypeAddress      QueryType = "address"
	QueryTypePOI          QueryType = "poi"
	QueryTypeCategory     QueryType = "category"
)

// IsValid returns true if the query type is recognised.
func (t QueryType) IsValid() bool {
	switch t {
	case QueryTypeCountry, QueryTypeRegion, QueryTypePostcode, QueryTypeDistrict,
		QueryTypePlace, QueryTypeLocality, QueryTypeNeighborhood, QueryTypeStreet,
		QueryTypeAddress, QueryTypePOI, QueryTypeCategory:
		return true
	default:
		return false
	}
}

// NavigationProfile selects the routing profile used for ETA calculation.
type NavigationProfile string

// Supported navigation profiles.
const (
	NavigationProfileDriving NavigationProfile = "driving"
	NavigationProfileWalking NavigationProfile = "walking"
	NavigationProfileCycling NavigationProfile = "cycling"
	NavigationProfileTraffic NavigationProfile = "driving-traffic"
)

// NavigationOptions asks the backend to compute travel estimates.
type NavigationOptions struct {
	Profile NavigationProfile
	// NavigationETA requests per-result ETAs.
	NavigationETA bool
}

// RouteOptions biases results towards places along a route.
type RouteOptions struct {
	Route []Point
	// DeviationTime is the maximum detour accepted for a result.
	DeviationTime time.Duration
}

// SearchOptions configures a forward search or category search.
type SearchOptions struct {
	// Proximity biases results towards a point.
	Proximity *Point

	// Origin is the point distances are measured from.
	// Falls back to Proximity when unset.
	Origin *Point

	// BoundingBox limits results to an area.
	BoundingBox *BoundingBox

	// Countries limits results to ISO 3166 alpha-2 country codes.
	Countries []string

	// Languages lists BCP 47 language tags for result names.
	Languages []string

	// Limit is the maximum number of suggestions. Zero means DefaultLimit.
	Limit int

	// Types restricts result kinds.
	Types []QueryType

	// RequestDebounce delays the network step; a newer search arriving
	// within the window cancels this one.
	RequestDebounce time.Duration

	// Navigation enables travel estimates.
	Navigation *NavigationOptions

	// Route biases results along a route.
	Route *RouteOptions

	// IgnoreIndexableRecords excludes local records from the results.
	IgnoreIndexableRecords bool

	// IndexableRecordsDistanceThreshold excludes local records farther
	// than this many meters from the origin. Nil disables the filter.
	IndexableRecordsDistanceThreshold *float64

	// UnsafeParameters are passed to the backend verbatim.
	UnsafeParameters map[string]string
}

// EffectiveLimit returns the limit with the default applied.
func (o SearchOptions) EffectiveLimit() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}

// EffectiveOrigin returns Origin, falling back to Proximity.
func (o SearchOptions) EffectiveOrigin() *Point {
	if o.Origin != nil {
		return o.Origin
	}
	return o.Proximity
}

// Validate checks the option values that can be checked without locale data.
func (o SearchOptions) Validate() error {
	if o.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	if o.Proximity != nil {
		if err := o.Proximity.Validate(); err != nil {
			return fmt.Errorf("proximity: %w", err)
		}
	}
	if o.Origin != nil {
		if err := o.Origin.Validate(); err != nil {
			return fmt.Errorf("origin: %w", err)
		}
	}
	if o.BoundingBox != nil {
		if err := o.BoundingBox.Validate(); err != nil {
			return fmt.Errorf("bounding box: %w", err)
		}
	}
	for _, t := range o.Types {
		if !t.IsValid() {
			return fmt.Errorf("%w: unknown type %q", ErrInvalidInput, t)
		}
	}
	if o.RequestDebounce < 0 {
		return fmt.Errorf("%w: request debounce must not be negative", ErrInvalidInput)
	}
	if o.IndexableRecordsDistanceThreshold != nil && *o.IndexableRecordsDistanceThreshold < 0 {
		return fmt.Errorf("%w: distance threshold must not be negative", ErrInvalidInput)
	}
	if o.Route != nil && len(o.Route.Route) < 2 {
		return fmt.Errorf("%w: route needs at least two points", ErrInvalidInput)
	}
	return nil
}

// ReverseMode chooses how reverse geocoding picks results.
type ReverseMode string

// Supported reverse modes.
const (
	ReverseModeDistance ReverseMode = "distance"
	ReverseModeScore    ReverseMode = "score"
)

// ReverseGeoOptions configures a reverse geocoding request.
type ReverseGeoOptions struct {
	Center    Point
	Countries []string
	Languages []string
	Limit     int
	Types     []QueryType
	Mode      ReverseMode
}

// Validate checks the reverse options.
func (o ReverseGeoOptions) Validate() error {
	if err := o.Center.Validate(); err != nil {
		return fmt.Errorf("center: %w", err)
	}
	if o.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	switch o.Mode {
	case "", ReverseModeDistance, ReverseModeScore:
	default:
		return fmt.Errorf("%w: unknown reverse mode %q", ErrInvalidInput, o.Mode)
	}
	return nil
}

// SelectOptions configures the second search step.
type SelectOptions struct {
	// AddResultToHistory records resolved places in the history provider.
	AddResultToHistory bool
}

// DefaultSelectOptions returns the options used when none are given.
func DefaultSelectOptions() SelectOptions {
	return SelectOptions{AddResultToHistory: true}
}
