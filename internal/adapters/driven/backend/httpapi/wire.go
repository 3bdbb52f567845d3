package httpapi

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// Suggestion kinds on the wire.
const (
	kindPlace    = "place"
	kindQuery    = "query"
	kindCategory = "category"
)

var (
	errMissingID       = errors.New("missing id")
	errMissingGeometry = errors.New("feature without point geometry")
)

type suggestResponse struct {
	Suggestions []suggestionWire `json:"suggestions"`
	Attribution string           `json:"attribution"`
	ResponseID  string           `json:"response_id"`
}

type suggestionWire struct {
	ID             string       `json:"mapbox_id"`
	Kind           string       `json:"kind"`
	FeatureType    string       `json:"feature_type"`
	Name           string       `json:"name"`
	PlaceFormatted string       `json:"place_formatted"`
	FullAddress    string       `json:"full_address"`
	Address        *addressWire `json:"context"`
	Coordinates    *pointWire   `json:"coordinates"`
	Distance       *float64     `json:"distance"`
	Categories     []string     `json:"poi_category"`
	CategoryID     string       `json:"category_id"`
	Query          string       `json:"query"`
	Maki           string       `json:"maki"`
}

type pointWire struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type addressWire struct {
	HouseNumber  string `json:"address_number"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	Locality     string `json:"locality"`
	Postcode     string `json:"postcode"`
	Place        string `json:"place"`
	District     string `json:"district"`
	Region       string `json:"region"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
}

type featureCollection struct {
	Features    []featureWire `json:"features"`
	Attribution string        `json:"attribution"`
	ResponseID  string        `json:"response_id"`
}

type featureWire struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		ID             string            `json:"mapbox_id"`
		FeatureType    string            `json:"feature_type"`
		Name           string            `json:"name"`
		PlaceFormatted string            `json:"place_formatted"`
		FullAddress    string            `json:"full_address"`
		Address        *addressWire      `json:"context"`
		Distance       *float64          `json:"distance"`
		Categories     []string          `json:"poi_category"`
		Maki           string            `json:"maki"`
		Metadata       map[string]string `json:"metadata"`
	} `json:"properties"`
}

func (a *addressWire) toDomain() *domain.Address {
	if a == nil {
		return nil
	}
	addr := domain.Address(*a)
	return &addr
}

// toDomain converts a wire suggestion. index is its position in the response.
func (s suggestionWire) toDomain(index int, req domain.RequestOptions) (domain.SearchSuggestion, error) {
	out := domain.SearchSuggestion{
		ID:             s.ID,
		Name:           s.Name,
		Description:    s.PlaceFormatted,
		FullAddress:    s.FullAddress,
		Address:        s.Address.toDomain(),
		Distance:       s.Distance,
		Categories:     s.Categories,
		Maki:           s.Maki,
		ServerIndex:    index,
		RequestOptions: req,
	}
	if s.FeatureType != "" {
		out.ResultTypes = []domain.ResultType{domain.ResultType(s.FeatureType)}
	}
	if s.Coordinates != nil {
		out.Coordinate = &domain.Point{Longitude: s.Coordinates.Longitude, Latitude: s.Coordinates.Latitude}
	}

	switch s.Kind {
	case kindQuery:
		out.Type = domain.SuggestionTypeQuery
		out.QueryText = s.Query
		if out.QueryText == "" {
			out.QueryText = s.Name
		}
	case kindCategory:
		out.Type = domain.SuggestionTypeCategory
		out.Category = s.CategoryID
		if out.Category == "" {
			return out, fmt.Errorf("suggestion %d: category without category_id", index)
		}
	case kindPlace, "":
		out.Type = domain.SuggestionTypePlace
		if s.ID == "" {
			return out, fmt.Errorf("suggestion %d: %w", index, errMissingID)
		}
	default:
		return out, fmt.Errorf("suggestion %d: unknown kind %q", index, s.Kind)
	}

	if out.Distance == nil && out.Coordinate != nil {
		if origin := req.Options.EffectiveOrigin(); origin != nil {
			d := origin.DistanceTo(*out.Coordinate)
			out.Distance = &d
		}
	}
	return out, nil
}

// toDomain converts a GeoJSON feature into a result.
func (f featureWire) toDomain(index int, req domain.RequestOptions, origin *domain.Point) (domain.SearchResult, error) {
	if len(f.Geometry.Coordinates) < 2 {
		return domain.SearchResult{}, fmt.Errorf("feature %d: %w", index, errMissingGeometry)
	}
	p := f.Properties
	if p.ID == "" {
		return domain.SearchResult{}, fmt.Errorf("feature %d: %w", index, errMissingID)
	}
	res := domain.SearchResult{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.PlaceFormatted,
		FullAddress:    p.FullAddress,
		Address:        p.Address.toDomain(),
		Coordinate:     domain.Point{Longitude: f.Geometry.Coordinates[0], Latitude: f.Geometry.Coordinates[1]},
		Categories:     p.Categories,
		Maki:           p.Maki,
		Metadata:       p.Metadata,
		Distance:       p.Distance,
		ServerIndex:    index,
		RequestOptions: req,
	}
	if p.FeatureType != "" {
		res.Types = []domain.ResultType{domain.ResultType(p.FeatureType)}
	}
	if res.Distance == nil && origin != nil {
		d := origin.DistanceTo(res.Coordinate)
		res.Distance = &d
	}
	return res, nil
}
