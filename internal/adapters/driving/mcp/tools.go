package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/blocking"
	"github.com/custodia-labs/geosearch/internal/core/domain"
)

const defaultLimit = 10

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string   `json:"query" jsonschema:"place name, address or point of interest to search for"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of suggestions (default 10)"`
	Longitude *float64 `json:"longitude,omitempty" jsonschema:"longitude to bias results towards"`
	Latitude  *float64 `json:"latitude,omitempty" jsonschema:"latitude to bias results towards"`
	Countries []string `json:"countries,omitempty" jsonschema:"ISO 3166 alpha-2 country codes"`
	Languages []string `json:"languages,omitempty" jsonschema:"IETF language tags for result names"`
	Types     []string `json:"types,omitempty" jsonschema:"result types such as poi, address or place"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Suggestions []SuggestionOutput `json:"suggestions"`
	Count       int                `json:"count"`
}

// SuggestionOutput is one suggestion. Pass its id to the select tool.
type SuggestionOutput struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Kind           string   `json:"kind"`
	Address        string   `json:"address,omitempty"`
	Description    string   `json:"description,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	Source         string   `json:"source"`
}

// SelectInput is the input schema for the select tool.
type SelectInput struct {
	SuggestionID string `json:"suggestion_id" jsonschema:"id of a suggestion returned by the latest search"`
}

// SelectOutput holds what a suggestion resolved to: one place, the
// places of a category, or refined suggestions.
type SelectOutput struct {
	Result      *ResultOutput      `json:"result,omitempty"`
	Results     []ResultOutput     `json:"results,omitempty"`
	Suggestions []SuggestionOutput `json:"suggestions,omitempty"`
}

// ReverseInput is the input schema for the reverse_geocode tool.
type ReverseInput struct {
	Longitude float64  `json:"longitude" jsonschema:"longitude of the point"`
	Latitude  float64  `json:"latitude" jsonschema:"latitude of the point"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of results (default 5)"`
	Types     []string `json:"types,omitempty" jsonschema:"result types such as address or street"`
}

// CategoryInput is the input schema for the category_search tool.
type CategoryInput struct {
	Category  string   `json:"category" jsonschema:"category id such as cafe, restaurant or fuel"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of results (default 10)"`
	Longitude *float64 `json:"longitude,omitempty" jsonschema:"longitude to bias results towards"`
	Latitude  *float64 `json:"latitude,omitempty" jsonschema:"latitude to bias results towards"`
}

// ResultsOutput is the output schema for tools returning places.
type ResultsOutput struct {
	Results []ResultOutput `json:"results"`
	Count   int            `json:"count"`
}

// ResultOutput is one resolved place.
type ResultOutput struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address,omitempty"`
	Description    string   `json:"description,omitempty"`
	Longitude      float64  `json:"longitude"`
	Latitude       float64  `json:"latitude"`
	Types          []string `json:"types,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	Source         string   `json:"source"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Suggest places, addresses and points of interest for a query. Favorites and history come first.",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "select",
		Description: "Resolve a suggestion from the latest search into a place with coordinates",
	}, s.handleSelect)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reverse_geocode",
		Description: "Find the addresses and places at a coordinate",
	}, s.handleReverse)

	if s.ports.Category != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "category_search",
			Description: "List places in a category such as cafe or fuel",
		}, s.handleCategory)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	proximity, err := optionalPoint(input.Longitude, input.Latitude)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	opts := domain.SearchOptions{
		Limit:     limitOr(input.Limit, defaultLimit),
		Proximity: proximity,
		Countries: input.Countries,
		Languages: input.Languages,
		Types:     queryTypes(input.Types),
	}
	out, err := blocking.Search(ctx, s.ports.Search, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	s.remember(out.Suggestions)
	return nil, SearchOutput{
		Suggestions: suggestionOutputs(out.Suggestions),
		Count:       len(out.Suggestions),
	}, nil
}

// handleSelect handles the select tool invocation.
func (s *Server) handleSelect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SelectInput,
) (*mcp.CallToolResult, SelectOutput, error) {
	suggestion, ok := s.lookup(input.SuggestionID)
	if !ok {
		return nil, SelectOutput{}, fmt.Errorf("%w: %q", ErrUnknownSuggestion, input.SuggestionID)
	}

	sel, err := blocking.Select(ctx, s.ports.Search, suggestion, nil)
	if err != nil {
		return nil, SelectOutput{}, err
	}

	var out SelectOutput
	switch {
	case sel.Result != nil:
		r := resultOutput(sel.Result)
		out.Result = &r
	case sel.Suggestions != nil:
		s.remember(sel.Suggestions)
		out.Suggestions = suggestionOutputs(sel.Suggestions)
	default:
		out.Results = resultOutputs(sel.Results)
	}
	return nil, out, nil
}

// handleReverse handles the reverse_geocode tool invocation.
func (s *Server) handleReverse(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReverseInput,
) (*mcp.CallToolResult, ResultsOutput, error) {
	opts := domain.ReverseGeoOptions{
		Center: domain.NewPoint(input.Longitude, input.Latitude),
		Limit:  limitOr(input.Limit, 5),
		Types:  queryTypes(input.Types),
	}
	out, err := blocking.Reverse(ctx, s.ports.Search, opts)
	if err != nil {
		return nil, ResultsOutput{}, err
	}
	return nil, ResultsOutput{Results: resultOutputs(out.Results), Count: len(out.Results)}, nil
}

// handleCategory handles the category_search tool invocation.
func (s *Server) handleCategory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CategoryInput,
) (*mcp.CallToolResult, ResultsOutput, error) {
	proximity, err := optionalPoint(input.Longitude, input.Latitude)
	if err != nil {
		return nil, ResultsOutput{}, err
	}

	opts := domain.SearchOptions{Limit: limitOr(input.Limit, defaultLimit), Proximity: proximity}
	out, err := blocking.Category(ctx, s.ports.Category, input.Category, opts)
	if err != nil {
		return nil, ResultsOutput{}, err
	}
	return nil, ResultsOutput{Results: resultOutputs(out.Results), Count: len(out.Results)}, nil
}

func limitOr(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}

// optionalPoint requires both coordinates or neither.
func optionalPoint(lon, lat *float64) (*domain.Point, error) {
	switch {
	case lon == nil && lat == nil:
		return nil, nil
	case lon == nil || lat == nil:
		return nil, fmt.Errorf("%w: longitude and latitude must be given together", domain.ErrInvalidInput)
	}
	p := domain.NewPoint(*lon, *lat)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func queryTypes(types []string) []domain.QueryType {
	var out []domain.QueryType
	for _, t := range types {
		out = append(out, domain.QueryType(strings.ToLower(t)))
	}
	return out
}

// source names where a result came from: a record layer or the API.
func source(layer string) string {
	if layer != "" {
		return layer
	}
	return "remote"
}

func suggestionOutputs(suggestions []domain.SearchSuggestion) []SuggestionOutput {
	out := make([]SuggestionOutput, len(suggestions))
	for i := range suggestions {
		sug := &suggestions[i]
		o := SuggestionOutput{
			ID:             sug.ID,
			Name:           sug.Name,
			Kind:           string(sug.Type),
			Address:        sug.FullAddress,
			Description:    sug.Description,
			DistanceMeters: sug.Distance,
			Source:         source(sug.RecordLayer),
		}
		if o.Address == "" {
			o.Address = sug.Address.Formatted()
		}
		if sug.Coordinate != nil {
			lon, lat := sug.Coordinate.Longitude, sug.Coordinate.Latitude
			o.Longitude, o.Latitude = &lon, &lat
		}
		out[i] = o
	}
	return out
}

func resultOutput(r *domain.SearchResult) ResultOutput {
	o := ResultOutput{
		ID:             r.ID,
		Name:           r.Name,
		Address:        r.FullAddress,
		Description:    r.Description,
		Longitude:      r.Coordinate.Longitude,
		Latitude:       r.Coordinate.Latitude,
		Categories:     r.Categories,
		DistanceMeters: r.Distance,
		Source:         source(r.RecordLayer),
	}
	if o.Address == "" {
		o.Address = r.Address.Formatted()
	}
	for _, t := range r.Types {
		o.Types = append(o.Types, string(t))
	}
	return o
}

func resultOutputs(results []domain.SearchResult) []ResultOutput {
	out := make([]ResultOutput, len(results))
	for i := range results {
		out[i] = resultOutput(&results[i])
	}
	return out
}
