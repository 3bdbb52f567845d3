package httpapi

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/schema"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// searchParams are the query parameters of suggest and category calls.
type searchParams struct {
	Query             string `schema:"q,omitempty"`
	SessionToken      string `schema:"session_token,omitempty"`
	Language          string `schema:"language,omitempty"`
	Country           string `schema:"country,omitempty"`
	Limit             int    `schema:"limit,omitempty"`
	Types             string `schema:"types,omitempty"`
	Proximity         string `schema:"proximity,omitempty"`
	Origin            string `schema:"origin,omitempty"`
	BBox              string `schema:"bbox,omitempty"`
	NavigationProfile string `schema:"navigation_profile,omitempty"`
	ETAType           string `schema:"eta_type,omitempty"`
	Route             string `schema:"route,omitempty"`
	RouteGeometry     string `schema:"route_geometry,omitempty"`
	TimeDeviation     int    `schema:"time_deviation,omitempty"`
}

// retrieveParams are the query parameters of a retrieve call.
type retrieveParams struct {
	SessionToken string `schema:"session_token,omitempty"`
	Language     string `schema:"language,omitempty"`
}

// reverseParams are the query parameters of a reverse call.
type reverseParams struct {
	Longitude string `schema:"longitude"`
	Latitude  string `schema:"latitude"`
	Language  string `schema:"language,omitempty"`
	Country   string `schema:"country,omitempty"`
	Limit     int    `schema:"limit,omitempty"`
	Types     string `schema:"types,omitempty"`
	Mode      string `schema:"mode,omitempty"`
}

var encoder = schema.NewEncoder()

// encode turns a params struct into url.Values and appends the unsafe
// passthrough parameters. Passthrough keys never replace encoded ones.
func encode(params any, unsafe map[string]string) (url.Values, error) {
	values := url.Values{}
	if err := encoder.Encode(params, values); err != nil {
		return nil, fmt.Errorf("encoding query parameters: %w", err)
	}

	keys := make([]string, 0, len(unsafe))
	for k := range unsafe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, exists := values[k]; exists || k == "access_token" {
			continue
		}
		values.Set(k, unsafe[k])
	}
	return values, nil
}

func newSearchParams(req domain.RequestOptions) searchParams {
	opts := req.Options
	p := searchParams{
		Query:        req.Query,
		SessionToken: req.SessionID,
		Language:     strings.Join(opts.Languages, ","),
		Country:      strings.Join(opts.Countries, ","),
		Limit:        opts.Limit,
		Types:        joinTypes(opts.Types),
		Proximity:    formatPoint(opts.Proximity),
		Origin:       formatPoint(opts.Origin),
	}
	if bb := opts.BoundingBox; bb != nil {
		p.BBox = fmt.Sprintf("%s,%s,%s,%s",
			formatFloat(bb.SouthWest.Longitude), formatFloat(bb.SouthWest.Latitude),
			formatFloat(bb.NorthEast.Longitude), formatFloat(bb.NorthEast.Latitude))
	}
	if nav := opts.Navigation; nav != nil {
		p.NavigationProfile = string(nav.Profile)
		if nav.NavigationETA {
			p.ETAType = "navigation"
		}
	}
	if route := opts.Route; route != nil {
		points := make([]string, 0, len(route.Route))
		for _, pt := range route.Route {
			points = append(points, formatPoint(&pt))
		}
		p.Route = strings.Join(points, ";")
		p.RouteGeometry = "coordinates"
		p.TimeDeviation = int(route.DeviationTime.Minutes())
	}
	return p
}

func newReverseParams(opts domain.ReverseGeoOptions) reverseParams {
	return reverseParams{
		Longitude: formatFloat(opts.Center.Longitude),
		Latitude:  formatFloat(opts.Center.Latitude),
		Language:  strings.Join(opts.Languages, ","),
		Country:   strings.Join(opts.Countries, ","),
		Limit:     opts.Limit,
		Types:     joinTypes(opts.Types),
		Mode:      string(opts.Mode),
	}
}

func joinTypes(types []domain.QueryType) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ",")
}

func formatPoint(p *domain.Point) string {
	if p == nil {
		return ""
	}
	return formatFloat(p.Longitude) + "," + formatFloat(p.Latitude)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
