package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/blocking"
	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// searchFlags are shared by the commands that run a suggest step.
type searchFlags struct {
	limit     int
	json      bool
	proximity string
	origin    string
	bbox      string
	countries []string
	languages []string
	types     []string
	noRecords bool
	threshold float64
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 10, "maximum number of results")
	cmd.Flags().BoolVar(&f.json, "json", false, "output results as JSON")
	cmd.Flags().StringVar(&f.proximity, "proximity", "", "bias results towards lon,lat")
	cmd.Flags().StringVar(&f.origin, "origin", "", "measure distances from lon,lat")
	cmd.Flags().StringVar(&f.bbox, "bbox", "", "limit results to minLon,minLat,maxLon,maxLat")
	cmd.Flags().StringSliceVar(&f.countries, "country", nil, "ISO 3166 country codes")
	cmd.Flags().StringSliceVar(&f.languages, "language", nil, "IETF language tags")
	cmd.Flags().StringSliceVar(&f.types, "types", nil, "result types (poi, address, place, ...)")
	cmd.Flags().BoolVar(&f.noRecords, "no-records", false, "skip history and favorites")
	cmd.Flags().Float64Var(&f.threshold, "max-distance", 0, "drop local records farther than this many meters from the origin")
}

func (f *searchFlags) options() (domain.SearchOptions, error) {
	opts := domain.SearchOptions{
		Limit:                  f.limit,
		Countries:              f.countries,
		Languages:              f.languages,
		IgnoreIndexableRecords: f.noRecords,
	}
	var err error
	if opts.Proximity, err = parseOptionalPoint(f.proximity); err != nil {
		return opts, fmt.Errorf("invalid --proximity: %w", err)
	}
	if opts.Origin, err = parseOptionalPoint(f.origin); err != nil {
		return opts, fmt.Errorf("invalid --origin: %w", err)
	}
	if f.bbox != "" {
		box, err := parseBBox(f.bbox)
		if err != nil {
			return opts, fmt.Errorf("invalid --bbox: %w", err)
		}
		opts.BoundingBox = &box
	}
	for _, t := range f.types {
		opts.Types = append(opts.Types, domain.QueryType(strings.ToLower(t)))
	}
	if f.threshold > 0 {
		threshold := f.threshold
		opts.IndexableRecordsDistanceThreshold = &threshold
	}
	return opts, nil
}

var searchOpts searchFlags

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for places",
	Long: `Runs the suggest step of a place search.

Matching history and favorites are listed first, followed by suggestions
from the search API. Use 'geosearch select' to resolve a suggestion into
a full result with coordinates.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchOpts.register(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchEngine == nil {
		return errors.New("search engine not configured")
	}

	opts, err := searchOpts.options()
	if err != nil {
		return err
	}

	out, err := blocking.Search(commandContext(cmd), searchEngine, args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if wantJSON(cmd, searchOpts.json) {
		return printJSON(cmd, out)
	}
	printSuggestions(cmd, out.Suggestions)
	return nil
}

func printSuggestions(cmd *cobra.Command, suggestions []domain.SearchSuggestion) {
	if len(suggestions) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Suggestions:")
	cmd.Println()
	for i := range suggestions {
		s := &suggestions[i]
		cmd.Printf("  [%d] %s (%s)\n", i+1, s.Name, suggestionLabel(s))
		if s.FullAddress != "" {
			cmd.Printf("      %s\n", s.FullAddress)
		}
		if s.Distance != nil {
			cmd.Printf("      %s away\n", formatDistance(*s.Distance))
		}
	}
}

func printResults(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		printResult(cmd, i+1, &results[i])
	}
}

func printResult(cmd *cobra.Command, n int, r *domain.SearchResult) {
	label := r.RecordLayer
	if label == "" && len(r.Types) > 0 {
		label = string(r.Types[0])
	}
	if label != "" {
		cmd.Printf("  [%d] %s (%s)\n", n, r.Name, label)
	} else {
		cmd.Printf("  [%d] %s\n", n, r.Name)
	}
	if r.FullAddress != "" {
		cmd.Printf("      %s\n", r.FullAddress)
	}
	cmd.Printf("      %s\n", formatPoint(r.Coordinate))
	if r.Distance != nil {
		cmd.Printf("      %s away\n", formatDistance(*r.Distance))
	}
}

// suggestionLabel names where a suggestion came from or what it is.
func suggestionLabel(s *domain.SearchSuggestion) string {
	if s.Type == domain.SuggestionTypeIndexableRecord && s.RecordLayer != "" {
		return s.RecordLayer
	}
	if s.Type == domain.SuggestionTypePlace && len(s.ResultTypes) > 0 {
		return string(s.ResultTypes[0])
	}
	return string(s.Type)
}

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

func formatPoint(p domain.Point) string {
	return fmt.Sprintf("%.6f, %.6f", p.Longitude, p.Latitude)
}

// parsePoint parses "lon,lat".
func parsePoint(s string) (domain.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.Point{}, fmt.Errorf("%w: expected lon,lat, got %q", domain.ErrInvalidInput, s)
	}
	values, err := parseFloats(parts)
	if err != nil {
		return domain.Point{}, err
	}
	p := domain.NewPoint(values[0], values[1])
	return p, p.Validate()
}

func parseOptionalPoint(s string) (*domain.Point, error) {
	if s == "" {
		return nil, nil
	}
	p, err := parsePoint(s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(s string) (domain.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return domain.BoundingBox{}, fmt.Errorf("%w: expected minLon,minLat,maxLon,maxLat, got %q", domain.ErrInvalidInput, s)
	}
	v, err := parseFloats(parts)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	box := domain.BoundingBox{
		SouthWest: domain.NewPoint(v[0], v[1]),
		NorthEast: domain.NewPoint(v[2], v[3]),
	}
	return box, box.Validate()
}

func parseFloats(parts []string) ([]float64, error) {
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, p)
		}
		out[i] = v
	}
	return out, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
