package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/blocking"
	"github.com/custodia-labs/geosearch/internal/core/domain"
)

var (
	reverseLimit     int
	reverseJSON      bool
	reverseTypes     []string
	reverseCountries []string
	reverseLanguages []string
	reverseMode      string
)

var reverseCmd = &cobra.Command{
	Use:   "reverse [lon,lat]",
	Short: "Find places at a coordinate",
	Long: `Reverse geocodes a coordinate into the addresses and places at it.

The coordinate is given as longitude,latitude, for example 13.405,52.52.
Put -- before coordinates with a negative longitude.`,
	Args: cobra.ExactArgs(1),
	RunE: runReverse,
}

func init() {
	reverseCmd.Flags().IntVarP(&reverseLimit, "limit", "n", 5, "maximum number of results")
	reverseCmd.Flags().BoolVar(&reverseJSON, "json", false, "output results as JSON")
	reverseCmd.Flags().StringSliceVar(&reverseTypes, "types", nil, "result types (address, street, place, ...)")
	reverseCmd.Flags().StringSliceVar(&reverseCountries, "country", nil, "ISO 3166 country codes")
	reverseCmd.Flags().StringSliceVar(&reverseLanguages, "language", nil, "IETF language tags")
	reverseCmd.Flags().StringVar(&reverseMode, "mode", "", "ranking mode: distance or score")
	rootCmd.AddCommand(reverseCmd)
}

func runReverse(cmd *cobra.Command, args []string) error {
	if searchEngine == nil {
		return errors.New("search engine not configured")
	}

	center, err := parsePoint(args[0])
	if err != nil {
		return err
	}

	opts := domain.ReverseGeoOptions{
		Center:    center,
		Countries: reverseCountries,
		Languages: reverseLanguages,
		Limit:     reverseLimit,
		Mode:      domain.ReverseMode(reverseMode),
	}
	for _, t := range reverseTypes {
		opts.Types = append(opts.Types, domain.QueryType(strings.ToLower(t)))
	}

	out, err := blocking.Reverse(commandContext(cmd), searchEngine, opts)
	if err != nil {
		return fmt.Errorf("reverse geocoding failed: %w", err)
	}

	if wantJSON(cmd, reverseJSON) {
		return printJSON(cmd, out)
	}
	printResults(cmd, out.Results)
	return nil
}
