package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/blocking"
	"github.com/custodia-labs/geosearch/internal/core/async"
)

var (
	offlineSearchOpts searchFlags
	offlineIndex      int
	offlineRadius     float64
	offlineLimit      int
	offlineJSON       bool
)

var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Search tilesets stored on this device",
	Long: `Search places without a network connection.

Tilesets are JSON files ending in .tileset.json below the directory set
by 'geosearch settings set offline.tiles_dir <dir>'. Files added, changed
or removed while a command runs are picked up automatically.`,
}

var offlineSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search loaded tilesets",
	Args:  cobra.ExactArgs(1),
	RunE:  runOfflineSearch,
}

var offlineSelectCmd = &cobra.Command{
	Use:   "select [query]",
	Short: "Search tilesets and resolve a suggestion",
	Args:  cobra.ExactArgs(1),
	RunE:  runOfflineSelect,
}

var offlineReverseCmd = &cobra.Command{
	Use:   "reverse [lon,lat]",
	Short: "Find tileset places near a coordinate",
	Args:  cobra.ExactArgs(1),
	RunE:  runOfflineReverse,
}

var offlineTilesetsCmd = &cobra.Command{
	Use:   "tilesets",
	Short: "List loaded tilesets",
	RunE:  runOfflineTilesets,
}

func init() {
	offlineSearchOpts.register(offlineSearchCmd)
	offlineSearchOpts.register(offlineSelectCmd)
	offlineSelectCmd.Flags().IntVarP(&offlineIndex, "index", "i", 1, "suggestion to resolve (1-based)")
	offlineReverseCmd.Flags().Float64VarP(&offlineRadius, "radius", "r", 100, "search radius in meters")
	offlineReverseCmd.Flags().IntVarP(&offlineLimit, "limit", "n", 5, "maximum number of results")
	offlineReverseCmd.Flags().BoolVar(&offlineJSON, "json", false, "output results as JSON")
	offlineTilesetsCmd.Flags().BoolVar(&offlineJSON, "json", false, "output as JSON")

	offlineCmd.AddCommand(offlineSearchCmd)
	offlineCmd.AddCommand(offlineSelectCmd)
	offlineCmd.AddCommand(offlineReverseCmd)
	offlineCmd.AddCommand(offlineTilesetsCmd)
	rootCmd.AddCommand(offlineCmd)
}

func errOfflineNotConfigured() error {
	return errors.New("offline search not configured (set offline.tiles_dir)")
}

func runOfflineSearch(cmd *cobra.Command, args []string) error {
	if offlineEngine == nil {
		return errOfflineNotConfigured()
	}

	opts, err := offlineSearchOpts.options()
	if err != nil {
		return err
	}

	out, err := blocking.OfflineSearch(commandContext(cmd), offlineEngine, args[0], opts)
	if err != nil {
		return fmt.Errorf("offline search failed: %w", err)
	}

	if wantJSON(cmd, offlineSearchOpts.json) {
		return printJSON(cmd, out)
	}
	printSuggestions(cmd, out.Suggestions)
	return nil
}

func runOfflineSelect(cmd *cobra.Command, args []string) error {
	if offlineEngine == nil {
		return errOfflineNotConfigured()
	}

	opts, err := offlineSearchOpts.options()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	found, err := blocking.OfflineSearch(ctx, offlineEngine, args[0], opts)
	if err != nil {
		return fmt.Errorf("offline search failed: %w", err)
	}
	if len(found.Suggestions) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	if offlineIndex < 1 || offlineIndex > len(found.Suggestions) {
		return fmt.Errorf("index %d out of range (1-%d)", offlineIndex, len(found.Suggestions))
	}

	sel, err := blocking.OfflineSelect(ctx, offlineEngine, found.Suggestions[offlineIndex-1])
	if err != nil {
		return fmt.Errorf("offline select failed: %w", err)
	}

	if wantJSON(cmd, offlineSearchOpts.json) {
		return printJSON(cmd, sel)
	}
	printSelection(cmd, sel)
	return nil
}

func runOfflineReverse(cmd *cobra.Command, args []string) error {
	if offlineEngine == nil {
		return errOfflineNotConfigured()
	}

	center, err := parsePoint(args[0])
	if err != nil {
		return err
	}

	out, err := blocking.OfflineReverse(commandContext(cmd), offlineEngine, center, offlineRadius, offlineLimit)
	if err != nil {
		return fmt.Errorf("offline reverse geocoding failed: %w", err)
	}

	if wantJSON(cmd, offlineJSON) {
		return printJSON(cmd, out)
	}
	printResults(cmd, out.Results)
	return nil
}

func runOfflineTilesets(cmd *cobra.Command, _ []string) error {
	if offlineEngine == nil {
		return errOfflineNotConfigured()
	}

	ctx := commandContext(cmd)
	ready := make(readySignal)
	offlineEngine.AddEngineReadyCallback(async.Immediate, ready)
	select {
	case <-ready:
	case <-ctx.Done():
		offlineEngine.RemoveEngineReadyCallback(ready)
		return ctx.Err()
	}

	names := offlineEngine.Tilesets()
	if wantJSON(cmd, offlineJSON) {
		return printJSON(cmd, names)
	}
	if len(names) == 0 {
		cmd.Println("No tilesets loaded.")
		return nil
	}
	for _, name := range names {
		cmd.Printf("  %s\n", name)
	}
	return nil
}

// readySignal closes when the offline engine is ready. It is comparable,
// so it can be removed again.
type readySignal chan struct{}

func (r readySignal) OnEngineReady() {
	close(r)
}
