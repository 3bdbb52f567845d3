package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services wired in by main. Commands fail with "not configured" when the
// service they need is missing.
var (
	searchEngine     driving.SearchEngine
	categoryEngine   driving.CategorySearchEngine
	offlineEngine    driving.OfflineSearchEngine
	historyService   driving.RecordService
	favoritesService driving.RecordService
	settingsService  driving.SettingsService
)

// Services holds the ports the CLI drives.
type Services struct {
	Search    driving.SearchEngine
	Category  driving.CategorySearchEngine
	Offline   driving.OfflineSearchEngine
	History   driving.RecordService
	Favorites driving.RecordService
	Settings  driving.SettingsService
}

var rootCmd = &cobra.Command{
	Use:   "geosearch",
	Short: "Search places, addresses and points of interest",
	Long: `geosearch runs two-step place search from the terminal.

Search returns suggestions; select resolves one into a full result with
coordinates. Local history and favorites are merged into every search,
and tilesets on disk can be searched without a network connection.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices installs the services used by commands.
func SetServices(s Services) {
	searchEngine = s.Search
	categoryEngine = s.Category
	offlineEngine = s.Offline
	historyService = s.History
	favoritesService = s.Favorites
	settingsService = s.Settings
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. Commands stop when ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// wantJSON reports whether output should be JSON: either requested with
// --json or stdout is not a terminal and the command writes to stdout.
func wantJSON(cmd *cobra.Command, flag bool) bool {
	if flag {
		return true
	}
	if cmd.OutOrStdout() != os.Stdout {
		return false
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
