package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// defaultTUIDebounce applies to offline search-as-you-type when no
// request debounce is configured.
const defaultTUIDebounce = 150 * time.Millisecond

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for geosearch.

Suggestions update as you type. Selecting a place shows its details and
adds it to history; favorites and history can be browsed and edited.

Controls:
  ↑/k, ↓/j - Navigate suggestions
  Tab      - Switch between input and suggestions
  Enter    - Select
  f        - Add the shown place to favorites
  Esc      - Back
  Ctrl+C   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the configured services.
func tuiPorts() (*tui.Ports, error) {
	if searchEngine == nil {
		return nil, errors.New("search engine not configured")
	}

	ports := tui.NewPorts(searchEngine)
	ports.Offline = offlineEngine
	ports.History = historyService
	ports.Favorites = favoritesService
	ports.Settings = settingsService
	ports.Debounce = defaultTUIDebounce

	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to get settings: %w", err)
		}
		if settings.Search.RequestDebounce > 0 {
			ports.Debounce = settings.Search.RequestDebounce
		}
	}
	return ports, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports, err := tuiPorts()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Log lines would draw over the alternate screen.
	restore := logger.Silence()
	defer restore()

	if err := app.WithContext(commandContext(cmd)).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
