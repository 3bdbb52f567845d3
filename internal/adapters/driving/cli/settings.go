package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the search API, search defaults, history and
offline tilesets.

Use 'geosearch settings keys' to list the keys accepted by 'set'.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its config key.

Lists such as search.languages take comma separated values.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	RunE:  runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the access token and search defaults.`,
	RunE:  runSettingsWizard,
}

var settingsTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Set the API access token",
	Long: `Prompt for the API access token without echoing it.

The GEOSEARCH_ACCESS_TOKEN environment variable overrides the stored token.`,
	RunE: runSettingsToken,
}

// debouncePresets are offered by the wizard.
var debouncePresets = []struct {
	label string
	value time.Duration
}{
	{"Off (search on every keystroke)", 0},
	{"Short (150 ms)", 150 * time.Millisecond},
	{"Long (300 ms)", 300 * time.Millisecond},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[API]")
	cmd.Printf("  Base URL: %s\n", settings.API.BaseURL)
	if settings.API.AccessToken != "" {
		cmd.Printf("  Access Token: %s\n", maskAPIKey(settings.API.AccessToken))
	} else {
		cmd.Printf("  Access Token: (not set)\n")
	}
	cmd.Printf("  Timeout: %s\n", settings.API.Timeout)
	if settings.API.RateLimit > 0 {
		cmd.Printf("  Rate Limit: %g/s (burst %d)\n", settings.API.RateLimit, settings.API.Burst)
	} else {
		cmd.Printf("  Rate Limit: unlimited\n")
	}
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Limit: %d\n", settings.Search.Limit)
	cmd.Printf("  Request Debounce: %s\n", settings.Search.RequestDebounce)
	if settings.Search.DistanceThreshold > 0 {
		cmd.Printf("  Record Distance Threshold: %s\n", formatDistance(settings.Search.DistanceThreshold))
	}
	cmd.Printf("  Languages: %s\n", listOrNone(settings.Search.Languages))
	cmd.Printf("  Countries: %s\n", listOrNone(settings.Search.Countries))
	cmd.Println()

	cmd.Println("[History]")
	cmd.Printf("  Max Size: %d\n", settings.History.MaxSize)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data Directory: %s\n", valueOrDefault(settings.Storage.DataDir))
	cmd.Println()

	cmd.Println("[Offline]")
	cmd.Printf("  Tiles Directory: %s\n", valueOrNone(settings.Offline.TilesDir))
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'geosearch settings wizard' to fix configuration issues.")
	} else if settings.API.AccessToken == "" {
		cmd.Println("No access token set: only history, favorites and offline search will work.")
		cmd.Println("Run 'geosearch settings token' to set one.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	value := args[1]
	if strings.Contains(args[0], "token") {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", args[0], value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsToken(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Enter access token: ")
	token := readPassword(cmd.InOrStdin())
	cmd.Println()
	if token == "" {
		return errors.New("access token is required")
	}

	if err := settingsService.Set("api.access_token", token); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	cmd.Printf("Access token set: %s\n", maskAPIKey(token))
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("geosearch Settings Wizard")
	cmd.Println("=========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Access token
	cmd.Println("Step 1: Access Token")
	cmd.Println("--------------------")
	if settings.API.AccessToken != "" {
		cmd.Printf("Current token: %s (press Enter to keep)\n", maskAPIKey(settings.API.AccessToken))
	}
	cmd.Print("Enter access token: ")
	if token := readLine(reader); token != "" {
		settings.API.AccessToken = token
	}
	cmd.Println()

	// Step 2: Languages
	cmd.Println("Step 2: Result Languages")
	cmd.Println("------------------------")
	cmd.Printf("Enter comma separated language tags [%s]: ", listOrNone(settings.Search.Languages))
	if langs := readLine(reader); langs != "" {
		if err := settingsService.Set("search.languages", langs); err != nil {
			return fmt.Errorf("failed to set languages: %w", err)
		}
		refreshed, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		settings.Search.Languages = refreshed.Search.Languages
	}
	cmd.Println()

	// Step 3: Debounce
	cmd.Println("Step 3: Search-as-you-type Debounce")
	cmd.Println("-----------------------------------")
	for i, p := range debouncePresets {
		cmd.Printf("  %d. %s\n", i+1, p.label)
	}
	cmd.Print("\nEnter choice [2]: ")
	idx := parseChoice(readLine(reader), len(debouncePresets), 2)
	settings.Search.RequestDebounce = debouncePresets[idx-1].value
	cmd.Println()

	// Step 4: Offline tiles
	cmd.Println("Step 4: Offline Tilesets")
	cmd.Println("------------------------")
	cmd.Printf("Enter tiles directory [%s]: ", valueOrNone(settings.Offline.TilesDir))
	if dir := readLine(reader); dir != "" {
		settings.Offline.TilesDir = dir
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Println("All settings are valid and saved.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(bufio.NewReader(in))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func listOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

func valueOrNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func valueOrDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}
