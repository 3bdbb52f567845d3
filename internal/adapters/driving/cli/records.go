package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
)

var recordsJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage search history",
	Long: `List, remove or clear places you have selected.

History entries are merged into search results and listed first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listRecords(cmd, historyService, "history")
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listRecords(cmd, historyService, "history")
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return removeRecord(cmd, historyService, "history", args[0])
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return clearRecords(cmd, historyService, "history")
	},
}

var (
	favoriteAddress    string
	favoriteCategories []string
	favoriteMaki       string
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage favorite places",
	Long: `Add, list and remove favorite places.

Favorites rank above history and remote results in every search.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listRecords(cmd, favoritesService, "favorites")
	},
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listRecords(cmd, favoritesService, "favorites")
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add [name] [lon,lat]",
	Short: "Add a favorite place",
	Args:  cobra.ExactArgs(2),
	RunE:  runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return removeRecord(cmd, favoritesService, "favorites", args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, historyListCmd, favoritesCmd, favoritesListCmd} {
		c.Flags().BoolVar(&recordsJSON, "json", false, "output as JSON")
	}
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRemoveCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)

	favoritesAddCmd.Flags().StringVar(&favoriteAddress, "address", "", "street address")
	favoritesAddCmd.Flags().StringSliceVar(&favoriteCategories, "category", nil, "categories for category search")
	favoritesAddCmd.Flags().StringVar(&favoriteMaki, "maki", "", "maki icon name")
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	rootCmd.AddCommand(favoritesCmd)
}

func listRecords(cmd *cobra.Command, svc driving.RecordService, name string) error {
	if svc == nil {
		return fmt.Errorf("%s service not configured", name)
	}

	records, err := svc.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", name, err)
	}

	if wantJSON(cmd, recordsJSON) {
		return printJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Printf("No %s entries.\n", name)
		return nil
	}
	for i := range records {
		r := &records[i]
		cmd.Printf("  %s  %s\n", r.ID, r.Name)
		if addr := r.Address.Formatted(); addr != "" {
			cmd.Printf("      %s\n", addr)
		}
		cmd.Printf("      %s  %s\n", formatPoint(r.Coordinate), r.Timestamp.Local().Format(time.DateTime))
	}
	return nil
}

func removeRecord(cmd *cobra.Command, svc driving.RecordService, name, id string) error {
	if svc == nil {
		return fmt.Errorf("%s service not configured", name)
	}

	if err := svc.Remove(commandContext(cmd), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%s entry %q not found", name, id)
		}
		return fmt.Errorf("failed to remove %s entry: %w", name, err)
	}
	cmd.Printf("Removed %s entry %s\n", name, id)
	return nil
}

func clearRecords(cmd *cobra.Command, svc driving.RecordService, name string) error {
	if svc == nil {
		return fmt.Errorf("%s service not configured", name)
	}

	if err := svc.Clear(commandContext(cmd)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", name, err)
	}
	cmd.Printf("Cleared %s\n", name)
	return nil
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	if favoritesService == nil {
		return errors.New("favorites service not configured")
	}

	coord, err := parsePoint(args[1])
	if err != nil {
		return err
	}

	record := domain.IndexableRecord{
		ID:         uuid.NewString(),
		Name:       args[0],
		Coordinate: coord,
		Categories: favoriteCategories,
		Maki:       favoriteMaki,
	}
	if favoriteAddress != "" {
		record.Address = &domain.Address{Street: favoriteAddress}
	}

	if err := favoritesService.Upsert(commandContext(cmd), record); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	cmd.Printf("Added favorite %s (%s)\n", record.Name, record.ID)
	return nil
}
