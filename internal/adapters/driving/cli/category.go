package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/blocking"
)

var categoryOpts searchFlags

var categoryCmd = &cobra.Command{
	Use:   "category [category]",
	Short: "List places in a category",
	Long: `Lists places in a category such as cafe, restaurant or fuel.

Favorites and history entries tagged with the category come first.`,
	Args: cobra.ExactArgs(1),
	RunE: runCategory,
}

func init() {
	categoryOpts.register(categoryCmd)
	rootCmd.AddCommand(categoryCmd)
}

func runCategory(cmd *cobra.Command, args []string) error {
	if categoryEngine == nil {
		return errors.New("category search not configured")
	}

	opts, err := categoryOpts.options()
	if err != nil {
		return err
	}

	out, err := blocking.Category(commandContext(cmd), categoryEngine, args[0], opts)
	if err != nil {
		return fmt.Errorf("category search failed: %w", err)
	}

	if wantJSON(cmd, categoryOpts.json) {
		return printJSON(cmd, out)
	}
	printResults(cmd, out.Results)
	return nil
}
