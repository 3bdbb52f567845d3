package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/blocking"
	"github.com/custodia-labs/geosearch/internal/core/domain"
)

var (
	selectOpts      searchFlags
	selectIndex     int
	selectAll       bool
	selectNoHistory bool
)

var selectCmd = &cobra.Command{
	Use:   "select [query]",
	Short: "Search and resolve a suggestion",
	Long: `Runs a search and resolves one of its suggestions.

A place resolves to a full result, a category to the places in it, and a
query suggestion to a new list of suggestions. Resolved places are added
to history unless --no-history is given.

Use --all to resolve every place and record suggestion in one batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	selectOpts.register(selectCmd)
	selectCmd.Flags().IntVarP(&selectIndex, "index", "i", 1, "suggestion to resolve (1-based)")
	selectCmd.Flags().BoolVar(&selectAll, "all", false, "resolve all place and record suggestions")
	selectCmd.Flags().BoolVar(&selectNoHistory, "no-history", false, "do not add the result to history")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	if searchEngine == nil {
		return errors.New("search engine not configured")
	}

	opts, err := selectOpts.options()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	found, err := blocking.Search(ctx, searchEngine, args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(found.Suggestions) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	if selectAll {
		return runSelectBatch(cmd, found.Suggestions)
	}

	if selectIndex < 1 || selectIndex > len(found.Suggestions) {
		return fmt.Errorf("index %d out of range (1-%d)", selectIndex, len(found.Suggestions))
	}
	suggestion := found.Suggestions[selectIndex-1]

	selOpts := domain.DefaultSelectOptions()
	selOpts.AddResultToHistory = !selectNoHistory
	sel, err := blocking.Select(ctx, searchEngine, suggestion, &selOpts)
	if err != nil {
		return fmt.Errorf("select failed: %w", err)
	}

	if wantJSON(cmd, selectOpts.json) {
		return printJSON(cmd, sel)
	}
	printSelection(cmd, sel)
	return nil
}

func runSelectBatch(cmd *cobra.Command, suggestions []domain.SearchSuggestion) error {
	var resolvable []domain.SearchSuggestion
	for _, s := range suggestions {
		if s.IsBatchResolvable() {
			resolvable = append(resolvable, s)
		}
	}
	if len(resolvable) == 0 {
		cmd.Println("No place suggestions to resolve.")
		return nil
	}

	batch, err := blocking.SelectBatch(commandContext(cmd), searchEngine, resolvable)
	if err != nil {
		return fmt.Errorf("select failed: %w", err)
	}

	if wantJSON(cmd, selectOpts.json) {
		return printJSON(cmd, batch)
	}
	printResults(cmd, batch.Results)
	return nil
}

func printSelection(cmd *cobra.Command, sel blocking.Selection) {
	switch {
	case sel.Result != nil:
		cmd.Println("Result:")
		cmd.Println()
		printResult(cmd, 1, sel.Result)
	case sel.Suggestions != nil:
		printSuggestions(cmd, sel.Suggestions)
	default:
		printResults(cmd, sel.Results)
	}
}
