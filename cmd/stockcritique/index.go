package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the Finance document index and print the entity table",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, logger, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()

	stats, err := a.Index(ctx)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %d documents into %d chunks (%d input tokens)\n", stats.Documents, stats.Chunks, stats.Usage.InputTokens)
	for _, id := range stats.Failed {
		fmt.Fprintf(out, "  failed: %s\n", id)
	}
	fmt.Fprintf(out, "Companies in the index: %s\n", orNone(stats.Companies))
	fmt.Fprintf(out, "Entity table:\n%s\n", tickerList(a.Router.Extractor().Table().Companies()))
	return nil
}
