package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bububa/stockcritique/mcp"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a single question",
	Example: `  stockcritique query "How has AAPL performed this month?"
  stockcritique query --json "What are people saying about Tesla?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the response as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, logger, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()
	a.Start(ctx)

	resp, err := a.Router.HandleQuery(ctx, strings.Join(args, " "), mcp.SourceCLI)
	if err != nil {
		return err
	}
	if queryJSON {
		bs, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bs))
		return err
	}
	return writeReport(cmd.OutOrStdout(), resp)
}
