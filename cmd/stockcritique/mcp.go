package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bububa/stockcritique/server"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the query_stocks tool over the Model Context Protocol",
	Long: `Serve the query_stocks tool over the Model Context Protocol.

The server speaks JSON-RPC over stdio by default. Use --http to serve the
streamable HTTP transport instead.`,
	Example: `  stockcritique mcp
  stockcritique mcp --http :8080`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "listen address for streamable HTTP, stdio when empty")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	a, logger, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()
	a.Start(ctx)

	srv, err := server.New(a.Router, logger.Named("mcp"))
	if err != nil {
		return err
	}
	var g errgroup.Group
	g.Go(func() error {
		return a.Watch(ctx)
	})
	g.Go(func() error {
		defer cancel()
		if mcpHTTPAddr != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on %s\n", mcpHTTPAddr)
			return srv.RunHTTP(ctx, mcpHTTPAddr)
		}
		return srv.Run(ctx)
	})
	return g.Wait()
}
