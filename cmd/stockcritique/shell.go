package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bububa/stockcritique/mcp"
	"github.com/bububa/stockcritique/server"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Ask questions interactively",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	a, logger, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()
	a.Start(ctx)

	var g errgroup.Group
	g.Go(func() error {
		return a.Watch(ctx)
	})
	g.Go(func() error {
		defer cancel()
		companies := a.Router.Extractor().Table().Companies()
		return repl(ctx, a.Router, companies, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	})
	return g.Wait()
}

// repl answers one query per input line until exit, quit or end of input
func repl(ctx context.Context, h server.Handler, companies map[string]string, in io.Reader, out io.Writer, errOut io.Writer) error {
	fmt.Fprintf(out, "%s\n  StockCritique\n%s\n", rule, rule)
	fmt.Fprintf(out, "Supported companies for financial queries:\n%s\n", tickerList(companies))
	fmt.Fprintln(out, "\nOther queries are handled by the General agent.")
	fmt.Fprintln(out, "Type 'exit' or 'quit' to stop.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Fprintln(out, "Goodbye!")
			break
		}
		resp, err := h.HandleQuery(ctx, input, mcp.SourceCLI)
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			continue
		}
		if err := writeReport(out, resp); err != nil {
			return err
		}
		if ctx.Err() != nil {
			break
		}
	}
	return scanner.Err()
}
