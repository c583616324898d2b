package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bububa/stockcritique/mcp"
)

var rule = strings.Repeat("=", 60)

// writeReport prints a response as plain text, one section per agent
func writeReport(w io.Writer, resp *mcp.Response) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s (request %s)\n", resp.Status, resp.RequestID)
	if resp.Context != nil && (resp.Context.HasCompanies() || resp.Context.HasTickers()) {
		fmt.Fprintf(&b, "Companies: %s | Tickers: %s\n",
			orNone(resp.Context.Companies()), orNone(resp.Context.Tickers()))
	}
	for _, e := range resp.Payload {
		fmt.Fprintf(&b, "\n--- %s ---\n", e.Agent)
		if e.Failed() {
			fmt.Fprintf(&b, "error: %s\n", e.Error)
			continue
		}
		b.WriteString(strings.TrimSpace(e.Summary))
		b.WriteByte('\n')
	}
	if resp.Summary != "" {
		fmt.Fprintf(&b, "\n%s\nFINAL SUMMARY\n%s\n%s\n%s\n", rule, rule, strings.TrimSpace(resp.Summary), rule)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func orNone(v []string) string {
	if len(v) == 0 {
		return "none"
	}
	return strings.Join(v, ", ")
}

// tickerList renders the name to ticker table sorted by name
func tickerList(companies map[string]string) string {
	names := make([]string, 0, len(companies))
	for name, ticker := range companies {
		if ticker == "" {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %-24s %s", name, companies[name]))
	}
	return strings.Join(lines, "\n")
}
