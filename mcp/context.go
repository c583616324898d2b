package mcp

import (
	"encoding/json"
	"slices"
	"strings"
)

// DefaultVersion is the protocol version stamped on every Context
const DefaultVersion = "1.0"

// Context is the per query record shared by all dispatched agents.
// It is immutable after creation, accessors return copies.
type Context struct {
	rawQuery       string
	companies      []string
	tickers        []string
	extractedTerms []string
	version        string
}

// NewContext returns a new Context. companies and tickers are treated as sets,
// extractedTerms keeps its order.
func NewContext(rawQuery string, companies []string, tickers []string, extractedTerms []string) *Context {
	return &Context{
		rawQuery:       rawQuery,
		companies:      normalizeSet(companies),
		tickers:        normalizeSet(tickers),
		extractedTerms: slices.Clone(extractedTerms),
		version:        DefaultVersion,
	}
}

func (c *Context) RawQuery() string {
	return c.rawQuery
}

func (c *Context) Companies() []string {
	return slices.Clone(c.companies)
}

func (c *Context) Tickers() []string {
	return slices.Clone(c.tickers)
}

func (c *Context) ExtractedTerms() []string {
	return slices.Clone(c.extractedTerms)
}

func (c *Context) Version() string {
	return c.version
}

func (c *Context) HasCompanies() bool {
	return len(c.companies) > 0
}

func (c *Context) HasTickers() bool {
	return len(c.tickers) > 0
}

type contextJSON struct {
	UserQuery      string   `json:"user_query"`
	Companies      []string `json:"companies"`
	Tickers        []string `json:"tickers"`
	ExtractedTerms []string `json:"extracted_terms"`
	Version        string   `json:"version"`
}

// MarshalJSON implements json.Marshaler interface
func (c *Context) MarshalJSON() ([]byte, error) {
	return json.Marshal(contextJSON{
		UserQuery:      c.rawQuery,
		Companies:      nonNil(c.companies),
		Tickers:        nonNil(c.tickers),
		ExtractedTerms: nonNil(c.extractedTerms),
		Version:        c.version,
	})
}

func normalizeSet(in []string) []string {
	ret := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	slices.Sort(ret)
	return slices.Compact(ret)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
