// Package entity finds company names and ticker symbols in query text
package entity

import (
	"context"
	"maps"
	"slices"
	"strings"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/bububa/stockcritique/components/document"
)

// Entities is what the extractor found in a query
type Entities struct {
	// Companies lower-cased company names, sorted
	Companies []string
	// Tickers upper-cased ticker symbols, sorted
	Tickers []string
	// Terms matched surface strings in order of first appearance
	Terms []string
}

// ExtractWith scans query against table. It does no I/O and is idempotent.
func ExtractWith(table *Table, query string) Entities {
	var ret Entities
	if table == nil || table.pattern == nil {
		return ret
	}
	var (
		companies = make(map[string]struct{})
		tickers   = make(map[string]struct{})
		seen      = make(map[string]struct{})
	)
	for _, loc := range table.pattern.FindAllStringIndex(query, -1) {
		surface := query[loc[0]:loc[1]]
		key := strings.ToLower(surface)
		t, found := table.terms[key]
		if !found {
			continue
		}
		companies[t.company] = struct{}{}
		if t.ticker != "" {
			tickers[t.ticker] = struct{}{}
		}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			ret.Terms = append(ret.Terms, surface)
		}
	}
	ret.Companies = slices.Sorted(maps.Keys(companies))
	ret.Tickers = slices.Sorted(maps.Keys(tickers))
	return ret
}

// Extractor owns the process wide entity table. Queries read one snapshot,
// Load builds a new table and swaps it in.
type Extractor struct {
	static map[string]string
	table  *atomic.Pointer[Table]
	logger *zap.Logger
}

type Option func(*Extractor)

// WithCompanies replaces the curated name to ticker table
func WithCompanies(companies map[string]string) Option {
	return func(e *Extractor) {
		e.static = maps.Clone(companies)
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

func NewExtractor(opts ...Option) *Extractor {
	ret := &Extractor{
		static: maps.Clone(DefaultCompanies),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.table = atomic.NewPointer(NewTable(ret.static))
	return ret
}

// Load rebuilds the table from the curated names plus names discovered in the corpus
func (e *Extractor) Load(ctx context.Context, lister document.Lister) error {
	var ids []string
	if lister != nil {
		var err error
		if ids, err = lister.List(ctx); err != nil {
			return err
		}
	}
	e.LoadIDs(ids)
	return nil
}

// LoadIDs rebuilds the table from already listed corpus identifiers
func (e *Extractor) LoadIDs(ids []string) {
	discovered := DiscoverNames(ids)
	table := NewTable(Merge(e.static, discovered...))
	e.table.Store(table)
	e.logger.Info("entity table loaded",
		zap.Int("names", table.Len()),
		zap.Strings("discovered", discovered))
}

// Table returns the current snapshot
func (e *Extractor) Table() *Table {
	return e.table.Load()
}

// Extract scans query against the current snapshot
func (e *Extractor) Extract(query string) Entities {
	return ExtractWith(e.Table(), query)
}
