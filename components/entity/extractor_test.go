package entity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister struct {
	ids []string
	err error
}

func (l staticLister) List(context.Context) ([]string, error) {
	return l.ids, l.err
}

func TestExtractWith(t *testing.T) {
	table := NewTable(Merge(DefaultCompanies, "rivian"))
	tests := []struct {
		name  string
		query string
		want  Entities
	}{
		{
			name:  "company with ticker",
			query: "Tell me about Tesla stock",
			want:  Entities{Companies: []string{"tesla"}, Tickers: []string{"TSLA"}, Terms: []string{"Tesla"}},
		},
		{
			name:  "tickers resolve companies",
			query: "Is TSLA better than googl?",
			want:  Entities{Companies: []string{"alphabet", "tesla"}, Tickers: []string{"GOOGL", "TSLA"}, Terms: []string{"TSLA", "googl"}},
		},
		{
			name:  "discovered name without ticker",
			query: "How is Rivian doing?",
			want:  Entities{Companies: []string{"rivian"}, Tickers: []string{}, Terms: []string{"Rivian"}},
		},
		{
			name:  "whole words only",
			query: "artificial intelligence and pineapples",
			want:  Entities{Companies: []string{}, Tickers: []string{}},
		},
		{
			name:  "terms keep first appearance",
			query: "apple vs Microsoft vs APPLE",
			want:  Entities{Companies: []string{"apple", "microsoft"}, Tickers: []string{"AAPL", "MSFT"}, Terms: []string{"apple", "Microsoft"}},
		},
		{
			name:  "shared ticker",
			query: "google and alphabet",
			want:  Entities{Companies: []string{"alphabet", "google"}, Tickers: []string{"GOOGL"}, Terms: []string{"google", "alphabet"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractWith(table, tt.query)
			assert.ElementsMatch(t, tt.want.Companies, got.Companies)
			assert.ElementsMatch(t, tt.want.Tickers, got.Tickers)
			assert.Equal(t, tt.want.Terms, got.Terms)
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := NewExtractor()
	query := "Compare Apple, NVDA and Netflix"
	first := e.Extract(query)
	second := e.Extract(query)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"apple", "netflix", "nvidia"}, first.Companies)
	assert.Equal(t, []string{"AAPL", "NFLX", "NVDA"}, first.Tickers)
}

func TestExtractEmptyTable(t *testing.T) {
	got := ExtractWith(NewTable(nil), "Tesla")
	assert.Empty(t, got.Companies)
	assert.Empty(t, got.Tickers)
	assert.Empty(t, got.Terms)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	e := NewExtractor(WithCompanies(map[string]string{"tesla": "TSLA"}))
	before := e.Table()
	assert.Empty(t, e.Extract("rivian outlook").Companies)

	require.NoError(t, e.Load(ctx, staticLister{ids: []string{"reports/rivian-2023.pdf", "tesla-2022.htm", "notes.txt"}}))
	assert.Equal(t, []string{"rivian"}, e.Extract("rivian outlook").Companies)
	assert.Equal(t, map[string]string{"tesla": "TSLA", "rivian": ""}, e.Table().Companies())
	// old snapshot is untouched
	assert.Equal(t, 1, before.Len())

	err := e.Load(ctx, staticLister{err: errors.New("boom")})
	require.Error(t, err)
	assert.Equal(t, 2, e.Table().Len())
}

func TestDiscoverNames(t *testing.T) {
	got := DiscoverNames([]string{"Tesla-2023.pdf", "apple-2022-q4.HTML", "ford.pdf", "acme-2020.docx", "tesla-2021.pdf"})
	assert.Equal(t, []string{"apple", "ford", "tesla"}, got)
}

func TestLoadFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "entities.yaml")
	require.NoError(t, os.WriteFile(fname, []byte("company_ticker_map:\n  rivian: RIVN\nfinancial_keywords:\n  - ebitda\n"), 0o644))
	f, err := LoadFile(fname)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"rivian": "RIVN"}, f.CompanyTickerMap)
	assert.Equal(t, []string{"ebitda"}, f.FinancialKeywords)
}
