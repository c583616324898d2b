package entity

import (
	"cmp"
	"maps"
	"path"
	"regexp"
	"slices"
	"strings"
)

// DefaultCompanies is the curated company name to ticker table
var DefaultCompanies = map[string]string{
	"apple":     "AAPL",
	"microsoft": "MSFT",
	"google":    "GOOGL",
	"alphabet":  "GOOGL",
	"amazon":    "AMZN",
	"meta":      "META",
	"facebook":  "META",
	"tesla":     "TSLA",
	"nvidia":    "NVDA",
	"netflix":   "NFLX",
	"intel":     "INTC",
	"ibm":       "IBM",
}

// term is what a matched surface string resolves to
type term struct {
	company string
	ticker  string
}

// Table is an immutable compiled name to ticker table.
// Names without a ticker are still matched and reported as companies.
type Table struct {
	companies map[string]string
	terms     map[string]term
	pattern   *regexp.Regexp
}

// NewTable compiles a table from a lower-cased company name to ticker mapping.
// An empty ticker marks a company with no known symbol.
func NewTable(companies map[string]string) *Table {
	ret := &Table{
		companies: make(map[string]string, len(companies)),
		terms:     make(map[string]term, len(companies)*2),
	}
	for name, ticker := range companies {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		ret.companies[name] = strings.ToUpper(strings.TrimSpace(ticker))
	}
	names := slices.Sorted(maps.Keys(ret.companies))
	for _, name := range names {
		ret.terms[name] = term{company: name, ticker: ret.companies[name]}
	}
	// a ticker resolves to the first company name carrying it
	for _, name := range names {
		ticker := ret.companies[name]
		if ticker == "" {
			continue
		}
		if _, found := ret.terms[strings.ToLower(ticker)]; !found {
			ret.terms[strings.ToLower(ticker)] = term{company: name, ticker: ticker}
		}
	}
	if len(ret.terms) == 0 {
		return ret
	}
	alternatives := slices.SortedFunc(maps.Keys(ret.terms), func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	for i, v := range alternatives {
		alternatives[i] = regexp.QuoteMeta(v)
	}
	ret.pattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(alternatives, "|") + `)\b`)
	return ret
}

// Ticker returns the ticker of a company name
func (t *Table) Ticker(name string) (string, bool) {
	ticker, found := t.companies[strings.ToLower(name)]
	return ticker, found && ticker != ""
}

// Companies returns a copy of the name to ticker mapping
func (t *Table) Companies() map[string]string {
	return maps.Clone(t.companies)
}

// Len returns the number of known company names
func (t *Table) Len() int {
	return len(t.companies)
}

// Merge returns a table holding both sets of names, names already in base keep their ticker
func Merge(base map[string]string, names ...string) map[string]string {
	ret := make(map[string]string, len(base)+len(names))
	for k, v := range base {
		ret[strings.ToLower(k)] = v
	}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, found := ret[name]; !found && name != "" {
			ret[name] = ""
		}
	}
	return ret
}

// DiscoverNames derives company names from corpus identifiers named
// "<company>-<year>.pdf", ".htm" or ".html". The part before the first "-"
// is the company, a name without "-" is used whole.
func DiscoverNames(ids []string) []string {
	var ret []string
	for _, id := range ids {
		base := path.Base(strings.ReplaceAll(id, `\`, "/"))
		ext := strings.ToLower(path.Ext(base))
		if ext != ".pdf" && ext != ".htm" && ext != ".html" {
			continue
		}
		base = strings.TrimSuffix(base, path.Ext(base))
		if idx := strings.IndexByte(base, '-'); idx >= 0 {
			base = base[:idx]
		}
		name := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(base, "_", " ")))
		if name != "" && !slices.Contains(ret, name) {
			ret = append(ret, name)
		}
	}
	slices.Sort(ret)
	return ret
}
