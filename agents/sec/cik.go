package sec

import (
	"fmt"
	"strings"
)

// CompanyCIKs maps lower-cased company names to SEC central index keys
var CompanyCIKs = map[string]string{
	"apple":     "0000320193",
	"microsoft": "0000789019",
	"google":    "0001652044",
	"alphabet":  "0001652044",
	"amazon":    "0001018724",
	"meta":      "0001326801",
	"facebook":  "0001326801",
	"tesla":     "0001318605",
	"nvidia":    "0001045810",
	"netflix":   "0001065280",
	"intel":     "0000050863",
	"ibm":       "0000051143",
}

// TickerCIKs maps ticker symbols to SEC central index keys
var TickerCIKs = map[string]string{
	"AAPL":  "0000320193",
	"MSFT":  "0000789019",
	"GOOGL": "0001652044",
	"GOOG":  "0001652044",
	"AMZN":  "0001018724",
	"META":  "0001326801",
	"TSLA":  "0001318605",
	"NVDA":  "0001045810",
	"NFLX":  "0001065280",
	"INTC":  "0000050863",
	"IBM":   "0000051143",
}

// tickerEntry is an entry of the SEC company_tickers.json file
type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// PadCIK formats a numeric CIK with ten digits
func PadCIK(cik int64) string {
	return fmt.Sprintf("%010d", cik)
}

// target is a company to look up
type target struct {
	Name string
	CIK  string
}

// resolve maps companies and tickers onto unique CIKs, tickers fall back on the lookup table
func resolve(companies []string, tickers []string, lookup map[string]string) ([]target, []string) {
	var (
		ret        []target
		unresolved []string
	)
	seen := make(map[string]struct{})
	add := func(name, cik string) {
		if _, ok := seen[cik]; ok {
			return
		}
		seen[cik] = struct{}{}
		ret = append(ret, target{Name: name, CIK: cik})
	}
	for _, company := range companies {
		if cik, ok := CompanyCIKs[strings.ToLower(company)]; ok {
			add(company, cik)
			continue
		}
		unresolved = append(unresolved, company)
	}
	for _, ticker := range tickers {
		upper := strings.ToUpper(ticker)
		if cik, ok := TickerCIKs[upper]; ok {
			add(upper, cik)
			continue
		}
		if cik, ok := lookup[upper]; ok {
			add(upper, cik)
			continue
		}
		unresolved = append(unresolved, ticker)
	}
	return ret, unresolved
}
