// Package sec reads company financials from SEC XBRL companyfacts
package sec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bububa/stockcritique/mcp"
	"github.com/bububa/stockcritique/tools/calculator"
)

// ContextKey is the context update recorded after each run
const ContextKey = "last_sec_query"

const tickersCacheKey = "company_tickers"

// ErrNoRegistrant is returned when no company of the request maps to a CIK
var ErrNoRegistrant = errors.New("sec: no registrant found")

// Ratio is a derived metric evaluated on facts of the same period
type Ratio struct {
	Name       string
	Expression string
	Facts      []string
}

// Ratios are computed for every company
var Ratios = []Ratio{
	{Name: "net_margin_pct", Expression: "round(net_income / revenue * 100, 2)", Facts: []string{"net_income", "revenue"}},
	{Name: "debt_to_equity", Expression: "round(total_liabilities / stockholders_equity, 2)", Facts: []string{"total_liabilities", "stockholders_equity"}},
	{Name: "liabilities_to_assets", Expression: "round(total_liabilities / total_assets, 2)", Facts: []string{"total_liabilities", "total_assets"}},
	{Name: "roe_pct", Expression: "round(net_income / stockholders_equity * 100, 2)", Facts: []string{"net_income", "stockholders_equity"}},
}

// Filing is the per company entry of the agent data
type Filing struct {
	Company    string             `json:"company"`
	CIK        string             `json:"cik"`
	EntityName string             `json:"entity_name,omitempty"`
	Facts      map[string]Fact    `json:"facts,omitempty"`
	Ratios     map[string]float64 `json:"ratios,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Agent is the SEC agent
type Agent struct {
	Options
	limiter  *rate.Limiter
	calc     *calculator.Tool
	lookupMu sync.Mutex
	lookup   map[string]string
}

var _ mcp.Agent = (*Agent)(nil)

func New(opts ...Option) *Agent {
	ret := new(Agent)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.baseURL == "" {
		ret.baseURL = DefaultBaseURL
	}
	ret.baseURL = strings.TrimRight(ret.baseURL, "/")
	if ret.tickersURL == "" {
		ret.tickersURL = DefaultTickersURL
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.rps <= 0 {
		ret.rps = DefaultRPS
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	ret.limiter = rate.NewLimiter(rate.Limit(ret.rps), 1)
	ret.calc = calculator.New()
	return ret
}

func (a *Agent) Name() string {
	return mcp.AgentSEC
}

// Run looks up every company and ticker of the request
func (a *Agent) Run(ctx context.Context, req *mcp.Request) (*mcp.Result, error) {
	companies := req.Context.Companies()
	tickers := req.Context.Tickers()
	targets, unresolved := resolve(companies, tickers, nil)
	if hasAny(unresolved, tickers) {
		lookup, err := a.tickerLookup(ctx)
		if err != nil {
			a.logger.Warn("sec ticker lookup failed", zap.Error(err))
		} else {
			targets, unresolved = resolve(companies, tickers, lookup)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoRegistrant, strings.Join(append(companies, tickers...), ", "))
	}
	filings := make([]Filing, 0, len(targets))
	var succeeded int
	for _, t := range targets {
		filing := Filing{Company: t.Name, CIK: t.CIK}
		summary, err := a.Summary(ctx, t.CIK)
		if err != nil {
			a.logger.Warn("sec companyfacts failed", zap.String("cik", t.CIK), zap.Error(err))
			filing.Error = err.Error()
		} else {
			succeeded++
			filing.EntityName = summary.EntityName
			filing.Facts = summary.Facts
			filing.Ratios = a.ratios(ctx, summary.Facts)
		}
		filings = append(filings, filing)
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("sec: %s", filings[0].Error)
	}
	data := map[string]any{
		"companies": filings,
	}
	if len(unresolved) > 0 {
		data["unresolved"] = unresolved
	}
	return mcp.NewResult(data).WithUpdate(ContextKey, time.Now().UTC().Format(time.RFC3339)), nil
}

// Summary returns the latest facts of a registrant, from the cache when present
func (a *Agent) Summary(ctx context.Context, cik string) (*Summary, error) {
	key := "companyfacts:" + cik
	if a.cache != nil {
		var cached Summary
		if ok, err := a.cache.Get(key, &cached); err != nil {
			a.logger.Warn("sec cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return &cached, nil
		}
	}
	var doc CompanyFacts
	link := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", a.baseURL, cik)
	if err := a.getJSON(ctx, link, &doc); err != nil {
		return nil, err
	}
	summary := Summarize(cik, &doc)
	if a.cache != nil {
		if err := a.cache.Set(key, summary); err != nil {
			a.logger.Warn("sec cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return summary, nil
}

func (a *Agent) ratios(ctx context.Context, facts map[string]Fact) map[string]float64 {
	ret := make(map[string]float64)
	for _, ratio := range Ratios {
		params := make(map[string]any, len(ratio.Facts))
		var end string
		for _, name := range ratio.Facts {
			fact, ok := facts[name]
			if !ok || (end != "" && fact.End != end) {
				params = nil
				break
			}
			end = fact.End
			params[name] = fact.Value
		}
		if params == nil {
			continue
		}
		v, err := a.calc.Eval(ctx, ratio.Expression, params)
		if err != nil {
			continue
		}
		ret[ratio.Name] = v
	}
	return ret
}

// tickerLookup loads the SEC ticker file once
func (a *Agent) tickerLookup(ctx context.Context) (map[string]string, error) {
	a.lookupMu.Lock()
	defer a.lookupMu.Unlock()
	if a.lookup != nil {
		return a.lookup, nil
	}
	lookup := make(map[string]string)
	if a.cache != nil {
		if ok, err := a.cache.Get(tickersCacheKey, &lookup); err == nil && ok {
			a.lookup = lookup
			return lookup, nil
		}
	}
	var entries map[string]tickerEntry
	if err := a.getJSON(ctx, a.tickersURL, &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		lookup[strings.ToUpper(e.Ticker)] = PadCIK(e.CIK)
	}
	if a.cache != nil {
		if err := a.cache.Set(tickersCacheKey, lookup); err != nil {
			a.logger.Warn("sec cache write failed", zap.String("key", tickersCacheKey), zap.Error(err))
		}
	}
	a.lookup = lookup
	return lookup, nil
}

func (a *Agent) getJSON(ctx context.Context, link string, v any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("User-Agent", a.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("sec: %s returned status %d", link, httpResp.StatusCode)
	}
	return json.NewDecoder(httpResp.Body).Decode(v)
}

func hasAny(values []string, in []string) bool {
	for _, v := range values {
		if slices.Contains(in, v) {
			return true
		}
	}
	return false
}
