// Package yahoo computes price statistics from the Yahoo Finance chart API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bububa/stockcritique/mcp"
)

// ContextKey is the context update recorded after each run
const ContextKey = "last_yahoo_query"

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote is the per ticker entry of the agent data
type Quote struct {
	Ticker     string      `json:"ticker"`
	Currency   string      `json:"currency,omitempty"`
	Statistics *Statistics `json:"statistics,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Agent is the Yahoo agent
type Agent struct {
	Options
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
	if ret.rangeValue == "" {
		ret.rangeValue = DefaultRange
	}
	if ret.interval == "" {
		ret.interval = DefaultInterval
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	return ret
}

func (a *Agent) Name() string {
	return mcp.AgentYahoo
}

// Run fetches every ticker concurrently. A ticker failure is recorded in its
// Quote, the run fails only when no ticker returned data.
func (a *Agent) Run(ctx context.Context, req *mcp.Request) (*mcp.Result, error) {
	tickers := req.Context.Tickers()
	quotes := make([]Quote, len(tickers))
	var g errgroup.Group
	g.SetLimit(4)
	for idx, ticker := range tickers {
		g.Go(func() error {
			quote := Quote{Ticker: ticker}
			currency, closes, err := a.History(ctx, ticker)
			if err != nil {
				a.logger.Warn("yahoo chart failed", zap.String("ticker", ticker), zap.Error(err))
				quote.Error = err.Error()
			} else if stats, ok := Compute(closes); ok {
				quote.Currency = currency
				quote.Statistics = &stats
			} else {
				quote.Error = fmt.Sprintf("no data found for %s in range %s", ticker, a.rangeValue)
			}
			quotes[idx] = quote
			return nil
		})
	}
	g.Wait()
	if len(tickers) > 0 && !anyStatistics(quotes) {
		return nil, fmt.Errorf("yahoo: no price data for %s", strings.Join(tickers, ", "))
	}
	return mcp.NewResult(map[string]any{
		"range":   a.rangeValue,
		"tickers": quotes,
	}).WithUpdate(ContextKey, time.Now().UTC().Format(time.RFC3339)), nil
}

// History returns the currency and non null closes of a ticker
func (a *Agent) History(ctx context.Context, ticker string) (string, []float64, error) {
	values := url.Values{}
	values.Set("range", a.rangeValue)
	values.Set("interval", a.interval)
	link := fmt.Sprintf("%s/v8/finance/chart/%s?%s", a.baseURL, url.PathEscape(ticker), values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", nil, err
	}
	httpReq.Header.Set("User-Agent", a.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", nil, err
	}
	defer httpResp.Body.Close()
	var resp chartResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		if httpResp.StatusCode != http.StatusOK {
			return "", nil, fmt.Errorf("chart api status %d", httpResp.StatusCode)
		}
		return "", nil, err
	}
	if e := resp.Chart.Error; e != nil {
		return "", nil, fmt.Errorf("chart api: %s: %s", e.Code, e.Description)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("chart api status %d", httpResp.StatusCode)
	}
	if len(resp.Chart.Result) == 0 {
		return "", nil, nil
	}
	result := resp.Chart.Result[0]
	var closes []float64
	for _, quote := range result.Indicators.Quote {
		for _, v := range quote.Close {
			if v != nil {
				closes = append(closes, *v)
			}
		}
	}
	return result.Meta.Currency, closes, nil
}

func anyStatistics(quotes []Quote) bool {
	for _, q := range quotes {
		if q.Statistics != nil {
			return true
		}
	}
	return false
}
