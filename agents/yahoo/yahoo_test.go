package yahoo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/stockcritique/mcp"
)

const chartAAPL = `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"AAPL"},
"timestamp":[1,2,3,4],
"indicators":{"quote":[{"close":[100,null,110,99]}]}}],"error":null}`

const chartMissing = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newChartServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		switch strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/") {
		case "AAPL":
			w.Write([]byte(chartAAPL))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(chartMissing))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRequest(t *testing.T, tickers ...string) *mcp.Request {
	req, err := mcp.NewRequest(mcp.NewContext("price of "+strings.Join(tickers, " "), nil, tickers, nil), mcp.SourceAPI)
	require.NoError(t, err)
	return req
}

func TestCompute(t *testing.T) {
	stats, ok := Compute([]float64{100, 110, 99})
	require.True(t, ok)
	assert.Equal(t, 99.0, stats.MinClose)
	assert.Equal(t, 110.0, stats.MaxClose)
	assert.Equal(t, 99.0, stats.LastClose)
	assert.Equal(t, 3, stats.Days)
	assert.InDelta(t, 103.0, stats.MeanClose, 1e-9)
	assert.InDelta(t, math.Sqrt(37), stats.StdDev, 1e-9)
	assert.InDelta(t, -1.0, stats.PercentChange, 1e-9)
	// daily returns 0.1 and -0.1, sample std = sqrt(0.02)
	assert.InDelta(t, math.Sqrt(0.02)*math.Sqrt(252)*100, stats.VolatilityAnnualized, 1e-9)

	one, ok := Compute([]float64{5})
	require.True(t, ok)
	assert.Zero(t, one.StdDev)
	assert.Zero(t, one.VolatilityAnnualized)

	_, ok = Compute(nil)
	assert.False(t, ok)
}

func TestRun(t *testing.T) {
	srv := newChartServer(t)
	a := New(WithBaseURL(srv.URL))
	assert.Equal(t, mcp.AgentYahoo, a.Name())

	res, err := a.Run(context.Background(), newRequest(t, "AAPL", "ZZZZ"))
	require.NoError(t, err)
	quotes := res.Data["tickers"].([]Quote)
	require.Len(t, quotes, 2)
	assert.Equal(t, "AAPL", quotes[0].Ticker)
	assert.Equal(t, "USD", quotes[0].Currency)
	require.NotNil(t, quotes[0].Statistics)
	assert.Equal(t, 3, quotes[0].Statistics.Days)
	assert.Equal(t, "ZZZZ", quotes[1].Ticker)
	assert.Nil(t, quotes[1].Statistics)
	assert.Contains(t, quotes[1].Error, "No data found")
	assert.Contains(t, res.ContextUpdates, ContextKey)
}

func TestRunAllFailed(t *testing.T) {
	srv := newChartServer(t)
	a := New(WithBaseURL(srv.URL))
	_, err := a.Run(context.Background(), newRequest(t, "ZZZZ"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZZZZ")
}
