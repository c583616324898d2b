package orchestration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/stockcritique/mcp"
)

func TestSelect(t *testing.T) {
	p := NewPolicy(DefaultThreshold)
	tests := []struct {
		name      string
		score     float64
		companies []string
		tickers   []string
		want      []string
	}{
		{name: "below threshold", score: 0.1, want: []string{mcp.AgentGeneral}},
		{name: "below threshold with tickers", score: 0.39, companies: []string{"tesla"}, tickers: []string{"TSLA"}, want: []string{mcp.AgentGeneral}},
		{name: "at threshold with tickers", score: 0.4, tickers: []string{"TSLA"}, want: []string{mcp.AgentReddit, mcp.AgentFinance, mcp.AgentYahoo, mcp.AgentSEC, mcp.AgentGeneral}},
		{name: "companies only", score: 0.7, companies: []string{"rivian"}, want: []string{mcp.AgentReddit, mcp.AgentFinance, mcp.AgentGeneral}},
		{name: "no entities", score: 0.55, want: []string{mcp.AgentReddit, mcp.AgentGeneral}},
		{name: "nan score", score: math.NaN(), tickers: []string{"TSLA"}, want: []string{mcp.AgentGeneral}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Select(tt.score, tt.companies, tt.tickers)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, p.Validate(got))
		})
	}
}

func TestSelectTotality(t *testing.T) {
	p := NewPolicy(DefaultThreshold)
	entitySets := [][]string{nil, {}, {"tesla"}, {"tesla", "apple"}}
	tickerSets := [][]string{nil, {}, {"TSLA"}, {"TSLA", "AAPL"}}
	for i := 0; i <= 100; i++ {
		score := float64(i) / 100
		for _, companies := range entitySets {
			for _, tickers := range tickerSets {
				got := p.Select(score, companies, tickers)
				require.NoError(t, p.Validate(got), "score=%v companies=%v tickers=%v", score, companies, tickers)
				assert.Contains(t, got, mcp.AgentGeneral)
				if score >= DefaultThreshold && len(tickers) > 0 {
					assert.Equal(t, fullFanOut, got, "tickers take precedence over companies")
				}
			}
		}
	}
}

func TestSelectReturnsCopies(t *testing.T) {
	p := NewPolicy(DefaultThreshold)
	got := p.Select(0.9, nil, []string{"TSLA"})
	got[0] = "mutated"
	assert.Equal(t, mcp.AgentReddit, p.Select(0.9, nil, []string{"TSLA"})[0])
}

func TestValidate(t *testing.T) {
	p := NewPolicy(DefaultThreshold)
	err := p.Validate([]string{mcp.AgentReddit})
	assert.ErrorIs(t, err, ErrPolicyViolation)
	assert.ErrorIs(t, p.Validate([]string{mcp.AgentGeneral, mcp.AgentReddit}), ErrPolicyViolation)
}
