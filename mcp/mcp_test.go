package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextIsImmutable(t *testing.T) {
	companies := []string{"tesla", "apple", "tesla"}
	c := NewContext("Tell me about Tesla and Apple", companies, []string{"TSLA", "AAPL"}, []string{"Tesla", "Apple"})
	companies[0] = "mutated"

	assert.Equal(t, []string{"apple", "tesla"}, c.Companies())
	assert.Equal(t, []string{"AAPL", "TSLA"}, c.Tickers())

	got := c.Companies()
	got[0] = "changed"
	assert.Equal(t, []string{"apple", "tesla"}, c.Companies())
	assert.True(t, c.HasTickers())
	assert.Equal(t, DefaultVersion, c.Version())
}

func TestContextMarshalJSON(t *testing.T) {
	c := NewContext("What is a P/E ratio?", nil, nil, nil)
	bs, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_query":"What is a P/E ratio?","companies":[],"tickers":[],"extracted_terms":[],"version":"1.0"}`, string(bs))
}

func TestNewRequest(t *testing.T) {
	c := NewContext("q", nil, nil, nil)
	req, err := NewRequest(c, SourceCLI)
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.False(t, req.Timestamp.IsZero())

	other, err := NewRequest(c, SourceAPI)
	require.NoError(t, err)
	assert.NotEqual(t, req.ID, other.ID)

	_, err = NewRequest(c, Source("web"))
	assert.Error(t, err)
	_, err = NewRequest(nil, SourceAPI)
	assert.Error(t, err)
}

func TestFailureIs(t *testing.T) {
	f := NewFailure(Timeout, "agent %s exceeded %s", "SEC", "30s")
	assert.ErrorIs(t, f, ErrTimeout)
	assert.NotErrorIs(t, f, ErrAgentCrashed)

	wrapped := fmt.Errorf("%w: %w", ErrClassifierUnavailable, errors.New("connection refused"))
	assert.ErrorIs(t, wrapped, ErrClassifierUnavailable)

	var failure *Failure
	require.ErrorAs(t, wrapped, &failure)
	assert.Equal(t, ClassifierUnavailable, failure.Kind)
	assert.Equal(t, "Timeout: agent SEC exceeded 30s", f.Error())
}

func TestResultSet(t *testing.T) {
	rs := NewResultSet(3)
	require.NoError(t, rs.Set(AgentReddit, Succeeded(NewResult(map[string]any{"posts": 1}).WithUpdate("last_access", "a").WithUpdate("shared", "reddit"))))
	require.NoError(t, rs.Set(AgentSEC, Failed(NewFailure(AgentCrashed, "boom"))))
	require.NoError(t, rs.Set(AgentGeneral, Succeeded(NewResult(nil).WithUpdate("shared", "general"))))
	assert.ErrorIs(t, rs.Set(AgentSEC, Succeeded(nil)), ErrDuplicateAgent)

	assert.Equal(t, []string{AgentReddit, AgentSEC, AgentGeneral}, rs.Names())
	assert.Equal(t, 1, rs.Failures())
	assert.Equal(t, StatusPartialFailure, StatusOf(rs))
	assert.Equal(t, map[string]any{"last_access": "a", "shared": "general"}, rs.ContextUpdates())

	bs, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.Equal(t, `{"Reddit":`, string(bs[:10]))
}

func TestStatusOf(t *testing.T) {
	ok := NewResultSet(1)
	require.NoError(t, ok.Set(AgentGeneral, Succeeded(nil)))
	assert.Equal(t, StatusSuccess, StatusOf(ok))

	failed := NewResultSet(1)
	require.NoError(t, failed.Set(AgentGeneral, Failed(nil)))
	assert.Equal(t, StatusFailed, StatusOf(failed))
}

func TestPayloadMarshalJSONKeepsOrder(t *testing.T) {
	p := Payload{
		{Agent: AgentReddit, Summary: "bullish"},
		{Agent: AgentFinance, Error: "Timeout: agent timed out"},
		{Agent: AgentGeneral, Summary: "answer"},
	}
	bs, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"Reddit":{"summary":"bullish"},"Finance":{"error":"Timeout: agent timed out"},"General":{"summary":"answer"}}`, string(bs))

	e, found := p.Get(AgentFinance)
	require.True(t, found)
	assert.True(t, e.Failed())
	assert.Equal(t, []string{AgentReddit, AgentFinance, AgentGeneral}, p.Agents())
}
