package orchestration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/stockcritique/mcp"
)

type refinerFunc func(ctx context.Context, agent string, data map[string]any) (string, error)

func (f refinerFunc) Refine(ctx context.Context, agent string, data map[string]any) (string, error) {
	return f(ctx, agent, data)
}

func resultSet(t *testing.T) *mcp.ResultSet {
	rs := mcp.NewResultSet(3)
	require.NoError(t, rs.Set(mcp.AgentReddit, mcp.Succeeded(mcp.NewResult(map[string]any{"posts": 3, "avg_sentiment": 0.25}))))
	require.NoError(t, rs.Set(mcp.AgentSEC, mcp.Failed(mcp.NewFailure(mcp.Timeout, "agent did not respond within 1s"))))
	require.NoError(t, rs.Set(mcp.AgentGeneral, mcp.Succeeded(mcp.NewResult(map[string]any{"answer": "42"}))))
	return rs
}

func TestAssemble(t *testing.T) {
	refiner := refinerFunc(func(_ context.Context, agent string, data map[string]any) (string, error) {
		if agent == mcp.AgentReddit {
			return "", mcp.NewFailure(mcp.RefinementFailed, "llm down")
		}
		return "refined " + data["answer"].(string), nil
	})
	payload := NewAssembler(refiner, 0, nil).Assemble(context.Background(), resultSet(t))
	require.Len(t, payload, 3)
	assert.Equal(t, []string{mcp.AgentReddit, mcp.AgentSEC, mcp.AgentGeneral}, payload.Agents())

	reddit, _ := payload.Get(mcp.AgentReddit)
	assert.False(t, reddit.Failed())
	assert.Equal(t, "avg_sentiment: 0.25\nposts: 3", reddit.Summary, "falls back to structural rendering")

	sec, _ := payload.Get(mcp.AgentSEC)
	assert.True(t, sec.Failed())
	assert.Equal(t, "Timeout: agent did not respond within 1s", sec.Error)

	general, _ := payload.Get(mcp.AgentGeneral)
	assert.Equal(t, "refined 42", general.Summary)

	bs, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Reddit": {"summary": "avg_sentiment: 0.25\nposts: 3"},
		"SEC": {"error": "Timeout: agent did not respond within 1s"},
		"General": {"summary": "refined 42"}
	}`, string(bs))
}

func TestAssembleWithoutRefiner(t *testing.T) {
	payload := NewAssembler(nil, 0, nil).Assemble(context.Background(), resultSet(t))
	general, _ := payload.Get(mcp.AgentGeneral)
	assert.Equal(t, `answer: "42"`, general.Summary)
}

func TestAssembleEmptyRefinement(t *testing.T) {
	refiner := refinerFunc(func(context.Context, string, map[string]any) (string, error) {
		return "  ", nil
	})
	payload := NewAssembler(refiner, 0, nil).Assemble(context.Background(), resultSet(t))
	general, _ := payload.Get(mcp.AgentGeneral)
	assert.Equal(t, `answer: "42"`, general.Summary)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "{}", Render(nil))
	assert.Equal(t, "a: 1\nb:\n    - x\n    - w", Render(map[string]any{"b": []string{"x", "w"}, "a": 1}))
}

func TestAssembleRefinementTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	refiner := refinerFunc(func(_ context.Context, agent string, _ map[string]any) (string, error) {
		if agent == mcp.AgentGeneral {
			<-release
		}
		return "refined", nil
	})
	start := time.Now()
	payload := NewAssembler(refiner, 50*time.Millisecond, nil).Assemble(context.Background(), resultSet(t))
	assert.Less(t, time.Since(start), time.Second)
	general, _ := payload.Get(mcp.AgentGeneral)
	assert.Equal(t, `answer: "42"`, general.Summary)
	reddit, _ := payload.Get(mcp.AgentReddit)
	assert.Equal(t, "refined", reddit.Summary)
}
