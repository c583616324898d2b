package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/stockcritique/components/entity"
	"github.com/bububa/stockcritique/mcp"
)

const (
	peRatioQuery   = "What is a P/E ratio?"
	teslaQuery     = "Tell me about Tesla stock"
	sentimentQuery = "What's the sentiment on some unnamed startup?"
)

func allAgents(t *testing.T, extra ...mcp.Agent) *Registry {
	agents := []mcp.Agent{
		succeed(mcp.AgentGeneral, map[string]any{"answer": "general"}),
		succeed(mcp.AgentFinance, map[string]any{"documents": 0}),
		succeed(mcp.AgentYahoo, map[string]any{"last_close": 250.5}),
		succeed(mcp.AgentSEC, map[string]any{"cik": "0001318605"}),
		succeed(mcp.AgentReddit, map[string]any{"posts": 3}),
	}
	byName := make(map[string]mcp.Agent, len(agents))
	for _, a := range agents {
		byName[a.Name()] = a
	}
	for _, a := range extra {
		byName[a.Name()] = a
	}
	list := make([]mcp.Agent, 0, len(byName))
	for _, a := range byName {
		list = append(list, a)
	}
	registry, err := NewRegistry(list...)
	require.NoError(t, err)
	return registry
}

func newScorer() *fixedScorer {
	return &fixedScorer{scores: map[string]float64{
		peRatioQuery:     0.1,
		teslaQuery:       0.8,
		sentimentQuery:   0.55,
		"rivian outlook": 0.9,
	}}
}

func TestHandleQueryScenarios(t *testing.T) {
	router := NewRouter(newScorer(), entity.NewExtractor(), allAgents(t))
	tests := []struct {
		query     string
		agents    []string
		companies []string
		tickers   []string
	}{
		{
			query:  peRatioQuery,
			agents: []string{mcp.AgentGeneral},
		},
		{
			query:     teslaQuery,
			agents:    []string{mcp.AgentReddit, mcp.AgentFinance, mcp.AgentYahoo, mcp.AgentSEC, mcp.AgentGeneral},
			companies: []string{"tesla"},
			tickers:   []string{"TSLA"},
		},
		{
			query:  sentimentQuery,
			agents: []string{mcp.AgentReddit, mcp.AgentGeneral},
		},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := router.HandleQuery(context.Background(), tt.query, mcp.SourceAPI)
			require.NoError(t, err)
			assert.Equal(t, tt.agents, resp.Payload.Agents())
			assert.ElementsMatch(t, tt.companies, resp.Context.Companies())
			assert.ElementsMatch(t, tt.tickers, resp.Context.Tickers())
			assert.Equal(t, mcp.StatusSuccess, resp.Status)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestHandleQueryClassifierUnavailable(t *testing.T) {
	scorer := &fixedScorer{err: mcp.NewFailure(mcp.ClassifierUnavailable, "embedding backend down")}
	router := NewRouter(scorer, entity.NewExtractor(), allAgents(t))
	resp, err := router.HandleQuery(context.Background(), teslaQuery, mcp.SourceCLI)
	require.NoError(t, err)
	assert.Equal(t, []string{mcp.AgentGeneral}, resp.Payload.Agents())
	assert.Equal(t, []string{"TSLA"}, resp.Context.Tickers(), "extraction still runs")
}

func TestHandleQueryPartialFailure(t *testing.T) {
	router := NewRouter(newScorer(), entity.NewExtractor(), allAgents(t, failing(mcp.AgentSEC, errBoom)))
	resp, err := router.HandleQuery(context.Background(), teslaQuery, mcp.SourceAPI)
	require.NoError(t, err)
	require.Len(t, resp.Payload, 5)
	sec, _ := resp.Payload.Get(mcp.AgentSEC)
	assert.Equal(t, "AgentCrashed: boom", sec.Error)
	assert.Equal(t, mcp.StatusPartialFailure, resp.Status)
}

func TestHandleQueryContextUpdates(t *testing.T) {
	update := func(name string, value string) mcp.Agent {
		return mcp.NewAgentFunc(name, func(context.Context, *mcp.Request) (*mcp.Result, error) {
			return mcp.NewResult(nil).WithUpdate("last_agent", value).WithUpdate("by_"+name, true), nil
		})
	}
	router := NewRouter(newScorer(), entity.NewExtractor(), allAgents(t,
		update(mcp.AgentReddit, "reddit"),
		update(mcp.AgentGeneral, "general"),
	))
	resp, err := router.HandleQuery(context.Background(), sentimentQuery, mcp.SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, "general", resp.ContextUpdates["last_agent"], "later agent in policy order wins")
	assert.Equal(t, true, resp.ContextUpdates["by_Reddit"])
	assert.Equal(t, true, resp.ContextUpdates["by_General"])
}

func TestHandleQueryErrors(t *testing.T) {
	router := NewRouter(newScorer(), entity.NewExtractor(), allAgents(t))
	_, err := router.HandleQuery(context.Background(), "   ", mcp.SourceAPI)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	_, err = router.HandleQuery(context.Background(), teslaQuery, mcp.Source("web"))
	assert.Error(t, err)
}

type summarizerFunc func(ctx context.Context, query string, payload mcp.Payload) (string, error)

func (f summarizerFunc) Summarize(ctx context.Context, query string, payload mcp.Payload) (string, error) {
	return f(ctx, query, payload)
}

func TestHandleQuerySummary(t *testing.T) {
	var got mcp.Payload
	router := NewRouter(newScorer(), entity.NewExtractor(), allAgents(t),
		WithSummarizer(summarizerFunc(func(_ context.Context, query string, payload mcp.Payload) (string, error) {
			got = payload
			return "report for " + query, nil
		})))
	resp, err := router.HandleQuery(context.Background(), peRatioQuery, mcp.SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, "report for "+peRatioQuery, resp.Summary)
	assert.Equal(t, resp.Payload, got)

	failingSummary := NewRouter(newScorer(), entity.NewExtractor(), allAgents(t),
		WithSummarizer(summarizerFunc(func(context.Context, string, mcp.Payload) (string, error) {
			return "", errors.New("llm down")
		})))
	resp, err = failingSummary.HandleQuery(context.Background(), peRatioQuery, mcp.SourceAPI)
	require.NoError(t, err)
	assert.Empty(t, resp.Summary)
	assert.Equal(t, mcp.StatusSuccess, resp.Status)
}

func TestRefresh(t *testing.T) {
	scorer := newScorer()
	router := NewRouter(scorer, entity.NewExtractor(), allAgents(t),
		WithCorpus(staticLister{"rivian-2023.pdf", "tesla-2022.pdf"}),
		WithTopics("stock"))

	resp, err := router.HandleQuery(context.Background(), "rivian outlook", mcp.SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, []string{mcp.AgentReddit, mcp.AgentGeneral}, resp.Payload.Agents())

	require.NoError(t, router.Refresh(context.Background()))
	assert.Equal(t, []string{"stock", "rivian 2023", "tesla 2022"}, scorer.topics)

	resp, err = router.HandleQuery(context.Background(), "rivian outlook", mcp.SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, []string{"rivian"}, resp.Context.Companies())
	assert.Empty(t, resp.Context.Tickers())
	assert.Equal(t, []string{mcp.AgentReddit, mcp.AgentFinance, mcp.AgentGeneral}, resp.Payload.Agents())
}

func TestRefreshWaitsForInFlightQueries(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	general := mcp.NewAgentFunc(mcp.AgentGeneral, func(context.Context, *mcp.Request) (*mcp.Result, error) {
		close(started)
		<-release
		return mcp.NewResult(nil), nil
	})
	router := NewRouter(newScorer(), entity.NewExtractor(), allAgents(t, general))

	queryDone := make(chan error, 1)
	go func() {
		_, err := router.HandleQuery(context.Background(), peRatioQuery, mcp.SourceAPI)
		queryDone <- err
	}()
	<-started

	refreshed := make(chan error, 1)
	go func() {
		refreshed <- router.Refresh(context.Background())
	}()
	select {
	case <-refreshed:
		t.Fatal("refresh overlapped an in-flight query")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-queryDone)
	require.NoError(t, <-refreshed)
}

func TestHandleQueryStalledRefiner(t *testing.T) {
	refiner := refinerFunc(func(ctx context.Context, _ string, _ map[string]any) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	router := NewRouter(newScorer(), entity.NewExtractor(), allAgents(t),
		WithAgentTimeout(100*time.Millisecond),
		WithRefiner(refiner))
	resp := handleWithin(t, router, peRatioQuery, 2*time.Second)
	general, _ := resp.Payload.Get(mcp.AgentGeneral)
	assert.Equal(t, "answer: general", general.Summary, "falls back to structural rendering")
	assert.Equal(t, mcp.StatusSuccess, resp.Status)
	require.NoError(t, router.Refresh(context.Background()))
}

func TestHandleQueryStalledClassifier(t *testing.T) {
	for _, ignore := range []bool{false, true} {
		scorer := &stalledScorer{release: make(chan struct{}), ignoreContext: ignore}
		t.Cleanup(func() { close(scorer.release) })
		router := NewRouter(scorer, entity.NewExtractor(), allAgents(t),
			WithAgentTimeout(100*time.Millisecond))
		resp := handleWithin(t, router, teslaQuery, 2*time.Second)
		assert.Equal(t, []string{mcp.AgentGeneral}, resp.Payload.Agents(), "a stalled classifier scores below threshold")
		assert.Equal(t, []string{"TSLA"}, resp.Context.Tickers())
	}
}

func TestHandleQueryStalledSummarizer(t *testing.T) {
	router := NewRouter(newScorer(), entity.NewExtractor(), allAgents(t),
		WithAgentTimeout(100*time.Millisecond),
		WithSummarizer(summarizerFunc(func(ctx context.Context, _ string, _ mcp.Payload) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})))
	resp := handleWithin(t, router, peRatioQuery, 2*time.Second)
	assert.Empty(t, resp.Summary)
	assert.Equal(t, mcp.StatusSuccess, resp.Status)
}
