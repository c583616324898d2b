package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bububa/stockcritique/mcp"
)

func succeed(name string, data map[string]any) mcp.Agent {
	return mcp.NewAgentFunc(name, func(context.Context, *mcp.Request) (*mcp.Result, error) {
		return mcp.NewResult(data), nil
	})
}

func failing(name string, err error) mcp.Agent {
	return mcp.NewAgentFunc(name, func(context.Context, *mcp.Request) (*mcp.Result, error) {
		return nil, err
	})
}

// blocking ignores its context and returns only when release is closed
func blocking(name string, release <-chan struct{}) mcp.Agent {
	return mcp.NewAgentFunc(name, func(context.Context, *mcp.Request) (*mcp.Result, error) {
		<-release
		return mcp.NewResult(map[string]any{"late": true}), nil
	})
}

func panicking(name string) mcp.Agent {
	return mcp.NewAgentFunc(name, func(context.Context, *mcp.Request) (*mcp.Result, error) {
		panic("nil map write")
	})
}

var errBoom = errors.New("boom")

func newRequest(query string) *mcp.Request {
	req, err := mcp.NewRequest(mcp.NewContext(query, nil, nil, nil), mcp.SourceCLI)
	if err != nil {
		panic(err)
	}
	return req
}

// fixedScorer returns a configured score per query
type fixedScorer struct {
	scores map[string]float64
	err    error
	topics []string
}

func (s *fixedScorer) Classify(_ context.Context, query string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.scores[query], nil
}

func (s *fixedScorer) SetTopics(topics []string) {
	s.topics = topics
}

type staticLister []string

func (l staticLister) List(context.Context) ([]string, error) {
	return l, nil
}

func waitUntil(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// stalledScorer never answers on its own, it returns when its context ends
// or, with ignoreContext set, only when release is closed
type stalledScorer struct {
	release       chan struct{}
	ignoreContext bool
}

func (s *stalledScorer) Classify(ctx context.Context, _ string) (float64, error) {
	if s.ignoreContext {
		<-s.release
		return 1, nil
	}
	<-ctx.Done()
	return 0, ctx.Err()
}

// handleWithin runs HandleQuery and fails the test when it has not returned after limit
func handleWithin(t *testing.T, router *Router, query string, limit time.Duration) *mcp.Response {
	t.Helper()
	type result struct {
		resp *mcp.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := router.HandleQuery(context.Background(), query, mcp.SourceAPI)
		done <- result{resp, err}
	}()
	select {
	case r := <-done:
		require.NoError(t, r.err)
		return r.resp
	case <-time.After(limit):
		t.Fatalf("HandleQuery still blocked after %s", limit)
	}
	return nil
}
