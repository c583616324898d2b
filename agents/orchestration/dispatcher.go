package orchestration

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/bububa/stockcritique/mcp"
)

// DefaultAgentTimeout bounds how long the dispatcher waits for one agent
const DefaultAgentTimeout = 60 * time.Second

// Dispatcher runs agents concurrently and records exactly one outcome per agent.
// An agent that misses its deadline is recorded as Timeout and left running,
// its late result is discarded.
type Dispatcher struct {
	registry  *Registry
	logger    *zap.Logger
	inflight  *atomic.Int64
	abandoned *atomic.Int64
}

type DispatcherOption func(*Dispatcher)

func DispatcherWithLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	ret := &Dispatcher{
		registry:  registry,
		logger:    zap.NewNop(),
		inflight:  atomic.NewInt64(0),
		abandoned: atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// InFlight returns the number of agent calls still running, abandoned ones included
func (d *Dispatcher) InFlight() int64 {
	return d.inflight.Load()
}

// Abandoned returns the number of agent calls the dispatcher stopped waiting for
func (d *Dispatcher) Abandoned() int64 {
	return d.abandoned.Load()
}

type pending struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	ch     chan mcp.Outcome
}

// Dispatch runs the named agents against req and waits until every one of them
// has an outcome. Names keep their order, a repeated name runs once.
// A timeout <= 0 leaves agents bounded by ctx only.
func (d *Dispatcher) Dispatch(ctx context.Context, req *mcp.Request, names []string, timeout time.Duration) *mcp.ResultSet {
	names = unique(names)
	rs := mcp.NewResultSet(len(names))
	calls := make([]*pending, 0, len(names))
	for _, name := range names {
		agent, found := d.registry.Get(name)
		if !found {
			calls = append(calls, &pending{name: name})
			continue
		}
		call := &pending{name: name, ch: make(chan mcp.Outcome, 1)}
		if timeout > 0 {
			call.ctx, call.cancel = context.WithTimeout(ctx, timeout)
		} else {
			call.ctx, call.cancel = context.WithCancel(ctx)
		}
		d.inflight.Inc()
		go d.run(call.ctx, agent, req, call.ch)
		calls = append(calls, call)
	}
	for _, call := range calls {
		outcome := d.wait(ctx, call, timeout)
		if !outcome.Ok() {
			d.logger.Warn("agent failed",
				zap.String("request_id", req.ID),
				zap.String("agent", call.name),
				zap.String("kind", string(outcome.Failure.Kind)),
				zap.String("message", outcome.Failure.Message))
		}
		// names are unique so Set cannot fail
		_ = rs.Set(call.name, outcome)
	}
	return rs
}

func (d *Dispatcher) wait(parent context.Context, call *pending, timeout time.Duration) mcp.Outcome {
	if call.ch == nil {
		return mcp.Failed(mcp.NewFailure(mcp.AgentCrashed, "agent not registered"))
	}
	defer call.cancel()
	select {
	case o := <-call.ch:
		return o
	case <-call.ctx.Done():
	}
	// prefer a result that raced the deadline
	select {
	case o := <-call.ch:
		return o
	default:
	}
	d.abandoned.Inc()
	d.logger.Warn("agent abandoned", zap.String("agent", call.name), zap.Int64("abandoned_total", d.abandoned.Load()))
	if parent.Err() != nil {
		return mcp.Failed(mcp.NewFailure(mcp.Timeout, "request cancelled before agent finished: %v", parent.Err()))
	}
	return mcp.Failed(mcp.NewFailure(mcp.Timeout, "agent did not respond within %s", timeout))
}

func (d *Dispatcher) run(ctx context.Context, agent mcp.Agent, req *mcp.Request, ch chan<- mcp.Outcome) {
	defer d.inflight.Dec()
	defer func() {
		if r := recover(); r != nil {
			ch <- mcp.Failed(mcp.NewFailure(mcp.AgentCrashed, "panic: %v", r))
		}
	}()
	result, err := agent.Run(ctx, req)
	ch <- outcomeOf(result, err)
}

// outcomeOf shapes an agent's return values into an Outcome.
// Errors that are not a *mcp.Failure become AgentCrashed, deadline errors become Timeout.
func outcomeOf(result *mcp.Result, err error) mcp.Outcome {
	if err != nil {
		var failure *mcp.Failure
		switch {
		case errors.As(err, &failure):
			return mcp.Failed(failure)
		case errors.Is(err, context.DeadlineExceeded):
			return mcp.Failed(mcp.NewFailure(mcp.Timeout, "%s", err.Error()))
		default:
			return mcp.Failed(mcp.NewFailure(mcp.AgentCrashed, "%s", err.Error()))
		}
	}
	if result == nil {
		return mcp.Failed(mcp.NewFailure(mcp.AgentCrashed, "agent returned no response"))
	}
	return mcp.Succeeded(result)
}

func unique(names []string) []string {
	ret := make([]string, 0, len(names))
	for _, name := range names {
		if !slices.Contains(ret, name) {
			ret = append(ret, name)
		}
	}
	return ret
}
