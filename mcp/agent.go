package mcp

import "context"

// Canonical agent names
const (
	AgentGeneral = "General"
	AgentFinance = "Finance"
	AgentYahoo   = "Yahoo"
	AgentSEC     = "SEC"
	AgentReddit  = "Reddit"
)

// Agent is the single capability every data-gathering agent implements.
// An error that is not a *Failure is recorded as AgentCrashed by the caller.
type Agent interface {
	Name() string
	Run(context.Context, *Request) (*Result, error)
}

// AgentFunc adapts a function to the Agent interface
type AgentFunc struct {
	name string
	fn   func(context.Context, *Request) (*Result, error)
}

var _ Agent = (*AgentFunc)(nil)

// NewAgentFunc returns an Agent which calls fn
func NewAgentFunc(name string, fn func(context.Context, *Request) (*Result, error)) *AgentFunc {
	return &AgentFunc{name: name, fn: fn}
}

func (a *AgentFunc) Name() string {
	return a.name
}

func (a *AgentFunc) Run(ctx context.Context, req *Request) (*Result, error) {
	return a.fn(ctx, req)
}
