package orchestration

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bububa/stockcritique/mcp"
)

var (
	// ErrDuplicateAgent is returned when two agents share a name
	ErrDuplicateAgent = errors.New("duplicate agent name")
	// ErrUnnamedAgent is returned for an agent with an empty name
	ErrUnnamedAgent = errors.New("agent has no name")
)

// Registry is the fixed set of named agents, built once at startup
type Registry struct {
	agents map[string]mcp.Agent
	names  []string
}

func NewRegistry(agents ...mcp.Agent) (*Registry, error) {
	ret := &Registry{
		agents: make(map[string]mcp.Agent, len(agents)),
		names:  make([]string, 0, len(agents)),
	}
	for _, agent := range agents {
		if agent == nil {
			continue
		}
		name := agent.Name()
		if name == "" {
			return nil, ErrUnnamedAgent
		}
		if _, found := ret.agents[name]; found {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, name)
		}
		ret.agents[name] = agent
		ret.names = append(ret.names, name)
	}
	return ret, nil
}

func (r *Registry) Get(name string) (mcp.Agent, bool) {
	agent, found := r.agents[name]
	return agent, found
}

// Names returns registered agent names in registration order
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}
