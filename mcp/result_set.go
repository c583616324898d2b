package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateAgent is returned when an agent outcome is recorded twice
var ErrDuplicateAgent = errors.New("mcp: agent outcome already recorded")

// ResultSet is an ordered mapping from agent name to Outcome.
// Keys keep the order in which they were first recorded.
type ResultSet struct {
	names    []string
	outcomes map[string]Outcome
}

// NewResultSet returns an empty ResultSet
func NewResultSet(capacity int) *ResultSet {
	return &ResultSet{
		names:    make([]string, 0, capacity),
		outcomes: make(map[string]Outcome, capacity),
	}
}

// Set records the outcome of an agent
func (s *ResultSet) Set(name string, o Outcome) error {
	if _, found := s.outcomes[name]; found {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, name)
	}
	s.names = append(s.names, name)
	s.outcomes[name] = o
	return nil
}

// Get returns the outcome of an agent
func (s *ResultSet) Get(name string) (Outcome, bool) {
	o, found := s.outcomes[name]
	return o, found
}

// Names returns agent names in order
func (s *ResultSet) Names() []string {
	return slices.Clone(s.names)
}

// Len returns number of recorded outcomes
func (s *ResultSet) Len() int {
	return len(s.names)
}

// Each calls fn for every outcome in order
func (s *ResultSet) Each(fn func(name string, o Outcome)) {
	for _, name := range s.names {
		fn(name, s.outcomes[name])
	}
}

// Failures returns the number of failed outcomes
func (s *ResultSet) Failures() int {
	var n int
	for _, o := range s.outcomes {
		if !o.Ok() {
			n++
		}
	}
	return n
}

// ContextUpdates merges every successful agent's proposed updates in order.
// When two agents propose the same key the later one wins.
func (s *ResultSet) ContextUpdates() map[string]any {
	ret := make(map[string]any)
	s.Each(func(_ string, o Outcome) {
		if !o.Ok() {
			return
		}
		for k, v := range o.Result.ContextUpdates {
			ret[k] = v
		}
	})
	return ret
}

// MarshalJSON implements json.Marshaler interface
func (s *ResultSet) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte('{')
	for idx, name := range s.names {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		bs, err := json.Marshal(s.outcomes[name])
		if err != nil {
			return nil, err
		}
		buf.Write(bs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
