package mcp

import (
	"bytes"
	"encoding/json"
	"time"
)

// Status summarises the outcomes of a query
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialFailure Status = "partial_failure"
	StatusFailed         Status = "failed"
)

// StatusOf derives the Status of a ResultSet
func StatusOf(rs *ResultSet) Status {
	failures := rs.Failures()
	switch {
	case failures == 0:
		return StatusSuccess
	case failures < rs.Len():
		return StatusPartialFailure
	default:
		return StatusFailed
	}
}

// Entry is the caller facing rendering of a single agent outcome
type Entry struct {
	Agent   string `json:"-"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the entry carries an error
func (e Entry) Failed() bool {
	return e.Error != ""
}

// MarshalJSON implements json.Marshaler interface
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Failed() {
		return json.Marshal(map[string]string{"error": e.Error})
	}
	return json.Marshal(map[string]string{"summary": e.Summary})
}

// Payload is the final keyed payload, one entry per selected agent in order
type Payload []Entry

// Get returns the entry for an agent
func (p Payload) Get(agent string) (Entry, bool) {
	for _, e := range p {
		if e.Agent == agent {
			return e, true
		}
	}
	return Entry{}, false
}

// Agents returns agent names in order
func (p Payload) Agents() []string {
	ret := make([]string, 0, len(p))
	for _, e := range p {
		ret = append(ret, e.Agent)
	}
	return ret
}

// MarshalJSON implements json.Marshaler interface, agents keep their order
func (p Payload) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte('{')
	for idx, e := range p {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Agent)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		bs, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(bs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Response is returned to the caller of a query
type Response struct {
	RequestID      string         `json:"request_id"`
	Context        *Context       `json:"context"`
	Payload        Payload        `json:"data"`
	ContextUpdates map[string]any `json:"context_updates,omitempty"`
	Status         Status         `json:"status"`
	Summary        string         `json:"summary,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}
