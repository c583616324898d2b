package mcp

import (
	"fmt"
	"time"

	"github.com/rs/xid"
)

// Source identifies the surface a query came from
type Source string

const (
	SourceAPI Source = "api"
	SourceCLI Source = "cli"
)

// Valid reports whether s is a known Source
func (s Source) Valid() bool {
	return s == SourceAPI || s == SourceCLI
}

// Request is constructed once per incoming query and shared read-only across agents
type Request struct {
	ID        string    `json:"request_id"`
	Context   *Context  `json:"context"`
	Timestamp time.Time `json:"timestamp"`
	Source    Source    `json:"source"`
}

// NewRequest returns a new Request with a fresh id
func NewRequest(ctx *Context, source Source) (*Request, error) {
	if ctx == nil {
		return nil, fmt.Errorf("mcp: nil context")
	}
	if !source.Valid() {
		return nil, fmt.Errorf("mcp: invalid source %q", source)
	}
	return &Request{
		ID:        xid.New().String(),
		Context:   ctx,
		Timestamp: time.Now(),
		Source:    source,
	}, nil
}
