package server

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bububa/stockcritique/mcp"
)

// ToolName is the name of the query tool
const ToolName = "query_stocks"

type QueryInput struct {
	Query string `json:"query" jsonschema:"a question about stocks, companies or anything else"`
}

type AgentOutput struct {
	Summary string `json:"summary,omitempty" jsonschema:"the refined answer of the agent"`
	Error   string `json:"error,omitempty" jsonschema:"the failure kind and message when the agent failed"`
}

type QueryOutput struct {
	RequestID      string                 `json:"request_id"`
	Status         string                 `json:"status" jsonschema:"success, partial_failure or failed"`
	Companies      []string               `json:"companies"`
	Tickers        []string               `json:"tickers"`
	Agents         []string               `json:"agents" jsonschema:"the selected agents in priority order"`
	Data           map[string]AgentOutput `json:"data"`
	Summary        string                 `json:"summary,omitempty" jsonschema:"the report across every agent when enabled"`
	ContextUpdates map[string]any         `json:"context_updates,omitempty"`
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.server, &sdkmcp.Tool{
		Name:        ToolName,
		Description: "Answer a question with market data, SEC filings, indexed financial documents, Reddit sentiment and a general answer",
	}, s.handleQuery)
}

func (s *Server) handleQuery(ctx context.Context, _ *sdkmcp.CallToolRequest, input QueryInput) (*sdkmcp.CallToolResult, QueryOutput, error) {
	resp, err := s.handler.HandleQuery(ctx, input.Query, mcp.SourceAPI)
	if err != nil {
		return nil, QueryOutput{}, err
	}
	return nil, NewQueryOutput(resp), nil
}

// NewQueryOutput flattens a Response into the tool output
func NewQueryOutput(resp *mcp.Response) QueryOutput {
	ret := QueryOutput{
		RequestID:      resp.RequestID,
		Status:         string(resp.Status),
		Companies:      []string{},
		Tickers:        []string{},
		Agents:         resp.Payload.Agents(),
		Data:           make(map[string]AgentOutput, len(resp.Payload)),
		Summary:        resp.Summary,
		ContextUpdates: resp.ContextUpdates,
	}
	if resp.Context != nil {
		ret.Companies = append(ret.Companies, resp.Context.Companies()...)
		ret.Tickers = append(ret.Tickers, resp.Context.Tickers()...)
	}
	for _, e := range resp.Payload {
		ret.Data[e.Agent] = AgentOutput{
			Summary: e.Summary,
			Error:   e.Error,
		}
	}
	return ret
}
