// Package refiner turns raw agent data into readable text with a language model
package refiner

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bububa/stockcritique/agents"
	"github.com/bububa/stockcritique/agents/orchestration"
	"github.com/bububa/stockcritique/components/systemprompt"
	"github.com/bububa/stockcritique/components/systemprompt/cot"
	"github.com/bububa/stockcritique/mcp"
	"github.com/bububa/stockcritique/schema"
)

// Tips describe what each agent's data holds
var Tips = map[string]string{
	mcp.AgentReddit:  "social media posts and comments with sentiment analysis",
	mcp.AgentFinance: "company information retrieved from internal financial documents",
	mcp.AgentYahoo:   "statistics of daily stock prices over the last 30 days",
	mcp.AgentSEC:     "public company financial information from SEC filings",
	mcp.AgentGeneral: "a general answer to the question, possibly backed by web search",
}

// Refinement is the structured output of a refinement call
type Refinement struct {
	schema.Base
	Summary string `json:"summary" validate:"required" jsonschema:"title=summary,description=the refined and summarized agent data in plain text"`
}

// Refiner implements orchestration.Refiner
type Refiner struct {
	agent *agents.Agent[schema.String, Refinement]
	tips  map[string]string
}

var _ orchestration.Refiner = (*Refiner)(nil)

// New returns a Refiner, options configure the underlying agent
func New(options ...agents.Option) *Refiner {
	opts := make([]agents.Option, 0, len(options)+2)
	opts = append(opts,
		agents.WithName("refiner"),
		agents.WithSystemPromptGenerator(cot.New(
			cot.WithBackground(
				"You are an assistant that refines data collected by a financial research agent.",
				"The data is given as JSON.",
			),
			cot.WithSteps(
				"Improve the format so the data is easy to read.",
				"Summarize the content and remove anything unrelated to the question.",
				"Keep every key figure, date and name.",
			),
			cot.WithOutputInstructs(
				"Mention the agent name in the summary.",
				"Answer in plain text without markdown tables.",
			),
		)),
	)
	opts = append(opts, options...)
	return &Refiner{
		agent: agents.NewAgent[schema.String, Refinement](opts...),
		tips:  Tips,
	}
}

// Ready reports whether a language model client is configured
func (r *Refiner) Ready() bool {
	return r.agent.Ready()
}

// Refine implements orchestration.Refiner, every error is a RefinementFailed failure
func (r *Refiner) Refine(ctx context.Context, agent string, data map[string]any) (string, error) {
	if !r.agent.Ready() {
		return "", mcp.NewFailure(mcp.RefinementFailed, "no llm client configured")
	}
	input, err := Input(data)
	if err != nil {
		return "", mcp.NewFailure(mcp.RefinementFailed, "encode %s data: %v", agent, err)
	}
	var out Refinement
	if err := r.agent.Run(ctx, &input, &out, nil, r.contextOf(agent)...); err != nil {
		return "", mcp.NewFailure(mcp.RefinementFailed, "%v", err)
	}
	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		return "", mcp.NewFailure(mcp.RefinementFailed, "empty refinement for %s", agent)
	}
	return summary, nil
}

func (r *Refiner) contextOf(agent string) []systemprompt.ContextProvider {
	ret := []systemprompt.ContextProvider{systemprompt.NewSection("Agent", agent)}
	if tip, ok := r.tips[agent]; ok {
		ret = append(ret, systemprompt.NewSection("Agent data", tip))
	}
	return ret
}

// Input renders agent data as the user message of a refinement call
func Input(data map[string]any) (schema.String, error) {
	if len(data) == 0 {
		return schema.String("{}"), nil
	}
	bs, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return schema.String(bs), nil
}
