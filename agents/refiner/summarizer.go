package refiner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bububa/stockcritique/agents"
	"github.com/bububa/stockcritique/agents/orchestration"
	"github.com/bububa/stockcritique/components/systemprompt/cot"
	"github.com/bububa/stockcritique/mcp"
	"github.com/bububa/stockcritique/schema"
)

// ErrNothingToSummarize is returned when no agent entry succeeded
var ErrNothingToSummarize = errors.New("refiner: no successful agent entry to summarize")

// Report is the structured output of a summary call
type Report struct {
	schema.Base
	Report string `json:"report" validate:"required" jsonschema:"title=report,description=the comprehensive analysis across every agent finding"`
}

// Summarizer implements orchestration.Summarizer
type Summarizer struct {
	agent *agents.Agent[schema.String, Report]
}

var _ orchestration.Summarizer = (*Summarizer)(nil)

// NewSummarizer returns a Summarizer, options configure the underlying agent
func NewSummarizer(options ...agents.Option) *Summarizer {
	opts := make([]agents.Option, 0, len(options)+2)
	opts = append(opts,
		agents.WithName("summarizer"),
		agents.WithMaxTokens(2048),
		agents.WithSystemPromptGenerator(cot.New(
			cot.WithBackground(
				"You are a senior financial analyst.",
				"You receive a question and the findings of several research agents.",
			),
			cot.WithSteps(
				"Synthesize the findings into one comprehensive analysis.",
				"Highlight key financial metrics, stock performance data and market sentiment.",
				"Give an overall assessment of the company or the market.",
				"Point out risks and uncertainties.",
			),
			cot.WithOutputInstructs(
				"Base the analysis only on the findings provided.",
				"Say so when the findings disagree.",
			),
		)),
	)
	opts = append(opts, options...)
	return &Summarizer{
		agent: agents.NewAgent[schema.String, Report](opts...),
	}
}

// Summarize implements orchestration.Summarizer
func (s *Summarizer) Summarize(ctx context.Context, query string, payload mcp.Payload) (string, error) {
	if !s.agent.Ready() {
		return "", agents.ErrNoClient
	}
	input, err := SummaryInput(query, payload)
	if err != nil {
		return "", err
	}
	var out Report
	if err := s.agent.Run(ctx, &input, &out, nil); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Report), nil
}

// SummaryInput renders the question and every successful entry as the user message of a summary call
func SummaryInput(query string, payload mcp.Payload) (schema.String, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", query)
	var found bool
	for _, e := range payload {
		if e.Failed() {
			continue
		}
		found = true
		fmt.Fprintf(&b, "\n### %s\n%s\n", e.Agent, e.Summary)
	}
	if !found {
		return "", ErrNothingToSummarize
	}
	return schema.String(b.String()), nil
}
