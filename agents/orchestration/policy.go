package orchestration

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/bububa/stockcritique/mcp"
)

// DefaultThreshold is the relevance score from which a query is routed to the finance agents
const DefaultThreshold = 0.4

// ErrPolicyViolation is returned when a selection is not one of the policy's agent sets
var ErrPolicyViolation = errors.New("selection policy violation")

var (
	generalOnly = []string{mcp.AgentGeneral}
	fullFanOut  = []string{mcp.AgentReddit, mcp.AgentFinance, mcp.AgentYahoo, mcp.AgentSEC, mcp.AgentGeneral}
	companyOnly = []string{mcp.AgentReddit, mcp.AgentFinance, mcp.AgentGeneral}
	sentiment   = []string{mcp.AgentReddit, mcp.AgentGeneral}

	selections = [][]string{generalOnly, fullFanOut, companyOnly, sentiment}
)

// Policy maps a relevance score and extracted entities to the agents to run.
// It is the only place agent selection is decided.
type Policy struct {
	threshold float64
}

// NewPolicy returns a Policy routing scores at or above threshold to the finance agents
func NewPolicy(threshold float64) Policy {
	return Policy{threshold: threshold}
}

func (p Policy) Threshold() float64 {
	return p.threshold
}

// Select returns the ordered agent names for a query, first matching rule wins:
//  1. score below threshold: General
//  2. tickers: Reddit, Finance, Yahoo, SEC, General
//  3. companies: Reddit, Finance, General
//  4. otherwise: Reddit, General
//
// A NaN score is below threshold.
func (p Policy) Select(score float64, companies []string, tickers []string) []string {
	switch {
	case math.IsNaN(score) || score < p.threshold:
		return slices.Clone(generalOnly)
	case len(tickers) > 0:
		return slices.Clone(fullFanOut)
	case len(companies) > 0:
		return slices.Clone(companyOnly)
	default:
		return slices.Clone(sentiment)
	}
}

// Validate checks that selected is one of the policy's agent sets
func (p Policy) Validate(selected []string) error {
	for _, s := range selections {
		if slices.Equal(s, selected) {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrPolicyViolation, selected)
}
