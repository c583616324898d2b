package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/bububa/stockcritique/mcp"
)

// Refiner turns an agent's raw data into caller facing text
type Refiner interface {
	Refine(ctx context.Context, agent string, data map[string]any) (string, error)
}

// Summarizer writes one report across every agent's entry
type Summarizer interface {
	Summarize(ctx context.Context, query string, payload mcp.Payload) (string, error)
}

// Assembler renders a ResultSet into the keyed payload, one entry per agent
type Assembler struct {
	refiner Refiner
	timeout time.Duration
	logger  *zap.Logger
}

// NewAssembler bounds every refinement by timeout, zero leaves it to the caller's context
func NewAssembler(refiner Refiner, timeout time.Duration, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		refiner: refiner,
		timeout: timeout,
		logger:  logger,
	}
}

// Assemble refines every successful outcome concurrently. A refinement that
// fails or runs out of time falls back to the structural rendering of the data.
func (a *Assembler) Assemble(ctx context.Context, rs *mcp.ResultSet) mcp.Payload {
	payload := make(mcp.Payload, rs.Len())
	var g errgroup.Group
	idx := 0
	rs.Each(func(name string, o mcp.Outcome) {
		i := idx
		idx++
		payload[i].Agent = name
		if !o.Ok() {
			payload[i].Error = fmt.Sprintf("%s: %s", o.Failure.Kind, o.Failure.Message)
			return
		}
		g.Go(func() error {
			payload[i].Summary = a.summary(ctx, name, o.Result.Data)
			return nil
		})
	})
	_ = g.Wait()
	return payload
}

func (a *Assembler) summary(ctx context.Context, agent string, data map[string]any) string {
	if a.refiner != nil {
		text, err := bounded(ctx, a.timeout, func(ctx context.Context) (string, error) {
			return a.refiner.Refine(ctx, agent, data)
		})
		if errors.Is(err, context.DeadlineExceeded) {
			err = mcp.NewFailure(mcp.RefinementFailed, "refinement did not finish within %s", a.timeout)
		}
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		if err == nil {
			err = mcp.NewFailure(mcp.RefinementFailed, "empty refinement")
		}
		a.logger.Warn("refinement failed, rendering raw data", zap.String("agent", agent), zap.Error(err))
	}
	return Render(data)
}

// Render is the structural rendering of agent data, YAML with sorted keys
func Render(data map[string]any) string {
	if len(data) == 0 {
		return "{}"
	}
	bs, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return strings.TrimSpace(string(bs))
}
