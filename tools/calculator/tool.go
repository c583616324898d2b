package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Knetic/govaluate"

	"github.com/bububa/stockcritique/schema"
	"github.com/bububa/stockcritique/tools"
)

// ErrNotANumber is returned by Eval when an expression does not yield a finite number
var ErrNotANumber = errors.New("calculator: result is not a finite number")

// Input Tool for performing calculations. Supports basic arithmetic operations
// like addition, subtraction, multiplication, and division, as well as more
// complex operations like exponentiation and trigonometric functions.
// Use this tool to evaluate mathematical expressions.
type Input struct {
	schema.Base
	// Expression Mathematical expression to evaluate. For example, '2 + 2'.
	Expression string `json:"expression" jsonschema:"title=expression,description=Mathematical expression to evaluate. For example, '2 + 2'."`
	// Params represents expressions's parameters
	Params map[string]any `json:"params,omitempty" jsonschema:"title=params,description=Parameters for the expression."`
}

func NewInput(exp string, params map[string]any) *Input {
	return &Input{
		Expression: exp,
		Params:     params,
	}
}

// Output Schema for the output of the CalculatorTool
type Output struct {
	schema.Base
	// Result Result of the calculation
	Result any `json:"result,omitempty" jsonschema:"title=result,description=Result of the calculation."`
}

func NewOutput(result any) *Output {
	return &Output{
		Result: result,
	}
}

type Tool struct {
	tools.Config
}

var _ tools.Tool[Input, Output] = (*Tool)(nil)

func New(opts ...tools.Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("CalculatorTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Evaluates mathematical expressions")
	}
	return ret
}

// Run executes the CalculatorTool with the given parameters.
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	done := t.Trace(ctx, t, input)
	ret, err := t.run(input)
	done(ret, err)
	return ret, err
}

func (t *Tool) run(input *Input) (*Output, error) {
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(input.Expression, Functions)
	if err != nil {
		return nil, err
	}
	params := make(map[string]any, len(input.Params)+len(constParams))
	for k, v := range constParams {
		params[k] = v
	}
	for k, v := range input.Params {
		params[k] = v
	}
	result, err := exp.Evaluate(params)
	if err != nil {
		return nil, err
	}
	return NewOutput(result), nil
}

// Eval evaluates expression and returns a finite float64
func (t *Tool) Eval(ctx context.Context, expression string, params map[string]any) (float64, error) {
	out, err := t.Run(ctx, NewInput(expression, params))
	if err != nil {
		return 0, err
	}
	v, ok := out.Result.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrNotANumber, out.Result)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotANumber
	}
	return v, nil
}
