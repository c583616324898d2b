package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

// ErrArgument is returned when a function receives the wrong arguments
var ErrArgument = errors.New("calculator: invalid function argument")

// Functions are available to every expression
var Functions = map[string]govaluate.ExpressionFunction{
	"abs":   unary(math.Abs),
	"sqrt":  unary(math.Sqrt),
	"ln":    unary(math.Log),
	"log10": unary(math.Log10),
	"exp":   unary(math.Exp),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"pow":   binary(math.Pow),
	"min":   binary(math.Min),
	"max":   binary(math.Max),
	"round": round,
	"pct":   binary(func(part, whole float64) float64 { return part / whole * 100 }),
}

func floats(args []any, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: want %d arguments, got %d", ErrArgument, n, len(args))
	}
	ret := make([]float64, n)
	for idx, arg := range args {
		switch v := arg.(type) {
		case float64:
			ret[idx] = v
		case float32:
			ret[idx] = float64(v)
		case int:
			ret[idx] = float64(v)
		case int64:
			ret[idx] = float64(v)
		default:
			return nil, fmt.Errorf("%w: %v is not a number", ErrArgument, arg)
		}
	}
	return ret, nil
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		v, err := floats(args, 1)
		if err != nil {
			return nil, err
		}
		return fn(v[0]), nil
	}
}

func binary(fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		v, err := floats(args, 2)
		if err != nil {
			return nil, err
		}
		return fn(v[0], v[1]), nil
	}
}

// round(x) rounds to an integer, round(x, n) to n decimal places
func round(args ...any) (any, error) {
	if len(args) == 1 {
		v, err := floats(args, 1)
		if err != nil {
			return nil, err
		}
		return math.Round(v[0]), nil
	}
	v, err := floats(args, 2)
	if err != nil {
		return nil, err
	}
	p := math.Pow(10, v[1])
	return math.Round(v[0]*p) / p, nil
}
