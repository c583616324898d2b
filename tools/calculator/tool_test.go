package calculator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		exp    string
		params map[string]any
		want   any
	}{
		{name: "addition", exp: "2+2", want: 4.0},
		{name: "params", exp: "net_income / revenue * 100", params: map[string]any{"net_income": 25.0, "revenue": 100.0}, want: 25.0},
		{name: "constant", exp: "round(pi, 2)", want: 3.14},
		{name: "params shadow constants", exp: "e * 2", params: map[string]any{"e": 3.0}, want: 6.0},
		{name: "function", exp: "pct(1, 4) + max(1, 2) + abs(-1)", want: 28.0},
		{name: "boolean", exp: "2 > 1", want: true},
	}
	tool := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ret, err := tool.Run(context.Background(), NewInput(tt.exp, tt.params))
			require.NoError(t, err)
			if want, ok := tt.want.(float64); ok {
				assert.InDelta(t, want, ret.Result, 1e-9)
				return
			}
			assert.Equal(t, tt.want, ret.Result)
		})
	}
}

func TestRunErrors(t *testing.T) {
	tool := New()
	_, err := tool.Run(context.Background(), NewInput("2 +", nil))
	assert.Error(t, err)
	_, err = tool.Run(context.Background(), NewInput("sqrt(1, 2)", nil))
	assert.ErrorIs(t, err, ErrArgument)
}

func TestEval(t *testing.T) {
	tool := New()
	v, err := tool.Eval(context.Background(), "a / b", map[string]any{"a": 1.0, "b": 4.0})
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)

	_, err = tool.Eval(context.Background(), "a / b", map[string]any{"a": 1.0, "b": 0.0})
	assert.ErrorIs(t, err, ErrNotANumber)

	_, err = tool.Eval(context.Background(), "1 < 2", nil)
	assert.ErrorIs(t, err, ErrNotANumber)
}

func ExampleTool() {
	ctx := context.Background()
	tool := New()
	ret, _ := tool.Run(ctx, NewInput("2+2", nil))
	fmt.Println(ret.Result)
	// Output:
	// 4
}
