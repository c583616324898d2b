package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type echo struct {
	Config
}

func TestTrace(t *testing.T) {
	var calls []string
	tool := new(echo)
	for _, opt := range []Option{
		WithTitle("Echo"),
		WithDescription("returns its input"),
		WithStartHook(func(_ context.Context, tool ITool, input any) {
			calls = append(calls, "start:"+tool.Title()+":"+input.(string))
		}),
		WithEndHook(func(_ context.Context, _ ITool, _ any, output any) {
			calls = append(calls, "end:"+output.(string))
		}),
		WithErrorHook(func(_ context.Context, _ ITool, _ any, err error) {
			calls = append(calls, "error:"+err.Error())
		}),
	} {
		opt(&tool.Config)
	}
	ctx := context.Background()
	tool.Trace(ctx, tool, "a")("a", nil)
	tool.Trace(ctx, tool, "b")(nil, errors.New("boom"))
	assert.Equal(t, []string{"start:Echo:a", "end:a", "start:Echo:b", "error:boom"}, calls)
	assert.Equal(t, "returns its input", tool.Description())
}

func TestTraceWithoutHooks(t *testing.T) {
	tool := new(echo)
	assert.NotPanics(t, func() {
		tool.Trace(context.Background(), tool, nil)(nil, errors.New("ignored"))
	})
}
