package orchestration

import (
	"context"
	"fmt"
	"time"
)

// bounded calls fn with a context limited to timeout and stops waiting once
// that context is done. fn keeps running in its own goroutine until it
// returns, its late result is dropped. A zero timeout only follows ctx.
func bounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	type outcome struct {
		value T
		err   error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		ch <- outcome{value: v, err: err}
	}()
	select {
	case o := <-ch:
		return o.value, o.err
	case <-ctx.Done():
	}
	// prefer a result that raced the deadline
	select {
	case o := <-ch:
		return o.value, o.err
	default:
	}
	var zero T
	return zero, ctx.Err()
}
