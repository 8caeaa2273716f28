// Package resilience provides the deadline guard and the retry/fallback
// controller placed around every provider call.
package resilience

import (
	"context"
	"fmt"
	"time"
)

// TimeoutError is returned when the guarded operation did not settle in time.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Operation timed out after %dms", e.Timeout.Milliseconds())
}

type outcome[T any] struct {
	val T
	err error
}

// WithTimeout runs op and returns its result if it settles within timeout,
// otherwise a *TimeoutError. The context given to op is cancelled when the
// guard gives up, but an op that ignores its context keeps running in the
// background and its eventual result is dropped.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if timeout <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so a late op never blocks on send.
	done := make(chan outcome[T], 1)
	go func() {
		v, err := op(opCtx)
		done <- outcome[T]{val: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.val, out.err
	case <-timer.C:
		return zero, &TimeoutError{Timeout: timeout}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
