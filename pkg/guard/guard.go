package guard

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type result[T any] struct {
	value T
	err   error
}

// Run executes fn on its own goroutine and waits for its result, the
// parent context, or the timeout, whichever comes first. On deadline the
// worker is abandoned: the buffered channel lets it finish and exit
// without a reader, and its late result is dropped.
func Run[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out := make(chan result[T], 1)
	go func() {
		value, err := fn(runCtx)
		out <- result[T]{value: value, err: err}
	}()

	select {
	case res := <-out:
		return res.value, res.err
	case <-runCtx.Done():
		var zero T
		return zero, fmt.Errorf("guarded call: %w", runCtx.Err())
	}
}

// IsTimeout reports whether err came from an expired deadline rather
// than from the guarded function itself.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsCanceled reports whether err came from parent-context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
