package asyncqueue

import (
	"context"
	"fmt"
)

// AbortHandler wires a task's reject function to its context.
//
// If ctx is already done, reject is called immediately with an error
// matching ErrAborted and the context cause (ErrTimeout when the attempt
// deadline elapsed). Otherwise reject is registered to run once when ctx
// is done. The returned stop function unregisters it; it reports false
// when reject already ran or was never registered.
//
//	func fetch(ctx context.Context) (string, error) {
//		errc := make(chan error, 1)
//		stop := asyncqueue.AbortHandler(ctx, func(err error) { errc <- err })
//		defer stop()
//		...
//	}
func AbortHandler(ctx context.Context, reject func(error)) (stop func() bool) {
	if ctx.Err() != nil {
		reject(Aborted(ctx))
		return func() bool { return false }
	}
	return context.AfterFunc(ctx, func() {
		reject(Aborted(ctx))
	})
}

// Aborted returns the cancellation error for a done ctx, or nil while
// ctx is still live.
func Aborted(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	cause := context.Cause(ctx)
	if cause == nil {
		return ErrAborted
	}
	return fmt.Errorf("%w: %w", ErrAborted, cause)
}
