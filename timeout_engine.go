package asyncqueue

import (
	"context"
	"sync/atomic"
	"time"
)

type outcome[R any] struct {
	value R
	err   error
}

// timeoutEngine runs single attempts, racing them against the
// configured deadline.
type timeoutEngine[R any] struct {
	timeout atomic.Int64 // nanoseconds, 0 = disabled
}

func (t *timeoutEngine[R]) set(d time.Duration) { t.timeout.Store(int64(d)) }

func (t *timeoutEngine[R]) get() time.Duration { return time.Duration(t.timeout.Load()) }

// run executes one attempt of task.
//
// Without a deadline the task runs with ctx on the calling goroutine.
// With a deadline the task gets a child context and runs on its own
// goroutine while a timer races it. Whichever settles first decides the
// outcome; the loser is signalled: the timer is stopped, or the child
// context is cancelled with ErrTimeout as its cause. A task that ignores
// cancellation keeps running, its result is dropped.
func (t *timeoutEngine[R]) run(ctx context.Context, task TaskFunc[R]) (R, error) {
	d := t.get()
	if d <= 0 {
		return call(ctx, task)
	}

	actx, cancel := context.WithCancelCause(ctx)
	done := make(chan outcome[R], 1) // buffered: an abandoned attempt never blocks
	go func() {
		v, err := call(actx, task)
		done <- outcome[R]{value: v, err: err}
	}()

	timer := time.NewTimer(d)
	select {
	case out := <-done:
		timer.Stop()
		cancel(nil)
		return out.value, out.err
	case <-timer.C:
		cancel(ErrTimeout)
		var zero R
		return zero, &TimeoutError{Timeout: d}
	}
}

// call invokes task and converts a panic into a *PanicError.
func call[R any](ctx context.Context, task TaskFunc[R]) (v R, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero R
			v, err = zero, &PanicError{Value: r}
		}
	}()
	return task(ctx)
}
