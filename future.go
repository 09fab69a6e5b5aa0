package asyncqueue

import (
	"context"
	"time"
)

// Future is the eventual outcome of a task submitted with Submit.
type Future[R any] struct {
	id     TaskID
	result R
	err    error
	done   chan struct{}
}

// Submit adds task to the queue and returns a Future settled with its
// outcome. It fails like Add.
func (q *Queue[R]) Submit(task TaskFunc[R]) (*Future[R], error) {
	f := &Future[R]{done: make(chan struct{})}
	id, err := q.add(task,
		func(v R) {
			f.result = v
			close(f.done)
		},
		func(err error) {
			f.err = err
			close(f.done)
		},
	)
	if err != nil {
		return nil, err
	}
	f.id = id
	return f, nil
}

// ID returns the id the queue assigned to the task.
func (f *Future[R]) ID() TaskID { return f.id }

// Await waits for the task to settle and returns its result and error.
func (f *Future[R]) Await() (R, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext is like Await but gives up when ctx is done. Giving up
// does not cancel the task.
func (f *Future[R]) AwaitContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout is AwaitContext bounded by d.
func (f *Future[R]) AwaitWithTimeout(d time.Duration) (R, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return f.AwaitContext(ctx)
}

// Done is closed once the task has settled.
func (f *Future[R]) Done() <-chan struct{} { return f.done }

// IsComplete reports whether the task has settled without blocking.
func (f *Future[R]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
