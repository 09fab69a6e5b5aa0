package asyncqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/google/uuid"
)

// TaskID identifies one logical task across all of its attempts.
type TaskID = uuid.UUID

// TaskFunc is a unit of asynchronous work. ctx is cancelled when the
// attempt deadline elapses; the task should return promptly then.
type TaskFunc[R any] func(ctx context.Context) (R, error)

// entry is a logical task together with its own callback pair.
type entry[R any] struct {
	id        TaskID
	task      TaskFunc[R]
	onSuccess func(R)
	onFailure func(error)
}

// Stats is a point-in-time view of the queue gauges.
type Stats struct {
	MaxConcurrency int
	Running        int
	Waiting        int
	// Pending counts logical tasks that have not settled yet.
	Pending int
	// BackingOff counts tasks waiting for their retry delay.
	BackingOff int
}

// Queue runs submitted tasks with at most MaxConcurrency attempts in
// flight. Tasks submitted above capacity wait in FIFO order.
type Queue[R any] struct {
	ctx  context.Context
	opts Options

	mu             sync.Mutex
	maxConcurrency int
	running        int
	waiting        *fifoQueue[R]
	pending        int
	idle           chan struct{} // closed while pending == 0
	closed         bool

	retries  *retryEngine
	timeouts *timeoutEngine[R]
	metrics  MetricsPolicy
}

// New creates a queue. Zero option values take their defaults.
func New[R any](opts Options) (*Queue[R], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.FillDefaults()

	idle := make(chan struct{})
	close(idle)

	q := &Queue[R]{
		ctx:            opts.Ctx,
		opts:           opts,
		maxConcurrency: opts.MaxConcurrency,
		waiting:        newFifoQueue[R](initialFifoCapacity),
		idle:           idle,
		retries:        newRetryEngine(opts.Ctx, opts.MaxRetries, opts.Backoff),
		timeouts:       &timeoutEngine[R]{},
		metrics:        opts.Metrics,
	}
	q.timeouts.set(opts.Timeout)
	return q, nil
}

// MustNew is like New but panics on invalid options.
func MustNew[R any](opts Options) *Queue[R] {
	q, err := New[R](opts)
	if err != nil {
		panic(err)
	}
	return q
}

// SetMaxConcurrency changes the concurrency cap. Running attempts are
// never preempted; a larger cap admits waiting tasks right away.
func (q *Queue[R]) SetMaxConcurrency(n int) error {
	if err := requirePositive("maxConcurrency", n); err != nil {
		return err
	}
	q.mu.Lock()
	q.maxConcurrency = n
	next := q.admitLocked()
	q.mu.Unlock()

	q.start(next)
	return nil
}

// SetMaxRetries enables retries with n attempts per task.
func (q *Queue[R]) SetMaxRetries(n int) error {
	if err := requirePositive("maxRetries", n); err != nil {
		return err
	}
	q.retries.setMaxRetries(n)
	return nil
}

// SetPromiseTimeout bounds every attempt started from now on.
func (q *Queue[R]) SetPromiseTimeout(d time.Duration) error {
	if err := requirePositive("timeout", d); err != nil {
		return err
	}
	q.timeouts.set(d)
	return nil
}

// Add submits a task. It returns after bookkeeping; the outcome is
// delivered later to exactly one of onSuccess or onFailure. When
// onFailure is nil, failures go to Options.OnTaskError.
//
// Callbacks run on the goroutine of the finishing attempt while it
// still holds its concurrency slot.
func (q *Queue[R]) Add(task TaskFunc[R], onSuccess func(R), onFailure func(error)) error {
	_, err := q.add(task, onSuccess, onFailure)
	return err
}

func (q *Queue[R]) add(task TaskFunc[R], onSuccess func(R), onFailure func(error)) (TaskID, error) {
	if task == nil {
		return TaskID{}, &ValidationError{Field: "task", Kind: KindRequired}
	}
	if onSuccess == nil {
		return TaskID{}, &ValidationError{Field: "onSuccess", Kind: KindRequired}
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return TaskID{}, ErrQueueClosed
	}
	q.pending++
	if q.pending == 1 {
		q.idle = make(chan struct{})
	}
	q.mu.Unlock()

	e := &entry[R]{
		id:        uuid.New(),
		task:      task,
		onSuccess: onSuccess,
		onFailure: onFailure,
	}
	q.metrics.IncSubmitted()
	lg.FromContext(q.ctx).Info("task submitted", lg.String("task_id", e.id.String()))

	q.submit(e)
	return e.id, nil
}

// submit admits e when a slot is free and buffers it otherwise. Fresh
// tasks and retries take the same path.
func (q *Queue[R]) submit(e *entry[R]) {
	q.mu.Lock()
	q.waiting.Push(e)
	next := q.admitLocked()
	q.mu.Unlock()

	if len(next) == 0 || next[len(next)-1] != e {
		q.metrics.IncQueued()
	}
	q.start(next)
}

// admitLocked moves waiting entries into free slots in FIFO order.
// The caller holds q.mu and starts the returned entries after unlocking.
func (q *Queue[R]) admitLocked() []*entry[R] {
	var next []*entry[R]
	for q.running < q.maxConcurrency {
		e, ok := q.waiting.Pop()
		if !ok {
			break
		}
		q.running++
		next = append(next, e)
	}
	return next
}

func (q *Queue[R]) start(entries []*entry[R]) {
	for _, e := range entries {
		q.metrics.IncAdmitted()
		go q.runAttempt(e)
	}
}

// runAttempt executes one attempt of e and routes its outcome.
func (q *Queue[R]) runAttempt(e *entry[R]) {
	logger := lg.FromContext(q.ctx).With(lg.String("task_id", e.id.String()))

	value, err := q.timeouts.run(q.ctx, e.task)
	if err == nil {
		q.retries.forget(e.id)
		q.metrics.IncSucceeded()
		logger.Info("task succeeded")
		q.deliver(e.id, func() { e.onSuccess(value) })
		q.finish(true)
		return
	}

	if errors.Is(err, ErrTimeout) {
		q.metrics.IncTimedOut()
	}

	if !q.retries.enabled() {
		q.retries.forget(e.id)
		logger.Warn("task failed", lg.Any("error", err))
		q.fail(e, err)
		q.finish(true)
		return
	}

	scheduled := q.retries.handleFailure(e.id, err,
		func() {
			q.metrics.IncRetried()
			q.submit(e)
		},
		func(agg error) {
			q.fail(e, agg)
		},
		func(err error) {
			q.fail(e, err)
			q.settle()
		},
	)
	q.finish(!scheduled)
}

func (q *Queue[R]) fail(e *entry[R], err error) {
	q.metrics.IncFailed()
	if e.onFailure == nil {
		q.reportTaskError(e.id, err)
		return
	}
	q.deliver(e.id, func() { e.onFailure(err) })
}

// finish releases the slot of a finished attempt, settles the logical
// task when settled is true and refills free slots from the waiting
// buffer.
func (q *Queue[R]) finish(settled bool) {
	q.mu.Lock()
	q.running--
	if settled {
		q.settleLocked()
	}
	next := q.admitLocked()
	q.mu.Unlock()

	q.start(next)
}

// settle marks a task that holds no slot, such as one dropped during
// backoff, as settled.
func (q *Queue[R]) settle() {
	q.mu.Lock()
	q.settleLocked()
	q.mu.Unlock()
}

func (q *Queue[R]) settleLocked() {
	q.pending--
	if q.pending == 0 {
		close(q.idle)
	}
}

// Wait blocks until every submitted task has settled or ctx is done.
func (q *Queue[R]) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown rejects further submissions and waits for pending tasks,
// including those backing off before a retry, to settle. Cancelling
// Options.Ctx cuts pending backoffs short.
func (q *Queue[R]) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	return q.Wait(ctx)
}

// Stop is the blocking form of Shutdown.
func (q *Queue[R]) Stop() { _ = q.Shutdown(context.Background()) }

// Running returns the number of attempts in flight.
func (q *Queue[R]) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Waiting returns the number of buffered tasks.
func (q *Queue[R]) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waiting.Len()
}

// Stats returns a consistent snapshot of the queue gauges.
func (q *Queue[R]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		MaxConcurrency: q.maxConcurrency,
		Running:        q.running,
		Waiting:        q.waiting.Len(),
		Pending:        q.pending,
		BackingOff:     int(q.retries.backingOff.Load()),
	}
}
