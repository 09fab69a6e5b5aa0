package asyncqueue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
	"go.uber.org/multierr"
)

// taskRecord is the retry state of one task. It exists from the first
// failure until the task succeeds or exhausts its retries.
type taskRecord struct {
	attempts int
	errs     []error
	delay    func(attempts int) time.Duration
}

// retryEngine tracks attempts and errors per task id and decides
// between retry and give-up. It never runs tasks itself: a retry is a
// callback that re-submits the task to the queue.
type retryEngine struct {
	ctx        context.Context
	backoff    BackoffPolicy
	maxRetries atomic.Int64

	mu      sync.Mutex
	records map[TaskID]*taskRecord

	// backingOff counts retries whose delay has not elapsed yet.
	backingOff atomic.Int64
}

func newRetryEngine(ctx context.Context, maxRetries int, backoff BackoffPolicy) *retryEngine {
	r := &retryEngine{
		ctx:     ctx,
		backoff: backoff,
		records: make(map[TaskID]*taskRecord),
	}
	r.maxRetries.Store(int64(maxRetries))
	return r
}

func (r *retryEngine) setMaxRetries(n int) { r.maxRetries.Store(int64(n)) }

func (r *retryEngine) enabled() bool { return r.maxRetries.Load() > 0 }

// handleFailure records err for id. While fewer than maxRetries attempts
// have failed, retry is scheduled after the backoff delay and true is
// returned. Otherwise the record is erased, giveUp receives the
// aggregated error and false is returned.
//
// A scheduled retry is dropped when the engine context is done before
// the delay elapses: the record is erased and abandon receives an error
// matching ErrAborted and every attempt error. When the context is
// already done at failure time, giveUp gets that error instead of a
// retry being scheduled.
//
// No callback is invoked with the engine lock held.
func (r *retryEngine) handleFailure(id TaskID, err error, retry func(), giveUp, abandon func(error)) bool {
	logger := lg.FromContext(r.ctx).With(lg.String("task_id", id.String()))

	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		rec = &taskRecord{attempts: 1, delay: r.backoff.Sequence()}
		r.records[id] = rec
	}
	rec.errs = append(rec.errs, err)

	if int64(rec.attempts) >= r.maxRetries.Load() {
		delete(r.records, id)
		r.mu.Unlock()

		logger.Error("task retries exhausted",
			lg.Int("attempts", len(rec.errs)),
			lg.Any("error", err),
		)
		giveUp(newRetriesExhaustedError(rec.errs))
		return false
	}

	if r.ctx.Err() != nil {
		delete(r.records, id)
		r.mu.Unlock()

		logger.Info("task canceled", lg.Any("reason", context.Cause(r.ctx)))
		giveUp(abortedAfter(r.ctx, rec.errs))
		return false
	}

	attempt := rec.attempts
	delay := rec.delay(attempt)
	r.mu.Unlock()

	logger.Warn("task attempt failed; backing off",
		lg.Int("attempt", attempt),
		lg.String("sleep", delay.String()),
		lg.Any("error", err),
	)

	r.backingOff.Add(1)
	go func() {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-r.ctx.Done():
			timer.Stop()
			r.mu.Lock()
			delete(r.records, id)
			r.mu.Unlock()
			r.backingOff.Add(-1)

			logger.Info("task canceled during backoff", lg.Any("reason", context.Cause(r.ctx)))
			abandon(abortedAfter(r.ctx, rec.errs))
			return
		}

		r.mu.Lock()
		rec.attempts++
		r.mu.Unlock()
		r.backingOff.Add(-1)
		retry()
	}()
	return true
}

// abortedAfter reports a task given up because ctx is done, keeping
// the errors of its failed attempts.
func abortedAfter(ctx context.Context, errs []error) error {
	return fmt.Errorf("%w: after %d attempts: %w", Aborted(ctx), len(errs), multierr.Combine(errs...))
}

// forget erases the record of a settled task.
func (r *retryEngine) forget(id TaskID) {
	r.mu.Lock()
	delete(r.records, id)
	r.mu.Unlock()
}

// attempts returns the recorded attempt count of id, 0 when untracked.
func (r *retryEngine) attempts(id TaskID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		return rec.attempts
	}
	return 0
}

func (r *retryEngine) tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
