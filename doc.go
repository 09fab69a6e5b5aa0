// Package asyncqueue provides a bounded-concurrency scheduler for
// asynchronous units of work with per-task retry and per-attempt
// timeouts.
//
// Design goals
//
// The package is designed around the following principles:
//
//   - Never run more than MaxConcurrency attempts at once
//   - Admit buffered tasks in strict submission order
//   - Deliver exactly one outcome per submitted task
//   - Keep per-task retry state only while the task is alive
//
// Architecture overview
//
// The queue is composed of three cooperating parts:
//
//   1. Queue controller (Queue)
//      Owns the concurrency gate (running count against the limit) and
//      the FIFO waiting buffer for tasks submitted above capacity.
//      Every admission, including re-admission after a retry, goes
//      through the same capacity check.
//
//   2. Timeout engine
//      Runs a single attempt. With a timeout configured the attempt
//      races a timer; when the timer wins, the attempt context is
//      cancelled with ErrTimeout as its cause and the attempt fails
//      with a *TimeoutError. Late results of abandoned attempts are
//      dropped.
//
//   3. Retry engine
//      Records attempts and errors per task id. After a failure it
//      either schedules a re-submission after an exponential backoff
//      (BaseDelay * 2^attempts) or, once MaxRetries attempts have
//      failed, reports a *RetriesExhaustedError carrying every error in
//      attempt order.
//
// Cancellation
//
// Tasks receive a context.Context. It is cancelled when the attempt
// deadline elapses. Tasks are expected to observe it and return
// promptly; non-cooperative work is not terminated, its result is
// simply ignored. AbortHandler helps tasks written in a callback style
// to react to cancellation.
//
// Cancelling Options.Ctx also stops retries: a task backing off is not
// run again and fails with an error matching ErrAborted.
//
// Completion
//
// Outcomes are delivered through the onSuccess / onFailure callbacks
// passed to Add, or through a Future returned by Submit. Completion
// order across tasks is unconstrained; only admission is FIFO.
//
// Error handling
//
// Configuration and submission errors are returned synchronously as
// *ValidationError values that match ErrInputRequired, ErrWrongType or
// ErrOutOfRange with errors.Is. Work errors are passed through when
// retries are disabled and aggregated when they are enabled. Panics
// inside tasks are recovered and reported as errors wrapping
// ErrTaskPanicked.
package asyncqueue
