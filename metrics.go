package asyncqueue

import (
	"sync/atomic"
)

// MetricsPolicy defines hooks used by the queue to report admission
// and completion activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {
	// IncSubmitted counts logical tasks accepted by Add.
	IncSubmitted()

	// IncAdmitted counts attempts that took a concurrency slot.
	IncAdmitted()

	// IncQueued counts tasks parked in the waiting buffer.
	IncQueued()

	IncSucceeded()
	IncFailed()

	// IncRetried counts re-submissions after a backoff delay.
	IncRetried()

	// IncTimedOut counts attempts that lost the race against the deadline.
	IncTimedOut()
}

// MetricsSnapshot is a point-in-time copy of AtomicMetrics.
type MetricsSnapshot struct {
	Submitted uint64
	Admitted  uint64
	Queued    uint64
	Succeeded uint64
	Failed    uint64
	Retried   uint64
	TimedOut  uint64
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are cheap. Reads are intended for cold-path observation.
type AtomicMetrics struct {
	submitted atomic.Uint64
	admitted  atomic.Uint64
	queued    atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	retried   atomic.Uint64
	timedOut  atomic.Uint64
}

func (m *AtomicMetrics) IncSubmitted() { m.submitted.Add(1) }
func (m *AtomicMetrics) IncAdmitted()  { m.admitted.Add(1) }
func (m *AtomicMetrics) IncQueued()    { m.queued.Add(1) }
func (m *AtomicMetrics) IncSucceeded() { m.succeeded.Add(1) }
func (m *AtomicMetrics) IncFailed()    { m.failed.Add(1) }
func (m *AtomicMetrics) IncRetried()   { m.retried.Add(1) }
func (m *AtomicMetrics) IncTimedOut()  { m.timedOut.Add(1) }

// Snapshot returns the current counter values.
func (m *AtomicMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Submitted: m.submitted.Load(),
		Admitted:  m.admitted.Load(),
		Queued:    m.queued.Load(),
		Succeeded: m.succeeded.Load(),
		Failed:    m.failed.Load(),
		Retried:   m.retried.Load(),
		TimedOut:  m.timedOut.Load(),
	}
}

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncSubmitted() {}
func (m *NoopMetrics) IncAdmitted()  {}
func (m *NoopMetrics) IncQueued()    {}
func (m *NoopMetrics) IncSucceeded() {}
func (m *NoopMetrics) IncFailed()    {}
func (m *NoopMetrics) IncRetried()   {}
func (m *NoopMetrics) IncTimedOut()  {}
