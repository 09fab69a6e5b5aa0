package asyncqueue

import (
	"fmt"

	lg "github.com/Andrej220/go-utils/zlog"
)

// reportInternalError reports a failure inside the queue itself, such
// as a panicking user callback. If no handler is registered the error
// is only logged.
func (q *Queue[R]) reportInternalError(e error) {
	lg.FromContext(q.ctx).Error("internal error", lg.Any("error", e))
	if q.opts.OnInternalError != nil {
		q.opts.OnInternalError(e)
	}
}

// reportTaskError reports the final failure of a task that was added
// without an onFailure callback.
func (q *Queue[R]) reportTaskError(id TaskID, err error) {
	if q.opts.OnTaskError != nil {
		q.opts.OnTaskError(id, err)
		return
	}
	lg.FromContext(q.ctx).Error("task failed without failure callback",
		lg.String("task_id", id.String()),
		lg.Any("error", err),
	)
}

// deliver runs a user callback. A panic is contained so the slot it
// holds is always released.
func (q *Queue[R]) deliver(id TaskID, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.reportInternalError(fmt.Errorf("asyncqueue: callback of task %s panicked: %v", id, r))
		}
	}()
	fn()
}
