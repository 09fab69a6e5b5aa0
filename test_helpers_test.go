package asyncqueue_test

import (
	"runtime"
	"testing"
	"time"

	aq "github.com/azargarov/asyncq"
	"github.com/stretchr/testify/require"
)

// fastBase keeps retry tests quick: 1ms, 2ms, 4ms, ...
const fastBase = time.Millisecond

func newTestQueue[R any](t *testing.T, opts aq.Options) *aq.Queue[R] {
	t.Helper()

	if opts.BaseDelay == 0 && opts.Backoff == nil {
		opts.BaseDelay = fastBase
	}
	q, err := aq.New[R](opts)
	require.NoError(t, err)
	t.Cleanup(q.Stop)
	return q
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not satisfied before timeout")
}

// recv waits for one value from ch.
func recv[T any](t *testing.T, ch chan T, timeout time.Duration) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}
