package asyncqueue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	aq "github.com/azargarov/asyncq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbortHandlerAlreadyDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	stop := aq.AbortHandler(ctx, func(err error) { got = err })

	require.ErrorIs(t, got, aq.ErrAborted)
	assert.ErrorIs(t, got, context.Canceled)
	assert.False(t, stop())
}

func TestAbortHandlerLater(t *testing.T) {
	cause := errors.New("deadline")
	ctx, cancel := context.WithCancelCause(context.Background())

	errc := make(chan error, 2)
	aq.AbortHandler(ctx, func(err error) { errc <- err })

	select {
	case <-errc:
		t.Fatal("reject called before cancellation")
	case <-time.After(10 * time.Millisecond):
	}

	cancel(cause)
	err := recv(t, errc, time.Second)
	assert.ErrorIs(t, err, aq.ErrAborted)
	assert.ErrorIs(t, err, cause)

	cancel(nil)
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, errc, "reject must run once")
}

func TestAbortHandlerStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	called := make(chan error, 1)
	stop := aq.AbortHandler(ctx, func(err error) { called <- err })
	assert.True(t, stop())

	cancel()
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, called)
}

func TestAborted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.NoError(t, aq.Aborted(ctx))
	cancel()
	assert.ErrorIs(t, aq.Aborted(ctx), aq.ErrAborted)
}

func TestAbortHandlerInsideQueue(t *testing.T) {
	q := newTestQueue[string](t, aq.Options{Timeout: 20 * time.Millisecond})

	seen := make(chan error, 1)
	f, err := q.Submit(func(ctx context.Context) (string, error) {
		errc := make(chan error, 1)
		stop := aq.AbortHandler(ctx, func(err error) { errc <- err })
		defer stop()

		select {
		case err := <-errc:
			seen <- err
			return "", err
		case <-time.After(time.Second):
			return "resolved", nil
		}
	})
	require.NoError(t, err)

	_, err = f.Await()
	assert.ErrorIs(t, err, aq.ErrTimeout)

	taskErr := recv(t, seen, time.Second)
	assert.ErrorIs(t, taskErr, aq.ErrAborted)
	assert.ErrorIs(t, taskErr, aq.ErrTimeout)
}
