package asyncqueue

import (
	"math"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
)

// BackoffPolicy produces the delays inserted before retried attempts.
//
// Sequence is called once per task, on its first failure, so stateful
// policies keep independent state for every task.
type BackoffPolicy interface {
	// Sequence returns the delay function of one task. attempts is the
	// number of failed attempts so far.
	Sequence() func(attempts int) time.Duration
}

type exponential struct {
	base time.Duration
}

// Exponential returns the default policy: base * 2^attempts, with no
// jitter and no cap.
func Exponential(base time.Duration) BackoffPolicy {
	return exponential{base: base}
}

func (e exponential) Sequence() func(int) time.Duration {
	return func(attempts int) time.Duration {
		return exponentialDelay(e.base, attempts)
	}
}

// exponentialDelay saturates at the largest time.Duration instead of
// overflowing.
func exponentialDelay(base time.Duration, attempts int) time.Duration {
	d := base
	for range attempts {
		if d > math.MaxInt64/2 {
			return math.MaxInt64
		}
		d *= 2
	}
	return d
}

type jittered struct {
	initial time.Duration
	max     time.Duration
}

// JitteredBackoff returns a capped, randomized policy. Every task gets
// its own generator seeded at its first failure.
func JitteredBackoff(initial, maxDelay time.Duration) BackoffPolicy {
	if initial <= 0 {
		initial = DefaultBaseDelay
	}
	if maxDelay < initial {
		maxDelay = initial
	}
	return jittered{initial: initial, max: maxDelay}
}

func (j jittered) Sequence() func(int) time.Duration {
	bo := boff.New(j.initial, j.max, time.Now().UnixNano())
	return func(int) time.Duration {
		return bo.Next()
	}
}
