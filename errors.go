package asyncqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

var (
	// ErrInputRequired is matched by validation errors for missing input.
	ErrInputRequired = errors.New("input is required")

	// ErrWrongType is matched by validation errors for values of the wrong type.
	ErrWrongType = errors.New("input has wrong type")

	// ErrOutOfRange is matched by validation errors for negative or zero values
	// where a positive number is expected.
	ErrOutOfRange = errors.New("input must be a positive number")

	// ErrTimeout is the cancellation cause of an attempt whose deadline elapsed.
	ErrTimeout = errors.New("asyncqueue: request timed out")

	// ErrAborted is reported by AbortHandler once the task context is done.
	ErrAborted = errors.New("asyncqueue: task aborted")

	// ErrMaxRetries is matched by *RetriesExhaustedError.
	ErrMaxRetries = errors.New("max retries reached")

	// ErrQueueClosed is returned by Add after Shutdown.
	ErrQueueClosed = errors.New("asyncqueue: queue closed")

	// ErrTaskPanicked wraps panics recovered from task functions.
	ErrTaskPanicked = errors.New("asyncqueue: task panicked")
)

// ValidationKind classifies a ValidationError.
type ValidationKind int

const (
	KindRequired ValidationKind = iota
	KindWrongType
	KindOutOfRange
)

func (k ValidationKind) String() string {
	switch k {
	case KindRequired:
		return "required"
	case KindWrongType:
		return "wrong-type"
	case KindOutOfRange:
		return "out-of-range"
	default:
		return "unknown"
	}
}

// ValidationError is returned synchronously from configuration and
// submission entry points.
type ValidationError struct {
	// Field names the offending argument or setting.
	Field string
	Kind  ValidationKind

	// Expected and Actual are type names for KindWrongType and the
	// rendered value for KindOutOfRange.
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	var msg string
	switch e.Kind {
	case KindRequired:
		msg = ErrInputRequired.Error()
	case KindWrongType:
		msg = fmt.Sprintf("input must be a %s, but got %s", e.Expected, e.Actual)
	default:
		msg = fmt.Sprintf("%s, but got %s", ErrOutOfRange.Error(), e.Actual)
	}
	if e.Field == "" {
		return msg
	}
	return e.Field + ": " + msg
}

// Is reports whether target is the sentinel for e's kind.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrInputRequired:
		return e.Kind == KindRequired
	case ErrWrongType:
		return e.Kind == KindWrongType
	case ErrOutOfRange:
		return e.Kind == KindOutOfRange
	}
	return false
}

// TimeoutError is the outcome of an attempt that lost the race against
// its deadline.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s after %s", ErrTimeout.Error(), e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// RetriesExhaustedError aggregates every attempt error of a task whose
// retries ran out. Errors are kept in attempt order.
type RetriesExhaustedError struct {
	errs []error
}

func newRetriesExhaustedError(errs []error) *RetriesExhaustedError {
	cp := make([]error, len(errs))
	copy(cp, errs)
	return &RetriesExhaustedError{errs: cp}
}

// Errors returns the attempt errors in the order they happened.
func (e *RetriesExhaustedError) Errors() []error {
	cp := make([]error, len(e.errs))
	copy(cp, e.errs)
	return cp
}

// Attempts is the number of failed attempts.
func (e *RetriesExhaustedError) Attempts() int { return len(e.errs) }

func (e *RetriesExhaustedError) Error() string {
	cause := multierr.Combine(e.errs...)
	if cause == nil {
		return ErrMaxRetries.Error()
	}
	return ErrMaxRetries.Error() + ": " + cause.Error()
}

func (e *RetriesExhaustedError) Is(target error) bool { return target == ErrMaxRetries }

// Unwrap exposes every attempt error to errors.Is and errors.As.
func (e *RetriesExhaustedError) Unwrap() []error { return e.Errors() }

// PanicError carries a value recovered from a panicking task.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTaskPanicked.Error(), e.Value)
}

// Unwrap exposes ErrTaskPanicked and, when the recovered value is an
// error, that error.
func (e *PanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrTaskPanicked, err}
	}
	return []error{ErrTaskPanicked}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	name := fmt.Sprintf("%T", v)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
