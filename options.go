package asyncqueue

import (
	"context"
	"time"
)

const (
	DefaultMaxConcurrency = 5
	DefaultBaseDelay      = 300 * time.Millisecond
)

// Options configure a Queue.
//
// All zero values are replaced with defaults in FillDefaults. Negative
// values are rejected by New.
type Options struct {
	// MaxConcurrency caps the number of attempts running at once.
	MaxConcurrency int

	// MaxRetries is the number of attempts a task gets before its errors
	// are aggregated into a *RetriesExhaustedError. Zero disables retries.
	MaxRetries int

	// Timeout bounds every single attempt. Zero disables the deadline.
	Timeout time.Duration

	// BaseDelay is the base of the exponential backoff used when Backoff
	// is nil.
	BaseDelay time.Duration

	// Backoff overrides the default exponential backoff.
	Backoff BackoffPolicy

	// Metrics receives queue activity. Defaults to NoopMetrics.
	Metrics MetricsPolicy

	// Ctx is the parent of every attempt context and carries the logger.
	Ctx context.Context

	// OnTaskError receives failures of tasks added without an onFailure
	// callback.
	OnTaskError func(id TaskID, err error)

	// OnInternalError receives failures inside the queue itself, such as
	// a panicking callback.
	OnInternalError func(err error)
}

func (o *Options) FillDefaults() {
	if o.MaxConcurrency == 0 {
		o.MaxConcurrency = DefaultMaxConcurrency
	}
	if o.BaseDelay == 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.Backoff == nil {
		o.Backoff = Exponential(o.BaseDelay)
	}
	if o.Metrics == nil {
		o.Metrics = &NoopMetrics{}
	}
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
}

func (o *Options) validate() error {
	if o.MaxConcurrency < 0 {
		return &ValidationError{Field: "MaxConcurrency", Kind: KindOutOfRange, Actual: render(o.MaxConcurrency)}
	}
	if err := optionalNonNegative("MaxRetries", o.MaxRetries); err != nil {
		return err
	}
	if err := optionalNonNegative("Timeout", o.Timeout); err != nil {
		return err
	}
	return optionalNonNegative("BaseDelay", o.BaseDelay)
}
