package asyncqueue

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is a partial runtime reconfiguration. Nil fields are left
// untouched by Configure.
type Settings struct {
	MaxConcurrency *int
	MaxRetries     *int
	Timeout        *time.Duration
}

// Configure applies every present field of s. All present values are
// validated before any of them is applied.
func (q *Queue[R]) Configure(s Settings) error {
	if s.MaxConcurrency != nil {
		if err := requirePositive("maxConcurrency", *s.MaxConcurrency); err != nil {
			return err
		}
	}
	if s.MaxRetries != nil {
		if err := requirePositive("maxRetries", *s.MaxRetries); err != nil {
			return err
		}
	}
	if s.Timeout != nil {
		if err := requirePositive("timeout", *s.Timeout); err != nil {
			return err
		}
	}

	if s.MaxRetries != nil {
		q.retries.setMaxRetries(*s.MaxRetries)
	}
	if s.Timeout != nil {
		q.timeouts.set(*s.Timeout)
	}
	if s.MaxConcurrency != nil {
		return q.SetMaxConcurrency(*s.MaxConcurrency)
	}
	return nil
}

// ParseSettings decodes a YAML document such as
//
//	max_concurrency: 10
//	max_retries: 3
//	timeout_ms: 2500
//
// Keys that are absent stay nil. Values that are not numbers fail with
// a KindWrongType *ValidationError; unknown keys are ignored.
func ParseSettings(data []byte) (Settings, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("asyncqueue: decode settings: %w", err)
	}

	var s Settings
	if v, ok := doc["max_concurrency"]; ok {
		n, err := numberOf("max_concurrency", v)
		if err != nil {
			return Settings{}, err
		}
		s.MaxConcurrency = &n
	}
	if v, ok := doc["max_retries"]; ok {
		n, err := numberOf("max_retries", v)
		if err != nil {
			return Settings{}, err
		}
		s.MaxRetries = &n
	}
	if v, ok := doc["timeout_ms"]; ok {
		n, err := numberOf("timeout_ms", v)
		if err != nil {
			return Settings{}, err
		}
		if int64(n) > math.MaxInt64/int64(time.Millisecond) {
			return Settings{}, &ValidationError{Field: "timeout_ms", Kind: KindOutOfRange, Actual: strconv.Itoa(n)}
		}
		d := time.Duration(n) * time.Millisecond
		s.Timeout = &d
	}
	return s, nil
}
