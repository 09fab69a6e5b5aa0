package asyncqueue

import (
	"math"
	"strconv"
	"time"
)

// requirePositive validates a setter argument: zero means the value was
// not supplied, negative values are out of range.
func requirePositive[N int | time.Duration](field string, v N) error {
	if v == 0 {
		return &ValidationError{Field: field, Kind: KindRequired}
	}
	if v < 0 {
		return &ValidationError{Field: field, Kind: KindOutOfRange, Actual: render(v)}
	}
	return nil
}

// optionalNonNegative validates a construction option where zero keeps
// the feature disabled.
func optionalNonNegative[N int | time.Duration](field string, v N) error {
	if v < 0 {
		return &ValidationError{Field: field, Kind: KindOutOfRange, Actual: render(v)}
	}
	return nil
}

// numberOf converts a dynamically typed value to an int. Only integral
// numbers are accepted.
func numberOf(field string, v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, &ValidationError{Field: field, Kind: KindRequired}
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, &ValidationError{Field: field, Kind: KindOutOfRange, Actual: strconv.FormatUint(n, 10)}
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, &ValidationError{Field: field, Kind: KindWrongType, Expected: "number", Actual: "float"}
		}
		return int(n), nil
	default:
		return 0, &ValidationError{Field: field, Kind: KindWrongType, Expected: "number", Actual: typeName(v)}
	}
}

func render[N int | time.Duration](v N) string {
	switch x := any(v).(type) {
	case time.Duration:
		return x.String()
	default:
		return strconv.Itoa(int(v))
	}
}
