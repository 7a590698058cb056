package numerology

import (
	"errors"
	"fmt"
)

// Validation error kinds. None of them is retryable.
var (
	ErrInvalidFormat  = errors.New("invalid date format")
	ErrOutOfRange     = errors.New("date out of range")
	ErrImpossibleDate = errors.New("impossible date")
	ErrFutureDate     = errors.New("future date")
)

// ErrInvariantViolation means derived numbers broke an arithmetic invariant.
// It indicates a validation bug upstream and is never shown to users as-is.
var ErrInvariantViolation = errors.New("matrix invariant violated")

// DateError describes why a birth date was rejected.
type DateError struct {
	Kind   error  // One of the Err* validation sentinels
	Input  string // Raw input as received
	Field  string // "day", "month", "year" or empty when not field specific
	Detail string // Human-readable explanation
}

func (e *DateError) Error() string {
	switch {
	case e.Field != "" && e.Detail != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Detail)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	default:
		return e.Kind.Error()
	}
}

func (e *DateError) Unwrap() error {
	return e.Kind
}

func dateErr(kind error, input, field, format string, args ...any) *DateError {
	return &DateError{
		Kind:   kind,
		Input:  input,
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
	}
}
