package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("missing service account credentials")
	ErrUnknownProvider    = errors.New("unknown model provider")
	ErrUnsupportedItem    = errors.New("unsupported item type")
)

// SkipError marks a non-fatal per-prompt failure: the entry is dropped with a
// warning and processing continues with the next one. It is a signal to the
// pipeline loop, never propagated to the caller.
type SkipError struct {
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// Skipf creates a SkipError with a formatted reason.
func Skipf(format string, args ...interface{}) *SkipError {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// SkipCause creates a SkipError wrapping an underlying error.
func SkipCause(err error, format string, args ...interface{}) *SkipError {
	return &SkipError{Reason: fmt.Sprintf(format, args...), Err: err}
}

// IsSkip reports whether err is (or wraps) a SkipError.
func IsSkip(err error) bool {
	var se *SkipError
	return errors.As(err, &se)
}
