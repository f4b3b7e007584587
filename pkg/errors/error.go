// Package errors provides error types for redisqueue
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// QueueError is the structured error returned by queues, the sender, the
// listener and the lock manager.
type QueueError struct {
	Code    ErrorCode `json:"code"`
	Op      string    `json:"op,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *QueueError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause error
func (e *QueueError) Unwrap() error {
	return e.Cause
}

// Is matches another *QueueError by code
func (e *QueueError) Is(target error) bool {
	if t, ok := target.(*QueueError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithCause adds a cause error
func (e *QueueError) WithCause(cause error) *QueueError {
	e.Cause = cause
	return e
}

// WithOp records the operation that failed
func (e *QueueError) WithOp(op string) *QueueError {
	e.Op = op
	return e
}

// MultiError represents multiple errors that occurred
type MultiError struct {
	Errors []error `json:"errors"`
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("multiple errors occurred (%d errors): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the multi-error
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// IsEmpty returns true if no errors are present
func (e *MultiError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// ErrorOrNil returns the multi-error if it contains errors, otherwise nil
func (e *MultiError) ErrorOrNil() error {
	if e.IsEmpty() {
		return nil
	}
	return e
}

// Count returns the number of errors
func (e *MultiError) Count() int {
	return len(e.Errors)
}

// New creates a new QueueError
func New(code ErrorCode, message string) *QueueError {
	return &QueueError{Code: code, Message: message}
}

// Newf creates a new QueueError with formatted message
func Newf(code ErrorCode, format string, args ...any) *QueueError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a QueueError
func Wrap(err error, code ErrorCode, message string) *QueueError {
	return New(code, message).WithCause(err)
}

// Wrapf wraps an existing error with a QueueError and formatted message
func Wrapf(err error, code ErrorCode, format string, args ...any) *QueueError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewMultiError creates a new MultiError
func NewMultiError() *MultiError {
	return &MultiError{Errors: make([]error, 0)}
}

// InvalidArgument creates an invalid-argument error
func InvalidArgument(format string, args ...any) *QueueError {
	return Newf(ErrInvalidArgument, format, args...)
}

// StoreFailure wraps a store error for op
func StoreFailure(op string, cause error) *QueueError {
	return Wrap(cause, ErrStoreFailure, "store command failed").WithOp(op)
}

// Canceled wraps a context error raised while op was waiting.
func Canceled(op string, cause error) *QueueError {
	return Wrap(cause, ErrCanceled, "operation cancelled").WithOp(op)
}

// LockHeld creates a lock-held error for key
func LockHeld(key string) *QueueError {
	return Newf(ErrLockHeld, "lock %q is held", key)
}

// GetErrorCode extracts the error code from anywhere in err's chain.
// The second result is false when err carries no QueueError.
func GetErrorCode(err error) (ErrorCode, bool) {
	var qe *QueueError
	if stderrors.As(err, &qe) {
		return qe.Code, true
	}
	return "", false
}

// GetErrorMessage extracts the error message from an error
func GetErrorMessage(err error) string {
	var qe *QueueError
	if stderrors.As(err, &qe) {
		return qe.Message
	}
	return err.Error()
}

func hasCode(err error, code ErrorCode) bool {
	c, ok := GetErrorCode(err)
	return ok && c == code
}

// IsInvalidArgument checks if err is an invalid-argument error
func IsInvalidArgument(err error) bool { return hasCode(err, ErrInvalidArgument) }

// IsStoreFailure checks if err is a store failure
func IsStoreFailure(err error) bool { return hasCode(err, ErrStoreFailure) }

// IsLockHeld checks if err reports a held lock
func IsLockHeld(err error) bool { return hasCode(err, ErrLockHeld) }

// IsCanceled checks if err reports a cancelled operation
func IsCanceled(err error) bool { return hasCode(err, ErrCanceled) }

// IsConfigError checks if err is a configuration error
func IsConfigError(err error) bool { return hasCode(err, ErrInvalidConfig) }
