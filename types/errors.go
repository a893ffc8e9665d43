package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup by id matched nothing
	ErrNotFound      = errors.New("entry not found")
	// ErrMultipleFound is returned when a lookup expected one entry but got several
	ErrMultipleFound = errors.New("multiple entries found")
	ErrAlreadyExists = errors.New("entry already exists")
	ErrTableNotExist = errors.New("table does not exist")
	ErrIndexNotExist = errors.New("index does not exist")
	// ErrCursorExpired is returned when a server-side cursor was released
	// before the next page was requested.
	ErrCursorExpired = errors.New("cursor expired")
	ErrUnsupported   = errors.New("unsupported")
	// ErrPrecondition marks invalid caller input; see Preconditionf.
	ErrPrecondition  = errors.New("precondition failed")
)

// Preconditionf returns an error wrapping ErrPrecondition with a formatted reason
func Preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// UnexpectedResponseError is returned for any remote response outside the
// success range that has no dedicated meaning for the call.
type UnexpectedResponseError struct {
	StatusCode int
	Body       string

	// cause, when set, lets errors.Is match a sentinel like ErrCursorExpired
	cause error
}

func NewUnexpectedResponse(statusCode int, body []byte) *UnexpectedResponseError {
	return &UnexpectedResponseError{StatusCode: statusCode, Body: string(body)}
}

// WithCause attaches a sentinel the error should also match
func (e *UnexpectedResponseError) WithCause(cause error) *UnexpectedResponseError {
	e.cause = cause
	return e
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response: status=%d body=%s", e.StatusCode, e.Body)
}

func (e *UnexpectedResponseError) Unwrap() error {
	return e.cause
}
