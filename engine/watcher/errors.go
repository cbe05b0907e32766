package watcher

import (
	"errors"
	"fmt"
)

var (
	// ErrInboundQueueFull is returned when an invocation is rejected because the engine is saturated.
	ErrInboundQueueFull = errors.New("inbound queue is full")

	// ErrDispatchFailed is returned when committed sub-messages could not be handed to the query subsystem.
	ErrDispatchFailed = errors.New("could not dispatch sub-messages")
)

// InvalidRequestError indicates that a request was rejected before any
// handler ran, because it failed validation.
type InvalidRequestError struct {
	err error
}

func NewInvalidRequestError(err error) InvalidRequestError {
	return InvalidRequestError{err: err}
}

func (e InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.err.Error())
}

func (e InvalidRequestError) Unwrap() error {
	return e.err
}

// IsInvalidRequestError returns whether err is or wraps an InvalidRequestError.
func IsInvalidRequestError(err error) bool {
	var e InvalidRequestError
	return errors.As(err, &e)
}
