package common

import (
	"errors"
	"net/http"

	engine "github.com/onflow/icq-watcher/engine/watcher"
	"github.com/onflow/icq-watcher/module/component"
	state "github.com/onflow/icq-watcher/state/watcher"
)

// StatusError is an error with the HTTP status and the message reported to
// the client. The message may differ from Error, which is only logged.
type StatusError struct {
	status   int
	message  string
	err      error
	response interface{}
}

func NewStatusError(status int, message string, err error) *StatusError {
	return &StatusError{status: status, message: message, err: err}
}

// NewBadRequestError reports err to the client with status 400.
func NewBadRequestError(err error) *StatusError {
	return NewStatusError(http.StatusBadRequest, err.Error(), err)
}

// WithResponse attaches a result which was committed despite the error, such
// as the sub-messages of a request whose dispatch failed.
func (e *StatusError) WithResponse(response interface{}) *StatusError {
	e.response = response
	return e
}

func (e *StatusError) Status() int { return e.status }

func (e *StatusError) UserMessage() string { return e.message }

func (e *StatusError) Response() interface{} { return e.response }

func (e *StatusError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.err.Error()
}

func (e *StatusError) Unwrap() error { return e.err }

// statusBySentinel maps the benign errors of the watcher to HTTP statuses.
var statusBySentinel = []struct {
	sentinel error
	status   int
}{
	{state.ErrNotFound, http.StatusNotFound},
	{state.ErrDecode, http.StatusBadRequest},
	{state.ErrUnsupportedCallback, http.StatusBadRequest},
	{state.ErrConfigurationMissing, http.StatusConflict},
	{state.ErrAlreadyInitialized, http.StatusConflict},
	{state.ErrNoPendingRegistration, http.StatusConflict},
	{state.ErrSubsystemRejected, http.StatusConflict},
	{engine.ErrInboundQueueFull, http.StatusServiceUnavailable},
	{component.ErrComponentShutdown, http.StatusServiceUnavailable},
	{engine.ErrDispatchFailed, http.StatusBadGateway},
}

// ToStatusError classifies err. Unclassified errors become a 500 whose message
// hides the cause.
func ToStatusError(err error) *StatusError {
	var se *StatusError
	if errors.As(err, &se) {
		return se
	}
	if engine.IsInvalidRequestError(err) {
		return NewBadRequestError(err)
	}
	for _, m := range statusBySentinel {
		if errors.Is(err, m.sentinel) {
			return NewStatusError(m.status, err.Error(), err)
		}
	}
	return NewStatusError(http.StatusInternalServerError, "internal server error", err)
}
