package irrecoverable

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"

	"go.uber.org/atomic"
)

// Signaler forwards the first irrecoverable error to its error channel.
type Signaler struct {
	errChan   chan error
	errThrown *atomic.Bool
}

func newSignaler() (*Signaler, <-chan error) {
	errChan := make(chan error, 1)
	return &Signaler{
		errChan:   errChan,
		errThrown: atomic.NewBool(false),
	}, errChan
}

// Throw hands err to the error channel and terminates the calling goroutine.
// Only the first error reaches the channel; later ones are logged.
func (s *Signaler) Throw(err error) {
	defer runtime.Goexit()
	if s.errThrown.CompareAndSwap(false, true) {
		s.errChan <- err
		close(s.errChan)
	} else {
		log.Printf("unhandled irrecoverable error: %v", err)
	}
}

// SignalerContext is a context.Context through which a worker reports
// irrecoverable errors. Only WithSignaler and the test mock create one.
type SignalerContext interface {
	context.Context
	Throw(err error)
	sealed()
}

type signalerCtx struct {
	context.Context
	*Signaler
}

func (sc signalerCtx) sealed() {}

// WithSignaler derives a SignalerContext from parent. The returned channel
// yields the first error thrown on it.
func WithSignaler(parent context.Context) (SignalerContext, <-chan error) {
	sig, errChan := newSignaler()
	return &signalerCtx{parent, sig}, errChan
}

// Exception wraps an error which must never occur during normal operation,
// for example a value in the store which can no longer be decoded.
type Exception struct {
	err error
}

func (e Exception) Error() string {
	return e.err.Error()
}

func (e Exception) Unwrap() error {
	return e.err
}

// NewException wraps the input error as an exception, stripping any sentinel
// error information so that upper layers cannot mistake it for a benign error.
func NewException(err error) error {
	if err == nil {
		return nil
	}
	return Exception{err: errors.New(err.Error())}
}

// NewExceptionf is NewException with fmt.Errorf semantics.
func NewExceptionf(msg string, args ...interface{}) error {
	return NewException(fmt.Errorf(msg, args...))
}

// IsException returns true if err is or wraps an Exception.
func IsException(err error) bool {
	var e Exception
	return errors.As(err, &e)
}
