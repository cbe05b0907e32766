package watcher

import (
	"errors"
)

var (
	// ErrConfigurationMissing is returned when the watcher state was never initialized.
	ErrConfigurationMissing = errors.New("watcher configuration missing")

	// ErrAlreadyInitialized is returned when instantiating a watcher a second time.
	ErrAlreadyInitialized = errors.New("watcher already initialized")

	// ErrDecode is returned when an acknowledgment payload is absent or malformed.
	ErrDecode = errors.New("could not decode acknowledgment payload")

	// ErrNoPendingRegistration is returned when an acknowledgment cannot be
	// correlated with a registration subject.
	ErrNoPendingRegistration = errors.New("no pending registration")

	// ErrUnsupportedCallback is returned for replies carrying an unknown correlation tag.
	ErrUnsupportedCallback = errors.New("unsupported reply message id")

	// ErrSubsystemRejected is returned when the subsystem reports a failed registration.
	ErrSubsystemRejected = errors.New("registration rejected by query subsystem")

	// ErrNotFound is returned by reads against an unbound query id or a query
	// without a proven balance snapshot.
	ErrNotFound = errors.New("not found")
)
