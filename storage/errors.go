package storage

import (
	"errors"
)

var (
	// Note: there is another not found error: badger.ErrKeyNotFound (and pebble.ErrNotFound).
	// Modules in storage/operation and its backend implementations translate
	// those into storage.ErrNotFound, so callers never depend on a specific backend.
	ErrNotFound = errors.New("key not found")

	ErrAlreadyExists = errors.New("key already exists")
)
