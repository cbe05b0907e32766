package storage

import (
	"io"
)

// Reader is a read-only view on the key/value store, scoped to one snapshot.
type Reader interface {
	// Get returns a copy of the value stored under key.
	// Error returns:
	//   - storage.ErrNotFound if the key does not exist
	Get(key []byte) ([]byte, error)
}

// Writer stages writes which become visible atomically once the surrounding
// transaction commits.
type Writer interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// ReaderWriter reads its own staged writes.
type ReaderWriter interface {
	Reader
	Writer
}

// DB is a transactional key/value store. Every call to Update runs the given
// function as one atomic unit: all writes are committed if and only if the
// function returns nil.
type DB interface {
	io.Closer

	// View runs fn against a consistent read-only snapshot.
	View(fn func(r Reader) error) error

	// Update runs fn in a read-write transaction and commits its writes if fn
	// returns nil. Any error returned by fn discards all of its writes and is
	// passed through to the caller.
	Update(fn func(rw ReaderWriter) error) error
}
