package operation

import (
	"fmt"

	"github.com/onflow/icq-watcher/module/irrecoverable"
	"github.com/onflow/icq-watcher/storage"
)

// UpsertByKey will encode the given entity and store it under the given key,
// overwriting any existing value.
// No errors are expected during normal operation.
func UpsertByKey(w storage.Writer, key []byte, val interface{}) error {
	value, err := encodeEntity(val)
	if err != nil {
		return err
	}

	err = w.Set(key, value)
	if err != nil {
		return irrecoverable.NewExceptionf("could not store data: %w", err)
	}
	return nil
}

// InsertByKey stores the entity under the given key, failing if the key is already taken.
// Error returns:
//   - storage.ErrAlreadyExists if the key already holds a value
func InsertByKey(rw storage.ReaderWriter, key []byte, val interface{}) error {
	exists, err := keyExists(rw, key)
	if err != nil {
		return fmt.Errorf("could not check key: %w", err)
	}
	if exists {
		return storage.ErrAlreadyExists
	}
	return UpsertByKey(rw, key, val)
}

// RemoveByKey removes the entity with the given key, if it exists. If it doesn't
// exist, this is a no-op.
// No errors are expected during normal operation.
func RemoveByKey(w storage.Writer, key []byte) error {
	err := w.Delete(key)
	if err != nil {
		return irrecoverable.NewExceptionf("could not delete item: %w", err)
	}
	return nil
}
