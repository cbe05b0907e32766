package operation

import (
	"errors"

	"github.com/onflow/icq-watcher/module/irrecoverable"
	"github.com/onflow/icq-watcher/storage"
)

// RetrieveByKey decodes the value stored under key into entity, which must be
// a non-nil pointer.
// Error returns:
//   - storage.ErrNotFound if nothing is stored under key
//   - irrecoverable exception if the stored value cannot be decoded
func RetrieveByKey(r storage.Reader, key []byte, entity interface{}) error {
	val, err := r.Get(key)
	if err != nil {
		return err
	}
	return decodeValue(val, entity)
}

// keyExists reports whether a value is stored under key.
// No errors are expected during normal operation.
func keyExists(r storage.Reader, key []byte) (bool, error) {
	_, err := r.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, irrecoverable.NewExceptionf("could not check key %x: %w", key, err)
	}
}
