package operation

import (
	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack/v4"

	"github.com/onflow/icq-watcher/module/irrecoverable"
)

// Stored values are msgpack documents compressed with snappy.

// encodeEntity returns the stored form of entity.
// Any error is an irrecoverable exception.
func encodeEntity(entity interface{}) ([]byte, error) {
	raw, err := msgpack.Marshal(entity)
	if err != nil {
		return nil, irrecoverable.NewExceptionf("could not encode %T: %w", entity, err)
	}
	return snappy.Encode(nil, raw), nil
}

// decodeValue decodes a stored value into entity.
// Any error is an irrecoverable exception.
func decodeValue(val []byte, entity interface{}) error {
	raw, err := snappy.Decode(nil, val)
	if err != nil {
		return irrecoverable.NewExceptionf("could not uncompress value: %w", err)
	}
	err = msgpack.Unmarshal(raw, entity)
	if err != nil {
		return irrecoverable.NewExceptionf("could not decode %T: %w", entity, err)
	}
	return nil
}
