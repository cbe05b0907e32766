package operation

import (
	"encoding/binary"
	"fmt"
)

const (
	// codes for single-value slots
	codeWatcherConfig      = 1 // immutable configuration of the watcher
	codeNotificationCount  = 2 // number of processed KV query result notifications
	codeLastRegistered     = 3 // subject of the most recent registration (legacy correlation)
	codeRegisteredQueries  = 4 // ordered list of acknowledged query ids
	codeCorrelationCounter = 5 // last allocated per-request correlation sequence number

	// codes for keyed mappings
	codeObjectByQueryID      = 10 // query id -> subject
	codePendingByCorrelation = 11 // per-request correlation id -> subject
)

// MakePrefix builds a key from a one byte code followed by the binary encoding of keys.
func MakePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, EncodeKeyPart(key)...)
	}
	return prefix
}

// EncodeKeyPart encodes a single key part. Integers are encoded big-endian so
// that numerically smaller keys sort lexicographically first.
func EncodeKeyPart(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case string:
		return []byte(i)
	case []byte:
		return i
	}

	panic(fmt.Sprintf("unsupported type to convert (%T)", v))
}
