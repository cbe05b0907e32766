package cmd

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onflow/icq-watcher/config"
	"github.com/onflow/icq-watcher/storage"
	"github.com/onflow/icq-watcher/storage/operation/badgerimpl"
	"github.com/onflow/icq-watcher/storage/operation/pebbleimpl"
)

// openDB opens the durable store. A data directory written by the other
// backend is rejected.
func openDB(log zerolog.Logger, c config.StorageConfig) (storage.DB, error) {
	backend := storage.Backend(c.Backend)
	existing, err := storage.DetectBackend(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("could not inspect data directory %s: %w", c.DataDir, err)
	}
	if existing != storage.BackendNone && existing != backend {
		return nil, fmt.Errorf("data directory %s holds a %s database, not %s", c.DataDir, existing, backend)
	}

	switch backend {
	case storage.BackendBadger:
		return badgerimpl.Open(c.DataDir, log)
	case storage.BackendPebble:
		return pebbleimpl.Open(c.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Backend)
	}
}
