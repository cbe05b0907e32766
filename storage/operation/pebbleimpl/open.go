package pebbleimpl

import (
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/onflow/icq-watcher/storage"
)

// DefaultPebbleOptions returns the options the watcher state is opened with.
func DefaultPebbleOptions(cache *pebble.Cache) *pebble.Options {
	opts := &pebble.Options{
		Cache:                 cache,
		FormatMajorVersion:    pebble.FormatNewest,
		L0CompactionThreshold: 2,
		L0StopWritesThreshold: 1000,
		// the watcher state is tiny, memtables are kept small
		MemTableSize: 4 << 20,
	}
	for i := 0; i < len(opts.Levels); i++ {
		l := &opts.Levels[i]
		l.BlockSize = 32 << 10
		l.IndexBlockSize = 256 << 10
		l.FilterPolicy = nil
		if i > 0 {
			l.TargetFileSize = opts.Levels[i-1].TargetFileSize * 2
		}
		l.EnsureDefaults()
	}
	return opts
}

// Open opens (or creates) a pebble database in dir.
func Open(dir string) (storage.DB, error) {
	cache := pebble.NewCache(1 << 20)
	defer cache.Unref()

	db, err := pebble.Open(dir, DefaultPebbleOptions(cache))
	if err != nil {
		return nil, fmt.Errorf("could not open pebble db: %w", err)
	}
	return ToDB(db), nil
}
