package pebbleimpl

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/onflow/icq-watcher/storage"
)

// ToDB wraps a pebble database as a storage.DB.
func ToDB(db *pebble.DB) storage.DB {
	return &dbStore{db: db}
}

// dbStore runs every update in an indexed batch, so that an update reads its
// own writes and commits them atomically. Pebble has no conflict detection,
// updates are therefore serialized.
type dbStore struct {
	mu sync.Mutex
	db *pebble.DB
}

var _ storage.DB = (*dbStore)(nil)

func (p *dbStore) View(fn func(storage.Reader) error) error {
	snapshot := p.db.NewSnapshot()
	defer snapshot.Close()
	return fn(&reader{r: snapshot})
}

func (p *dbStore) Update(fn func(storage.ReaderWriter) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	batch := p.db.NewIndexedBatch()
	defer batch.Close()

	err := fn(&readerWriter{reader: reader{r: batch}, batch: batch})
	if err != nil {
		return err
	}

	err = batch.Commit(pebble.Sync)
	if err != nil {
		return fmt.Errorf("could not commit batch: %w", err)
	}
	return nil
}

func (p *dbStore) Close() error {
	return p.db.Close()
}

type reader struct {
	r pebble.Reader
}

func (r *reader) Get(key []byte) ([]byte, error) {
	val, closer, err := r.r.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("could not load data: %w", err)
	}
	defer closer.Close()

	// the returned slice is only valid until the closer is closed
	value := make([]byte, len(val))
	copy(value, val)
	return value, nil
}

type readerWriter struct {
	reader
	batch *pebble.Batch
}

func (rw *readerWriter) Set(key, value []byte) error {
	return rw.batch.Set(key, value, nil)
}

func (rw *readerWriter) Delete(key []byte) error {
	return rw.batch.Delete(key, nil)
}
