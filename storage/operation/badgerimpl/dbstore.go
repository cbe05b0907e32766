package badgerimpl

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/icq-watcher/storage"
)

// ToDB wraps a badger database as a storage.DB.
func ToDB(db *badger.DB) storage.DB {
	return &dbStore{db: db}
}

type dbStore struct {
	db *badger.DB
}

var _ storage.DB = (*dbStore)(nil)

func (b *dbStore) View(fn func(storage.Reader) error) error {
	return b.db.View(func(tx *badger.Txn) error {
		return fn(&reader{tx: tx})
	})
}

// Update runs fn in a badger transaction. Badger detects conflicting
// concurrent transactions at commit time; fn is re-run on a fresh
// transaction in that case.
func (b *dbStore) Update(fn func(storage.ReaderWriter) error) error {
	for {
		err := b.db.Update(func(tx *badger.Txn) error {
			return fn(&readerWriter{reader: reader{tx: tx}})
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
}

func (b *dbStore) Close() error {
	return b.db.Close()
}

type reader struct {
	tx *badger.Txn
}

func (r *reader) Get(key []byte) ([]byte, error) {
	item, err := r.tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("could not load data: %w", err)
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("could not copy value: %w", err)
	}
	return val, nil
}

type readerWriter struct {
	reader
}

func (rw *readerWriter) Set(key, value []byte) error {
	return rw.tx.Set(key, value)
}

func (rw *readerWriter) Delete(key []byte) error {
	return rw.tx.Delete(key)
}
