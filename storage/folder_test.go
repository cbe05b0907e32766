package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onflow/icq-watcher/storage"
	"github.com/onflow/icq-watcher/utils/unittest"
)

func TestDetectBackend_Empty(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		backend, err := storage.DetectBackend(dir)
		require.NoError(t, err)
		require.Equal(t, storage.BackendNone, backend)

		backend, err = storage.DetectBackend(filepath.Join(dir, "missing"))
		require.NoError(t, err)
		require.Equal(t, storage.BackendNone, backend)
	})
}

func TestDetectBackend_Badger(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		db := unittest.BadgerDB(t, dir)
		require.NoError(t, db.Close())

		backend, err := storage.DetectBackend(dir)
		require.NoError(t, err)
		require.Equal(t, storage.BackendBadger, backend)
	})
}

func TestDetectBackend_Pebble(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		db := unittest.PebbleDB(t, dir)
		require.NoError(t, db.Close())

		backend, err := storage.DetectBackend(dir)
		require.NoError(t, err)
		require.Equal(t, storage.BackendPebble, backend)
	})
}

func TestDetectBackend_NotADirectory(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		path := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

		_, err := storage.DetectBackend(path)
		require.Error(t, err)
	})
}
