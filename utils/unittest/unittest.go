package unittest

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/icq-watcher/storage"
	"github.com/onflow/icq-watcher/storage/operation/badgerimpl"
	"github.com/onflow/icq-watcher/storage/operation/pebbleimpl"
)

// RequireReturnsBefore fails the test if f is still running after duration.
func RequireReturnsBefore(t testing.TB, f func(), duration time.Duration, message string) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	RequireCloseBefore(t, done, duration, message)
}

// RequireCloseBefore fails the test if c is still open after duration.
func RequireCloseBefore(t testing.TB, c <-chan struct{}, duration time.Duration, message string) {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-c:
	case <-timer.C:
		require.FailNow(t, "timed out: "+message)
	}
}

// AssertErrSubstringMatch asserts that one error message contains the other.
// Use it only where errors.Is cannot work, such as for errors that crossed
// the HTTP boundary.
func AssertErrSubstringMatch(t testing.TB, expected, actual error) {
	require.Error(t, expected)
	require.Error(t, actual)
	e, a := expected.Error(), actual.Error()
	assert.True(t, strings.Contains(a, e) || strings.Contains(e, a),
		"expected error: '%s', got: '%s'", e, a)
}

// TempDir creates a directory which is removed when the test finishes.
func TempDir(t testing.TB) string {
	dir, err := os.MkdirTemp("", "icq-watcher-testing-temp-")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	return dir
}

func RunWithTempDir(t testing.TB, f func(string)) {
	f(TempDir(t))
}

func BadgerDB(t testing.TB, dir string) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(dir).
		WithKeepL0InMemory(true).
		WithLogger(nil))
	require.NoError(t, err)
	return db
}

func PebbleDB(t testing.TB, dir string) *pebble.DB {
	cache := pebble.NewCache(1 << 20)
	defer cache.Unref()
	db, err := pebble.Open(dir, pebbleimpl.DefaultPebbleOptions(cache))
	require.NoError(t, err)
	return db
}

func RunWithPebbleDB(t testing.TB, f func(*pebble.DB)) {
	RunWithTempDir(t, func(dir string) {
		db := PebbleDB(t, dir)
		defer db.Close()
		f(db)
	})
}

// RunWithTypedDB runs f as a subtest against each storage backend.
func RunWithTypedDB(t *testing.T, f func(t *testing.T, db storage.DB)) {
	t.Run("badger", func(t *testing.T) {
		RunWithTempDir(t, func(dir string) {
			db := BadgerDB(t, dir)
			defer db.Close()
			f(t, badgerimpl.ToDB(db))
		})
	})

	t.Run("pebble", func(t *testing.T) {
		RunWithPebbleDB(t, func(db *pebble.DB) {
			f(t, pebbleimpl.ToDB(db))
		})
	})
}
