package operation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/module/irrecoverable"
	"github.com/onflow/icq-watcher/storage"
	"github.com/onflow/icq-watcher/utils/unittest"
)

func TestWatcherConfig_InsertRetrieve(t *testing.T) {
	unittest.RunWithTypedDB(t, func(t *testing.T, db storage.DB) {
		cfg := unittest.WatcherConfigFixture()

		err := db.Update(func(rw storage.ReaderWriter) error {
			return InsertWatcherConfig(rw, &cfg)
		})
		require.NoError(t, err)

		var retrieved icq.Config
		err = db.View(func(r storage.Reader) error {
			return RetrieveWatcherConfig(r, &retrieved)
		})
		require.NoError(t, err)
		assert.Equal(t, cfg, retrieved)

		// the configuration can only be written once
		err = db.Update(func(rw storage.ReaderWriter) error {
			return InsertWatcherConfig(rw, &cfg)
		})
		require.ErrorIs(t, err, storage.ErrAlreadyExists)
	})
}

func TestWatcherConfig_NotFound(t *testing.T) {
	unittest.RunWithTypedDB(t, func(t *testing.T, db storage.DB) {
		var cfg icq.Config
		err := db.View(func(r storage.Reader) error {
			return RetrieveWatcherConfig(r, &cfg)
		})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestRegisteredQueries_OrderPreserved(t *testing.T) {
	unittest.RunWithTypedDB(t, func(t *testing.T, db storage.DB) {
		ids := []uint64{7, 3, 1 << 40, 3}
		err := db.Update(func(rw storage.ReaderWriter) error {
			return UpsertRegisteredQueries(rw, ids)
		})
		require.NoError(t, err)

		var retrieved []uint64
		err = db.View(func(r storage.Reader) error {
			return RetrieveRegisteredQueries(r, &retrieved)
		})
		require.NoError(t, err)
		assert.Equal(t, ids, retrieved)
	})
}

func TestObjects_UpsertOverwrites(t *testing.T) {
	unittest.RunWithTypedDB(t, func(t *testing.T, db storage.DB) {
		err := db.Update(func(rw storage.ReaderWriter) error {
			return UpsertObject(rw, 7, "neutron1abc")
		})
		require.NoError(t, err)

		err = db.Update(func(rw storage.ReaderWriter) error {
			return UpsertObject(rw, 7, "neutron1def")
		})
		require.NoError(t, err)

		var subject string
		err = db.View(func(r storage.Reader) error {
			return RetrieveObject(r, 7, &subject)
		})
		require.NoError(t, err)
		assert.Equal(t, "neutron1def", subject)

		err = db.View(func(r storage.Reader) error {
			return RetrieveObject(r, 8, &subject)
		})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestPendingRegistration_Lifecycle(t *testing.T) {
	unittest.RunWithTypedDB(t, func(t *testing.T, db storage.DB) {
		id := icq.RequestCorrelationID(1)

		err := db.Update(func(rw storage.ReaderWriter) error {
			return InsertPendingRegistration(rw, id, "neutron1abc")
		})
		require.NoError(t, err)

		err = db.Update(func(rw storage.ReaderWriter) error {
			return InsertPendingRegistration(rw, id, "neutron1def")
		})
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		var subject string
		err = db.View(func(r storage.Reader) error {
			return RetrievePendingRegistration(r, id, &subject)
		})
		require.NoError(t, err)
		assert.Equal(t, "neutron1abc", subject)

		err = db.Update(func(rw storage.ReaderWriter) error {
			return RemovePendingRegistration(rw, id)
		})
		require.NoError(t, err)

		err = db.View(func(r storage.Reader) error {
			return RetrievePendingRegistration(r, id, &subject)
		})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

// A failing update must not leave any of its writes behind.
func TestUpdate_RollsBackOnError(t *testing.T) {
	unittest.RunWithTypedDB(t, func(t *testing.T, db storage.DB) {
		aborted := errors.New("aborted")

		err := db.Update(func(rw storage.ReaderWriter) error {
			err := UpsertNotificationCount(rw, 5)
			require.NoError(t, err)
			err = UpsertLastRegistered(rw, "neutron1abc")
			require.NoError(t, err)

			// writes are visible within the same update
			var count uint64
			err = RetrieveNotificationCount(rw, &count)
			require.NoError(t, err)
			assert.Equal(t, uint64(5), count)

			return aborted
		})
		require.ErrorIs(t, err, aborted)

		var count uint64
		err = db.View(func(r storage.Reader) error {
			return RetrieveNotificationCount(r, &count)
		})
		require.ErrorIs(t, err, storage.ErrNotFound)

		var subject string
		err = db.View(func(r storage.Reader) error {
			return RetrieveLastRegistered(r, &subject)
		})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestCodec_CorruptValue(t *testing.T) {
	unittest.RunWithTypedDB(t, func(t *testing.T, db storage.DB) {
		err := db.Update(func(rw storage.ReaderWriter) error {
			return rw.Set(MakePrefix(codeCorrelationCounter), []byte("not snappy"))
		})
		require.NoError(t, err)

		var seq uint64
		err = db.View(func(r storage.Reader) error {
			return RetrieveCorrelationCounter(r, &seq)
		})
		require.Error(t, err)
		assert.True(t, irrecoverable.IsException(err))
		assert.NotErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestMakePrefix(t *testing.T) {
	key := MakePrefix(codeObjectByQueryID, uint64(7))
	assert.Equal(t, []byte{codeObjectByQueryID, 0, 0, 0, 0, 0, 0, 0, 7}, key)

	assert.Panics(t, func() {
		MakePrefix(codeObjectByQueryID, 7)
	})
}
