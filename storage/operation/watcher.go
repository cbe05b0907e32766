package operation

import (
	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/storage"
)

// InsertWatcherConfig stores the watcher configuration. The configuration can be written only once.
// Error returns:
//   - storage.ErrAlreadyExists if a configuration was stored before
func InsertWatcherConfig(rw storage.ReaderWriter, cfg *icq.Config) error {
	return InsertByKey(rw, MakePrefix(codeWatcherConfig), cfg)
}

// RetrieveWatcherConfig retrieves the watcher configuration.
// Error returns:
//   - storage.ErrNotFound if the watcher was never initialized
func RetrieveWatcherConfig(r storage.Reader, cfg *icq.Config) error {
	return RetrieveByKey(r, MakePrefix(codeWatcherConfig), cfg)
}

// UpsertNotificationCount overwrites the number of processed notifications.
func UpsertNotificationCount(w storage.Writer, count uint64) error {
	return UpsertByKey(w, MakePrefix(codeNotificationCount), count)
}

// RetrieveNotificationCount retrieves the number of processed notifications.
// Error returns:
//   - storage.ErrNotFound if the counter was never initialized
func RetrieveNotificationCount(r storage.Reader, count *uint64) error {
	return RetrieveByKey(r, MakePrefix(codeNotificationCount), count)
}

// UpsertLastRegistered overwrites the subject of the most recent registration.
func UpsertLastRegistered(w storage.Writer, subject string) error {
	return UpsertByKey(w, MakePrefix(codeLastRegistered), subject)
}

// RetrieveLastRegistered retrieves the subject of the most recent registration.
// Error returns:
//   - storage.ErrNotFound if no registration was ever submitted
func RetrieveLastRegistered(r storage.Reader, subject *string) error {
	return RetrieveByKey(r, MakePrefix(codeLastRegistered), subject)
}

// UpsertRegisteredQueries overwrites the ordered list of acknowledged query ids.
func UpsertRegisteredQueries(w storage.Writer, queryIDs []uint64) error {
	return UpsertByKey(w, MakePrefix(codeRegisteredQueries), queryIDs)
}

// RetrieveRegisteredQueries retrieves the ordered list of acknowledged query ids.
// Error returns:
//   - storage.ErrNotFound if the registry was never initialized
func RetrieveRegisteredQueries(r storage.Reader, queryIDs *[]uint64) error {
	return RetrieveByKey(r, MakePrefix(codeRegisteredQueries), queryIDs)
}

// UpsertObject binds a query id to the subject it observes. An existing binding
// for the same query id is overwritten.
func UpsertObject(w storage.Writer, queryID uint64, subject string) error {
	return UpsertByKey(w, MakePrefix(codeObjectByQueryID, queryID), subject)
}

// RetrieveObject retrieves the subject bound to a query id.
// Error returns:
//   - storage.ErrNotFound if the query id is not bound
func RetrieveObject(r storage.Reader, queryID uint64, subject *string) error {
	return RetrieveByKey(r, MakePrefix(codeObjectByQueryID, queryID), subject)
}

// InsertPendingRegistration records the subject of an outstanding per-request registration.
// Error returns:
//   - storage.ErrAlreadyExists if the correlation id is already in use
func InsertPendingRegistration(rw storage.ReaderWriter, correlationID uint64, subject string) error {
	return InsertByKey(rw, MakePrefix(codePendingByCorrelation, correlationID), subject)
}

// RetrievePendingRegistration retrieves the subject of an outstanding per-request registration.
// Error returns:
//   - storage.ErrNotFound if no registration is pending under the correlation id
func RetrievePendingRegistration(r storage.Reader, correlationID uint64, subject *string) error {
	return RetrieveByKey(r, MakePrefix(codePendingByCorrelation, correlationID), subject)
}

// RemovePendingRegistration drops the pending entry of a per-request registration.
func RemovePendingRegistration(w storage.Writer, correlationID uint64) error {
	return RemoveByKey(w, MakePrefix(codePendingByCorrelation, correlationID))
}

// UpsertCorrelationCounter overwrites the last allocated correlation sequence number.
func UpsertCorrelationCounter(w storage.Writer, seq uint64) error {
	return UpsertByKey(w, MakePrefix(codeCorrelationCounter), seq)
}

// RetrieveCorrelationCounter retrieves the last allocated correlation sequence number.
// Error returns:
//   - storage.ErrNotFound if no sequence number was allocated yet
func RetrieveCorrelationCounter(r storage.Reader, seq *uint64) error {
	return RetrieveByKey(r, MakePrefix(codeCorrelationCounter), seq)
}
