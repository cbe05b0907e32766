package subsystem

import (
	"context"
	"errors"

	"github.com/onflow/icq-watcher/model/icq"
)

// ErrResultNotFound is returned when the subsystem holds no proven result for a query.
var ErrResultNotFound = errors.New("query result not found")

// ErrUnknownQuery is returned when the subsystem does not know the given query id.
var ErrUnknownQuery = errors.New("unknown query")

// Subsystem is the external interchain query subsystem. Registrations are
// acknowledged asynchronously through Callbacks.Reply; refreshed results are
// announced through Callbacks.Sudo.
type Subsystem interface {
	BalanceQuerier

	// Submit hands a registration sub-message to the subsystem. A nil error
	// only means the sub-message was accepted for processing, its outcome
	// arrives later as a reply carrying msg.ID.
	Submit(ctx context.Context, msg icq.SubMsg) error
}

// BalanceQuerier reads the latest proven balance snapshot of a KV query.
type BalanceQuerier interface {
	// QueryBalance returns the balance snapshot of the given query.
	// Expected errors during normal operations:
	//   - ErrResultNotFound if no proven result was submitted for the query yet
	//   - ErrUnknownQuery if the query id is not registered
	QueryBalance(ctx context.Context, queryID uint64) (*icq.BalanceResponse, error)
}

// Callbacks receives the asynchronous invocations of the subsystem.
type Callbacks interface {
	// Reply delivers the outcome of a previously submitted sub-message.
	Reply(reply icq.Reply)
	// Sudo delivers a notification.
	Sudo(msg icq.SudoMsg)
}
