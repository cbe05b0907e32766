package watcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/onflow/icq-watcher/model/icq"
	"github.com/onflow/icq-watcher/module/subsystem"
	"github.com/onflow/icq-watcher/storage"
	"github.com/onflow/icq-watcher/storage/operation"
)

// Query serves a read-only projection and returns it JSON encoded.
func (w *Watcher) Query(ctx context.Context, r storage.Reader, msg icq.QueryMsg) ([]byte, error) {
	var (
		res interface{}
		err error
	)
	switch m := msg.(type) {
	case icq.QueryBalance:
		res, err = w.Balance(ctx, r, m.QueryID)
	case icq.QueryConfig:
		res, err = w.Config(r)
	case icq.QueryCount:
		res, err = w.Count(r)
	case icq.QueryQueries:
		res, err = w.Queries(r)
	case icq.QueryObjects:
		res, err = w.Objects(r, m.QueryID)
	default:
		return nil, fmt.Errorf("unsupported query message %T", msg)
	}
	if err != nil {
		return nil, err
	}
	return icq.Marshal(res)
}

// Balance queries the subsystem for the current snapshot of the given query
// and returns the entry for the configured denomination. A snapshot without
// that denomination yields a nil coin and no error.
// Expected errors during normal operations:
//   - ErrConfigurationMissing if the watcher was never instantiated
//   - ErrNotFound if the subsystem holds no proven snapshot for the query
func (w *Watcher) Balance(ctx context.Context, r storage.Reader, queryID uint64) (*icq.Coin, error) {
	cfg, err := w.Config(r)
	if err != nil {
		return nil, err
	}

	resp, err := w.balances.QueryBalance(ctx, queryID)
	if err != nil {
		if errors.Is(err, subsystem.ErrResultNotFound) || errors.Is(err, subsystem.ErrUnknownQuery) {
			return nil, fmt.Errorf("balance of query %d: %w", queryID, ErrNotFound)
		}
		return nil, fmt.Errorf("could not query balance of query %d: %w", queryID, err)
	}

	return resp.Balances.Find(cfg.AssetDenom), nil
}

// Config returns the stored configuration.
// Expected errors during normal operations:
//   - ErrConfigurationMissing if the watcher was never instantiated
func (w *Watcher) Config(r storage.Reader) (icq.Config, error) {
	var cfg icq.Config
	err := operation.RetrieveWatcherConfig(r, &cfg)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return icq.Config{}, ErrConfigurationMissing
		}
		return icq.Config{}, fmt.Errorf("could not retrieve config: %w", err)
	}
	return cfg, nil
}

// Count returns the number of processed KV query result notifications.
// Expected errors during normal operations:
//   - ErrConfigurationMissing if the watcher was never instantiated
func (w *Watcher) Count(r storage.Reader) (uint64, error) {
	var count uint64
	err := operation.RetrieveNotificationCount(r, &count)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrConfigurationMissing
		}
		return 0, fmt.Errorf("could not retrieve counter: %w", err)
	}
	return count, nil
}

// Queries returns all acknowledged query ids in acknowledgment order.
// Expected errors during normal operations:
//   - ErrConfigurationMissing if the watcher was never instantiated
func (w *Watcher) Queries(r storage.Reader) ([]uint64, error) {
	var queries []uint64
	err := operation.RetrieveRegisteredQueries(r, &queries)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrConfigurationMissing
		}
		return nil, fmt.Errorf("could not retrieve registry: %w", err)
	}
	if queries == nil {
		queries = []uint64{}
	}
	return queries, nil
}

// Objects returns the subject bound to the given query id.
// Expected errors during normal operations:
//   - ErrNotFound if the query id is not bound
func (w *Watcher) Objects(r storage.Reader, queryID uint64) (string, error) {
	var subject string
	err := operation.RetrieveObject(r, queryID, &subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("object of query %d: %w", queryID, ErrNotFound)
		}
		return "", fmt.Errorf("could not retrieve object of query %d: %w", queryID, err)
	}
	return subject, nil
}
