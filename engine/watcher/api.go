package watcher

import (
	"context"

	"github.com/onflow/icq-watcher/model/icq"
)

// API is the surface of the watcher engine served to external callers.
type API interface {
	Instantiate(ctx context.Context, sender string, msg icq.InstantiateMsg) error
	Execute(ctx context.Context, sender string, msg icq.ExecuteMsg) (*icq.Response, error)
	ProcessReply(ctx context.Context, reply icq.Reply) error
	ProcessSudo(ctx context.Context, msg icq.SudoMsg) error
	Query(ctx context.Context, msg icq.QueryMsg) ([]byte, error)
}

var _ API = (*Engine)(nil)
