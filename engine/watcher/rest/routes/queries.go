package routes

import (
	"github.com/onflow/icq-watcher/engine/watcher"
	"github.com/onflow/icq-watcher/engine/watcher/rest/common"
	"github.com/onflow/icq-watcher/model/icq"
)

const queryIDVar = "query_id"

// GetConfig returns the stored configuration.
func GetConfig(r *common.Request, api watcher.API) (interface{}, error) {
	return query(r, api, icq.QueryConfig{})
}

// GetCount returns the number of processed KV query result notifications.
func GetCount(r *common.Request, api watcher.API) (interface{}, error) {
	return query(r, api, icq.QueryCount{})
}

// GetQueries returns all acknowledged query ids in acknowledgment order.
func GetQueries(r *common.Request, api watcher.API) (interface{}, error) {
	return query(r, api, icq.QueryQueries{})
}

// GetObject returns the subject bound to a query id.
func GetObject(r *common.Request, api watcher.API) (interface{}, error) {
	queryID, err := r.GetUint64Var(queryIDVar)
	if err != nil {
		return nil, common.NewBadRequestError(err)
	}
	return query(r, api, icq.QueryObjects{QueryID: queryID})
}

// GetBalance returns the configured denomination of the latest balance
// snapshot of a query, or null if the snapshot holds none.
func GetBalance(r *common.Request, api watcher.API) (interface{}, error) {
	queryID, err := r.GetUint64Var(queryIDVar)
	if err != nil {
		return nil, common.NewBadRequestError(err)
	}
	return query(r, api, icq.QueryBalance{QueryID: queryID})
}

// Query serves a tagged query message such as {"count":{}}.
func Query(r *common.Request, api watcher.API) (interface{}, error) {
	body, err := r.Body()
	if err != nil {
		return nil, common.NewBadRequestError(err)
	}
	msg, err := icq.DecodeQueryMsg(body)
	if err != nil {
		return nil, common.NewBadRequestError(err)
	}
	return query(r, api, msg)
}

func query(r *common.Request, api watcher.API, msg icq.QueryMsg) (interface{}, error) {
	data, err := api.Query(r.Context(), msg)
	if err != nil {
		return nil, err
	}
	return common.RawJSON(data), nil
}
