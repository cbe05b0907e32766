package routes

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/onflow/icq-watcher/engine/watcher"
	"github.com/onflow/icq-watcher/engine/watcher/rest/common"
	"github.com/onflow/icq-watcher/model/icq"
)

type instantiateRequest struct {
	Sender string             `json:"sender"`
	Msg    icq.InstantiateMsg `json:"msg"`
}

type executeRequestBody struct {
	Sender string              `json:"sender"`
	Msg    jsoniter.RawMessage `json:"msg"`
}

// Instantiate initializes the watcher and returns the stored configuration.
func Instantiate(r *common.Request, api watcher.API) (interface{}, error) {
	var req instantiateRequest
	err := r.GetBody(&req)
	if err != nil {
		return nil, common.NewBadRequestError(err)
	}
	if req.Sender == "" {
		return nil, common.NewBadRequestError(fmt.Errorf("sender must not be empty"))
	}

	err = api.Instantiate(r.Context(), req.Sender, req.Msg)
	if err != nil {
		return nil, err
	}
	return query(r, api, icq.QueryConfig{})
}

// Execute runs a tagged execute message such as {"register_addr":{"addr":"..."}}
// and returns the dispatched sub-messages. If the request committed but its
// sub-messages could not be dispatched, the error body carries them.
func Execute(r *common.Request, api watcher.API) (interface{}, error) {
	var req executeRequestBody
	err := r.GetBody(&req)
	if err != nil {
		return nil, common.NewBadRequestError(err)
	}
	if req.Sender == "" {
		return nil, common.NewBadRequestError(fmt.Errorf("sender must not be empty"))
	}
	msg, err := icq.DecodeExecuteMsg(req.Msg)
	if err != nil {
		return nil, common.NewBadRequestError(err)
	}

	resp, err := api.Execute(r.Context(), req.Sender, msg)
	if err != nil {
		if resp != nil {
			return nil, common.ToStatusError(err).WithResponse(resp)
		}
		return nil, err
	}
	return resp, nil
}
