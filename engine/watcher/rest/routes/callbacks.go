package routes

import (
	"github.com/onflow/icq-watcher/engine/watcher"
	"github.com/onflow/icq-watcher/engine/watcher/rest/common"
	"github.com/onflow/icq-watcher/model/icq"
)

type callbackResponse struct {
	Processed bool `json:"processed"`
}

// ReplyCallback receives the acknowledgment of a registration from a remote query subsystem.
func ReplyCallback(r *common.Request, api watcher.API) (interface{}, error) {
	var reply icq.Reply
	err := r.GetBody(&reply)
	if err != nil {
		return nil, common.NewBadRequestError(err)
	}

	err = api.ProcessReply(r.Context(), reply)
	if err != nil {
		return nil, err
	}
	return callbackResponse{Processed: true}, nil
}

// SudoCallback receives a tagged notification from a remote query subsystem.
func SudoCallback(r *common.Request, api watcher.API) (interface{}, error) {
	body, err := r.Body()
	if err != nil {
		return nil, common.NewBadRequestError(err)
	}
	msg, err := icq.DecodeSudoMsg(body)
	if err != nil {
		return nil, common.NewBadRequestError(err)
	}

	err = api.ProcessSudo(r.Context(), msg)
	if err != nil {
		return nil, err
	}
	return callbackResponse{Processed: true}, nil
}
