package icq

import (
	"errors"
	"fmt"
)

// InstantiateMsg carries the initial configuration of a watcher.
type InstantiateMsg struct {
	Frequency    uint64 `json:"frequency" validate:"gt=0"`
	ConnectionID string `json:"connection_id" validate:"required"`
	AssetDenom   string `json:"asset_denom" validate:"required"`
}

// ExecuteMsg is the closed set of state changing requests accepted by the watcher.
type ExecuteMsg interface {
	isExecuteMsg()
}

// RegisterAddr registers a balance query for the given subject.
type RegisterAddr struct {
	Addr string `json:"addr" validate:"required"`
}

func (RegisterAddr) isExecuteMsg() {}

// QueryMsg is the closed set of read-only projections served by the watcher.
type QueryMsg interface {
	isQueryMsg()
}

// QueryBalance asks for the configured denomination in the balance snapshot of a query.
type QueryBalance struct {
	QueryID uint64 `json:"query_id"`
}

// QueryConfig asks for the stored configuration.
type QueryConfig struct{}

// QueryCount asks for the number of processed KV query result notifications.
type QueryCount struct{}

// QueryObjects asks for the subject bound to a query.
type QueryObjects struct {
	QueryID uint64 `json:"query_id"`
}

// QueryQueries asks for all registered query ids, in registration order.
type QueryQueries struct{}

func (QueryBalance) isQueryMsg() {}
func (QueryConfig) isQueryMsg()  {}
func (QueryCount) isQueryMsg()   {}
func (QueryObjects) isQueryMsg() {}
func (QueryQueries) isQueryMsg() {}

// SudoMsg is the closed set of notifications the query subsystem delivers.
type SudoMsg interface {
	isSudoMsg()
}

// RequestPacket identifies the IBC packet a Response, Error or Timeout notification refers to.
type RequestPacket struct {
	Sequence           *uint64 `json:"sequence,omitempty"`
	SourcePort         *string `json:"source_port,omitempty"`
	SourceChannel      *string `json:"source_channel,omitempty"`
	DestinationPort    *string `json:"destination_port,omitempty"`
	DestinationChannel *string `json:"destination_channel,omitempty"`
	Data               []byte  `json:"data,omitempty"`
}

// SudoKVQueryResult signals that the proven KV result of a query was refreshed.
type SudoKVQueryResult struct {
	QueryID uint64 `json:"query_id"`
}

// SudoTxQueryResult delivers a proven remote transaction matching a TX query.
type SudoTxQueryResult struct {
	QueryID uint64 `json:"query_id"`
	Height  uint64 `json:"height"`
	Data    []byte `json:"data"`
}

// SudoResponse acknowledges an IBC packet sent by the watcher.
type SudoResponse struct {
	Request RequestPacket `json:"request"`
	Data    []byte        `json:"data"`
}

// SudoError reports a failed IBC packet sent by the watcher.
type SudoError struct {
	Request RequestPacket `json:"request"`
	Details string        `json:"details"`
}

// SudoTimeout reports a timed out IBC packet sent by the watcher.
type SudoTimeout struct {
	Request RequestPacket `json:"request"`
}

func (SudoKVQueryResult) isSudoMsg() {}
func (SudoTxQueryResult) isSudoMsg() {}
func (SudoResponse) isSudoMsg()      {}
func (SudoError) isSudoMsg()         {}
func (SudoTimeout) isSudoMsg()       {}

// ReplyOn decides for which outcomes of a sub-message the subsystem invokes the reply handler.
type ReplyOn string

const (
	ReplyAlways    ReplyOn = "always"
	ReplyOnSuccess ReplyOn = "success"
	ReplyOnError   ReplyOn = "error"
	ReplyNever     ReplyOn = "never"
)

// RegisterBalanceQuery asks the subsystem to periodically prove the balance of Addr.
type RegisterBalanceQuery struct {
	ConnectionID string `json:"connection_id"`
	Addr         string `json:"addr"`
	Denom        string `json:"denom"`
	UpdatePeriod uint64 `json:"update_period"`
}

// SubMsg is an outbound request whose outcome is routed back to the reply
// handler under the correlation tag ID.
type SubMsg struct {
	ID      uint64               `json:"id"`
	Msg     RegisterBalanceQuery `json:"msg"`
	ReplyOn ReplyOn              `json:"reply_on"`
}

// Response lists the sub-messages emitted by a handler invocation. They are
// dispatched only once the invocation committed.
type Response struct {
	Messages []SubMsg `json:"messages,omitempty"`
}

// AddSubMessage appends a sub-message and returns the response for chaining.
func (r *Response) AddSubMessage(msg SubMsg) *Response {
	r.Messages = append(r.Messages, msg)
	return r
}

// SubMsgResponse is the success payload of a sub-message.
type SubMsgResponse struct {
	Data []byte `json:"data,omitempty"`
}

// SubMsgResult is either a success payload or an error message.
type SubMsgResult struct {
	Ok  *SubMsgResponse `json:"ok,omitempty"`
	Err *string         `json:"error,omitempty"`
}

// Unwrap returns the success payload, or an error carrying the failure message.
func (r SubMsgResult) Unwrap() (*SubMsgResponse, error) {
	if r.Err != nil {
		return nil, errors.New(*r.Err)
	}
	if r.Ok == nil {
		return nil, fmt.Errorf("sub-message result holds neither payload nor error")
	}
	return r.Ok, nil
}

// Reply is the asynchronous outcome of a sub-message, routed by its correlation tag.
type Reply struct {
	ID     uint64       `json:"id"`
	Result SubMsgResult `json:"result"`
}

// ReplyOK builds a successful reply carrying data.
func ReplyOK(id uint64, data []byte) Reply {
	return Reply{ID: id, Result: SubMsgResult{Ok: &SubMsgResponse{Data: data}}}
}

// ReplyErr builds a failed reply.
func ReplyErr(id uint64, msg string) Reply {
	return Reply{ID: id, Result: SubMsgResult{Err: &msg}}
}

// RegisterInterchainQueryResponse is the success payload of a registration.
type RegisterInterchainQueryResponse struct {
	ID uint64 `json:"id"`
}
