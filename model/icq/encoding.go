package icq

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Messages are encoded as externally tagged JSON objects, for example
// {"register_addr":{"addr":"neutron1..."}} or {"queries":{}}.

type executeEnvelope struct {
	RegisterAddr *RegisterAddr `json:"register_addr,omitempty"`
}

type queryEnvelope struct {
	Balance *QueryBalance `json:"balance,omitempty"`
	Config  *QueryConfig  `json:"config,omitempty"`
	Count   *QueryCount   `json:"count,omitempty"`
	Objects *QueryObjects `json:"objects,omitempty"`
	Queries *QueryQueries `json:"queries,omitempty"`
}

type sudoEnvelope struct {
	KVQueryResult *SudoKVQueryResult `json:"kv_query_result,omitempty"`
	TxQueryResult *SudoTxQueryResult `json:"tx_query_result,omitempty"`
	Response      *SudoResponse      `json:"response,omitempty"`
	Error         *SudoError         `json:"error,omitempty"`
	Timeout       *SudoTimeout       `json:"timeout,omitempty"`
}

// EncodeExecuteMsg encodes msg into its tagged JSON form.
func EncodeExecuteMsg(msg ExecuteMsg) ([]byte, error) {
	var env executeEnvelope
	switch m := msg.(type) {
	case RegisterAddr:
		env.RegisterAddr = &m
	case *RegisterAddr:
		env.RegisterAddr = m
	default:
		return nil, fmt.Errorf("unknown execute message type %T", msg)
	}
	return json.Marshal(env)
}

// DecodeExecuteMsg decodes a tagged JSON execute message.
func DecodeExecuteMsg(data []byte) (ExecuteMsg, error) {
	var env executeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("could not decode execute message: %w", err)
	}
	if env.RegisterAddr != nil {
		return *env.RegisterAddr, nil
	}
	return nil, fmt.Errorf("execute message carries no known variant")
}

// EncodeQueryMsg encodes msg into its tagged JSON form.
func EncodeQueryMsg(msg QueryMsg) ([]byte, error) {
	var env queryEnvelope
	switch m := msg.(type) {
	case QueryBalance:
		env.Balance = &m
	case QueryConfig:
		env.Config = &m
	case QueryCount:
		env.Count = &m
	case QueryObjects:
		env.Objects = &m
	case QueryQueries:
		env.Queries = &m
	default:
		return nil, fmt.Errorf("unknown query message type %T", msg)
	}
	return json.Marshal(env)
}

// DecodeQueryMsg decodes a tagged JSON query message.
func DecodeQueryMsg(data []byte) (QueryMsg, error) {
	var env queryEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("could not decode query message: %w", err)
	}
	switch {
	case env.Balance != nil:
		return *env.Balance, nil
	case env.Config != nil:
		return *env.Config, nil
	case env.Count != nil:
		return *env.Count, nil
	case env.Objects != nil:
		return *env.Objects, nil
	case env.Queries != nil:
		return *env.Queries, nil
	}
	return nil, fmt.Errorf("query message carries no known variant")
}

// EncodeSudoMsg encodes msg into its tagged JSON form.
func EncodeSudoMsg(msg SudoMsg) ([]byte, error) {
	var env sudoEnvelope
	switch m := msg.(type) {
	case SudoKVQueryResult:
		env.KVQueryResult = &m
	case SudoTxQueryResult:
		env.TxQueryResult = &m
	case SudoResponse:
		env.Response = &m
	case SudoError:
		env.Error = &m
	case SudoTimeout:
		env.Timeout = &m
	default:
		return nil, fmt.Errorf("unknown sudo message type %T", msg)
	}
	return json.Marshal(env)
}

// DecodeSudoMsg decodes a tagged JSON notification.
func DecodeSudoMsg(data []byte) (SudoMsg, error) {
	var env sudoEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("could not decode sudo message: %w", err)
	}
	switch {
	case env.KVQueryResult != nil:
		return *env.KVQueryResult, nil
	case env.TxQueryResult != nil:
		return *env.TxQueryResult, nil
	case env.Response != nil:
		return *env.Response, nil
	case env.Error != nil:
		return *env.Error, nil
	case env.Timeout != nil:
		return *env.Timeout, nil
	}
	return nil, fmt.Errorf("sudo message carries no known variant")
}

// EncodeRegisterResponse encodes the success payload of a registration, as the
// subsystem places it into Reply data.
func EncodeRegisterResponse(id uint64) ([]byte, error) {
	return json.Marshal(RegisterInterchainQueryResponse{ID: id})
}

// DecodeRegisterResponse decodes the success payload of a registration.
func DecodeRegisterResponse(data []byte) (RegisterInterchainQueryResponse, error) {
	var raw struct {
		ID *uint64 `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return RegisterInterchainQueryResponse{}, err
	}
	if raw.ID == nil {
		return RegisterInterchainQueryResponse{}, fmt.Errorf("missing field `id`")
	}
	return RegisterInterchainQueryResponse{ID: *raw.ID}, nil
}

// Marshal encodes a query projection into its JSON wire form.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON wire data into v.
func Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
