package icq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeQueryMsg(t *testing.T) {
	cases := map[string]QueryMsg{
		`{"balance":{"query_id":3}}`: QueryBalance{QueryID: 3},
		`{"config":{}}`:              QueryConfig{},
		`{"count":{}}`:               QueryCount{},
		`{"objects":{"query_id":9}}`: QueryObjects{QueryID: 9},
		`{"queries":{}}`:             QueryQueries{},
	}
	for raw, expected := range cases {
		msg, err := DecodeQueryMsg([]byte(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, expected, msg, raw)

		encoded, err := EncodeQueryMsg(msg)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(encoded))
	}

	_, err := DecodeQueryMsg([]byte(`{"unknown":{}}`))
	require.Error(t, err)
}

func TestDecodeSudoMsg(t *testing.T) {
	msg, err := DecodeSudoMsg([]byte(`{"kv_query_result":{"query_id":7}}`))
	require.NoError(t, err)
	assert.Equal(t, SudoKVQueryResult{QueryID: 7}, msg)

	msg, err = DecodeSudoMsg([]byte(`{"timeout":{"request":{}}}`))
	require.NoError(t, err)
	assert.IsType(t, SudoTimeout{}, msg)

	_, err = DecodeSudoMsg([]byte(`not json`))
	require.Error(t, err)
}

func TestDecodeExecuteMsg(t *testing.T) {
	msg, err := DecodeExecuteMsg([]byte(`{"register_addr":{"addr":"neutron1abc"}}`))
	require.NoError(t, err)
	assert.Equal(t, RegisterAddr{Addr: "neutron1abc"}, msg)

	_, err = DecodeExecuteMsg([]byte(`{}`))
	require.Error(t, err)
}

func TestDecodeRegisterResponse(t *testing.T) {
	data, err := EncodeRegisterResponse(7)
	require.NoError(t, err)

	resp, err := DecodeRegisterResponse(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), resp.ID)

	t.Run("missing id", func(t *testing.T) {
		_, err := DecodeRegisterResponse([]byte(`{"other":1}`))
		require.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := DecodeRegisterResponse([]byte(`{"id":"seven"`))
		require.Error(t, err)
	})
}

func TestSubMsgResult_Unwrap(t *testing.T) {
	ok := ReplyOK(1, []byte("data"))
	resp, err := ok.Result.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), resp.Data)

	failed := ReplyErr(1, "out of gas")
	_, err = failed.Result.Unwrap()
	require.EqualError(t, err, "out of gas")

	_, err = SubMsgResult{}.Unwrap()
	require.Error(t, err)
}

func TestCorrelationIDs(t *testing.T) {
	assert.False(t, IsRequestCorrelationID(RegisterBalancesReplyID))
	id := RequestCorrelationID(42)
	assert.True(t, IsRequestCorrelationID(id))
	assert.Equal(t, uint64(42), id&^RequestCorrelationFlag)

	mode, err := ParseCorrelationMode(" Legacy ")
	require.NoError(t, err)
	assert.Equal(t, CorrelationLegacy, mode)

	_, err = ParseCorrelationMode("shared")
	require.Error(t, err)
}

func TestBalances_Find(t *testing.T) {
	b := Balances{Coins: []Coin{{Denom: "untrn", Amount: "5"}, {Denom: "uatom", Amount: "10"}}}
	coin := b.Find("uatom")
	require.NotNil(t, coin)
	assert.Equal(t, "10", coin.Amount)
	assert.Nil(t, b.Find("uosmo"))
}
