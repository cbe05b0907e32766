package unittest

import (
	crand "crypto/rand"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/onflow/icq-watcher/model/icq"
)

const (
	DefaultAddress      = "localhost:0"
	DefaultAssetDenom   = "uatom"
	DefaultConnectionID = "connection-0"
	DefaultFrequency    = uint64(10)
)

// AccountAddressFixture returns a random, well-formed bech32 account address with the given prefix.
func AccountAddressFixture(hrp string) string {
	raw := make([]byte, 20)
	_, err := crand.Read(raw)
	if err != nil {
		panic(err)
	}
	converted, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		panic(err)
	}
	addr, err := bech32.Encode(hrp, converted)
	if err != nil {
		panic(err)
	}
	return addr
}

// SubjectFixture returns a random remote-chain account address.
func SubjectFixture() string {
	return AccountAddressFixture("cosmos")
}

// OwnerFixture returns a random local account address.
func OwnerFixture() string {
	return AccountAddressFixture("neutron")
}

// QueryIDFixture returns a random query id.
func QueryIDFixture() uint64 {
	return uint64(rand.Uint32()) + 1
}

func WatcherConfigFixture(opts ...func(*icq.Config)) icq.Config {
	cfg := icq.Config{
		Owner:        OwnerFixture(),
		AssetDenom:   DefaultAssetDenom,
		Frequency:    DefaultFrequency,
		ConnectionID: DefaultConnectionID,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func InstantiateMsgFixture(opts ...func(*icq.InstantiateMsg)) icq.InstantiateMsg {
	msg := icq.InstantiateMsg{
		Frequency:    DefaultFrequency,
		ConnectionID: DefaultConnectionID,
		AssetDenom:   DefaultAssetDenom,
	}
	for _, opt := range opts {
		opt(&msg)
	}
	return msg
}

func CoinFixture(denom string) icq.Coin {
	return icq.Coin{
		Denom:  denom,
		Amount: strconv.FormatUint(uint64(rand.Uint32())+1, 10),
	}
}

func BalanceResponseFixture(coins ...icq.Coin) icq.BalanceResponse {
	return icq.BalanceResponse{
		Balances:                 icq.Balances{Coins: coins},
		LastSubmittedLocalHeight: uint64(rand.Uint32()),
	}
}

// RegisterReplyFixture returns a successful reply assigning queryID under the correlation tag.
func RegisterReplyFixture(correlationID uint64, queryID uint64) icq.Reply {
	data, err := icq.EncodeRegisterResponse(queryID)
	if err != nil {
		panic(fmt.Sprintf("could not encode register response: %v", err))
	}
	return icq.ReplyOK(correlationID, data)
}
