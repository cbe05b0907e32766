// Package kv decodes the key/value results of balance queries. A balance
// query proves one value per watched denomination, stored in the bank module
// under a key derived from the account address.
package kv

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/onflow/icq-watcher/model/icq"
)

// BankStoreKey is the name of the store holding account balances.
const BankStoreKey = "bank"

// BalancesPrefix prefixes the balance keys of the bank store.
const BalancesPrefix byte = 0x02

// maxAddressLength is the longest account address which fits the length prefix.
const maxAddressLength = 255

const (
	coinDenomField  protowire.Number = 1
	coinAmountField protowire.Number = 2
)

// ErrInvalidAddress is returned when an account address is not valid bech32.
var ErrInvalidAddress = errors.New("invalid account address")

// StorageValue is a single proven key/value pair of a query result.
type StorageValue struct {
	StoragePrefix string `json:"storage_prefix"`
	Key           []byte `json:"key"`
	Value         []byte `json:"value"`
}

// AccountBytes decodes a bech32 account address into its raw bytes.
// Expected errors during normal operations:
//   - ErrInvalidAddress if addr is not a valid bech32 string
func AccountBytes(addr string) ([]byte, error) {
	_, data, err := bech32.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %s", ErrInvalidAddress, addr, err.Error())
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %s", ErrInvalidAddress, addr, err.Error())
	}
	if len(raw) == 0 || len(raw) > maxAddressLength {
		return nil, fmt.Errorf("%w %q: %d address bytes", ErrInvalidAddress, addr, len(raw))
	}
	return raw, nil
}

// BalanceKey returns the bank store key of the balance of addr in denom:
// prefix | len(addr) | addr | denom.
func BalanceKey(addr string, denom string) ([]byte, error) {
	raw, err := AccountBytes(addr)
	if err != nil {
		return nil, err
	}
	key := make([]byte, 0, 2+len(raw)+len(denom))
	key = append(key, BalancesPrefix, byte(len(raw)))
	key = append(key, raw...)
	key = append(key, denom...)
	return key, nil
}

// EncodeCoin encodes coin in the protobuf wire format of the bank module.
func EncodeCoin(coin icq.Coin) []byte {
	var b []byte
	b = protowire.AppendTag(b, coinDenomField, protowire.BytesType)
	b = protowire.AppendString(b, coin.Denom)
	b = protowire.AppendTag(b, coinAmountField, protowire.BytesType)
	b = protowire.AppendString(b, coin.Amount)
	return b
}

// DecodeCoin decodes a bank module coin. Unknown fields are skipped.
func DecodeCoin(data []byte) (icq.Coin, error) {
	var coin icq.Coin
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return icq.Coin{}, fmt.Errorf("invalid coin tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if (num == coinDenomField || num == coinAmountField) && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return icq.Coin{}, fmt.Errorf("invalid coin field %d: %w", num, protowire.ParseError(n))
			}
			if num == coinDenomField {
				coin.Denom = string(v)
			} else {
				coin.Amount = string(v)
			}
			data = data[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return icq.Coin{}, fmt.Errorf("invalid coin field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	if coin.Denom == "" {
		return icq.Coin{}, fmt.Errorf("coin without denomination")
	}
	return coin, nil
}

// BalancesFromValues collects the coins proven by a balance query result.
// Values which are absent from the remote store are skipped.
func BalancesFromValues(values []StorageValue) (icq.Balances, error) {
	balances := icq.Balances{Coins: []icq.Coin{}}
	for i, v := range values {
		if v.StoragePrefix != BankStoreKey {
			return icq.Balances{}, fmt.Errorf("value %d: unexpected store %q", i, v.StoragePrefix)
		}
		if len(v.Value) == 0 {
			continue
		}
		coin, err := DecodeCoin(v.Value)
		if err != nil {
			return icq.Balances{}, fmt.Errorf("value %d: %w", i, err)
		}
		balances.Coins = append(balances.Coins, coin)
	}
	return balances, nil
}
