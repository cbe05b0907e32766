package icq

// Config contains the parameters every balance registration is built from.
// It is written once when the watcher is instantiated and never mutated.
type Config struct {
	// Owner is the account which instantiated the watcher.
	Owner string `json:"owner" msgpack:"owner"`
	// AssetDenom is the denomination picked out of balance snapshots.
	AssetDenom string `json:"asset_denom" msgpack:"asset_denom"`
	// Frequency is the update period (in remote blocks) requested for every
	// registered balance query.
	Frequency uint64 `json:"frequency" msgpack:"frequency"`
	// ConnectionID identifies the light client used to prove query results.
	ConnectionID string `json:"connection_id" msgpack:"connection_id"`
}
