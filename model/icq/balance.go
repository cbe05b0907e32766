package icq

// Coin is a single balance entry of a snapshot.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Balances is the proven set of coins held by a watched subject.
type Balances struct {
	Coins []Coin `json:"coins"`
}

// Find returns the coin with the given denomination, or nil if the snapshot
// holds no entry for it.
func (b Balances) Find(denom string) *Coin {
	for i := range b.Coins {
		if b.Coins[i].Denom == denom {
			coin := b.Coins[i]
			return &coin
		}
	}
	return nil
}

// BalanceResponse is the balance snapshot the query subsystem holds for a query.
type BalanceResponse struct {
	Balances                 Balances `json:"balances"`
	LastSubmittedLocalHeight uint64   `json:"last_submitted_local_height"`
}
