package model

import (
	"strings"

	"github.com/google/uuid"
)

// Snapshot is the full simulator state handed to and received from the
// persistence layer: plain values, JSON-serializable as-is.
type Snapshot struct {
	Coins        []Coin        `json:"coins"`
	Pools        []Pool        `json:"pools"`
	Transactions []Transaction `json:"transactions"`
}

// NewSnapshot returns a fresh state seeded with the default stable coin.
func NewSnapshot() Snapshot {
	return Snapshot{Coins: []Coin{DefaultStableCoin()}}
}

// FindCoin returns the coin with the given id.
func (s Snapshot) FindCoin(id uuid.UUID) (Coin, bool) {
	for _, c := range s.Coins {
		if c.ID == id {
			return c, true
		}
	}
	return Coin{}, false
}

// FindCoinBySymbol returns the coin with the given symbol. Registered
// symbols are uppercase, so the comparison ignores case.
func (s Snapshot) FindCoinBySymbol(symbol string) (Coin, bool) {
	for _, c := range s.Coins {
		if strings.EqualFold(c.Symbol, symbol) {
			return c, true
		}
	}
	return Coin{}, false
}

// FindPool returns the pool with the given id.
func (s Snapshot) FindPool(id uuid.UUID) (Pool, bool) {
	for _, p := range s.Pools {
		if p.ID == id {
			return p, true
		}
	}
	return Pool{}, false
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Coins:        make([]Coin, len(s.Coins)),
		Pools:        make([]Pool, len(s.Pools)),
		Transactions: make([]Transaction, len(s.Transactions)),
	}
	copy(out.Coins, s.Coins)
	copy(out.Transactions, s.Transactions)
	for i, p := range s.Pools {
		out.Pools[i] = p.Clone()
	}
	return out
}
