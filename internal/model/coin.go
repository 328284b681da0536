package model

import "github.com/google/uuid"

// StableSymbol is the unit of account; every price is quoted against it.
const StableSymbol = "USDT"

// Coin is a token definition in the registry.
type Coin struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	Color       string    `json:"color"`
	TotalSupply float64   `json:"total_supply"`
}

// IsStable reports whether the coin is the stable reference coin.
func (c Coin) IsStable() bool {
	return c.Symbol == StableSymbol
}

// DefaultStableCoin returns the seed coin present in a fresh registry.
func DefaultStableCoin() Coin {
	return Coin{
		ID:          uuid.New(),
		Name:        "Tether USD",
		Symbol:      StableSymbol,
		Color:       "#26A17B",
		TotalSupply: 1_000_000_000,
	}
}
