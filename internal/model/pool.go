package model

import "github.com/google/uuid"

// Side selects one of a pool's two reserves.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Role marks which side of a pool is the unit of account. It is fixed at
// pool creation so pricing never has to re-derive it from symbol text.
type Role string

const (
	RoleBase  Role = "base"
	RoleQuote Role = "quote"
)

// Pool is an immutable snapshot of a constant-product pair. Mutating
// operations return a fresh value; PriceHistory is owned by the pool and
// append-only except for single-step undo.
type Pool struct {
	ID            uuid.UUID    `json:"id"`
	CoinA         Coin         `json:"coin_a"`
	CoinB         Coin         `json:"coin_b"`
	RoleA         Role         `json:"role_a"`
	RoleB         Role         `json:"role_b"`
	ReserveA      float64      `json:"reserve_a"`
	ReserveB      float64      `json:"reserve_b"`
	LPTokenSupply float64      `json:"lp_token_supply"`
	CreatedAt     int64        `json:"created_at"`
	PriceHistory  []PricePoint `json:"price_history"`
}

// References reports whether the pool pairs the given coin.
func (p Pool) References(coinID uuid.UUID) bool {
	return p.CoinA.ID == coinID || p.CoinB.ID == coinID
}

// QuoteIsA reports whether side A is the unit of account.
func (p Pool) QuoteIsA() bool {
	return p.RoleA == RoleQuote
}

// Price returns the base-coin price in quote-coin units,
// quoteReserve / baseReserve.
func (p Pool) Price() float64 {
	return PriceOf(p.ReserveA, p.ReserveB, p.QuoteIsA())
}

// PriceOf computes quoteReserve/baseReserve for the given reserves.
func PriceOf(reserveA, reserveB float64, quoteIsA bool) float64 {
	if quoteIsA {
		return reserveA / reserveB
	}
	return reserveB / reserveA
}

// Liquidity is the pool's raw reserve sum, used to rank pools by depth.
func (p Pool) Liquidity() float64 {
	return p.ReserveA + p.ReserveB
}

// Clone returns a deep copy; the history slice is never shared.
func (p Pool) Clone() Pool {
	out := p
	out.PriceHistory = make([]PricePoint, len(p.PriceHistory))
	copy(out.PriceHistory, p.PriceHistory)
	return out
}
