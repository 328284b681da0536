// Package metrics derives display values (price, market cap, FDV, volume,
// price change) from the simulator state. It reads coins, pools, and the
// ledger and mutates nothing.
package metrics

import (
	"time"

	"github.com/google/uuid"

	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
)

// CirculatingRatio is the fixed share of the total supply assumed to
// circulate.
const CirculatingRatio = 0.7

const dayMs = int64(24 * time.Hour / time.Millisecond)

// CoinMetrics bundles every derived value for one coin.
type CoinMetrics struct {
	Price             float64 `json:"price"`
	MarketCap         float64 `json:"market_cap"`
	FDV               float64 `json:"fdv"`
	Volume24h         float64 `json:"volume_24h"`
	PriceChange24h    float64 `json:"price_change_24h"`
	CirculatingSupply float64 `json:"circulating_supply"`
}

// Price returns the coin's stable-coin price: 1.0 for the stable coin
// itself, the most liquid stable pairing otherwise, 0 when no stable pool
// exists.
func Price(coin model.Coin, pools []model.Pool) float64 {
	if coin.IsStable() {
		return 1.0
	}

	best, ok := mostLiquid(pools, func(p model.Pool) bool {
		return p.References(coin.ID) && (p.CoinA.IsStable() || p.CoinB.IsStable())
	})
	if !ok {
		return 0
	}
	return best.Price()
}

// Volume24h sums the coin's trade legs over the trailing 24h window, each
// amount converted to stable units at the coin's current price rather than
// the price at trade time.
func Volume24h(coin model.Coin, transactions []model.Transaction, pools []model.Pool, now int64) float64 {
	cutoff := now - dayMs
	price := Price(coin, pools)

	poolIDs := make(map[uuid.UUID]struct{})
	for _, p := range pools {
		if p.References(coin.ID) {
			poolIDs[p.ID] = struct{}{}
		}
	}

	var total float64
	for _, tx := range transactions {
		if tx.Timestamp < cutoff {
			continue
		}
		if _, ok := poolIDs[tx.PoolID]; !ok {
			continue
		}
		switch coin.Symbol {
		case tx.TokenIn:
			total += tx.AmountIn * price
		case tx.TokenOut:
			total += tx.AmountOut * price
		}
	}
	return total
}

// PriceChange24h returns the percentage move between the first open and the
// last close of the most liquid pool's stored history. Despite the name the
// span is the pool's lifetime, not a rolling day; fewer than two points, or
// the stable coin, yields 0.
func PriceChange24h(coin model.Coin, pools []model.Pool) float64 {
	if coin.IsStable() {
		return 0
	}
	if Price(coin, pools) == 0 {
		return 0
	}

	best, ok := mostLiquid(pools, func(p model.Pool) bool { return p.References(coin.ID) })
	if !ok || len(best.PriceHistory) < 2 {
		return 0
	}

	first := best.PriceHistory[0].Open
	last := best.PriceHistory[len(best.PriceHistory)-1].Close
	if first <= 0 {
		return 0
	}
	return (last - first) / first * 100
}

// Calculate assembles all metrics for a coin as of now (Unix milliseconds).
func Calculate(coin model.Coin, pools []model.Pool, transactions []model.Transaction, now int64) CoinMetrics {
	price := Price(coin, pools)
	circulating := coin.TotalSupply * CirculatingRatio
	return CoinMetrics{
		Price:             price,
		MarketCap:         price * circulating,
		FDV:               price * coin.TotalSupply,
		Volume24h:         Volume24h(coin, transactions, pools, now),
		PriceChange24h:    PriceChange24h(coin, pools),
		CirculatingSupply: circulating,
	}
}

func mostLiquid(pools []model.Pool, match func(model.Pool) bool) (model.Pool, bool) {
	var best model.Pool
	found := false
	for _, p := range pools {
		if !match(p) {
			continue
		}
		if !found || p.Liquidity() > best.Liquidity() {
			best = p
			found = true
		}
	}
	return best, found
}
