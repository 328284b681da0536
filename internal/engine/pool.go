package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/emirkutlugun77/amm-pool-sim/internal/amm"
	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
)

// NewPool builds a pool over two coins. The stable coin's side becomes the
// quote side; when neither side is stable, side B quotes. LP supply seeds at
// √(reserveA·reserveB) and the history opens with one zero-volume point at
// the creation price.
func NewPool(coinA, coinB model.Coin, reserveA, reserveB float64, now int64) (model.Pool, error) {
	if reserveA <= 0 || reserveB <= 0 {
		return model.Pool{}, amm.ErrInvalidReserves
	}

	roleA, roleB := model.RoleBase, model.RoleQuote
	if coinA.IsStable() && !coinB.IsStable() {
		roleA, roleB = model.RoleQuote, model.RoleBase
	}

	pool := model.Pool{
		ID:            uuid.New(),
		CoinA:         coinA,
		CoinB:         coinB,
		RoleA:         roleA,
		RoleB:         roleB,
		ReserveA:      reserveA,
		ReserveB:      reserveB,
		LPTokenSupply: math.Sqrt(reserveA * reserveB),
		CreatedAt:     now,
	}

	initial := pool.Price()
	pool.PriceHistory = []model.PricePoint{{
		Timestamp: now,
		Open:      initial,
		High:      initial,
		Low:       initial,
		Close:     initial,
		Volume:    0,
	}}
	return pool, nil
}

// ApplySwap executes a swap of amountIn on the given side and returns the
// updated pool snapshot plus the quote it was priced with. The input pool
// is never mutated.
func ApplySwap(pool model.Pool, amountIn float64, side model.Side, now int64) (model.Pool, amm.SwapQuote, error) {
	inA := side == model.SideA

	reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
	if !inA {
		reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
	}

	quote, err := amm.Quote(amountIn, reserveIn, reserveOut)
	if err != nil {
		return model.Pool{}, amm.SwapQuote{}, err
	}

	priceBefore := pool.Price()

	updated := pool.Clone()
	if inA {
		updated.ReserveA += amountIn
		updated.ReserveB -= quote.AmountOut
	} else {
		updated.ReserveB += amountIn
		updated.ReserveA -= quote.AmountOut
	}
	if updated.ReserveA <= 0 || updated.ReserveB <= 0 {
		panic(fmt.Sprintf("reserve drained applying swap to pool %s: %f/%f",
			pool.ID, updated.ReserveA, updated.ReserveB))
	}

	priceAfter := updated.Price()

	updated.PriceHistory = append(updated.PriceHistory, model.PricePoint{
		Timestamp: now,
		Open:      priceBefore,
		High:      math.Max(priceBefore, priceAfter),
		Low:       math.Min(priceBefore, priceAfter),
		Close:     priceAfter,
		Volume:    stableVolume(pool, amountIn, quote.AmountOut, inA, priceBefore, priceAfter),
	})

	return updated, quote, nil
}

// stableVolume expresses a trade's size in stable-coin units: the stable leg
// directly when one side is stable, otherwise the base leg converted at the
// price on its side of the trade.
func stableVolume(pool model.Pool, amountIn, amountOut float64, inA bool, priceBefore, priceAfter float64) float64 {
	inCoin, outCoin := pool.CoinA, pool.CoinB
	if !inA {
		inCoin, outCoin = pool.CoinB, pool.CoinA
	}

	switch {
	case inCoin.IsStable():
		return amountIn
	case outCoin.IsStable():
		return amountOut
	case inA != pool.QuoteIsA():
		// base coin sold in, priced before the trade moved the pool
		return amountIn * priceBefore
	default:
		return amountOut * priceAfter
	}
}

// invertSwap reconstructs the pre-trade reserves for the pool a transaction
// was applied to: the exact algebraic inverse of ApplySwap's reserve update.
func invertSwap(pool model.Pool, tx model.Transaction) (reserveA, reserveB float64) {
	if tx.Type == model.TxSell {
		// sell: amountIn entered side A, amountOut left side B
		return pool.ReserveA - tx.AmountIn, pool.ReserveB + tx.AmountOut
	}
	// buy: amountIn entered side B, amountOut left side A
	return pool.ReserveA + tx.AmountOut, pool.ReserveB - tx.AmountIn
}
