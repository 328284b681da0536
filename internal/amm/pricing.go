// Package amm implements constant-product (x·y=k) swap pricing. All
// functions are pure: callers probe them speculatively for live quotes, so
// domain failures come back as sentinel errors, never panics.
package amm

import "math"

// FeeRate is the fixed protocol fee retained by the pool on every swap.
const FeeRate = 0.003

// SwapQuote is the result of pricing a hypothetical trade against a pair
// of reserves.
type SwapQuote struct {
	AmountIn    float64 `json:"amount_in"`
	AmountOut   float64 `json:"amount_out"`
	PriceImpact float64 `json:"price_impact"`
	Fee         float64 `json:"fee"`
	NewPrice    float64 `json:"new_price"`
}

// Quote prices a swap of amountIn against the given reserves. The fee is
// taken from the input before it enters the curve, so the invariant product
// grows slightly on every applied trade.
func Quote(amountIn, reserveIn, reserveOut float64) (SwapQuote, error) {
	if amountIn <= 0 || math.IsNaN(amountIn) || math.IsInf(amountIn, 0) {
		return SwapQuote{}, ErrInvalidAmount
	}
	if reserveIn <= 0 || reserveOut <= 0 {
		return SwapQuote{}, ErrInvalidReserves
	}

	k := reserveIn * reserveOut
	effectiveIn := amountIn * (1 - FeeRate)
	newReserveIn := reserveIn + effectiveIn
	newReserveOut := k / newReserveIn
	amountOut := reserveOut - newReserveOut
	if amountOut >= reserveOut {
		return SwapQuote{}, ErrReserveExhausted
	}

	priceBefore := reserveOut / reserveIn
	priceAfter := newReserveOut / newReserveIn

	return SwapQuote{
		AmountIn:    amountIn,
		AmountOut:   amountOut,
		PriceImpact: math.Abs((priceAfter-priceBefore)/priceBefore) * 100,
		Fee:         amountIn * FeeRate,
		NewPrice:    priceAfter,
	}, nil
}

// RequiredInput inverts Quote: the input needed to receive amountOut.
// Undefined when the target meets or exceeds the output reserve.
func RequiredInput(amountOut, reserveIn, reserveOut float64) (float64, error) {
	if amountOut <= 0 || math.IsNaN(amountOut) || math.IsInf(amountOut, 0) {
		return 0, ErrInvalidAmount
	}
	if reserveIn <= 0 || reserveOut <= 0 {
		return 0, ErrInvalidReserves
	}
	if amountOut >= reserveOut {
		return 0, ErrReserveExhausted
	}

	return reserveIn * amountOut / ((reserveOut - amountOut) * (1 - FeeRate)), nil
}

// LPTokensToMint returns the LP tokens minted for providing amountA and
// amountB: √(a·b) on first provision, the min pro-rata share thereafter.
func LPTokensToMint(amountA, amountB, reserveA, reserveB, lpSupply float64) float64 {
	if lpSupply == 0 {
		return math.Sqrt(amountA * amountB)
	}
	liquidityA := amountA * lpSupply / reserveA
	liquidityB := amountB * lpSupply / reserveB
	return math.Min(liquidityA, liquidityB)
}

// TokensFromLP returns the pro-rata reserves redeemed for burning lpAmount.
func TokensFromLP(lpAmount, reserveA, reserveB, lpSupply float64) (amountA, amountB float64) {
	share := lpAmount / lpSupply
	return reserveA * share, reserveB * share
}
