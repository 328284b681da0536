package engine

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
)

func testCoin(symbol string, supply float64) model.Coin {
	return model.Coin{ID: uuid.New(), Name: symbol, Symbol: symbol, TotalSupply: supply}
}

func testPool(t *testing.T, coinA, coinB model.Coin, reserveA, reserveB float64) model.Pool {
	t.Helper()
	pool, err := NewPool(coinA, coinB, reserveA, reserveB, 1_700_000_000_000)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return pool
}

func TestNewPoolSeedsHistoryAndSupply(t *testing.T) {
	pool := testPool(t, testCoin("TOKEN", 1e9), testCoin("USDT", 1e9), 1_000_000, 100_000)

	if got, want := pool.LPTokenSupply, math.Sqrt(1_000_000*100_000); math.Abs(got-want) > 1e-9 {
		t.Fatalf("lp supply = %f, want %f", got, want)
	}
	if len(pool.PriceHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(pool.PriceHistory))
	}
	seed := pool.PriceHistory[0]
	if seed.Open != 0.1 || seed.Close != 0.1 || seed.High != 0.1 || seed.Low != 0.1 {
		t.Fatalf("seed point = %+v, want flat 0.1", seed)
	}
	if seed.Volume != 0 {
		t.Fatalf("seed volume = %f, want 0", seed.Volume)
	}
}

func TestNewPoolStableSideBecomesQuote(t *testing.T) {
	token := testCoin("TOKEN", 1e9)
	usdt := testCoin("USDT", 1e9)

	tokenFirst := testPool(t, token, usdt, 1_000_000, 100_000)
	if tokenFirst.RoleA != model.RoleBase || tokenFirst.RoleB != model.RoleQuote {
		t.Fatalf("TOKEN/USDT roles = %s/%s", tokenFirst.RoleA, tokenFirst.RoleB)
	}
	if got := tokenFirst.Price(); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("TOKEN/USDT price = %f, want 0.1", got)
	}

	// Same market with USDT on side A must quote the same price, not its
	// inverse.
	usdtFirst := testPool(t, usdt, token, 100_000, 1_000_000)
	if usdtFirst.RoleA != model.RoleQuote || usdtFirst.RoleB != model.RoleBase {
		t.Fatalf("USDT/TOKEN roles = %s/%s", usdtFirst.RoleA, usdtFirst.RoleB)
	}
	if got := usdtFirst.Price(); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("USDT/TOKEN price = %f, want 0.1", got)
	}
}

func TestNewPoolRejectsEmptyReserves(t *testing.T) {
	if _, err := NewPool(testCoin("A", 1), testCoin("B", 1), 0, 100, 0); err == nil {
		t.Fatalf("expected error for zero reserve")
	}
	if _, err := NewPool(testCoin("A", 1), testCoin("B", 1), 100, -1, 0); err == nil {
		t.Fatalf("expected error for negative reserve")
	}
}

func TestApplySwapScenario(t *testing.T) {
	pool := testPool(t, testCoin("TOKEN", 1e9), testCoin("USDT", 1e9), 1_000_000, 100_000)

	updated, quote, err := ApplySwap(pool, 10_000, model.SideA, pool.CreatedAt+60_000)
	if err != nil {
		t.Fatalf("apply swap: %v", err)
	}

	if math.Abs(updated.ReserveA-1_009_970) > 1e-6 {
		t.Fatalf("reserve A = %f, want 1009970", updated.ReserveA)
	}
	if math.Abs(updated.ReserveB-99_012.77) > 0.01 {
		t.Fatalf("reserve B = %f, want ~99012.77", updated.ReserveB)
	}
	if math.Abs(quote.AmountOut-987.23) > 0.01 {
		t.Fatalf("amount out = %f, want ~987.23", quote.AmountOut)
	}
	if math.Abs(updated.Price()-0.09804) > 0.0001 {
		t.Fatalf("price = %f, want ~0.09804", updated.Price())
	}

	if len(updated.PriceHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(updated.PriceHistory))
	}
	point := updated.PriceHistory[1]
	if point.Open != 0.1 {
		t.Fatalf("open = %f, want 0.1", point.Open)
	}
	if math.Abs(point.Close-updated.Price()) > 1e-12 {
		t.Fatalf("close = %f, want %f", point.Close, updated.Price())
	}
	if point.High != point.Open || point.Low != point.Close {
		t.Fatalf("high/low = %f/%f, want %f/%f", point.High, point.Low, point.Open, point.Close)
	}
	// TOKEN sold into a stable-quoted pool: volume is the USDT received.
	if math.Abs(point.Volume-quote.AmountOut) > 1e-12 {
		t.Fatalf("volume = %f, want %f", point.Volume, quote.AmountOut)
	}
}

func TestApplySwapDoesNotMutateInput(t *testing.T) {
	pool := testPool(t, testCoin("TOKEN", 1e9), testCoin("USDT", 1e9), 1_000_000, 100_000)
	before := pool.Clone()

	if _, _, err := ApplySwap(pool, 10_000, model.SideA, pool.CreatedAt+1); err != nil {
		t.Fatalf("apply swap: %v", err)
	}

	if pool.ReserveA != before.ReserveA || pool.ReserveB != before.ReserveB {
		t.Fatalf("input pool reserves mutated: %f/%f", pool.ReserveA, pool.ReserveB)
	}
	if len(pool.PriceHistory) != len(before.PriceHistory) {
		t.Fatalf("input pool history mutated: %d points", len(pool.PriceHistory))
	}
}

func TestApplySwapGrowsInvariant(t *testing.T) {
	pool := testPool(t, testCoin("TOKEN", 1e9), testCoin("USDT", 1e9), 1_000_000, 100_000)
	before := pool.ReserveA * pool.ReserveB

	updated, _, err := ApplySwap(pool, 25_000, model.SideA, pool.CreatedAt+1)
	if err != nil {
		t.Fatalf("apply swap: %v", err)
	}
	after := updated.ReserveA * updated.ReserveB
	if after < before {
		t.Fatalf("invariant shrank: %f -> %f", before, after)
	}
}

func TestStableVolumeBranches(t *testing.T) {
	token := testCoin("TOKEN", 1e9)
	other := testCoin("OTHER", 1e9)
	usdt := testCoin("USDT", 1e9)

	// Stable bought in on side B: volume is the stable input.
	stablePool := testPool(t, token, usdt, 1_000_000, 100_000)
	updated, _, err := ApplySwap(stablePool, 1_000, model.SideB, stablePool.CreatedAt+1)
	if err != nil {
		t.Fatalf("apply swap: %v", err)
	}
	last := updated.PriceHistory[len(updated.PriceHistory)-1]
	if math.Abs(last.Volume-1_000) > 1e-12 {
		t.Fatalf("stable-in volume = %f, want 1000", last.Volume)
	}

	// No stable side, base sold in: converted at the pre-trade price.
	crossPool := testPool(t, token, other, 1_000_000, 500_000)
	priceBefore := crossPool.Price()
	updated, _, err = ApplySwap(crossPool, 10_000, model.SideA, crossPool.CreatedAt+1)
	if err != nil {
		t.Fatalf("apply swap: %v", err)
	}
	last = updated.PriceHistory[len(updated.PriceHistory)-1]
	if math.Abs(last.Volume-10_000*priceBefore) > 1e-9 {
		t.Fatalf("cross volume = %f, want %f", last.Volume, 10_000*priceBefore)
	}

	// No stable side, quote sold in: output leg converted at the post-trade
	// price.
	updated2, quote, err := ApplySwap(crossPool, 5_000, model.SideB, crossPool.CreatedAt+1)
	if err != nil {
		t.Fatalf("apply swap: %v", err)
	}
	last = updated2.PriceHistory[len(updated2.PriceHistory)-1]
	if math.Abs(last.Volume-quote.AmountOut*updated2.Price()) > 1e-9 {
		t.Fatalf("cross quote-in volume = %f, want %f", last.Volume, quote.AmountOut*updated2.Price())
	}
}
