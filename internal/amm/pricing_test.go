package amm

import (
	"errors"
	"math"
	"testing"
)

func TestQuoteKnownScenario(t *testing.T) {
	// 1,000,000 TOKEN / 100,000 USDT, sell 10,000 TOKEN.
	q, err := Quote(10_000, 1_000_000, 100_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := q.AmountOut, 987.23; math.Abs(got-want) > 0.01 {
		t.Fatalf("amount out = %f, want ~%f", got, want)
	}
	if got, want := q.Fee, 30.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("fee = %f, want %f", got, want)
	}
	if got, want := q.NewPrice, 0.09804; math.Abs(got-want) > 0.0001 {
		t.Fatalf("new price = %f, want ~%f", got, want)
	}
	if q.PriceImpact < 1.0 || q.PriceImpact > 1.2 {
		t.Fatalf("price impact = %f, want ~1.1", q.PriceImpact)
	}
}

func TestQuoteNeverDrainsReserve(t *testing.T) {
	cases := []struct {
		amountIn, reserveIn, reserveOut float64
	}{
		{1, 100, 100},
		{1e9, 100, 100},
		{1e15, 1e3, 1e12},
		{0.0001, 5, 0.001},
	}
	for _, tc := range cases {
		q, err := Quote(tc.amountIn, tc.reserveIn, tc.reserveOut)
		if err != nil {
			t.Fatalf("quote(%v): unexpected error: %v", tc, err)
		}
		if q.AmountOut >= tc.reserveOut {
			t.Fatalf("quote(%v): amount out %f >= reserve %f", tc, q.AmountOut, tc.reserveOut)
		}
		if q.AmountOut <= 0 {
			t.Fatalf("quote(%v): amount out %f not positive", tc, q.AmountOut)
		}
	}
}

func TestQuoteRequiredInputRoundTrip(t *testing.T) {
	cases := []struct {
		amountIn, reserveIn, reserveOut float64
	}{
		{10_000, 1_000_000, 100_000},
		{1, 500, 2_000},
		{333.33, 10_000, 10_000},
	}
	for _, tc := range cases {
		q, err := Quote(tc.amountIn, tc.reserveIn, tc.reserveOut)
		if err != nil {
			t.Fatalf("quote: %v", err)
		}
		back, err := RequiredInput(q.AmountOut, tc.reserveIn, tc.reserveOut)
		if err != nil {
			t.Fatalf("required input: %v", err)
		}
		if rel := math.Abs(back-tc.amountIn) / tc.amountIn; rel > 1e-9 {
			t.Fatalf("round trip %f -> %f, relative error %g", tc.amountIn, back, rel)
		}
	}
}

func TestQuoteInvariantGrows(t *testing.T) {
	reserveIn, reserveOut := 1_000_000.0, 100_000.0
	q, err := Quote(10_000, reserveIn, reserveOut)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	before := reserveIn * reserveOut
	after := (reserveIn + q.AmountIn) * (reserveOut - q.AmountOut)
	if after < before {
		t.Fatalf("invariant shrank: %f -> %f", before, after)
	}
}

func TestQuoteErrors(t *testing.T) {
	if _, err := Quote(0, 100, 100); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v", err)
	}
	if _, err := Quote(-5, 100, 100); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount: got %v", err)
	}
	if _, err := Quote(math.NaN(), 100, 100); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("NaN amount: got %v", err)
	}
	if _, err := Quote(10, 0, 100); !errors.Is(err, ErrInvalidReserves) {
		t.Fatalf("zero reserve in: got %v", err)
	}
	if _, err := Quote(10, 100, -1); !errors.Is(err, ErrInvalidReserves) {
		t.Fatalf("negative reserve out: got %v", err)
	}
}

func TestRequiredInputErrors(t *testing.T) {
	if _, err := RequiredInput(100, 1_000, 100); !errors.Is(err, ErrReserveExhausted) {
		t.Fatalf("target == reserve: got %v", err)
	}
	if _, err := RequiredInput(101, 1_000, 100); !errors.Is(err, ErrReserveExhausted) {
		t.Fatalf("target > reserve: got %v", err)
	}
	if _, err := RequiredInput(0, 1_000, 100); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero target: got %v", err)
	}
	if _, err := RequiredInput(10, 0, 100); !errors.Is(err, ErrInvalidReserves) {
		t.Fatalf("zero reserve: got %v", err)
	}
}

func TestLPTokensToMint(t *testing.T) {
	if got, want := LPTokensToMint(400, 100, 0, 0, 0), 200.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("first provision: got %f, want %f", got, want)
	}

	// Existing pool 1000/500 with 707.1 LP: balanced add mints pro-rata,
	// unbalanced add mints the worse side.
	lp := LPTokensToMint(100, 50, 1_000, 500, 707.1)
	if math.Abs(lp-70.71) > 0.01 {
		t.Fatalf("balanced add: got %f, want ~70.71", lp)
	}
	lp = LPTokensToMint(100, 10, 1_000, 500, 707.1)
	if math.Abs(lp-14.142) > 0.01 {
		t.Fatalf("unbalanced add: got %f, want ~14.142", lp)
	}
}

func TestTokensFromLP(t *testing.T) {
	a, b := TokensFromLP(100, 1_000, 500, 1_000)
	if math.Abs(a-100) > 1e-9 || math.Abs(b-50) > 1e-9 {
		t.Fatalf("redeem: got %f/%f, want 100/50", a, b)
	}
}
