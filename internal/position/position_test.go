package position

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"poolsim/internal/model"
)

func TestFeeTierRate(t *testing.T) {
	cases := map[uint64]float64{
		100:   0.0001,
		500:   0.0005,
		3000:  0.003,
		10000: 0.01,
	}
	for fee, want := range cases {
		if got := FeeTierRate(fee); got != want {
			t.Fatalf("FeeTierRate(%d) = %v, want %v", fee, got, want)
		}
	}
}

func TestFeeTierRateInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid fee tier")
		}
	}()
	FeeTierRate(1234)
}

func TestFeeYieldHalfShare(t *testing.T) {
	// Matching the pool's own liquidity earns exactly half the tier fee.
	l := uint256.NewInt(1_000_000)
	got := FeeYieldUSD(l, l, 10_000, 3000)
	want := decimal.NewFromFloat(0.003 * 10_000 * 0.5)
	if !got.Equal(want) {
		t.Fatalf("FeeYieldUSD = %s, want %s", got, want)
	}
}

func TestFeeYieldTokens(t *testing.T) {
	l := uint256.NewInt(1_000_000)
	earned0, earned1 := FeeYieldTokens(l, l, 200, 100, 3000)
	if math.Abs(earned0-0.3) > 1e-12 {
		t.Fatalf("earned0 = %v, want 0.3", earned0)
	}
	if math.Abs(earned1-0.15) > 1e-12 {
		t.Fatalf("earned1 = %v, want 0.15", earned1)
	}
}

func TestOptimalSplit(t *testing.T) {
	// Symmetric range around price 1 with both tokens at $1: the budget
	// splits evenly.
	d := OptimalSplit(1.0, 0.5, 2.0, 1.0, 1.0, 1000)

	if d.Amount0 <= 0 || d.Amount1 <= 0 {
		t.Fatalf("amounts must be positive, got %v / %v", d.Amount0, d.Amount1)
	}
	if math.Abs(d.Amount0-d.Amount1) > 1e-9 {
		t.Fatalf("symmetric split expected, got %v / %v", d.Amount0, d.Amount1)
	}
	total := d.Amount0*1.0 + d.Amount1*1.0
	if math.Abs(total-1000) > 1e-6 {
		t.Fatalf("split total = %v, want 1000", total)
	}
	if d.LiquidityDelta <= 0 {
		t.Fatalf("liquidity delta = %v, want positive", d.LiquidityDelta)
	}
}

func TestOptimalSplitClamps(t *testing.T) {
	// Price at the lower bound: everything goes into token0.
	d := OptimalSplit(0.5, 0.5, 2.0, 1.0, 1.0, 1000)
	if d.Amount1 != 0 {
		t.Fatalf("amount1 = %v, want 0 at the lower bound", d.Amount1)
	}
	if d.Amount0 <= 0 {
		t.Fatalf("amount0 = %v, want positive", d.Amount0)
	}
}

func TestLiquidityForAmounts(t *testing.T) {
	amount0 := uint256.NewInt(1_000_000)
	amount1 := uint256.NewInt(1_000_000)

	// Below the range only token0 matters.
	below := LiquidityForAmounts(0.25, 0.5, 2.0, amount0, new(uint256.Int))
	if below.IsZero() {
		t.Fatal("below-range liquidity must come from amount0")
	}

	// Above the range only token1 matters.
	above := LiquidityForAmounts(4.0, 0.5, 2.0, new(uint256.Int), amount1)
	if above.IsZero() {
		t.Fatal("above-range liquidity must come from amount1")
	}

	// Inside the range the smaller side wins: starving one side starves
	// the position.
	inside := LiquidityForAmounts(1.0, 0.5, 2.0, amount0, new(uint256.Int))
	if !inside.IsZero() {
		t.Fatalf("inside-range liquidity = %s, want 0 with empty amount1", inside)
	}
	inside = LiquidityForAmounts(1.0, 0.5, 2.0, amount0, amount1)
	if inside.IsZero() {
		t.Fatal("inside-range liquidity must be positive with both amounts")
	}
}

func TestActiveLiquidityAtTick(t *testing.T) {
	neg := func(n uint64) *uint256.Int {
		return new(uint256.Int).Neg(uint256.NewInt(n))
	}
	ticks := []model.PoolTick{
		{Tick: -120, LiquidityNet: uint256.NewInt(500)},
		{Tick: -60, LiquidityNet: uint256.NewInt(300)},
		{Tick: 0, LiquidityNet: neg(300)},
		{Tick: 60, LiquidityNet: neg(500)},
	}

	// Current tick in (-60, 0): both lower deltas accumulate, then the
	// bracket stops the walk.
	got := ActiveLiquidityAtTick(ticks, -30)
	if !got.Eq(uint256.NewInt(800)) {
		t.Fatalf("active liquidity = %s, want 800", got)
	}

	// Current tick below every loaded tick: only the first delta counts.
	got = ActiveLiquidityAtTick(ticks[1:], -60)
	if !got.Eq(uint256.NewInt(300)) {
		t.Fatalf("active liquidity = %s, want 300", got)
	}
}
