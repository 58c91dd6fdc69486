package v3math

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestComputeSwapStepExactInReachesTarget(t *testing.T) {
	current := SqrtRatioAtTick(0)
	target := SqrtRatioAtTick(-60)
	liquidity := uint256.NewInt(1_000_000_000_000)
	amountRemaining := new(uint256.Int).Lsh(uint256.NewInt(1), 128)

	next, amountIn, amountOut, feeAmount := ComputeSwapStep(current, target, liquidity, amountRemaining, 3000)

	if !next.Eq(target) {
		t.Fatalf("next = %s, want target %s", next, target)
	}
	if amountIn.IsZero() || amountOut.IsZero() {
		t.Fatal("expected non-zero amounts")
	}
	// Fee on the consumed input at 0.30%.
	wantFee := MulDivRoundingUp(amountIn, uint256.NewInt(3000), uint256.NewInt(997000))
	if !feeAmount.Eq(wantFee) {
		t.Fatalf("feeAmount = %s, want %s", feeAmount, wantFee)
	}
}

func TestComputeSwapStepExactInPartial(t *testing.T) {
	current := SqrtRatioAtTick(0)
	target := SqrtRatioAtTick(-887000)
	liquidity := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	amountRemaining := uint256.NewInt(1_000_000)

	next, amountIn, _, feeAmount := ComputeSwapStep(current, target, liquidity, amountRemaining, 3000)

	if next.Eq(target) {
		t.Fatal("small input must not reach a far target")
	}
	// Input plus fee consumes the whole remainder.
	total := new(uint256.Int).Add(amountIn, feeAmount)
	if !total.Eq(amountRemaining) {
		t.Fatalf("amountIn+fee = %s, want %s", total, amountRemaining)
	}
	if next.Cmp(current) >= 0 {
		t.Fatal("zeroForOne step must lower the price")
	}
}

func TestComputeSwapStepDirections(t *testing.T) {
	liquidity := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	amountRemaining := uint256.NewInt(1_000_000)

	// oneForZero raises the price.
	current := SqrtRatioAtTick(0)
	target := SqrtRatioAtTick(887000)
	next, _, _, _ := ComputeSwapStep(current, target, liquidity, amountRemaining, 500)
	if next.Cmp(current) <= 0 {
		t.Fatal("oneForZero step must raise the price")
	}
}
