package v3math

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestSqrtRatioAtTickBounds(t *testing.T) {
	if got := SqrtRatioAtTick(MinTick); !got.Eq(MinSqrtRatio) {
		t.Fatalf("SqrtRatioAtTick(MinTick) = %s, want %s", got, MinSqrtRatio)
	}
	if got := SqrtRatioAtTick(MaxTick); !got.Eq(MaxSqrtRatio) {
		t.Fatalf("SqrtRatioAtTick(MaxTick) = %s, want %s", got, MaxSqrtRatio)
	}
	if got := SqrtRatioAtTick(0); !got.Eq(Q96) {
		t.Fatalf("SqrtRatioAtTick(0) = %s, want %s", got, Q96)
	}
}

func TestSqrtRatioAtTickMonotonic(t *testing.T) {
	prev := SqrtRatioAtTick(-1000)
	for tick := -999; tick <= 1000; tick++ {
		cur := SqrtRatioAtTick(tick)
		if cur.Cmp(prev) <= 0 {
			t.Fatalf("ratio not increasing at tick %d", tick)
		}
		prev = cur
	}
}

func TestTickAtSqrtRatioRoundTrip(t *testing.T) {
	ticks := []int{MinTick, -887271, -100000, -60, -1, 0, 1, 60, 100000, 887271}
	for _, tick := range ticks {
		ratio := SqrtRatioAtTick(tick)
		if got := TickAtSqrtRatio(ratio); got != tick {
			t.Fatalf("TickAtSqrtRatio(SqrtRatioAtTick(%d)) = %d", tick, got)
		}
	}
}

func TestTickAtSqrtRatioBetweenTicks(t *testing.T) {
	// A price strictly between tick 10 and 11 resolves to 10.
	lo := SqrtRatioAtTick(10)
	hi := SqrtRatioAtTick(11)
	mid := new(uint256.Int).Add(lo, hi)
	mid.Rsh(mid, 1)
	if got := TickAtSqrtRatio(mid); got != 10 {
		t.Fatalf("TickAtSqrtRatio(mid) = %d, want 10", got)
	}
}

func TestTickAtSqrtRatioOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for ratio below MinSqrtRatio")
		}
	}()
	TickAtSqrtRatio(uint256.NewInt(1))
}
