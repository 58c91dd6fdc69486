package v3math

import "testing"

func TestNextInitializedTickWithinOneWord(t *testing.T) {
	const spacing = 60
	bitmap := TickBitmap{}
	for _, tick := range []int{-240, -60, 0, 120, 300} {
		bitmap.Set(tick / spacing)
	}

	cases := []struct {
		name     string
		tick     int
		lte      bool
		wantTick int
		wantInit bool
	}{
		{"lte at initialized", 0, true, 0, true},
		{"lte between", 119, true, 0, true},
		{"lte finds lower", -61, true, -240, true},
		{"gte next above", 0, false, 120, true},
		{"gte between", 121, false, 300, true},
		{"gte from negative", -239, false, -60, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := bitmap.NextInitializedTickWithinOneWord(tc.tick, spacing, tc.lte)
			if got != tc.wantTick || ok != tc.wantInit {
				t.Fatalf("got (%d, %v), want (%d, %v)", got, ok, tc.wantTick, tc.wantInit)
			}
		})
	}
}

func TestNextInitializedTickMissingWord(t *testing.T) {
	const spacing = 10
	bitmap := TickBitmap{}

	// No words fetched at all: the walk stops at the word boundary and
	// reports no initialized tick.
	next, ok := bitmap.NextInitializedTickWithinOneWord(-5, spacing, true)
	if ok {
		t.Fatal("absent word must report uninitialized")
	}
	if next != -2560 {
		t.Fatalf("next = %d, want word boundary -2560", next)
	}

	next, ok = bitmap.NextInitializedTickWithinOneWord(0, spacing, false)
	if ok {
		t.Fatal("absent word must report uninitialized")
	}
	if next != 2550 {
		t.Fatalf("next = %d, want word boundary 2550", next)
	}
}

func TestNegativeTickCompression(t *testing.T) {
	const spacing = 60
	bitmap := TickBitmap{}
	bitmap.Set(-120 / spacing)

	// -61 compresses to -2 (rounding toward negative infinity), so the
	// lte walk lands exactly on -120.
	next, ok := bitmap.NextInitializedTickWithinOneWord(-61, spacing, true)
	if !ok || next != -120 {
		t.Fatalf("got (%d, %v), want (-120, true)", next, ok)
	}
}
