package chain

import "testing"

func TestBlockTimeGoBack(t *testing.T) {
	cases := []struct {
		name    string
		bt      BlockTime
		chainID uint64
		current uint64
		want    uint64
	}{
		{"one day eth", Days(1), 1, 20_000_000, 19_992_800},
		{"two hours eth", Hours(2), 1, 20_000_000, 19_999_400},
		{"one day bsc", Days(1), 56, 40_000_000, 39_971_200},
		{"one hour base", Hours(1), 8453, 15_000_000, 14_998_200},
		{"absolute block", AtBlock(123), 1, 20_000_000, 123},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.bt.GoBack(tc.chainID, tc.current)
			if err != nil {
				t.Fatalf("GoBack: %v", err)
			}
			if got != tc.want {
				t.Fatalf("GoBack = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBlockTimeGoBackErrors(t *testing.T) {
	if _, err := Days(1).GoBack(42, 20_000_000); err == nil {
		t.Fatal("expected error for unsupported chain")
	}
	if _, err := Days(1).GoBack(1, 100); err == nil {
		t.Fatal("expected error when window exceeds chain height")
	}
}

func TestBlockTimeGoForward(t *testing.T) {
	got, err := Hours(3).GoForward(1, 1000)
	if err != nil {
		t.Fatalf("GoForward: %v", err)
	}
	if got != 1900 {
		t.Fatalf("GoForward = %d, want 1900", got)
	}
}

func TestHoursSpanned(t *testing.T) {
	if got := Days(2).HoursSpanned(); got != 48 {
		t.Fatalf("HoursSpanned = %v, want 48", got)
	}
	if got := AtBlock(1).HoursSpanned(); got != 0 {
		t.Fatalf("HoursSpanned = %v, want 0", got)
	}
}
