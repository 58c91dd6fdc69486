package v3math

import "github.com/holiman/uint256"

// MulDiv computes floor(a*b/denominator) with a full 512-bit intermediate
// product. Panics if the result does not fit 256 bits.
func MulDiv(a, b, denominator *uint256.Int) *uint256.Int {
	result, overflow := new(uint256.Int).MulDivOverflow(a, b, denominator)
	if overflow {
		panic("muldiv overflow")
	}
	return result
}

// MulDivRoundingUp is MulDiv rounding the quotient up.
func MulDivRoundingUp(a, b, denominator *uint256.Int) *uint256.Int {
	if a.IsZero() || b.IsZero() {
		return new(uint256.Int)
	}
	result := MulDiv(a, b, denominator)
	if !new(uint256.Int).MulMod(a, b, denominator).IsZero() {
		result.Add(result, one)
	}
	return result
}
