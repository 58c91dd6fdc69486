// Package v3math ports the concentrated-liquidity pool math libraries:
// full-precision muldiv, tick <-> sqrt-price conversion, the sparse tick
// bitmap walk and the per-step swap computation. All routines operate on
// 256-bit integers and match the on-chain contracts bit for bit.
package v3math

import "github.com/holiman/uint256"

const (
	// MinTick is the lowest tick usable on any pool.
	MinTick = -887272
	// MaxTick is the highest tick usable on any pool.
	MaxTick = -MinTick
)

var (
	one = uint256.NewInt(1)

	// Q96 is 1 in Q64.96 fixed point.
	Q96 = new(uint256.Int).Lsh(one, 96)

	// MaxFee is the fee denominator, 10^6 pips.
	MaxFee = uint256.NewInt(1_000_000)

	// MinSqrtRatio is the sqrt price at MinTick.
	MinSqrtRatio = uint256.NewInt(4295128739)

	// MaxSqrtRatio is the sqrt price at MaxTick.
	MaxSqrtRatio = hexUint("0xfffd8963efd1fc6a506488495d951d5263988d26")

	MaxUint256 = new(uint256.Int).Not(new(uint256.Int))
	MaxUint160 = new(uint256.Int).Sub(new(uint256.Int).Lsh(one, 160), one)
)

func hexUint(s string) *uint256.Int {
	v, err := uint256.FromHex(s)
	if err != nil {
		panic(err)
	}
	return v
}
