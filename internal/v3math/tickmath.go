package v3math

import "github.com/holiman/uint256"

var q32 = new(uint256.Int).Lsh(one, 32)

var sqrtRatioMultipliers = []*uint256.Int{
	hexUint("0xfff97272373d413259a46990580e213a"),
	hexUint("0xfff2e50f5f656932ef12357cf3c7fdcc"),
	hexUint("0xffe5caca7e10e4e61c3624eaa0941cd0"),
	hexUint("0xffcb9843d60f6159c9db58835c926644"),
	hexUint("0xff973b41fa98c081472e6896dfb254c0"),
	hexUint("0xff2ea16466c96a3843ec78b326b52861"),
	hexUint("0xfe5dee046a99a2a811c461f1969c3053"),
	hexUint("0xfcbe86c7900a88aedcffc83b479aa3a4"),
	hexUint("0xf987a7253ac413176f2b074cf7815e54"),
	hexUint("0xf3392b0822b70005940c7a398e4b70f3"),
	hexUint("0xe7159475a2c29b7443b29c7fa6e889d9"),
	hexUint("0xd097f3bdfd2022b8845ad8f792aa5825"),
	hexUint("0xa9f746462d870fdf8a65dc1f90e061e5"),
	hexUint("0x70d869a156d2a1b890bb3df62baf32f7"),
	hexUint("0x31be135f97d08fd981231505542fcfa6"),
	hexUint("0x9aa508b5b7a84e1c677de54f3e99bc9"),
	hexUint("0x5d6af8dedb81196699c329225ee604"),
	hexUint("0x2216e584f5fa1ea926041bedfe98"),
	hexUint("0x48a170391f7dc42444e8fa2"),
}

var (
	sqrtRatioOdd  = hexUint("0xfffcb933bd6fad37aa2d162d1a594001")
	sqrtRatioEven = hexUint("0x100000000000000000000000000000000")

	magicSqrt10001 = hexUint("0x3627A301D71055774C85")
	magicTickLow   = hexUint("0x28F6481AB7F045A5AF012A19D003AAA")
	magicTickHigh  = hexUint("0xDB2DF09E81959A81455E260799A0632F")
)

// SqrtRatioAtTick returns sqrt(1.0001)^tick as a Q64.96. Panics if the
// tick is out of the usable range.
func SqrtRatioAtTick(tick int) *uint256.Int {
	absTick := tick
	if tick < 0 {
		absTick = -tick
	}
	if absTick > MaxTick {
		panic("tick out of range")
	}

	var ratio *uint256.Int
	if absTick&1 != 0 {
		ratio = new(uint256.Int).Set(sqrtRatioOdd)
	} else {
		ratio = new(uint256.Int).Set(sqrtRatioEven)
	}
	for i, mul := range sqrtRatioMultipliers {
		if absTick&(1<<(i+1)) != 0 {
			ratio.Rsh(ratio.Mul(ratio, mul), 128)
		}
	}
	if tick > 0 {
		ratio = new(uint256.Int).Div(MaxUint256, ratio)
	}

	// From Q128.128 down to Q64.96, rounding up.
	out := new(uint256.Int).Rsh(ratio, 32)
	if !new(uint256.Int).Mod(ratio, q32).IsZero() {
		out.Add(out, one)
	}
	return out
}

// TickAtSqrtRatio returns the largest tick whose sqrt ratio is at most the
// given Q64.96 sqrt price. Panics when the price is outside the usable
// range.
func TickAtSqrtRatio(sqrtPriceX96 *uint256.Int) int {
	if sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		panic("sqrt price out of range")
	}

	ratio := new(uint256.Int).Lsh(sqrtPriceX96, 32)
	msb := uint(ratio.BitLen() - 1)

	var r *uint256.Int
	if msb >= 128 {
		r = new(uint256.Int).Rsh(ratio, msb-127)
	} else {
		r = new(uint256.Int).Lsh(ratio, 127-msb)
	}

	log2 := new(uint256.Int).Lsh(
		new(uint256.Int).Sub(uint256.NewInt(uint64(msb)), uint256.NewInt(128)), 64)

	for i := uint(0); i < 14; i++ {
		r.Rsh(r.Mul(r, r), 127)
		f := new(uint256.Int).Rsh(r, 128)
		log2.Or(log2, new(uint256.Int).Lsh(f, 63-i))
		r.Rsh(r, uint(f.Uint64()))
	}

	logSqrt10001 := new(uint256.Int).Mul(log2, magicSqrt10001)

	tickLow := int(int64(new(uint256.Int).Rsh(
		new(uint256.Int).Sub(logSqrt10001, magicTickLow), 128).Uint64()))
	tickHigh := int(int64(new(uint256.Int).Rsh(
		new(uint256.Int).Add(logSqrt10001, magicTickHigh), 128).Uint64()))

	if tickLow == tickHigh {
		return tickLow
	}
	if SqrtRatioAtTick(tickHigh).Cmp(sqrtPriceX96) <= 0 {
		return tickHigh
	}
	return tickLow
}
