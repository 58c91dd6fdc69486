package fixedpoint

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// tickBase is sqrt(1.0001), the per-tick price ratio.
var logTickBase = math.Log(math.Sqrt(1.0001))

// SqrtPriceX96FromPrice converts a raw token1/token0 price to the Q64.96
// sqrt-price representation, truncating toward zero.
func SqrtPriceX96FromPrice(price float64) *uint256.Int {
	f := new(big.Float).SetPrec(256).SetFloat64(math.Sqrt(price))
	f.Mul(f, new(big.Float).SetPrec(256).SetInt(new(big.Int).Lsh(big.NewInt(1), 96)))
	i, _ := f.Int(nil)
	out, _ := uint256.FromBig(i)
	return out
}

// TickFromPrice returns the nearest tick for a raw token1/token0 price.
func TickFromPrice(price float64) int {
	return int(math.Round(math.Log(math.Sqrt(price)) / logTickBase))
}

// PriceAtTick returns the human-unit price at a tick, adjusted for the
// pair's decimal difference.
func PriceAtTick(tick int, decimals0, decimals1 uint8) float64 {
	raw := math.Pow(1.0001, float64(tick))
	return raw * math.Pow10(int(decimals0)-int(decimals1))
}

// PriceFromSqrtX96 converts a Q64.96 sqrt-price back to a raw float price.
func PriceFromSqrtX96(sqrtPriceX96 *uint256.Int) float64 {
	f := new(big.Float).SetPrec(256).SetInt(sqrtPriceX96.ToBig())
	f.Quo(f, new(big.Float).SetPrec(256).SetInt(new(big.Int).Lsh(big.NewInt(1), 96)))
	v, _ := f.Float64()
	return v * v
}

// Q64ToFloat converts a 64.64 fixed-point value to float64.
func Q64ToFloat(q *uint256.Int) float64 {
	f := new(big.Float).SetPrec(256).SetInt(q.ToBig())
	f.Quo(f, new(big.Float).SetPrec(256).SetInt(new(big.Int).Lsh(big.NewInt(1), 64)))
	v, _ := f.Float64()
	return v
}
