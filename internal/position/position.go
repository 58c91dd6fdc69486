// Package position holds the range-math helpers for concentrated
// liquidity positions: deposit splitting, liquidity sizing and fee yield
// estimation. Yield math follows the uniswap.fish model.
package position

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"poolsim/internal/fixedpoint"
	"poolsim/internal/model"
	"poolsim/internal/v3math"
)

// DepositAmounts is a USD budget split into token amounts for a range
// position.
type DepositAmounts struct {
	Amount0        float64
	Amount1        float64
	LiquidityDelta float64
}

// FeeTierRate maps a fee tier in pips to its fractional rate. Panics on
// an unknown tier: a bad tier is a programming error, not an input error.
func FeeTierRate(fee uint64) float64 {
	switch fee {
	case 100:
		return 0.0001
	case 500:
		return 0.0005
	case 3000:
		return 0.003
	case 10000:
		return 0.01
	}
	panic(fmt.Sprintf("invalid fee tier %d", fee))
}

// OptimalSplit splits a USD deposit across both tokens for the price
// range [lower, upper] under a price assumption p, all prices token0 in
// terms of token1. Each side is clamped to [0, deposit/tokenPrice].
func OptimalSplit(p, lower, upper, price0USD, price1USD, depositUSD float64) DepositAmounts {
	sqrtP := math.Sqrt(p)
	deltaL := depositUSD / ((sqrtP-math.Sqrt(lower))*price1USD +
		(1/sqrtP-1/math.Sqrt(upper))*price0USD)

	deltaY := deltaL * (sqrtP - math.Sqrt(lower))
	if deltaY*price1USD < 0 {
		deltaY = 0
	}
	if deltaY*price1USD > depositUSD {
		deltaY = depositUSD / price1USD
	}

	deltaX := deltaL * (1/sqrtP - 1/math.Sqrt(upper))
	if deltaX*price0USD < 0 {
		deltaX = 0
	}
	if deltaX*price0USD > depositUSD {
		deltaX = depositUSD / price0USD
	}

	return DepositAmounts{
		Amount0:        deltaX,
		Amount1:        deltaY,
		LiquidityDelta: deltaL,
	}
}

// LiquidityForAmounts returns the liquidity delta minted by depositing
// amount0 and amount1 into the range [lower, upper] at price p. Below the
// range only token0 counts, above it only token1, inside it the smaller
// of the two sides.
func LiquidityForAmounts(p, lower, upper float64, amount0, amount1 *uint256.Int) *uint256.Int {
	sqrtRatio := fixedpoint.SqrtPriceX96FromPrice(p)
	sqrtRatioLower := fixedpoint.SqrtPriceX96FromPrice(lower)
	sqrtRatioUpper := fixedpoint.SqrtPriceX96FromPrice(upper)

	if sqrtRatio.Cmp(sqrtRatioLower) < 0 {
		return liquidityForAmount0(sqrtRatioLower, sqrtRatioUpper, amount0)
	}
	if sqrtRatio.Cmp(sqrtRatioUpper) < 0 {
		liquidity0 := liquidityForAmount0(sqrtRatio, sqrtRatioUpper, amount0)
		liquidity1 := liquidityForAmount1(sqrtRatioLower, sqrtRatio, amount1)
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0
		}
		return liquidity1
	}
	return liquidityForAmount1(sqrtRatioLower, sqrtRatioUpper, amount1)
}

func liquidityForAmount0(sqrtRatioLowerX96, sqrtRatioUpperX96, amount0 *uint256.Int) *uint256.Int {
	intermediate := v3math.MulDiv(sqrtRatioUpperX96, sqrtRatioLowerX96, v3math.Q96)
	denominator := new(uint256.Int).Sub(sqrtRatioUpperX96, sqrtRatioLowerX96)
	return v3math.MulDiv(amount0, intermediate, denominator)
}

func liquidityForAmount1(sqrtRatioLowerX96, sqrtRatioUpperX96, amount1 *uint256.Int) *uint256.Int {
	denominator := new(uint256.Int).Sub(sqrtRatioUpperX96, sqrtRatioLowerX96)
	return v3math.MulDiv(amount1, v3math.Q96, denominator)
}

// FeeYieldUSD estimates the USD fees earned by adding liquidityDelta on
// top of the pool's liquidity over the given USD volume.
func FeeYieldUSD(liquidityDelta, liquidity *uint256.Int, volumeUSD float64, fee uint64) decimal.Decimal {
	rate := decimal.NewFromFloat(FeeTierRate(fee))

	l := decimal.NewFromBigInt(liquidity.ToBig(), 0)
	delta := decimal.NewFromBigInt(liquidityDelta.ToBig(), 0)
	share := delta.Div(l.Add(delta))

	return rate.Mul(decimal.NewFromFloat(volumeUSD).Mul(share))
}

// FeeYieldTokens estimates the fees earned in token units from the buy
// and sell volumes.
func FeeYieldTokens(liquidityDelta, liquidity *uint256.Int, buyVolume, sellVolume float64, fee uint64) (float64, float64) {
	rate := FeeTierRate(fee)

	liquidityF, _ := decimal.NewFromBigInt(liquidity.ToBig(), 0).Float64()
	deltaF, _ := decimal.NewFromBigInt(liquidityDelta.ToBig(), 0).Float64()
	share := deltaF / (liquidityF + deltaF)

	return rate * buyVolume * share, rate * sellVolume * share
}

// VolumeFee returns the fee collected on a volume at the pool's tier.
func VolumeFee(fee uint64, volume float64) float64 {
	return volume * FeeTierRate(fee)
}

// ActiveLiquidityAtTick walks the net-liquidity deltas in tick order and
// accumulates until the bracket containing currentTick is reached.
func ActiveLiquidityAtTick(poolTicks []model.PoolTick, currentTick int) *uint256.Int {
	liquidity := new(uint256.Int)
	for i := range poolTicks {
		liquidity.Add(liquidity, poolTicks[i].LiquidityNet)

		lower := poolTicks[i].Tick
		upper := lower
		if i+1 < len(poolTicks) {
			upper = poolTicks[i+1].Tick
		}
		if lower <= currentTick && currentTick <= upper {
			break
		}
	}
	return liquidity.Abs(liquidity)
}
