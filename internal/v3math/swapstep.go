package v3math

import "github.com/holiman/uint256"

// ComputeSwapStep advances the swap by one step toward the target sqrt
// price. amountRemaining is signed two's complement; non-negative means
// exact input. Returned amounts are unsigned.
func ComputeSwapStep(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining *uint256.Int, feePips uint64) (sqrtRatioNextX96, amountIn, amountOut, feeAmount *uint256.Int) {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0

	fee := uint256.NewInt(feePips)
	feeComplement := new(uint256.Int).Sub(MaxFee, fee)

	if exactIn {
		amountRemainingLessFee := new(uint256.Int).Mul(amountRemaining, feeComplement)
		amountRemainingLessFee.Div(amountRemainingLessFee, MaxFee)
		if zeroForOne {
			amountIn = Amount0Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true)
		} else {
			amountIn = Amount1Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}
		if amountRemainingLessFee.Cmp(amountIn) >= 0 {
			sqrtRatioNextX96 = new(uint256.Int).Set(sqrtRatioTargetX96)
		} else {
			sqrtRatioNextX96 = NextSqrtPriceFromInput(sqrtRatioCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
		}
	} else {
		if zeroForOne {
			amountOut = Amount1Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			amountOut = Amount0Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false)
		}
		negRemaining := new(uint256.Int).Neg(amountRemaining)
		if negRemaining.Cmp(amountOut) >= 0 {
			sqrtRatioNextX96 = new(uint256.Int).Set(sqrtRatioTargetX96)
		} else {
			sqrtRatioNextX96 = NextSqrtPriceFromOutput(sqrtRatioCurrentX96, liquidity, negRemaining, zeroForOne)
		}
	}

	reachedTarget := sqrtRatioTargetX96.Eq(sqrtRatioNextX96)

	if zeroForOne {
		if !(reachedTarget && exactIn) {
			amountIn = Amount0Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true)
		}
		if !(reachedTarget && !exactIn) {
			amountOut = Amount1Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false)
		}
	} else {
		if !(reachedTarget && exactIn) {
			amountIn = Amount1Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, true)
		}
		if !(reachedTarget && !exactIn) {
			amountOut = Amount0Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, false)
		}
	}

	if !exactIn {
		if limit := new(uint256.Int).Neg(amountRemaining); amountOut.Cmp(limit) > 0 {
			amountOut = limit
		}
	}

	if exactIn && !sqrtRatioNextX96.Eq(sqrtRatioTargetX96) {
		// Target not reached, so the whole remainder beyond amountIn is fee.
		feeAmount = new(uint256.Int).Sub(amountRemaining, amountIn)
	} else {
		feeAmount = MulDivRoundingUp(amountIn, fee, feeComplement)
	}
	return
}
