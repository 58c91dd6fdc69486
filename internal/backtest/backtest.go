// Package backtest replays historical swap volume through the engine to
// estimate what a concentrated liquidity position would have earned.
package backtest

import (
	"fmt"

	"poolsim/internal/chain"
	"poolsim/internal/fixedpoint"
	"poolsim/internal/model"
	"poolsim/internal/pool"
	"poolsim/internal/position"
)

// PositionArgs describes the position to simulate. All prices are token0
// in terms of token1.
type PositionArgs struct {
	// Lower bound of the price range.
	LowerRange float64

	// Upper bound of the price range.
	UpperRange float64

	// Where you believe the price will spend most of its time.
	PriceAssumption float64

	// Total deposit in USD value.
	DepositAmount float64

	// The pool to simulate on, with its state at the window start.
	Pool *pool.ConcentratedPool
}

// Prices carries the token USD prices at the window start and at the
// latest block.
type Prices struct {
	PastToken0USD   float64
	PastToken1USD   float64
	LatestToken0USD float64
	LatestToken1USD float64
}

// PriceRange records whether the position was in range after the swap
// mined in the given block.
type PriceRange struct {
	IsInRange bool
	Block     uint64
}

// PositionResult is the outcome of a position replay.
type PositionResult struct {
	Token0  model.Token
	Token1  model.Token
	Deposit position.DepositAmounts

	// Token USD prices at the window start.
	PastToken0USD float64
	PastToken1USD float64

	// Latest token USD prices.
	Token0USD float64
	Token1USD float64

	// Fees earned, in token units and in USD.
	Earned0    float64
	Earned1    float64
	Earned0USD float64
	Earned1USD float64

	// Total pool volume over the window, in USD.
	BuyVolumeUSD  float64
	SellVolumeUSD float64

	// Fees the whole pool collected on that volume, in USD.
	TotalFee0 float64
	TotalFee1 float64

	// Swaps the engine could not replay.
	FailedSwaps uint64

	// How many swaps left the position out of or in the range.
	OutOfRange int
	InRange    int

	APR float64
}

// Pretty renders the result as a multi-line human summary.
func (r *PositionResult) Pretty() string {
	return fmt.Sprintf(
		"\nPast Price of %s: $%.2f"+
			"\nPast Price of %s: $%.2f"+
			"\nLatest Price of %s: $%.2f"+
			"\nLatest Price of %s: $%.2f"+
			"\nEarned0: %.2f %s ($%.2f)"+
			"\nEarned1: %.2f %s ($%.2f)"+
			"\nTotal Earned: $%.2f"+
			"\nAPR: %.2f%%"+
			"\nBuy Volume USD: %.2f"+
			"\nSell Volume USD: %.2f"+
			"\nTotal Fee0: %.2f"+
			"\nTotal Fee1: %.2f"+
			"\nFailed Swaps: %d"+
			"\nOut of Range: %d"+
			"\nIn Range: %d",
		r.Token0.Symbol, r.PastToken0USD,
		r.Token1.Symbol, r.PastToken1USD,
		r.Token0.Symbol, r.Token0USD,
		r.Token1.Symbol, r.Token1USD,
		r.Earned0, r.Token0.Symbol, r.Earned0USD,
		r.Earned1, r.Token1.Symbol, r.Earned1USD,
		r.Earned0USD+r.Earned1USD,
		r.APR,
		r.BuyVolumeUSD,
		r.SellVolumeUSD,
		r.TotalFee0,
		r.TotalFee1,
		r.FailedSwaps,
		r.OutOfRange,
		r.InRange,
	)
}

// Run replays every swap in the volume report through a copy of the
// pool and estimates the position's earnings pro rata to its share of
// the pool liquidity, scaled by the fraction of swaps it was in range
// for. The pool keeps its original state; the replay runs on a clone.
func Run(args PositionArgs, volume *model.VolumeReport, window chain.BlockTime, prices Prices) (*PositionResult, error) {
	if args.Pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if args.Pool.State() == nil {
		return nil, pool.ErrStateNotInitialized
	}
	if args.LowerRange >= args.UpperRange {
		return nil, fmt.Errorf("lower range %v must be below upper range %v", args.LowerRange, args.UpperRange)
	}
	if args.DepositAmount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive")
	}
	if volume == nil {
		return nil, fmt.Errorf("volume report is required")
	}

	deposit := position.OptimalSplit(
		args.PriceAssumption,
		args.LowerRange,
		args.UpperRange,
		prices.PastToken0USD,
		prices.PastToken1USD,
		args.DepositAmount,
	)

	amount0 := model.ParseUnits(deposit.Amount0, args.Pool.Token0.Decimals)
	amount1 := model.ParseUnits(deposit.Amount1, args.Pool.Token1.Decimals)

	lowerTick := fixedpoint.TickFromPrice(args.LowerRange)
	upperTick := fixedpoint.TickFromPrice(args.UpperRange)

	liquidityDelta := position.LiquidityForAmounts(
		args.PriceAssumption,
		args.LowerRange,
		args.UpperRange,
		amount0,
		amount1,
	)

	poolLiquidity := args.Pool.State().Liquidity

	sim := args.Pool.Clone()
	priceRanges := make([]PriceRange, 0, len(volume.Swaps))
	var failedSwaps uint64

	for _, swap := range volume.Swaps {
		if _, err := sim.ApplySwap(swap.TokenIn.Address, swap.AmountIn); err != nil {
			failedSwaps++
			continue
		}
		tick := sim.State().Tick
		priceRanges = append(priceRanges, PriceRange{
			IsInRange: lowerTick <= tick && tick < upperTick,
			Block:     swap.Block,
		})
	}

	inRange := 0
	for _, pr := range priceRanges {
		if pr.IsInRange {
			inRange++
		}
	}
	outOfRange := len(priceRanges) - inRange

	buyVolumeUSD := volume.BuyVolumeUSD(prices.LatestToken1USD, args.Pool.Token1.Decimals)
	sellVolumeUSD := volume.SellVolumeUSD(prices.LatestToken0USD, args.Pool.Token0.Decimals)

	inRangeShare := 0.0
	if len(priceRanges) > 0 {
		inRangeShare = float64(inRange) / float64(len(priceRanges))
	}

	// Fees on the buy side accrue in token1, on the sell side in token0.
	earned1USD, earned0USD := position.FeeYieldTokens(
		liquidityDelta,
		poolLiquidity,
		buyVolumeUSD,
		sellVolumeUSD,
		args.Pool.Fee,
	)
	earned0USD *= inRangeShare
	earned1USD *= inRangeShare

	earned0 := 0.0
	if prices.LatestToken0USD > 0 {
		earned0 = earned0USD / prices.LatestToken0USD
	}
	earned1 := 0.0
	if prices.LatestToken1USD > 0 {
		earned1 = earned1USD / prices.LatestToken1USD
	}

	totalEarned := earned0USD + earned1USD
	apr := 0.0
	if hours := window.HoursSpanned(); hours > 0 {
		apr = (totalEarned / args.DepositAmount) * (8760.0 / hours) * 100.0
	}

	return &PositionResult{
		Token0:        args.Pool.Token0,
		Token1:        args.Pool.Token1,
		Deposit:       deposit,
		PastToken0USD: prices.PastToken0USD,
		PastToken1USD: prices.PastToken1USD,
		Token0USD:     prices.LatestToken0USD,
		Token1USD:     prices.LatestToken1USD,
		Earned0:       earned0,
		Earned1:       earned1,
		Earned0USD:    earned0USD,
		Earned1USD:    earned1USD,
		BuyVolumeUSD:  buyVolumeUSD,
		SellVolumeUSD: sellVolumeUSD,
		TotalFee0:     position.VolumeFee(args.Pool.Fee, buyVolumeUSD),
		TotalFee1:     position.VolumeFee(args.Pool.Fee, sellVolumeUSD),
		FailedSwaps:   failedSwaps,
		OutOfRange:    outOfRange,
		InRange:       inRange,
		APR:           apr,
	}, nil
}
