package pool

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"poolsim/internal/model"
	"poolsim/internal/v3math"
)

// TickInfo is the liquidity bookkeeping of one initialized tick.
// LiquidityNet is signed two's complement.
type TickInfo struct {
	LiquidityGross *uint256.Int
	LiquidityNet   *uint256.Int
	Initialized    bool
}

// V3State is a snapshot of a concentrated-liquidity pool. The tick bitmap
// and tick table may be partial: words and ticks never fetched are treated
// as zero during simulation.
type V3State struct {
	Liquidity   *uint256.Int
	SqrtPrice   *uint256.Int
	Tick        int
	TickSpacing int
	TickBitmap  v3math.TickBitmap
	Ticks       map[int]TickInfo
	PoolTick    model.PoolTick
}

// Clone deep-copies the state.
func (s *V3State) Clone() *V3State {
	bitmap := make(v3math.TickBitmap, len(s.TickBitmap))
	for k, v := range s.TickBitmap {
		bitmap[k] = new(uint256.Int).Set(v)
	}
	ticks := make(map[int]TickInfo, len(s.Ticks))
	for k, v := range s.Ticks {
		ticks[k] = TickInfo{
			LiquidityGross: new(uint256.Int).Set(v.LiquidityGross),
			LiquidityNet:   new(uint256.Int).Set(v.LiquidityNet),
			Initialized:    v.Initialized,
		}
	}
	return &V3State{
		Liquidity:   new(uint256.Int).Set(s.Liquidity),
		SqrtPrice:   new(uint256.Int).Set(s.SqrtPrice),
		Tick:        s.Tick,
		TickSpacing: s.TickSpacing,
		TickBitmap:  bitmap,
		Ticks:       ticks,
		PoolTick:    s.PoolTick,
	}
}

// ConcentratedPool is a V3-style pool with tick-level liquidity.
type ConcentratedPool struct {
	ChainID uint64
	Address common.Address
	Fee     uint64 // pips
	Token0  model.Token
	Token1  model.Token

	state *V3State
}

// NewConcentratedPool builds a pool, reordering the tokens so that token0
// has the lower address.
func NewConcentratedPool(chainID uint64, address common.Address, fee uint64, token0, token1 model.Token) *ConcentratedPool {
	if token1.Address.Cmp(token0.Address) < 0 {
		token0, token1 = token1, token0
	}
	return &ConcentratedPool{
		ChainID: chainID,
		Address: address,
		Fee:     fee,
		Token0:  token0,
		Token1:  token1,
	}
}

// TogglePair swaps token0 and token1.
func (p *ConcentratedPool) TogglePair() {
	p.Token0, p.Token1 = p.Token1, p.Token0
}

// State returns the attached state, nil when none was set.
func (p *ConcentratedPool) State() *V3State { return p.state }

// UpdateState attaches a state snapshot to the pool.
func (p *ConcentratedPool) UpdateState(s *V3State) { p.state = s }

// Clone returns a copy of the pool with its own state.
func (p *ConcentratedPool) Clone() *ConcentratedPool {
	clone := *p
	if p.state != nil {
		clone.state = p.state.Clone()
	}
	return &clone
}

// swapResult is the post-swap view of the pool produced by one simulation.
type swapResult struct {
	amountOut *uint256.Int
	liquidity *uint256.Int
	sqrtPrice *uint256.Int
	tick      int
}

// swap runs the tick-crossing swap loop against the attached state without
// committing anything.
func (p *ConcentratedPool) swap(tokenIn common.Address, amountIn *uint256.Int) (*swapResult, error) {
	state := p.state
	zeroForOne := tokenIn == p.Token0.Address

	var sqrtPriceLimit *uint256.Int
	if zeroForOne {
		sqrtPriceLimit = new(uint256.Int).AddUint64(v3math.MinSqrtRatio, 1)
	} else {
		sqrtPriceLimit = new(uint256.Int).SubUint64(v3math.MaxSqrtRatio, 1)
	}

	// Signed two's-complement accumulators.
	amountRemaining := new(uint256.Int).Set(amountIn)
	amountCalculated := new(uint256.Int)

	sqrtPrice := new(uint256.Int).Set(state.SqrtPrice)
	tick := state.Tick
	liquidity := new(uint256.Int).Set(state.Liquidity)

	for !amountRemaining.IsZero() && !sqrtPrice.Eq(sqrtPriceLimit) {
		sqrtPriceStart := new(uint256.Int).Set(sqrtPrice)

		tickNext, initialized := state.TickBitmap.NextInitializedTickWithinOneWord(tick, state.TickSpacing, zeroForOne)
		// The bitmap is unaware of the global tick bounds.
		if tickNext < v3math.MinTick {
			tickNext = v3math.MinTick
		} else if tickNext > v3math.MaxTick {
			tickNext = v3math.MaxTick
		}

		sqrtPriceNext := v3math.SqrtRatioAtTick(tickNext)

		target := sqrtPriceNext
		if zeroForOne {
			if sqrtPriceNext.Cmp(sqrtPriceLimit) < 0 {
				target = sqrtPriceLimit
			}
		} else if sqrtPriceNext.Cmp(sqrtPriceLimit) > 0 {
			target = sqrtPriceLimit
		}

		var stepIn, stepOut, stepFee *uint256.Int
		sqrtPrice, stepIn, stepOut, stepFee = v3math.ComputeSwapStep(sqrtPrice, target, liquidity, amountRemaining, p.Fee)

		amountRemaining.Sub(amountRemaining, new(uint256.Int).Add(stepIn, stepFee))
		amountCalculated.Sub(amountCalculated, stepOut)

		if sqrtPrice.Eq(sqrtPriceNext) {
			if initialized {
				liquidityNet := new(uint256.Int)
				if info, ok := state.Ticks[tickNext]; ok {
					liquidityNet.Set(info.LiquidityNet)
				}
				if zeroForOne {
					liquidityNet.Neg(liquidityNet)
				}
				if liquidityNet.Sign() < 0 {
					delta := new(uint256.Int).Neg(liquidityNet)
					if liquidity.Cmp(delta) < 0 {
						return nil, ErrLiquidityUnderflow
					}
					liquidity.Sub(liquidity, delta)
				} else {
					liquidity.Add(liquidity, liquidityNet)
				}
			}
			if zeroForOne {
				tick = tickNext - 1
			} else {
				tick = tickNext
			}
		} else if !sqrtPrice.Eq(sqrtPriceStart) {
			tick = v3math.TickAtSqrtRatio(sqrtPrice)
		}
	}

	return &swapResult{
		amountOut: amountCalculated.Neg(amountCalculated),
		liquidity: liquidity,
		sqrtPrice: sqrtPrice,
		tick:      tick,
	}, nil
}

// QuoteSwap returns the output amount for swapping amountIn of tokenIn,
// leaving the pool state untouched.
func (p *ConcentratedPool) QuoteSwap(tokenIn common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	if p.state == nil {
		return nil, ErrStateNotInitialized
	}
	if amountIn.IsZero() {
		return new(uint256.Int), nil
	}
	res, err := p.swap(tokenIn, amountIn)
	if err != nil {
		return nil, err
	}
	return res.amountOut, nil
}

// ApplySwap quotes the swap and commits the resulting liquidity, sqrt
// price and tick to the pool state.
func (p *ConcentratedPool) ApplySwap(tokenIn common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	if p.state == nil {
		return nil, ErrStateNotInitialized
	}
	if amountIn.IsZero() {
		return new(uint256.Int), nil
	}
	res, err := p.swap(tokenIn, amountIn)
	if err != nil {
		return nil, err
	}
	state := p.state.Clone()
	state.Liquidity = res.liquidity
	state.SqrtPrice = res.sqrtPrice
	state.Tick = res.tick
	p.state = state
	return res.amountOut, nil
}

// Price returns the human-unit price of the base token in terms of the
// other token, derived from the current tick.
func (p *ConcentratedPool) Price(baseToken common.Address) (float64, error) {
	if p.state == nil {
		return 0, ErrStateNotInitialized
	}
	tick := v3math.TickAtSqrtRatio(p.state.SqrtPrice)
	shift := int(p.Token0.Decimals) - int(p.Token1.Decimals)
	price := math.Pow(1.0001, float64(tick)) * math.Pow10(shift)
	if baseToken == p.Token0.Address {
		return price, nil
	}
	return 1 / price, nil
}

// TokensUSD resolves the USD prices of both tokens, inferring the unknown
// side from the pool price when only one side is known to the source.
func (p *ConcentratedPool) TokensUSD(ctx context.Context, source PriceSource) (float64, float64, error) {
	usd0, err := source.USDPrice(ctx, p.ChainID, p.Token0.Address)
	if err != nil {
		return 0, 0, fmt.Errorf("token0 usd price: %w", err)
	}
	usd1, err := source.USDPrice(ctx, p.ChainID, p.Token1.Address)
	if err != nil {
		return 0, 0, fmt.Errorf("token1 usd price: %w", err)
	}

	if usd0 == 0 && usd1 != 0 {
		price, err := p.Price(p.Token0.Address)
		if err != nil {
			return 0, 0, err
		}
		usd0 = price * usd1
	}
	if usd1 == 0 && usd0 != 0 {
		price, err := p.Price(p.Token1.Address)
		if err != nil {
			return 0, 0, err
		}
		usd1 = price * usd0
	}
	return usd0, usd1, nil
}

// DecodeSwap interprets a raw swap log against this pool, resolving the
// signed deltas to an in/out pair.
func (p *ConcentratedPool) DecodeSwap(log *model.SwapLog) (model.SwapRecord, error) {
	if log.Address != p.Address {
		return model.SwapRecord{}, ErrAddressMismatch
	}
	if log.Block == 0 {
		return model.SwapRecord{}, ErrMissingBlockInfo
	}
	if log.TxHash == (common.Hash{}) {
		return model.SwapRecord{}, ErrMissingTxHash
	}

	var rec model.SwapRecord
	if log.Amount0.Sign() > 0 {
		rec.TokenIn = p.Token0
		rec.AmountIn = absUint256(log.Amount0)
	} else {
		rec.TokenIn = p.Token1
		rec.AmountIn = absUint256(log.Amount1)
	}
	if log.Amount1.Sign() < 0 {
		rec.TokenOut = p.Token1
		rec.AmountOut = absUint256(log.Amount1)
	} else {
		rec.TokenOut = p.Token0
		rec.AmountOut = absUint256(log.Amount0)
	}
	if log.Sender != (common.Address{}) {
		sender := log.Sender
		rec.Account = &sender
	}
	rec.Block = log.Block
	rec.TxHash = log.TxHash
	return rec, nil
}

// Volume aggregates swap logs into buy/sell volume. Buys are swaps paying
// token1 in, sells are swaps taking token0 out; records come back sorted
// by block.
func (p *ConcentratedPool) Volume(logs []*model.SwapLog) (*model.VolumeReport, error) {
	report := &model.VolumeReport{
		BuyVolume:  new(uint256.Int),
		SellVolume: new(uint256.Int),
	}
	for _, log := range logs {
		rec, err := p.DecodeSwap(log)
		if err != nil {
			return nil, err
		}
		if rec.TokenIn.Address == p.Token1.Address {
			report.BuyVolume.Add(report.BuyVolume, rec.AmountIn)
		}
		if rec.TokenOut.Address == p.Token0.Address {
			report.SellVolume.Add(report.SellVolume, rec.AmountOut)
		}
		report.Swaps = append(report.Swaps, rec)
	}
	sort.SliceStable(report.Swaps, func(i, j int) bool {
		return report.Swaps[i].Block < report.Swaps[j].Block
	})
	return report, nil
}

func absUint256(v *big.Int) *uint256.Int {
	out, _ := uint256.FromBig(new(big.Int).Abs(v))
	return out
}
