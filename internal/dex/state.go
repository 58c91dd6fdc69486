package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"poolsim/internal/chain"
	"poolsim/internal/model"
	"poolsim/internal/pool"
	"poolsim/internal/v3math"
)

// FetchV2State reads the pair reserves at the given block. A zero block
// means latest.
func FetchV2State(ctx context.Context, client *chain.Client, pair common.Address, blockNumber uint64) (*pool.V2State, error) {
	pairABI, err := V2PairABI()
	if err != nil {
		return nil, fmt.Errorf("parse pair abi: %w", err)
	}

	var blockPtr *big.Int
	if blockNumber > 0 {
		blockPtr = new(big.Int).SetUint64(blockNumber)
	}

	values, err := callView(ctx, client, pair, pairABI, "getReserves", blockPtr)
	if err != nil {
		return nil, err
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("unexpected getReserves values: %d", len(values))
	}

	reserve0Big, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("reserve0: %w", err)
	}
	reserve1Big, err := asBigInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("reserve1: %w", err)
	}

	reserve0, overflow := uint256.FromBig(reserve0Big)
	if overflow {
		return nil, fmt.Errorf("reserve0 overflow")
	}
	reserve1, overflow := uint256.FromBig(reserve1Big)
	if overflow {
		return nil, fmt.Errorf("reserve1 overflow")
	}

	return &pool.V2State{
		Reserve0: reserve0,
		Reserve1: reserve1,
		Block:    blockNumber,
	}, nil
}

// FetchV3State reads the pool state at the given block: slot0, liquidity,
// tick spacing, the single bitmap word covering the current tick and the
// tick table entry for the current tick. Everything else stays unfetched
// and is treated as zero by the engine.
func FetchV3State(ctx context.Context, client *chain.Client, poolAddr common.Address, blockNumber uint64) (*pool.V3State, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}

	var blockPtr *big.Int
	if blockNumber > 0 {
		blockPtr = new(big.Int).SetUint64(blockNumber)
	}

	values, err := callView(ctx, client, poolAddr, poolABI, "slot0", blockPtr)
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("unexpected slot0 values: %d", len(values))
	}
	sqrtPriceBig, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("sqrtPriceX96: %w", err)
	}
	tickBig, err := asBigInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	tick32, err := int24FromBig(tickBig)
	if err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	tick := int(tick32)
	sqrtPrice, overflow := uint256.FromBig(sqrtPriceBig)
	if overflow {
		return nil, fmt.Errorf("sqrtPriceX96 overflow")
	}

	values, err = callView(ctx, client, poolAddr, poolABI, "liquidity", blockPtr)
	if err != nil {
		return nil, err
	}
	liquidityBig, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	liquidity, overflow := uint256.FromBig(liquidityBig)
	if overflow {
		return nil, fmt.Errorf("liquidity overflow")
	}

	values, err = callView(ctx, client, poolAddr, poolABI, "tickSpacing", blockPtr)
	if err != nil {
		return nil, err
	}
	spacingBig, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("tick spacing: %w", err)
	}
	spacing32, err := int24FromBig(spacingBig)
	if err != nil {
		return nil, fmt.Errorf("tick spacing: %w", err)
	}
	tickSpacing := int(spacing32)

	// The swap loop looks words up by the compressed tick, so the fetched
	// word is keyed accordingly.
	wordPos, _ := v3math.Position(compress(tick, tickSpacing))
	values, err = callView(ctx, client, poolAddr, poolABI, "tickBitmap", blockPtr, int16(wordPos))
	if err != nil {
		return nil, err
	}
	wordBig, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("tickBitmap: %w", err)
	}
	word, overflow := uint256.FromBig(wordBig)
	if overflow {
		return nil, fmt.Errorf("tickBitmap overflow")
	}
	bitmap := v3math.TickBitmap{wordPos: word}

	info, err := fetchTickInfo(ctx, client, poolAddr, poolABI, tick, blockPtr)
	if err != nil {
		return nil, err
	}

	return &pool.V3State{
		Liquidity:   liquidity,
		SqrtPrice:   sqrtPrice,
		Tick:        tick,
		TickSpacing: tickSpacing,
		TickBitmap:  bitmap,
		Ticks:       map[int]pool.TickInfo{tick: info},
		PoolTick: model.PoolTick{
			Tick:         tick,
			LiquidityNet: info.LiquidityNet,
			Block:        blockNumber,
		},
	}, nil
}

// FetchTickInfo reads one entry of the pool's tick table.
func FetchTickInfo(ctx context.Context, client *chain.Client, poolAddr common.Address, tick int, blockNumber uint64) (pool.TickInfo, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return pool.TickInfo{}, fmt.Errorf("parse pool abi: %w", err)
	}
	var blockPtr *big.Int
	if blockNumber > 0 {
		blockPtr = new(big.Int).SetUint64(blockNumber)
	}
	return fetchTickInfo(ctx, client, poolAddr, poolABI, tick, blockPtr)
}

func fetchTickInfo(ctx context.Context, client *chain.Client, poolAddr common.Address, poolABI abi.ABI, tick int, blockPtr *big.Int) (pool.TickInfo, error) {
	values, err := callView(ctx, client, poolAddr, poolABI, "ticks", blockPtr, big.NewInt(int64(tick)))
	if err != nil {
		return pool.TickInfo{}, err
	}
	if len(values) != 8 {
		return pool.TickInfo{}, fmt.Errorf("unexpected ticks values: %d", len(values))
	}

	grossBig, err := asBigInt(values[0])
	if err != nil {
		return pool.TickInfo{}, fmt.Errorf("liquidityGross: %w", err)
	}
	netBig, err := asBigInt(values[1])
	if err != nil {
		return pool.TickInfo{}, fmt.Errorf("liquidityNet: %w", err)
	}
	initialized, err := asBool(values[7])
	if err != nil {
		return pool.TickInfo{}, fmt.Errorf("initialized: %w", err)
	}

	gross, overflow := uint256.FromBig(grossBig)
	if overflow {
		return pool.TickInfo{}, fmt.Errorf("liquidityGross overflow")
	}

	// liquidityNet is signed, stored two's complement.
	net := new(uint256.Int)
	if netBig.Sign() < 0 {
		abs, _ := uint256.FromBig(new(big.Int).Neg(netBig))
		net.Neg(abs)
	} else {
		net, _ = uint256.FromBig(netBig)
	}

	return pool.TickInfo{
		LiquidityGross: gross,
		LiquidityNet:   net,
		Initialized:    initialized,
	}, nil
}

// compress rounds a tick toward negative infinity onto the spacing grid.
func compress(tick, spacing int) int {
	compressed := tick / spacing
	if tick < 0 && tick%spacing != 0 {
		compressed--
	}
	return compressed
}
