package pool

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"poolsim/internal/fixedpoint"
	"poolsim/internal/model"
)

// PriceSource resolves a token to its USD price. A price of 0.0 means the
// token is unknown to the source; that is not an error.
type PriceSource interface {
	USDPrice(ctx context.Context, chainID uint64, token common.Address) (float64, error)
}

// V2State is the reserve snapshot of a constant-product pool.
type V2State struct {
	Reserve0 *uint256.Int
	Reserve1 *uint256.Int
	Block    uint64
}

func (s *V2State) clone() *V2State {
	return &V2State{
		Reserve0: new(uint256.Int).Set(s.Reserve0),
		Reserve1: new(uint256.Int).Set(s.Reserve1),
		Block:    s.Block,
	}
}

// ConstantProductPool is a V2-style x*y=k pool with a fixed 0.30% fee.
type ConstantProductPool struct {
	ChainID uint64
	Address common.Address
	Token0  model.Token
	Token1  model.Token

	state *V2State
}

// NewConstantProductPool builds a pool, reordering the tokens so that
// token0 has the lower address.
func NewConstantProductPool(chainID uint64, address common.Address, token0, token1 model.Token) *ConstantProductPool {
	if token1.Address.Cmp(token0.Address) < 0 {
		token0, token1 = token1, token0
	}
	return &ConstantProductPool{
		ChainID: chainID,
		Address: address,
		Token0:  token0,
		Token1:  token1,
	}
}

// TogglePair swaps token0 and token1. Reserves are not touched, so call
// it before attaching state or re-fetch afterwards.
func (p *ConstantProductPool) TogglePair() {
	p.Token0, p.Token1 = p.Token1, p.Token0
}

// State returns the attached state, nil when none was set.
func (p *ConstantProductPool) State() *V2State { return p.state }

// UpdateState attaches a reserve snapshot to the pool.
func (p *ConstantProductPool) UpdateState(s *V2State) { p.state = s }

// QuoteSwap returns the output amount for swapping amountIn of tokenIn,
// leaving the pool state untouched.
func (p *ConstantProductPool) QuoteSwap(tokenIn common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	if p.state == nil {
		return nil, ErrStateNotInitialized
	}
	if tokenIn == p.Token0.Address {
		return amountOut(amountIn, p.state.Reserve0, p.state.Reserve1), nil
	}
	return amountOut(amountIn, p.state.Reserve1, p.state.Reserve0), nil
}

// ApplySwap quotes the swap and commits the reserve changes.
func (p *ConstantProductPool) ApplySwap(tokenIn common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	if p.state == nil {
		return nil, ErrStateNotInitialized
	}
	state := p.state.clone()
	var out *uint256.Int
	if tokenIn == p.Token0.Address {
		out = amountOut(amountIn, state.Reserve0, state.Reserve1)
		state.Reserve0.Add(state.Reserve0, amountIn)
		state.Reserve1.Sub(state.Reserve1, out)
	} else {
		out = amountOut(amountIn, state.Reserve1, state.Reserve0)
		state.Reserve1.Add(state.Reserve1, amountIn)
		state.Reserve0.Sub(state.Reserve0, out)
	}
	p.state = state
	return out, nil
}

// amountOut applies the constant-product formula with the 0.30% fee taken
// from the input side.
func amountOut(amountIn, reserveIn, reserveOut *uint256.Int) *uint256.Int {
	if amountIn.IsZero() || reserveIn.IsZero() || reserveOut.IsZero() {
		return new(uint256.Int)
	}
	amountInWithFee := new(uint256.Int).Mul(amountIn, uint256.NewInt(997))
	numerator := new(uint256.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(uint256.Int).Mul(reserveIn, uint256.NewInt(1000))
	denominator.Add(denominator, amountInWithFee)
	return numerator.Div(numerator, denominator)
}

// PriceQ64 returns the price of the base token in terms of the other
// token as unsigned 64.64 fixed point, with reserves normalized to a
// common decimal scale. A zero base reserve yields the 1.0 sentinel.
func (p *ConstantProductPool) PriceQ64(baseToken common.Address) (*uint256.Int, error) {
	if p.state == nil {
		return nil, ErrStateNotInitialized
	}

	shift := int(p.Token0.Decimals) - int(p.Token1.Decimals)
	r0 := new(uint256.Int).Set(p.state.Reserve0)
	r1 := new(uint256.Int).Set(p.state.Reserve1)
	if shift < 0 {
		r0.Mul(r0, pow10(-shift))
	} else {
		r1.Mul(r1, pow10(shift))
	}

	if baseToken == p.Token0.Address {
		if r0.IsZero() {
			return new(uint256.Int).Set(fixedpoint.Q64), nil
		}
		return fixedpoint.DivUU(r1, r0)
	}
	if r1.IsZero() {
		return new(uint256.Int).Set(fixedpoint.Q64), nil
	}
	return fixedpoint.DivUU(r0, r1)
}

func pow10(n int) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}

// TokensUSD resolves the USD prices of both tokens. When only one side is
// known to the source, the other is inferred from a one-unit quote
// against the pool.
func (p *ConstantProductPool) TokensUSD(ctx context.Context, source PriceSource) (float64, float64, error) {
	usd0, err := source.USDPrice(ctx, p.ChainID, p.Token0.Address)
	if err != nil {
		return 0, 0, fmt.Errorf("token0 usd price: %w", err)
	}
	usd1, err := source.USDPrice(ctx, p.ChainID, p.Token1.Address)
	if err != nil {
		return 0, 0, fmt.Errorf("token1 usd price: %w", err)
	}

	if usd0 == 0 && usd1 != 0 {
		out, err := p.QuoteSwap(p.Token0.Address, p.Token0.UnitAmount())
		if err != nil {
			return 0, 0, err
		}
		usd0 = model.FormatUnits(out, p.Token1.Decimals) * usd1
	}
	if usd1 == 0 && usd0 != 0 {
		out, err := p.QuoteSwap(p.Token1.Address, p.Token1.UnitAmount())
		if err != nil {
			return 0, 0, err
		}
		usd1 = model.FormatUnits(out, p.Token0.Decimals) * usd0
	}
	return usd0, usd1, nil
}
