package pool

import (
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"poolsim/internal/model"
	"poolsim/internal/v3math"
)

// singleTickPool builds a pool at price 1.0 (tick 0) with flat liquidity
// and no initialized ticks loaded.
func singleTickPool(t *testing.T) *ConcentratedPool {
	t.Helper()
	tokenA := model.Token{ChainID: 1, Address: common.HexToAddress("0x1111111111111111111111111111111111111111"), Symbol: "AAA", Decimals: 18}
	tokenB := model.Token{ChainID: 1, Address: common.HexToAddress("0x2222222222222222222222222222222222222222"), Symbol: "BBB", Decimals: 18}
	p := NewConcentratedPool(1, common.HexToAddress("0x3333333333333333333333333333333333333333"), 3000, tokenA, tokenB)
	p.UpdateState(&V3State{
		Liquidity:   e18(1),
		SqrtPrice:   new(uint256.Int).Set(v3math.Q96),
		Tick:        0,
		TickSpacing: 60,
		TickBitmap:  v3math.TickBitmap{},
		Ticks:       map[int]TickInfo{},
	})
	return p
}

func TestV3TokenOrdering(t *testing.T) {
	tokenA := model.Token{Address: common.HexToAddress("0x1111111111111111111111111111111111111111")}
	tokenB := model.Token{Address: common.HexToAddress("0x2222222222222222222222222222222222222222")}
	a := NewConcentratedPool(1, common.Address{}, 3000, tokenA, tokenB)
	b := NewConcentratedPool(1, common.Address{}, 3000, tokenB, tokenA)
	if a.Token0.Address != b.Token0.Address || a.Token1.Address != b.Token1.Address {
		t.Fatal("construction order must not affect token ordering")
	}
}

func TestV3SingleTickSwap(t *testing.T) {
	// At price 1.0 with flat liquidity 1e18, a 1e15 input yields the same
	// output in either direction: input less the 0.30% fee, less the
	// constant-liquidity price movement.
	want := uint256.NewInt(996_006_981_039_903)

	p := singleTickPool(t)
	out, err := p.QuoteSwap(p.Token0.Address, uint256.NewInt(1_000_000_000_000_000))
	if err != nil {
		t.Fatalf("QuoteSwap zeroForOne: %v", err)
	}
	if !out.Eq(want) {
		t.Fatalf("zeroForOne out = %s, want %s", out, want)
	}

	out, err = p.QuoteSwap(p.Token1.Address, uint256.NewInt(1_000_000_000_000_000))
	if err != nil {
		t.Fatalf("QuoteSwap oneForZero: %v", err)
	}
	if !out.Eq(want) {
		t.Fatalf("oneForZero out = %s, want %s", out, want)
	}
}

func TestV3ApplySwapCommitsState(t *testing.T) {
	p := singleTickPool(t)
	before := p.State().SqrtPrice.Clone()

	if _, err := p.QuoteSwap(p.Token0.Address, uint256.NewInt(1_000_000_000_000_000)); err != nil {
		t.Fatalf("QuoteSwap: %v", err)
	}
	if !p.State().SqrtPrice.Eq(before) {
		t.Fatal("QuoteSwap must not mutate state")
	}

	if _, err := p.ApplySwap(p.Token0.Address, uint256.NewInt(1_000_000_000_000_000)); err != nil {
		t.Fatalf("ApplySwap: %v", err)
	}
	if p.State().SqrtPrice.Eq(before) {
		t.Fatal("ApplySwap must move the price")
	}
	if p.State().SqrtPrice.Cmp(before) >= 0 {
		t.Fatal("zeroForOne swap must lower the price")
	}
	if p.State().Tick >= 0 {
		t.Fatalf("tick = %d, want negative after selling token0", p.State().Tick)
	}
}

func TestV3ZeroAmount(t *testing.T) {
	p := singleTickPool(t)
	before := p.State()

	out, err := p.ApplySwap(p.Token0.Address, new(uint256.Int))
	if err != nil {
		t.Fatalf("ApplySwap: %v", err)
	}
	if !out.IsZero() {
		t.Fatalf("amountOut = %s, want 0", out)
	}
	if p.State() != before {
		t.Fatal("zero swap must leave state untouched")
	}
}

func TestV3StateNotInitialized(t *testing.T) {
	p := NewConcentratedPool(1, common.Address{}, 3000, model.Token{}, model.Token{})
	if _, err := p.QuoteSwap(common.Address{}, uint256.NewInt(1)); err != ErrStateNotInitialized {
		t.Fatalf("expected ErrStateNotInitialized, got %v", err)
	}
	if _, err := p.Price(common.Address{}); err != ErrStateNotInitialized {
		t.Fatalf("expected ErrStateNotInitialized, got %v", err)
	}
}

func TestV3LiquidityUnderflow(t *testing.T) {
	p := singleTickPool(t)
	state := p.State()

	// A lower-range boundary at tick -60 carrying more net liquidity than
	// the pool holds. Crossing it downward must fail, not clamp.
	state.TickBitmap.Set(-60 / state.TickSpacing)
	state.Ticks[-60] = TickInfo{
		LiquidityGross: e18(2),
		LiquidityNet:   e18(2),
		Initialized:    true,
	}

	_, err := p.QuoteSwap(p.Token0.Address, e18(1))
	if err != ErrLiquidityUnderflow {
		t.Fatalf("expected ErrLiquidityUnderflow, got %v", err)
	}
}

func TestV3TickCrossing(t *testing.T) {
	p := singleTickPool(t)
	state := p.State()

	// Liquidity doubles below tick -60 (a position's upper boundary).
	state.TickBitmap.Set(-60 / state.TickSpacing)
	state.Ticks[-60] = TickInfo{
		LiquidityGross: e18(1),
		LiquidityNet:   new(uint256.Int).Neg(e18(1)),
		Initialized:    true,
	}

	if _, err := p.ApplySwap(p.Token0.Address, e18(1)); err != nil {
		t.Fatalf("ApplySwap: %v", err)
	}
	if p.State().Tick >= -60 {
		t.Fatalf("tick = %d, want below the crossed boundary", p.State().Tick)
	}
	if !p.State().Liquidity.Eq(e18(2)) {
		t.Fatalf("liquidity = %s, want %s after crossing", p.State().Liquidity, e18(2))
	}
}

func TestV3Price(t *testing.T) {
	p := singleTickPool(t)
	price, err := p.Price(p.Token0.Address)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if math.Abs(price-1) > 1e-9 {
		t.Fatalf("price = %v, want 1", price)
	}
	inverse, err := p.Price(p.Token1.Address)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if math.Abs(price*inverse-1) > 1e-9 {
		t.Fatalf("price * inverse = %v, want 1", price*inverse)
	}
}

func TestV3DecodeSwapErrors(t *testing.T) {
	p := singleTickPool(t)

	log := &model.SwapLog{
		Address: common.HexToAddress("0x4444444444444444444444444444444444444444"),
		Amount0: big.NewInt(100),
		Amount1: big.NewInt(-90),
		Block:   1,
		TxHash:  common.HexToHash("0x01"),
	}
	if _, err := p.DecodeSwap(log); err != ErrAddressMismatch {
		t.Fatalf("expected ErrAddressMismatch, got %v", err)
	}

	log.Address = p.Address
	log.Block = 0
	if _, err := p.DecodeSwap(log); err != ErrMissingBlockInfo {
		t.Fatalf("expected ErrMissingBlockInfo, got %v", err)
	}

	log.Block = 1
	log.TxHash = common.Hash{}
	if _, err := p.DecodeSwap(log); err != ErrMissingTxHash {
		t.Fatalf("expected ErrMissingTxHash, got %v", err)
	}
}

func TestV3VolumeOrdering(t *testing.T) {
	p := singleTickPool(t)

	mkLog := func(block uint64, amount0, amount1 int64) *model.SwapLog {
		return &model.SwapLog{
			Address: p.Address,
			Amount0: big.NewInt(amount0),
			Amount1: big.NewInt(amount1),
			Block:   block,
			TxHash:  common.HexToHash("0x01"),
		}
	}

	logs := []*model.SwapLog{
		mkLog(300, 100, -90),  // sell: token0 in, token1 out
		mkLog(100, -80, 85),   // buy: token1 in, token0 out
		mkLog(200, 50, -45),   // sell
	}

	report, err := p.Volume(logs)
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}

	if !report.BuyVolume.Eq(uint256.NewInt(85)) {
		t.Fatalf("buy volume = %s, want 85", report.BuyVolume)
	}
	if !report.SellVolume.Eq(uint256.NewInt(80)) {
		t.Fatalf("sell volume = %s, want 80", report.SellVolume)
	}

	for i := 1; i < len(report.Swaps); i++ {
		if report.Swaps[i-1].Block > report.Swaps[i].Block {
			t.Fatalf("swaps not sorted by block at index %d", i)
		}
	}
}
