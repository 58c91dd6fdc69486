package model

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SwapLog is the decoded payload of a V3 Swap event as emitted by the
// pool contract. Amount0 and Amount1 keep the protocol's signed delta
// convention: positive means the pool received that token, negative
// means it paid it out. Block zero and an empty TxHash mean the log
// carried no such field.
type SwapLog struct {
	Address   common.Address `json:"address"`
	Sender    common.Address `json:"sender"`
	Recipient common.Address `json:"recipient"`
	Amount0   *big.Int       `json:"amount0"`
	Amount1   *big.Int       `json:"amount1"`
	Block     uint64         `json:"block"`
	TxHash    common.Hash    `json:"tx_hash"`
}

// SwapRecord is one replayable swap with unsigned amounts and resolved
// in/out tokens.
type SwapRecord struct {
	Account   *common.Address `json:"account,omitempty"`
	TokenIn   Token           `json:"token_in"`
	TokenOut  Token           `json:"token_out"`
	AmountIn  *uint256.Int    `json:"amount_in"`
	AmountOut *uint256.Int    `json:"amount_out"`
	Block     uint64          `json:"block"`
	TxHash    common.Hash     `json:"tx_hash"`
}

// String renders the swap as a one-line human summary.
func (r SwapRecord) String() string {
	from := "Unknown"
	if r.Account != nil {
		from = r.Account.Hex()
	}
	return fmt.Sprintf("Swap: %s -> %s | From: %s | Amount: %v -> %v | Block: %d | Tx: %s",
		r.TokenIn.Symbol,
		r.TokenOut.Symbol,
		from,
		FormatUnits(r.AmountIn, r.TokenIn.Decimals),
		FormatUnits(r.AmountOut, r.TokenOut.Decimals),
		r.Block,
		r.TxHash.Hex(),
	)
}

// VolumeReport aggregates the swaps observed on one pool. BuyVolume is
// the token1 paid into the pool, SellVolume the token0 paid out of it.
// Swaps are sorted ascending by block number.
type VolumeReport struct {
	BuyVolume  *uint256.Int `json:"buy_volume"`
	SellVolume *uint256.Int `json:"sell_volume"`
	Swaps      []SwapRecord `json:"swaps"`
}

// BuyVolumeUSD converts the buy volume into USD at the given token price.
func (v VolumeReport) BuyVolumeUSD(usdPrice float64, decimals uint8) float64 {
	return FormatUnits(v.BuyVolume, decimals) * usdPrice
}

// SellVolumeUSD converts the sell volume into USD at the given token price.
func (v VolumeReport) SellVolumeUSD(usdPrice float64, decimals uint8) float64 {
	return FormatUnits(v.SellVolume, decimals) * usdPrice
}
