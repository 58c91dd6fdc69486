package model

import "github.com/holiman/uint256"

// PoolTick is a single tick sample: the signed liquidity delta recorded
// at that tick boundary as of a block. LiquidityNet uses the
// two's-complement signed interpretation of uint256.
type PoolTick struct {
	Tick         int          `json:"tick"`
	LiquidityNet *uint256.Int `json:"liquidity_net"`
	Block        uint64       `json:"block"`
}
