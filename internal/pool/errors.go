// Package pool implements the swap simulation engines for constant-product
// and concentrated-liquidity pools. All engine math is exact 256-bit
// integer arithmetic; floats only appear in display-oriented helpers.
package pool

import "errors"

var (
	// ErrStateNotInitialized is returned by any operation that needs pool
	// state before one was attached.
	ErrStateNotInitialized = errors.New("state not initialized")

	// ErrLiquidityUnderflow is returned when crossing a tick would push
	// active liquidity below zero. It signals corrupt or incomplete tick
	// data and is never wrapped.
	ErrLiquidityUnderflow = errors.New("liquidity underflow")

	// ErrAddressMismatch is returned when a swap log belongs to another pool.
	ErrAddressMismatch = errors.New("pool address mismatch")

	// ErrMissingBlockInfo is returned when a swap log carries no block number.
	ErrMissingBlockInfo = errors.New("block number is missing")

	// ErrMissingTxHash is returned when a swap log carries no transaction hash.
	ErrMissingTxHash = errors.New("transaction hash is missing")
)
