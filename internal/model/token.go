package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Token is an immutable ERC20 descriptor. Decimals drives every
// human-unit conversion, so it must match the on-chain value.
type Token struct {
	ChainID     uint64         `json:"chain_id"`
	Address     common.Address `json:"address"`
	Symbol      string         `json:"symbol"`
	Name        string         `json:"name"`
	Decimals    uint8          `json:"decimals"`
	TotalSupply *uint256.Int   `json:"total_supply"`
}

// UnitAmount returns 10^decimals, one whole token in base units.
func (t Token) UnitAmount() *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(t.Decimals)))
}

// ParseUnits converts a human token amount into base units, truncating
// anything below one base unit.
func ParseUnits(amount float64, decimals uint8) *uint256.Int {
	if amount <= 0 {
		return new(uint256.Int)
	}
	d := decimal.NewFromFloat(amount).Shift(int32(decimals)).Truncate(0)
	v, overflow := uint256.FromBig(d.BigInt())
	if overflow {
		return new(uint256.Int)
	}
	return v
}

// FormatUnits converts a base-unit amount into a human value scaled by
// 10^decimals. Display only; never feed the result back into pool math.
func FormatUnits(amount *uint256.Int, decimals uint8) float64 {
	if amount == nil {
		return 0
	}
	d := decimal.NewFromBigInt(amount.ToBig(), -int32(decimals))
	f, _ := d.Float64()
	return f
}
