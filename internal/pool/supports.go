package pool

import "poolsim/internal/oracle"

// SupportsUSD reports whether at least one side of the pair can be priced
// in USD directly.
func (p *ConstantProductPool) SupportsUSD() bool {
	return oracle.Anchored(p.ChainID, p.Token0.Address) || oracle.Anchored(p.ChainID, p.Token1.Address)
}

// SupportsUSD reports whether at least one side of the pair can be priced
// in USD directly.
func (p *ConcentratedPool) SupportsUSD() bool {
	return oracle.Anchored(p.ChainID, p.Token0.Address) || oracle.Anchored(p.ChainID, p.Token1.Address)
}
