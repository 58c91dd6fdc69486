// Package oracle resolves token USD prices. Stablecoins are pinned to 1.0
// and wrapped native tokens are priced through Chainlink feeds; any other
// token resolves to 0.0, meaning unknown.
package oracle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Chain IDs with a known address book.
const (
	ChainEthereum = 1
	ChainOptimism = 10
	ChainBSC      = 56
	ChainBase     = 8453
	ChainArbitrum = 42161
)

// WETH returns the wrapped ether address for the chain.
func WETH(chainID uint64) (common.Address, error) {
	switch chainID {
	case ChainEthereum:
		return common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), nil
	case ChainOptimism, ChainBase:
		return common.HexToAddress("0x4200000000000000000000000000000000000006"), nil
	case ChainArbitrum:
		return common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"), nil
	}
	return common.Address{}, fmt.Errorf("unsupported chain id %d", chainID)
}

// WBNB returns the wrapped BNB address. Only valid on BSC.
func WBNB(chainID uint64) (common.Address, error) {
	if chainID != ChainBSC {
		return common.Address{}, fmt.Errorf("wrong chain id, expected 56 but got %d", chainID)
	}
	return common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"), nil
}

// USDC returns the canonical (or dominant bridged) USDC address for the chain.
func USDC(chainID uint64) (common.Address, error) {
	switch chainID {
	case ChainEthereum:
		return common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), nil
	case ChainOptimism:
		// USDC.e, bridged from Ethereum.
		return common.HexToAddress("0x7F5c764cBc14f9669B88837ca1490cCa17c31607"), nil
	case ChainBSC:
		return common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d"), nil
	case ChainBase:
		return common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), nil
	case ChainArbitrum:
		return common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"), nil
	}
	return common.Address{}, fmt.Errorf("unsupported chain id %d", chainID)
}

// USDT returns the USDT address for the chain. Not available on Base.
func USDT(chainID uint64) (common.Address, error) {
	switch chainID {
	case ChainEthereum:
		return common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), nil
	case ChainOptimism:
		return common.HexToAddress("0x94b008aA00579c1307B0EF2c499aD98a8ce58e58"), nil
	case ChainBSC:
		return common.HexToAddress("0x55d398326f99059fF775485246999027B3197955"), nil
	case ChainBase:
		return common.Address{}, fmt.Errorf("usdt is not available on chain id %d", chainID)
	case ChainArbitrum:
		return common.HexToAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"), nil
	}
	return common.Address{}, fmt.Errorf("unsupported chain id %d", chainID)
}

// DAI returns the DAI address for the chain.
func DAI(chainID uint64) (common.Address, error) {
	switch chainID {
	case ChainEthereum:
		return common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), nil
	case ChainOptimism, ChainArbitrum:
		return common.HexToAddress("0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1"), nil
	case ChainBSC:
		return common.HexToAddress("0x1AF3F329e8BE154074D8769D1FFa4eE058B1DBc3"), nil
	case ChainBase:
		return common.HexToAddress("0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb"), nil
	}
	return common.Address{}, fmt.Errorf("unsupported chain id %d", chainID)
}

// Anchored reports whether the token is one the oracle can price directly.
func Anchored(chainID uint64, token common.Address) bool {
	for _, lookup := range []func(uint64) (common.Address, error){WETH, WBNB, USDC, USDT, DAI} {
		if addr, err := lookup(chainID); err == nil && addr == token {
			return true
		}
	}
	return false
}
