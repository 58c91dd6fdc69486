package dex

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"poolsim/internal/chain"
	"poolsim/internal/model"
)

// TokenCache caches fetched token metadata by address.
type TokenCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.Token
}

func NewTokenCache() *TokenCache {
	return &TokenCache{data: make(map[common.Address]model.Token)}
}

func (c *TokenCache) Get(address common.Address) (model.Token, bool) {
	c.mu.RLock()
	token, ok := c.data[address]
	c.mu.RUnlock()
	return token, ok
}

func (c *TokenCache) Set(address common.Address, token model.Token) {
	c.mu.Lock()
	c.data[address] = token
	c.mu.Unlock()
}

// FetchToken loads ERC20 metadata. Decimals are mandatory; symbol and
// name fall back to the bytes32 ABI variant and are left empty when both
// fail.
func FetchToken(ctx context.Context, client *chain.Client, chainID uint64, token common.Address, logger *zap.Logger) (model.Token, error) {
	out := model.Token{ChainID: chainID, Address: token}
	if client == nil {
		return out, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return out, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return out, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := callView(ctx, client, token, stringABI, "decimals", nil)
	if err != nil {
		return out, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return out, err
	}
	out.Decimals = decimals

	if values, err := callView(ctx, client, token, stringABI, "symbol", nil); err == nil {
		if symbol, ok := values[0].(string); ok {
			out.Symbol = symbol
		}
	} else if values, err := callView(ctx, client, token, bytes32ABI, "symbol", nil); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			out.Symbol = symbol
		}
	} else {
		logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := callView(ctx, client, token, stringABI, "name", nil); err == nil {
		if name, ok := values[0].(string); ok {
			out.Name = name
		}
	} else if values, err := callView(ctx, client, token, bytes32ABI, "name", nil); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			out.Name = name
		}
	} else {
		logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := callView(ctx, client, token, stringABI, "totalSupply", nil); err == nil {
		if supplyBig, err := asBigInt(values[0]); err == nil {
			if supply, overflow := uint256.FromBig(supplyBig); !overflow {
				out.TotalSupply = supply
			}
		}
	} else {
		logger.Debug("totalSupply call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return out, nil
}

// FetchPoolTokens resolves and fetches both tokens of a pool contract,
// using the cache when possible. The same entry point serves V2 pairs and
// V3 pools, both expose token0/token1.
func FetchPoolTokens(ctx context.Context, client *chain.Client, chainID uint64, poolAddr common.Address, cache *TokenCache, logger *zap.Logger) (model.Token, model.Token, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return model.Token{}, model.Token{}, fmt.Errorf("parse pool abi: %w", err)
	}

	fetch := func(method string) (model.Token, error) {
		values, err := callView(ctx, client, poolAddr, poolABI, method, nil)
		if err != nil {
			return model.Token{}, err
		}
		addr, err := asAddress(values[0])
		if err != nil {
			return model.Token{}, fmt.Errorf("%s: %w", method, err)
		}
		if cache != nil {
			if token, ok := cache.Get(addr); ok {
				return token, nil
			}
		}
		token, err := FetchToken(ctx, client, chainID, addr, logger)
		if err != nil {
			return model.Token{}, err
		}
		if cache != nil {
			cache.Set(addr, token)
		}
		return token, nil
	}

	token0, err := fetch("token0")
	if err != nil {
		return model.Token{}, model.Token{}, err
	}
	token1, err := fetch("token1")
	if err != nil {
		return model.Token{}, model.Token{}, err
	}
	return token0, token1, nil
}

// FetchPoolFee reads the fee tier of a V3 pool in pips.
func FetchPoolFee(ctx context.Context, client *chain.Client, poolAddr common.Address) (uint64, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return 0, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callView(ctx, client, poolAddr, poolABI, "fee", nil)
	if err != nil {
		return 0, err
	}
	fee, err := asBigInt(values[0])
	if err != nil {
		return 0, fmt.Errorf("fee: %w", err)
	}
	return fee.Uint64(), nil
}
