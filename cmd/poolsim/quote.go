package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolsim/internal/chain"
	"poolsim/internal/config"
	"poolsim/internal/dex"
	"poolsim/internal/model"
	"poolsim/internal/pool"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.Pool) {
		return fmt.Errorf("valid pool address is required")
	}
	if !common.IsHexAddress(cfg.TokenIn) {
		return fmt.Errorf("valid token-in address is required")
	}
	if cfg.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	poolAddr := common.HexToAddress(cfg.Pool)
	cache := dex.NewTokenCache()
	token0, token1, err := dex.FetchPoolTokens(ctx, chainClient, chainID.Uint64(), poolAddr, cache, logger)
	if err != nil {
		return fmt.Errorf("fetch pool tokens: %w", err)
	}

	tokenInAddr := common.HexToAddress(cfg.TokenIn)
	var tokenIn, tokenOut model.Token
	switch tokenInAddr {
	case token0.Address:
		tokenIn, tokenOut = token0, token1
	case token1.Address:
		tokenIn, tokenOut = token1, token0
	default:
		return fmt.Errorf("token %s is not part of pool %s", tokenInAddr.Hex(), poolAddr.Hex())
	}

	amountIn := model.ParseUnits(cfg.Amount, tokenIn.Decimals)

	logger.Info("quote",
		zap.String("pool", poolAddr.Hex()),
		zap.String("pool_type", cfg.PoolType),
		zap.String("token_in", tokenIn.Symbol),
		zap.Float64("amount", cfg.Amount),
		zap.Uint64("block", cfg.Block),
	)

	var amountOut *uint256.Int
	switch cfg.PoolType {
	case "v2":
		p := pool.NewConstantProductPool(chainID.Uint64(), poolAddr, token0, token1)
		state, err := dex.FetchV2State(ctx, chainClient, poolAddr, cfg.Block)
		if err != nil {
			return fmt.Errorf("fetch pair state: %w", err)
		}
		p.UpdateState(state)
		out, err := p.QuoteSwap(tokenIn.Address, amountIn)
		if err != nil {
			return fmt.Errorf("quote swap: %w", err)
		}
		amountOut = out
	case "v3":
		fee, err := dex.FetchPoolFee(ctx, chainClient, poolAddr)
		if err != nil {
			return fmt.Errorf("fetch pool fee: %w", err)
		}
		p := pool.NewConcentratedPool(chainID.Uint64(), poolAddr, fee, token0, token1)
		state, err := dex.FetchV3State(ctx, chainClient, poolAddr, cfg.Block)
		if err != nil {
			return fmt.Errorf("fetch pool state: %w", err)
		}
		p.UpdateState(state)
		out, err := p.QuoteSwap(tokenIn.Address, amountIn)
		if err != nil {
			return fmt.Errorf("quote swap: %w", err)
		}
		amountOut = out
	default:
		return fmt.Errorf("unknown pool type %q", cfg.PoolType)
	}

	fmt.Printf("%v %s -> %v %s\n",
		cfg.Amount, tokenIn.Symbol,
		model.FormatUnits(amountOut, tokenOut.Decimals), tokenOut.Symbol,
	)
	return nil
}
