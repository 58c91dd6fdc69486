package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolsim/internal/backtest"
	"poolsim/internal/chain"
	"poolsim/internal/config"
	"poolsim/internal/dex"
	"poolsim/internal/logs"
	"poolsim/internal/oracle"
	"poolsim/internal/pool"
	"poolsim/internal/storage/postgres"
)

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
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
	if cfg.LowerRange <= 0 || cfg.UpperRange <= cfg.LowerRange {
		return fmt.Errorf("price range [%v, %v] is invalid", cfg.LowerRange, cfg.UpperRange)
	}
	if cfg.PriceAssumption <= 0 {
		return fmt.Errorf("price assumption must be positive")
	}
	if cfg.Deposit <= 0 {
		return fmt.Errorf("deposit must be positive")
	}

	window, err := config.ParseWindow(cfg.Window)
	if err != nil {
		return err
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

	latest, err := chainClient.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("get latest block: %w", err)
	}
	forkBlock, err := window.GoBack(chainID.Uint64(), latest)
	if err != nil {
		return fmt.Errorf("resolve window: %w", err)
	}

	poolAddr := common.HexToAddress(cfg.Pool)
	cache := dex.NewTokenCache()
	token0, token1, err := dex.FetchPoolTokens(ctx, chainClient, chainID.Uint64(), poolAddr, cache, logger)
	if err != nil {
		return fmt.Errorf("fetch pool tokens: %w", err)
	}
	fee, err := dex.FetchPoolFee(ctx, chainClient, poolAddr)
	if err != nil {
		return fmt.Errorf("fetch pool fee: %w", err)
	}
	p := pool.NewConcentratedPool(chainID.Uint64(), poolAddr, fee, token0, token1)
	if !p.SupportsUSD() {
		logger.Warn("neither pool token has a USD anchor, prices may resolve to zero",
			zap.String("token0", token0.Symbol),
			zap.String("token1", token1.Symbol),
		)
	}

	logger.Info("simulate start",
		zap.String("pool", poolAddr.Hex()),
		zap.Uint64("fork_block", forkBlock),
		zap.Uint64("latest", latest),
		zap.Float64("lower", cfg.LowerRange),
		zap.Float64("upper", cfg.UpperRange),
		zap.Float64("deposit", cfg.Deposit),
	)

	fetcher := logs.NewFetcher(logs.FetchConfig{
		FromBlock:    forkBlock,
		ToBlock:      latest,
		Pool:         poolAddr,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, logger)

	swapLogs, err := fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch swap logs: %w", err)
	}

	report, err := p.Volume(swapLogs)
	if err != nil {
		return fmt.Errorf("build volume report: %w", err)
	}
	logger.Info("volume collected", zap.Int("swaps", len(report.Swaps)))

	forkState, err := dex.FetchV3State(ctx, chainClient, poolAddr, forkBlock)
	if err != nil {
		return fmt.Errorf("fetch fork state: %w", err)
	}
	p.UpdateState(forkState)

	priceSource := oracle.NewChainlinkSource(chainClient)
	past0USD, past1USD, err := p.TokensUSD(ctx, priceSource)
	if err != nil {
		return fmt.Errorf("fork block token prices: %w", err)
	}

	latestPool := p.Clone()
	latestState, err := dex.FetchV3State(ctx, chainClient, poolAddr, 0)
	if err != nil {
		return fmt.Errorf("fetch latest state: %w", err)
	}
	latestPool.UpdateState(latestState)
	latest0USD, latest1USD, err := latestPool.TokensUSD(ctx, priceSource)
	if err != nil {
		return fmt.Errorf("latest token prices: %w", err)
	}

	res, err := backtest.Run(backtest.PositionArgs{
		LowerRange:      cfg.LowerRange,
		UpperRange:      cfg.UpperRange,
		PriceAssumption: cfg.PriceAssumption,
		DepositAmount:   cfg.Deposit,
		Pool:            p,
	}, report, window, backtest.Prices{
		PastToken0USD:   past0USD,
		PastToken1USD:   past1USD,
		LatestToken0USD: latest0USD,
		LatestToken1USD: latest1USD,
	})
	if err != nil {
		return fmt.Errorf("simulate position: %w", err)
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if err := store.UpsertPools(ctx, []*pool.ConcentratedPool{p}); err != nil {
			return fmt.Errorf("upsert pool: %w", err)
		}
		if err := store.InsertPositionResult(ctx, chainID.Uint64(), poolAddr.Hex(), res); err != nil {
			return fmt.Errorf("insert position result: %w", err)
		}
	}

	fmt.Println(res.Pretty())
	return nil
}
