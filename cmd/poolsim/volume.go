package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolsim/internal/chain"
	"poolsim/internal/config"
	"poolsim/internal/dex"
	"poolsim/internal/logs"
	"poolsim/internal/model"
	"poolsim/internal/pool"
	"poolsim/internal/storage"
	"poolsim/internal/storage/postgres"
)

func runVolume(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadVolume(cfgFile, cmd.Flags())
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
	fromBlock, err := window.GoBack(chainID.Uint64(), latest)
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

	windowStart, err := chainClient.BlockTimestamp(ctx, fromBlock)
	if err != nil {
		return fmt.Errorf("window start timestamp: %w", err)
	}

	logger.Info("volume start",
		zap.String("pool", poolAddr.Hex()),
		zap.Uint64("from", fromBlock),
		zap.Uint64("to", latest),
		zap.Time("window_start", time.Unix(int64(windowStart), 0).UTC()),
		zap.Uint64("batch_size", cfg.BatchSize),
	)

	fetcher := logs.NewFetcher(logs.FetchConfig{
		FromBlock:         fromBlock,
		ToBlock:           latest,
		Pool:              poolAddr,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, chainClient, logger)

	swapLogs, err := fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch swap logs: %w", err)
	}

	report, err := p.Volume(swapLogs)
	if err != nil {
		return fmt.Errorf("build volume report: %w", err)
	}

	sink := storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutSwapBatch(report.Swaps); err != nil {
		return fmt.Errorf("store swaps: %w", err)
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
		if err := store.InsertSwaps(ctx, chainID.Uint64(), poolAddr.Hex(), report.Swaps); err != nil {
			return fmt.Errorf("insert swaps: %w", err)
		}
	}

	fmt.Printf("Swaps: %d\nBuy volume: %v %s\nSell volume: %v %s\n",
		len(report.Swaps),
		model.FormatUnits(report.BuyVolume, token1.Decimals), token1.Symbol,
		model.FormatUnits(report.SellVolume, token0.Decimals), token0.Symbol,
	)
	return nil
}
