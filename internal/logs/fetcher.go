// Package logs streams Swap event logs for a single pool over a block
// window, batching eth_getLogs calls and retrying transient RPC
// failures.
package logs

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"poolsim/internal/chain"
	"poolsim/internal/dex"
	"poolsim/internal/model"
)

// FetchConfig holds runtime settings for a swap log fetch.
type FetchConfig struct {
	FromBlock         uint64
	ToBlock           uint64
	Pool              common.Address
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Fetcher collects the Swap logs a pool emitted in a block window.
type Fetcher struct {
	cfg        FetchConfig
	chain      *chain.Client
	logger     *zap.Logger
	seen       map[string]struct{}
	checkpoint *CheckpointStore
}

// NewFetcher builds a Fetcher with its dependencies.
func NewFetcher(cfg FetchConfig, chainClient *chain.Client, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		cfg:        cfg,
		chain:      chainClient,
		logger:     logger,
		seen:       make(map[string]struct{}),
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Fetch walks the configured window batch by batch and returns every
// Swap log the pool emitted, in chain order.
func (f *Fetcher) Fetch(ctx context.Context) ([]*model.SwapLog, error) {
	if f.chain == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if f.cfg.BatchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if (f.cfg.Pool == common.Address{}) {
		return nil, fmt.Errorf("pool address is required")
	}

	topic0, err := dex.SwapTopic0()
	if err != nil {
		return nil, fmt.Errorf("swap topic: %w", err)
	}

	from := f.cfg.FromBlock
	to := f.cfg.ToBlock
	if to == 0 {
		latest, err := f.chain.LatestBlockNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if f.checkpoint != nil {
		cp, ok, err := f.checkpoint.Load(f.cfg.Pool)
		if err != nil {
			return nil, err
		}
		if ok && cp.LastProcessedBlock >= from {
			from = cp.LastProcessedBlock + 1
			f.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedBlock), zap.Uint64("from", from))
		}
	}

	if from > to {
		f.logger.Info("nothing to fetch", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil, nil
	}

	ranges, err := SplitRange(from, to, f.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	collected := make([]*model.SwapLog, 0)
	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		f.logger.Info("fetch swap logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		rawLogs, err := f.filterLogsWithRetry(ctx, blockRange.From, blockRange.To, topic0)
		if err != nil {
			return nil, fmt.Errorf("filter logs: %w", err)
		}

		for _, rawLog := range rawLogs {
			if f.isDuplicate(rawLog) {
				continue
			}
			swap, err := dex.ParseSwapLog(rawLog)
			if err != nil {
				f.logger.Warn("skip unparsable log",
					zap.Error(err),
					zap.Uint64("block_number", rawLog.BlockNumber),
					zap.String("tx_hash", rawLog.TxHash.Hex()),
				)
				continue
			}
			collected = append(collected, swap)
		}

		if f.checkpoint != nil {
			if err := f.checkpoint.Save(f.cfg.Pool, blockRange.To); err != nil {
				return nil, err
			}
		}

		f.logger.Info("batch complete", zap.Int("swaps", len(collected)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}

	return collected, nil
}

func (f *Fetcher) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64, topic0 common.Hash) ([]types.Log, error) {
	var rawLogs []types.Log
	err := withRetry(ctx, f.cfg.MaxRetries, f.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		rawLogs, err = f.chain.FilterLogs(ctx, fromBlock, toBlock, []common.Address{f.cfg.Pool}, []common.Hash{topic0})
		if err != nil {
			f.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return rawLogs, err
}

func (f *Fetcher) isDuplicate(rawLog types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", rawLog.BlockNumber, rawLog.TxHash.Hex(), rawLog.Index)
	if _, ok := f.seen[id]; ok {
		return true
	}
	f.seen[id] = struct{}{}
	return false
}
