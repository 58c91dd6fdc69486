package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poolsim",
		Short:        "AMM pool state and swap simulation",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against live pool state",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("rpc", "", "RPC URL")
	quoteCmd.Flags().String("pool", "", "pool address")
	quoteCmd.Flags().String("pool-type", "v3", "pool type (v2, v3)")
	quoteCmd.Flags().String("token-in", "", "input token address")
	quoteCmd.Flags().Float64("amount", 0, "input amount in token units")
	quoteCmd.Flags().Uint64("block", 0, "block number, 0 means latest")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	volumeCmd := &cobra.Command{
		Use:   "volume",
		Short: "Collect the swap volume of a pool over a window",
		RunE:  runVolume,
	}

	volumeCmd.Flags().String("rpc", "", "RPC URL")
	volumeCmd.Flags().String("pool", "", "pool address")
	volumeCmd.Flags().String("window", "24h", "lookback window (12h, 7d, or a start block)")
	volumeCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	volumeCmd.Flags().String("out", "./data/swaps.jsonl", "output JSONL path")
	volumeCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	volumeCmd.Flags().Bool("checkpoint-enabled", false, "enable checkpointing")
	volumeCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	volumeCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	volumeCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	volumeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(volumeCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a concentrated liquidity position over past volume",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().String("rpc", "", "RPC URL")
	simulateCmd.Flags().String("pool", "", "pool address")
	simulateCmd.Flags().String("window", "7d", "lookback window (12h, 7d, or a start block)")
	simulateCmd.Flags().Float64("lower", 0, "lower price bound (token0 in terms of token1)")
	simulateCmd.Flags().Float64("upper", 0, "upper price bound (token0 in terms of token1)")
	simulateCmd.Flags().Float64("price-assumption", 0, "expected price (token0 in terms of token1)")
	simulateCmd.Flags().Float64("deposit", 0, "deposit amount in USD")
	simulateCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	simulateCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	simulateCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	simulateCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(simulateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
