package config

import (
	"time"

	"github.com/spf13/pflag"
)

// VolumeConfig holds configuration for the volume command.
type VolumeConfig struct {
	RPCURL            string
	Pool              string
	Window            string
	BatchSize         uint64
	Out               string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	PGDSN             string
	LogLevel          string
}

// LoadVolume merges config file, environment variables, and flags into
// VolumeConfig.
func LoadVolume(cfgFile string, flags *pflag.FlagSet) (VolumeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return VolumeConfig{}, err
	}

	v.SetDefault("window", "24h")
	v.SetDefault("batch-size", uint64(2000))
	v.SetDefault("out", "./data/swaps.jsonl")
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("checkpoint-enabled", false)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	cfg := VolumeConfig{
		RPCURL:            v.GetString("rpc"),
		Pool:              v.GetString("pool"),
		Window:            v.GetString("window"),
		BatchSize:         v.GetUint64("batch-size"),
		Out:               v.GetString("out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		PGDSN:             v.GetString("pg-dsn"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}
