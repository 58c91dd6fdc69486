package config

import (
	"time"

	"github.com/spf13/pflag"
)

// SimulateConfig holds configuration for the simulate command.
type SimulateConfig struct {
	RPCURL          string
	Pool            string
	Window          string
	LowerRange      float64
	UpperRange      float64
	PriceAssumption float64
	Deposit         float64
	BatchSize       uint64
	MaxRetries      int
	RetryBackoff    time.Duration
	PGDSN           string
	LogLevel        string
}

// LoadSimulate merges config file, environment variables, and flags
// into SimulateConfig.
func LoadSimulate(cfgFile string, flags *pflag.FlagSet) (SimulateConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return SimulateConfig{}, err
	}

	v.SetDefault("window", "7d")
	v.SetDefault("batch-size", uint64(2000))
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	cfg := SimulateConfig{
		RPCURL:          v.GetString("rpc"),
		Pool:            v.GetString("pool"),
		Window:          v.GetString("window"),
		LowerRange:      v.GetFloat64("lower"),
		UpperRange:      v.GetFloat64("upper"),
		PriceAssumption: v.GetFloat64("price-assumption"),
		Deposit:         v.GetFloat64("deposit"),
		BatchSize:       v.GetUint64("batch-size"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		PGDSN:           v.GetString("pg-dsn"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}
