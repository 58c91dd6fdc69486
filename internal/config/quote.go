package config

import (
	"github.com/spf13/pflag"
)

// QuoteConfig holds configuration for the quote command.
type QuoteConfig struct {
	RPCURL   string
	Pool     string
	PoolType string
	TokenIn  string
	Amount   float64
	Block    uint64
	LogLevel string
}

// LoadQuote merges config file, environment variables, and flags into
// QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return QuoteConfig{}, err
	}

	v.SetDefault("pool-type", "v3")
	v.SetDefault("log-level", "info")

	cfg := QuoteConfig{
		RPCURL:   v.GetString("rpc"),
		Pool:     v.GetString("pool"),
		PoolType: v.GetString("pool-type"),
		TokenIn:  v.GetString("token-in"),
		Amount:   v.GetFloat64("amount"),
		Block:    v.GetUint64("block"),
		LogLevel: v.GetString("log-level"),
	}

	return cfg, nil
}
