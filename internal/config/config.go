// Package config merges config files, POOLSIM_* environment variables
// and command flags into per-command settings, flags winning over env
// over file over defaults.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"poolsim/internal/chain"
)

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// ParseWindow parses a lookback window: "12h" for hours, "7d" for days,
// a bare number for an absolute start block.
func ParseWindow(input string) (chain.BlockTime, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return chain.BlockTime{}, fmt.Errorf("window is required")
	}

	suffix := input[len(input)-1]
	switch suffix {
	case 'h', 'd':
		value, err := strconv.ParseUint(input[:len(input)-1], 10, 64)
		if err != nil {
			return chain.BlockTime{}, fmt.Errorf("invalid window %q: %w", input, err)
		}
		if value == 0 {
			return chain.BlockTime{}, fmt.Errorf("window must be positive")
		}
		if suffix == 'h' {
			return chain.Hours(value), nil
		}
		return chain.Days(value), nil
	}

	value, err := strconv.ParseUint(input, 10, 64)
	if err != nil {
		return chain.BlockTime{}, fmt.Errorf("invalid window %q: %w", input, err)
	}
	return chain.AtBlock(value), nil
}
