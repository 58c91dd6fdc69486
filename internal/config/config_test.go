package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"

	"poolsim/internal/chain"
)

func TestLoadVolumeDefaults(t *testing.T) {
	cfg, err := LoadVolume("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Window != "24h" {
		t.Fatalf("window default = %q, want 24h", cfg.Window)
	}
	if cfg.BatchSize != 2000 {
		t.Fatalf("batch size default = %d, want 2000", cfg.BatchSize)
	}
	if cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("retry backoff default = %v, want 500ms", cfg.RetryBackoff)
	}
}

func TestLoadVolumePrecedence(t *testing.T) {
	t.Setenv("POOLSIM_BATCH_SIZE", "100")
	t.Setenv("POOLSIM_RPC", "http://env.example")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	if err := flags.Set("rpc", "http://flag.example"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := LoadVolume("", flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BatchSize != 100 {
		t.Fatalf("env must beat default, batch size = %d", cfg.BatchSize)
	}
	if cfg.RPCURL != "http://flag.example" {
		t.Fatalf("flag must beat env, rpc = %q", cfg.RPCURL)
	}
}

func TestParseWindow(t *testing.T) {
	cases := []struct {
		input string
		want  chain.BlockTime
	}{
		{"12h", chain.Hours(12)},
		{"7d", chain.Days(7)},
		{"19000000", chain.AtBlock(19000000)},
	}
	for _, tc := range cases {
		got, err := ParseWindow(tc.input)
		if err != nil {
			t.Fatalf("ParseWindow(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseWindow(%q) = %+v, want %+v", tc.input, got, tc.want)
		}
	}

	for _, input := range []string{"", "0h", "xd", "h"} {
		if _, err := ParseWindow(input); err == nil {
			t.Fatalf("ParseWindow(%q) must fail", input)
		}
	}
}
