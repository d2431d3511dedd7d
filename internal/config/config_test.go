package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.TileSize != 40 {
		t.Errorf("Expected default tile size 40, got %d", cfg.TileSize)
	}
	if cfg.MixingLimit != 4 {
		t.Errorf("Expected default mixing limit 4, got %d", cfg.MixingLimit)
	}
	if cfg.RandomMaxMixingDistance != 3 {
		t.Errorf("Expected default random distance 3, got %d", cfg.RandomMaxMixingDistance)
	}
	if cfg.Mix || cfg.RandomMix {
		t.Error("Expected mixing to be disabled by default")
	}
	if cfg.Output != "output.png" {
		t.Errorf("Expected default output 'output.png', got '%s'", cfg.Output)
	}
}

func TestBuildWithEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Config
	}{
		{
			name: "unset",
			env:  map[string]string{},
			want: Default(),
		},
		{
			name: "all set",
			env: map[string]string{
				EnvTileSize:       "16",
				EnvMixingLimit:    "6",
				EnvRandomDistance: "5",
			},
			want: Config{TileSize: 16, MixingLimit: 6, RandomMaxMixingDistance: 5, Output: DefaultOutput},
		},
		{
			name: "non numeric falls back",
			env: map[string]string{
				EnvTileSize:    "big",
				EnvMixingLimit: "",
			},
			want: Default(),
		},
		{
			name: "non positive falls back",
			env: map[string]string{
				EnvTileSize:       "0",
				EnvRandomDistance: "-2",
			},
			want: Default(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewBuilder().WithEnv().WithLookup(mapLookup(tt.env)).Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got.TileSize != tt.want.TileSize ||
				got.MixingLimit != tt.want.MixingLimit ||
				got.RandomMaxMixingDistance != tt.want.RandomMaxMixingDistance {
				t.Errorf("Build() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildReadsProcessEnv(t *testing.T) {
	t.Setenv(EnvTileSize, "8")

	cfg, err := NewBuilder().WithEnv().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cfg.TileSize != 8 {
		t.Errorf("Expected tile size 8 from env, got %d", cfg.TileSize)
	}
}

func TestBuildFlagsOverrideEnv(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--random-mix", "--tile-size", "12", "--seed", "7", "--mix", "-o", "out/m.png"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	env := map[string]string{EnvTileSize: "16", EnvMixingLimit: "9"}
	cfg, err := NewBuilder().WithEnv().WithLookup(mapLookup(env)).WithFlags(fs).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if cfg.TileSize != 12 {
		t.Errorf("Expected flag tile size 12, got %d", cfg.TileSize)
	}
	if cfg.MixingLimit != 9 {
		t.Errorf("Expected env mixing limit 9 when flag unset, got %d", cfg.MixingLimit)
	}
	if !cfg.Mix || !cfg.RandomMix {
		t.Error("Expected both mix flags to be set")
	}
	if cfg.Seed == nil || *cfg.Seed != 7 {
		t.Errorf("Expected seed 7, got %v", cfg.Seed)
	}
	if cfg.Output != "out/m.png" {
		t.Errorf("Expected output 'out/m.png', got '%s'", cfg.Output)
	}
}

func TestBuildRejectsInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "zero tile size", args: []string{"--tile-size", "0"}},
		{name: "negative mixing limit", args: []string{"--mixing-limit", "-1"}},
		{name: "zero random distance", args: []string{"--random-distance", "0"}},
		{name: "negative target width", args: []string{"--target-width", "-5"}},
		{name: "empty output", args: []string{"--output", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if _, err := NewBuilder().WithFlags(fs).Build(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
