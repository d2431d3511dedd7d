// Package config holds the run configuration for mosaic generation.
// Values come from defaults, then the environment, then command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// Environment variables read by WithEnv.
const (
	EnvTileSize       = "IMAGE_SIZE_IN_COLLAGE"
	EnvMixingLimit    = "MIXING_LIMIT"
	EnvRandomDistance = "RANDOM_MAX_MIXING_DISTANCE"
)

// Defaults.
const (
	DefaultTileSize       = 40
	DefaultMixingLimit    = 4
	DefaultRandomDistance = 3
	DefaultOutput         = "output.png"
)

// Flag names registered by RegisterFlags.
const (
	FlagMix            = "mix"
	FlagRandomMix      = "random-mix"
	FlagTileSize       = "tile-size"
	FlagMixingLimit    = "mixing-limit"
	FlagRandomDistance = "random-distance"
	FlagSeed           = "seed"
	FlagTargetWidth    = "target-width"
	FlagOutput         = "output"
	FlagCatalogCache   = "catalog-cache"
)

// Config is the explicit configuration for one mosaic run.
type Config struct {
	// TileSize is the edge length in pixels of each mosaic cell.
	TileSize int
	// MixingLimit sizes the repeat-avoidance window; the last MixingLimit-1
	// selections are excluded.
	MixingLimit int
	// RandomMaxMixingDistance is the number of closest candidates the
	// randomized policy picks from.
	RandomMaxMixingDistance int

	Mix       bool
	RandomMix bool

	// Seed fixes the random source used by RandomMix. Nil means time based.
	Seed *int64

	// TargetWidth downsamples the target before tiling when > 0.
	TargetWidth int

	Output       string
	CatalogCache string
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		TileSize:                DefaultTileSize,
		MixingLimit:             DefaultMixingLimit,
		RandomMaxMixingDistance: DefaultRandomDistance,
		Output:                  DefaultOutput,
	}
}

// Validate checks that all numeric options are usable.
func (c Config) Validate() error {
	if c.TileSize < 1 {
		return fmt.Errorf("tile size must be a positive integer, got %d", c.TileSize)
	}
	if c.MixingLimit < 1 {
		return fmt.Errorf("mixing limit must be a positive integer, got %d", c.MixingLimit)
	}
	if c.RandomMaxMixingDistance < 1 {
		return fmt.Errorf("random mixing distance must be a positive integer, got %d", c.RandomMaxMixingDistance)
	}
	if c.TargetWidth < 0 {
		return fmt.Errorf("target width cannot be negative, got %d", c.TargetWidth)
	}
	if c.Output == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	return nil
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Bool(FlagMix, false, "avoid repeating any of the most recent tiles")
	fs.Bool(FlagRandomMix, false, "pick randomly among the closest tiles instead of always the closest")
	fs.Int(FlagTileSize, DefaultTileSize, "tile edge length in pixels (env "+EnvTileSize+")")
	fs.Int(FlagMixingLimit, DefaultMixingLimit, "repeat-avoidance window (env "+EnvMixingLimit+")")
	fs.Int(FlagRandomDistance, DefaultRandomDistance, "number of closest tiles --random-mix chooses from (env "+EnvRandomDistance+")")
	fs.Int64(FlagSeed, 0, "seed for --random-mix (default: time based)")
	fs.Int(FlagTargetWidth, 0, "downsample the target image to this width before tiling (0 keeps it)")
	fs.StringP(FlagOutput, "o", DefaultOutput, "output PNG path")
	fs.String(FlagCatalogCache, "", "path of an xz-compressed catalog index to reuse dominant colours")
}

// Builder assembles a Config from layered sources.
type Builder struct {
	useEnv bool
	lookup func(string) (string, bool)
	flags  *pflag.FlagSet
}

// NewBuilder creates a Builder that starts from Default.
func NewBuilder() *Builder {
	return &Builder{lookup: os.LookupEnv}
}

// WithEnv applies the environment variables over the defaults.
func (b *Builder) WithEnv() *Builder {
	b.useEnv = true
	return b
}

// WithLookup replaces the environment lookup (useful for testing).
func (b *Builder) WithLookup(lookup func(string) (string, bool)) *Builder {
	b.lookup = lookup
	return b
}

// WithFlags applies flags explicitly set on fs over the environment.
// fs must have been prepared with RegisterFlags.
func (b *Builder) WithFlags(fs *pflag.FlagSet) *Builder {
	b.flags = fs
	return b
}

// Build produces and validates the configuration.
func (b *Builder) Build() (Config, error) {
	cfg := Default()

	if b.useEnv {
		cfg.TileSize = b.envInt(EnvTileSize, cfg.TileSize)
		cfg.MixingLimit = b.envInt(EnvMixingLimit, cfg.MixingLimit)
		cfg.RandomMaxMixingDistance = b.envInt(EnvRandomDistance, cfg.RandomMaxMixingDistance)
	}

	if b.flags != nil {
		if err := applyFlags(b.flags, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envInt parses a positive integer, falling back on anything else.
func (b *Builder) envInt(name string, fallback int) int {
	raw, ok := b.lookup(name)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func applyFlags(fs *pflag.FlagSet, cfg *Config) error {
	var err error
	if cfg.Mix, err = fs.GetBool(FlagMix); err != nil {
		return fmt.Errorf("failed to read --%s: %w", FlagMix, err)
	}
	if cfg.RandomMix, err = fs.GetBool(FlagRandomMix); err != nil {
		return fmt.Errorf("failed to read --%s: %w", FlagRandomMix, err)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{FlagTileSize, &cfg.TileSize},
		{FlagMixingLimit, &cfg.MixingLimit},
		{FlagRandomDistance, &cfg.RandomMaxMixingDistance},
		{FlagTargetWidth, &cfg.TargetWidth},
	}
	for _, f := range ints {
		if !fs.Changed(f.name) {
			continue
		}
		v, err := fs.GetInt(f.name)
		if err != nil {
			return fmt.Errorf("failed to read --%s: %w", f.name, err)
		}
		*f.dst = v
	}

	if fs.Changed(FlagSeed) {
		seed, err := fs.GetInt64(FlagSeed)
		if err != nil {
			return fmt.Errorf("failed to read --%s: %w", FlagSeed, err)
		}
		cfg.Seed = &seed
	}

	if cfg.Output, err = fs.GetString(FlagOutput); err != nil {
		return fmt.Errorf("failed to read --%s: %w", FlagOutput, err)
	}
	if cfg.CatalogCache, err = fs.GetString(FlagCatalogCache); err != nil {
		return fmt.Errorf("failed to read --%s: %w", FlagCatalogCache, err)
	}
	return nil
}
