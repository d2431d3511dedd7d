// Package cli provides the command-line interface for Tessera.
package cli

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tessera/internal/catalog"
	"github.com/jmylchreest/tessera/internal/config"
	"github.com/jmylchreest/tessera/internal/image"
	"github.com/jmylchreest/tessera/internal/mosaic"
	"github.com/jmylchreest/tessera/internal/version"
)

// NewRootCmd builds the tessera command tree. The root command renders a
// mosaic; subcommands inspect tile catalogs and print version information.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tessera <target> <tileDirectory|archive>",
		Short: "A photomosaic generator",
		Long: `Tessera rebuilds a target image out of many small tile images.

Every pixel of the target becomes one tile, chosen from the .jpg and .png
files in the tile directory or archive by how close its dominant colour is
to the pixel colour. The result is written as a PNG.

Environment:
  IMAGE_SIZE_IN_COLLAGE       tile edge length in pixels (default 40)
  MIXING_LIMIT                repeat-avoidance window for --mix (default 4)
  RANDOM_MAX_MIXING_DISTANCE  closest tiles --random-mix picks from (default 3)

Examples:
  # Closest tile for every pixel
  tessera portrait.jpg ./tiles

  # Avoid runs of the same tile
  tessera --mix portrait.jpg ./tiles

  # Reproducible random variation, written elsewhere
  tessera --mix --random-mix --seed 42 -o mosaic.png portrait.jpg ./tiles

  # Shrink a large target first and reuse colours between runs
  tessera --target-width 120 --catalog-cache tiles.idx.xz photo.png ./tiles

  # Tiles straight from an archive (.zip, .tar.gz, .tar.xz, .tar.bz2)
  tessera photo.png tiles.tar.xz`,
		Args:         cobra.ExactArgs(2),
		Version:      version.Short(),
		SilenceUsage: true,
		RunE:         runMosaic,
	}

	config.RegisterFlags(rootCmd.Flags())

	rootCmd.PersistentFlags().BoolP(flagVerbose, "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP(flagQuiet, "q", false, "suppress non-error output")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// runMosaic executes the root command.
func runMosaic(cmd *cobra.Command, args []string) error {
	targetPath, tileDir := args[0], args[1]
	logger := newLogger(cmd)

	cfg, err := config.NewBuilder().WithEnv().WithFlags(cmd.Flags()).Build()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Info("Received", "target", targetPath, "tiles", tileDir, "tile_size", cfg.TileSize)

	logger.Info("Reading image input", "path", targetPath)
	if err := image.ValidateImagePath(targetPath); err != nil {
		return fmt.Errorf("invalid target image: %w", err)
	}
	target, err := image.NewFileLoader().Load(targetPath)
	if err != nil {
		return fmt.Errorf("failed to load target image: %w", err)
	}
	if b := target.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("%s: %w", targetPath, mosaic.ErrEmptyTarget)
	}
	if cfg.TargetWidth > 0 {
		before := target.Bounds()
		target = image.ResizeToWidth(target, cfg.TargetWidth)
		logger.Debug("target downsampled", "from", before.Size().String(), "to", target.Bounds().Size().String())
	}

	tiles, err := openTileSource(tileDir, logger)
	if err != nil {
		return err
	}
	defer tiles.Close()

	cat, err := catalog.Build(tiles.dir, catalog.Options{
		IndexPath: tiles.indexPath(cfg.CatalogCache),
		Logger:    logger.Named("catalog"),
	})
	if err != nil {
		return fmt.Errorf("failed to build tile catalog: %w", err)
	}

	popts := mosaic.PolicyOptions{
		Mix:                     cfg.Mix,
		MixingLimit:             cfg.MixingLimit,
		RandomMix:               cfg.RandomMix,
		RandomMaxMixingDistance: cfg.RandomMaxMixingDistance,
	}
	if cfg.Seed != nil {
		popts.Random = rand.New(rand.NewSource(*cfg.Seed)) // #nosec G404 -- reproducible tile variety
	}
	policy, err := mosaic.NewPolicy(cat, popts)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool(flagQuiet)
	out := cmd.OutOrStdout()
	compositor, err := mosaic.NewCompositor(policy, image.NewDirLoader(tiles.dir), mosaic.CompositorOptions{
		TileSize: cfg.TileSize,
		Logger:   logger.Named("mosaic"),
		Progress: func(x, width int) {
			if !quiet {
				fmt.Fprintf(out, "progress: %d/%d\n", x, width)
			}
		},
	})
	if err != nil {
		return err
	}

	size := target.Bounds().Size()
	logger.Info("Preparing output image",
		"width", size.X*cfg.TileSize,
		"height", size.Y*cfg.TileSize,
		"tiles", cat.Len(),
		"mode", policy.Mode())

	canvas, err := compositor.Render(cmd.Context(), target)
	if err != nil {
		return fmt.Errorf("failed to render mosaic: %w", err)
	}

	if err := image.SavePNG(canvas, cfg.Output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	logger.Info("Everything ready", "output", cfg.Output)
	return nil
}
