package mosaic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/image/draw"

	"github.com/jmylchreest/tessera/internal/colour"
	imageutil "github.com/jmylchreest/tessera/internal/image"
)

// ErrEmptyTarget is returned for a target image with zero width or height.
var ErrEmptyTarget = errors.New("target image has no pixels")

// TileError reports a tile that could not be loaded or decoded.
type TileError struct {
	ID  string
	Err error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("tile %s: %v", e.ID, e.Err)
}

func (e *TileError) Unwrap() error {
	return e.Err
}

// Sample is the colour of one target pixel.
type Sample struct {
	X, Y   int
	Colour colour.RGB
}

// Placement records which tile was drawn for a sample.
type Placement struct {
	Sample
	TileID string
}

// ProgressFunc is called after each completed column x of width columns.
type ProgressFunc func(x, width int)

// CompositorOptions configures a Compositor.
type CompositorOptions struct {
	TileSize int
	Progress ProgressFunc
	Logger   hclog.Logger
}

// Compositor draws the selected tiles for every target pixel into a canvas.
type Compositor struct {
	policy     *Policy
	tiles      imageutil.Loader
	tileSize   int
	progress   ProgressFunc
	logger     hclog.Logger
	cache      *imageutil.Cache
	placements []Placement
}

// NewCompositor creates a compositor that resolves tiles with policy and
// reads their pixels through tiles.
func NewCompositor(policy *Policy, tiles imageutil.Loader, opts CompositorOptions) (*Compositor, error) {
	if policy == nil {
		return nil, fmt.Errorf("selection policy cannot be nil")
	}
	if tiles == nil {
		return nil, fmt.Errorf("tile loader cannot be nil")
	}
	if opts.TileSize < 1 {
		return nil, fmt.Errorf("tile size must be a positive integer, got %d", opts.TileSize)
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Compositor{
		policy:   policy,
		tiles:    tiles,
		tileSize: opts.TileSize,
		progress: opts.Progress,
		logger:   logger,
		cache:    imageutil.NewCache(),
	}, nil
}

// Render builds the mosaic for target. Pixels are visited column by column,
// top to bottom within a column, and the canvas is
// (width*TileSize) x (height*TileSize).
func (c *Compositor) Render(ctx context.Context, target image.Image) (*image.RGBA, error) {
	bounds := target.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyTarget
	}

	canvasW, canvasH := width*c.tileSize, height*c.tileSize
	if canvasW/c.tileSize != width || canvasH/c.tileSize != height || canvasW > math.MaxInt/4/canvasH {
		return nil, fmt.Errorf("output canvas too large: %dx%d tiles of %dpx", width, height, c.tileSize)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	c.placements = make([]Placement, 0, width*height)

	for x := 0; x < width; x++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for y := 0; y < height; y++ {
			sample := Sample{X: x, Y: y, Colour: colour.ToRGB(target.At(bounds.Min.X+x, bounds.Min.Y+y))}
			tile := c.policy.Select(sample.Colour)

			img, err := c.tile(tile.ID)
			if err != nil {
				return nil, err
			}

			cell := image.Rect(x*c.tileSize, y*c.tileSize, (x+1)*c.tileSize, (y+1)*c.tileSize)
			draw.Draw(canvas, cell, img, image.Point{}, draw.Src)
			c.placements = append(c.placements, Placement{Sample: sample, TileID: tile.ID})
		}

		if c.progress != nil {
			c.progress(x, width)
		}
	}

	hits, misses := c.cache.Stats()
	c.logger.Debug("mosaic rendered", "tiles_used", c.cache.Len(), "cache_hits", hits, "cache_misses", misses)

	return canvas, nil
}

// Placements returns the selections of the last Render in visiting order.
func (c *Compositor) Placements() []Placement {
	out := make([]Placement, len(c.placements))
	copy(out, c.placements)
	return out
}

// tile returns the tile image scaled to the cell size, loading it on first use.
func (c *Compositor) tile(id string) (image.Image, error) {
	if img := c.cache.Get(id); img != nil {
		return img, nil
	}

	img, err := c.tiles.Load(id)
	if err != nil {
		return nil, &TileError{ID: id, Err: err}
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, &TileError{ID: id, Err: fmt.Errorf("image has no pixels")}
	}

	scaled := imageutil.ScaleToSquare(img, c.tileSize)
	c.cache.Put(id, scaled)
	return scaled, nil
}
