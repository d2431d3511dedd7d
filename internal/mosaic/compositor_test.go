package mosaic

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/tessera/internal/catalog"
	"github.com/jmylchreest/tessera/internal/colour"
	imageutil "github.com/jmylchreest/tessera/internal/image"
)

const testTileSize = 4

func newTestCompositor(t *testing.T, tiles []catalog.Tile, popts PolicyOptions, progress ProgressFunc) (*Compositor, *memLoader) {
	t.Helper()
	loader := newMemLoader(testTileSize, tiles)
	c, err := NewCompositor(mustPolicy(t, mustCatalog(t, tiles...), popts), loader, CompositorOptions{
		TileSize: testTileSize,
		Progress: progress,
	})
	if err != nil {
		t.Fatalf("NewCompositor() error = %v", err)
	}
	return c, loader
}

func cellColour(canvas *image.RGBA, x, y int) colour.RGB {
	return colour.ToRGB(canvas.At(x*testTileSize+testTileSize/2, y*testTileSize+testTileSize/2))
}

func TestNewCompositorValidation(t *testing.T) {
	p := mustPolicy(t, mustCatalog(t, tile("a", 0, 0, 0)), PolicyOptions{})
	loader := newMemLoader(1, nil)

	tests := []struct {
		name   string
		policy *Policy
		loader *memLoader
		size   int
	}{
		{name: "nil policy", policy: nil, loader: loader, size: 4},
		{name: "nil loader", policy: p, loader: nil, size: 4},
		{name: "zero tile size", policy: p, loader: loader, size: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l imageutil.Loader
			if tt.loader != nil {
				l = tt.loader
			}
			if _, err := NewCompositor(tt.policy, l, CompositorOptions{TileSize: tt.size}); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

// A one-pixel target becomes a single black tile.
func TestRenderSinglePixel(t *testing.T) {
	tiles := []catalog.Tile{tile("black", 0, 0, 0), tile("white", 255, 255, 255)}
	c, _ := newTestCompositor(t, tiles, PolicyOptions{}, nil)

	canvas, err := c.Render(context.Background(), solid(1, 1, color.RGBA{R: 10, G: 10, B: 10, A: 255}))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got := canvas.Bounds(); got != image.Rect(0, 0, testTileSize, testTileSize) {
		t.Errorf("canvas bounds = %v", got)
	}
	for y := 0; y < testTileSize; y++ {
		for x := 0; x < testTileSize; x++ {
			if got := colour.ToRGB(canvas.At(x, y)); got != (colour.RGB{}) {
				t.Fatalf("pixel (%d,%d) = %s, want black", x, y, got)
			}
		}
	}
}

// Each column is matched independently and reported once done.
func TestRenderColumnMajorWithProgress(t *testing.T) {
	tiles := []catalog.Tile{
		tile("red", 255, 0, 0),
		tile("green", 0, 255, 0),
		tile("blue", 0, 0, 255),
		tile("black", 0, 0, 0),
		tile("white", 255, 255, 255),
	}

	type call struct{ X, Width int }
	var calls []call
	c, _ := newTestCompositor(t, tiles, PolicyOptions{}, func(x, width int) {
		calls = append(calls, call{x, width})
	})

	target := image.NewRGBA(image.Rect(0, 0, 2, 1))
	target.Set(0, 0, color.RGBA{R: 250, G: 5, B: 5, A: 255})
	target.Set(1, 0, color.RGBA{R: 5, G: 5, B: 240, A: 255})

	canvas, err := c.Render(context.Background(), target)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got := canvas.Bounds().Size(); got != image.Pt(2*testTileSize, testTileSize) {
		t.Errorf("canvas size = %v", got)
	}

	want := []Placement{
		{Sample: Sample{X: 0, Y: 0, Colour: colour.RGB{R: 250, G: 5, B: 5}}, TileID: "red"},
		{Sample: Sample{X: 1, Y: 0, Colour: colour.RGB{R: 5, G: 5, B: 240}}, TileID: "blue"},
	}
	if diff := cmp.Diff(want, c.Placements()); diff != "" {
		t.Errorf("Placements() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]call{{0, 2}, {1, 2}}, calls); diff != "" {
		t.Errorf("progress calls mismatch (-want +got):\n%s", diff)
	}
	if got := cellColour(canvas, 1, 0); got != (colour.RGB{B: 255}) {
		t.Errorf("cell (1,0) = %s, want blue", got)
	}
}

func TestRenderVisitsColumnsTopToBottom(t *testing.T) {
	tiles := []catalog.Tile{tile("black", 0, 0, 0), tile("white", 255, 255, 255)}
	c, _ := newTestCompositor(t, tiles, PolicyOptions{}, nil)

	// Light on the diagonal, dark elsewhere.
	target := solid(2, 3, color.Black)
	target.Set(0, 0, color.White)
	target.Set(1, 1, color.White)

	canvas, err := c.Render(context.Background(), target)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var order [][2]int
	for _, p := range c.Placements() {
		order = append(order, [2]int{p.X, p.Y})
	}
	if diff := cmp.Diff([][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}, order); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}

	white := colour.RGB{R: 255, G: 255, B: 255}
	for _, p := range c.Placements() {
		want := colour.RGB{}
		if (p.X == 0 && p.Y == 0) || (p.X == 1 && p.Y == 1) {
			want = white
		}
		if got := cellColour(canvas, p.X, p.Y); got != want {
			t.Errorf("cell (%d,%d) = %s, want %s", p.X, p.Y, got, want)
		}
	}
}

// Mixing alternates equidistant tiles down a single column.
func TestRenderMixAlternatesDownColumn(t *testing.T) {
	tiles := []catalog.Tile{tile("a", 100, 100, 100), tile("b", 100, 100, 100)}
	c, _ := newTestCompositor(t, tiles, PolicyOptions{Mix: true, MixingLimit: 2}, nil)

	if _, err := c.Render(context.Background(), solid(1, 4, color.Gray{Y: 100})); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var got []string
	for _, p := range c.Placements() {
		got = append(got, p.TileID)
	}
	if diff := cmp.Diff([]string{"a", "b", "a", "b"}, got); diff != "" {
		t.Errorf("tile sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSemiTransparentTarget(t *testing.T) {
	tiles := []catalog.Tile{tile("dark", 128, 0, 0), tile("red", 255, 0, 0)}
	c, _ := newTestCompositor(t, tiles, PolicyOptions{}, nil)

	target := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	target.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 128})

	if _, err := c.Render(context.Background(), target); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	p := c.Placements()[0]
	if p.Colour != (colour.RGB{R: 255}) {
		t.Errorf("sampled colour = %s, want rgb(255, 0, 0)", p.Colour)
	}
	if p.TileID != "red" {
		t.Errorf("placement = %s, want red", p.TileID)
	}
}

func TestRenderSubImageTarget(t *testing.T) {
	tiles := []catalog.Tile{tile("black", 0, 0, 0), tile("white", 255, 255, 255)}
	c, _ := newTestCompositor(t, tiles, PolicyOptions{}, nil)

	full := solid(4, 4, color.Black)
	full.Set(2, 2, color.White)
	sub := full.SubImage(image.Rect(2, 2, 4, 4))

	canvas, err := c.Render(context.Background(), sub)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := canvas.Bounds(); got != image.Rect(0, 0, 2*testTileSize, 2*testTileSize) {
		t.Errorf("canvas bounds = %v", got)
	}
	if got := c.Placements()[0].TileID; got != "white" {
		t.Errorf("first placement = %s, want white", got)
	}
}

func TestRenderDeterministic(t *testing.T) {
	tiles := []catalog.Tile{
		tile("red", 255, 0, 0),
		tile("green", 0, 255, 0),
		tile("grey", 128, 128, 128),
	}
	target := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			target.Set(x, y, color.RGBA{R: uint8(x * 100), G: uint8(y * 100), B: 60, A: 255})
		}
	}

	render := func() []byte {
		c, _ := newTestCompositor(t, tiles, PolicyOptions{Mix: true, MixingLimit: 2}, nil)
		canvas, err := c.Render(context.Background(), target)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		return canvas.Pix
	}

	if !bytes.Equal(render(), render()) {
		t.Error("Expected identical output for identical inputs")
	}
}

func TestRenderLoadsEachTileOnce(t *testing.T) {
	tiles := []catalog.Tile{tile("black", 0, 0, 0), tile("white", 255, 255, 255)}
	c, loader := newTestCompositor(t, tiles, PolicyOptions{}, nil)

	if _, err := c.Render(context.Background(), solid(5, 5, color.Black)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if diff := cmp.Diff(map[string]int{"black": 1}, loader.loads); diff != "" {
		t.Errorf("loads mismatch (-want +got):\n%s", diff)
	}
	if got := len(c.Placements()); got != 25 {
		t.Errorf("Expected 25 placements, got %d", got)
	}
}

func TestRenderErrors(t *testing.T) {
	tiles := []catalog.Tile{tile("black", 0, 0, 0)}

	t.Run("empty target", func(t *testing.T) {
		c, _ := newTestCompositor(t, tiles, PolicyOptions{}, nil)
		_, err := c.Render(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 3)))
		if !errors.Is(err, ErrEmptyTarget) {
			t.Errorf("Expected ErrEmptyTarget, got %v", err)
		}
	})

	t.Run("unloadable tile", func(t *testing.T) {
		c, loader := newTestCompositor(t, tiles, PolicyOptions{}, nil)
		delete(loader.colors, "black")

		_, err := c.Render(context.Background(), solid(1, 1, color.Black))
		var tileErr *TileError
		if !errors.As(err, &tileErr) {
			t.Fatalf("Expected TileError, got %v", err)
		}
		if tileErr.ID != "black" {
			t.Errorf("TileError.ID = %s, want black", tileErr.ID)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		var calls int
		c, _ := newTestCompositor(t, tiles, PolicyOptions{}, func(int, int) { calls++ })
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := c.Render(ctx, solid(2, 2, color.Black)); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if calls != 0 {
			t.Errorf("Expected no progress calls, got %d", calls)
		}
	})
}
