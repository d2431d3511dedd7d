package mosaic

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/jmylchreest/tessera/internal/catalog"
	"github.com/jmylchreest/tessera/internal/colour"
)

// memLoader serves solid tile images from memory and counts loads.
type memLoader struct {
	size   int
	colors map[string]colour.RGB
	loads  map[string]int
	order  []string
}

func newMemLoader(size int, tiles []catalog.Tile) *memLoader {
	l := &memLoader{size: size, colors: map[string]colour.RGB{}, loads: map[string]int{}}
	for _, t := range tiles {
		l.colors[t.ID] = t.Colour
	}
	return l
}

func (l *memLoader) Load(name string) (image.Image, error) {
	c, ok := l.colors[name]
	if !ok {
		return nil, fmt.Errorf("image file not found: %s", name)
	}
	l.loads[name]++
	l.order = append(l.order, name)
	return solid(l.size, l.size, c), nil
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// sequenceRandom replays a fixed list of choices, clamped into range.
type sequenceRandom struct {
	seq   []int
	next  int
	pools []int
}

func (r *sequenceRandom) Intn(n int) int {
	r.pools = append(r.pools, n)
	v := r.seq[r.next%len(r.seq)]
	r.next++
	return v % n
}

func mustCatalog(t *testing.T, tiles ...catalog.Tile) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New("mem", tiles)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func mustPolicy(t *testing.T, cat *catalog.Catalog, opts PolicyOptions) *Policy {
	t.Helper()
	p, err := NewPolicy(cat, opts)
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	return p
}

func tile(id string, r, g, b uint8) catalog.Tile {
	return catalog.Tile{ID: id, Colour: colour.RGB{R: r, G: g, B: b}}
}
