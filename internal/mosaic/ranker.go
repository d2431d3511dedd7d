// Package mosaic turns a target image into a grid of catalog tiles.
//
// For every target pixel the tiles are ranked by colour distance, a
// selection policy picks one, and the compositor draws it into the output
// canvas at the matching grid cell.
package mosaic

import (
	"cmp"
	"slices"

	"github.com/jmylchreest/tessera/internal/catalog"
	"github.com/jmylchreest/tessera/internal/colour"
)

// Ranked is a tile paired with its distance to a target colour.
type Ranked struct {
	Tile     catalog.Tile
	Distance int
}

// Rank orders tiles by L1 distance to target, closest first. Equal
// distances keep catalog order. The input slice is not modified.
func Rank(target colour.RGB, tiles []catalog.Tile) []Ranked {
	ranked := make([]Ranked, len(tiles))
	for i, t := range tiles {
		ranked[i] = Ranked{Tile: t, Distance: colour.Distance(t.Colour, target)}
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return ranked
}
