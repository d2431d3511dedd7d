package mosaic

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/jmylchreest/tessera/internal/catalog"
	"github.com/jmylchreest/tessera/internal/colour"
)

// RandomSource yields integers in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// History records chosen tile IDs in selection order.
type History struct {
	ids []string
}

// Append records id as the most recent selection.
func (h *History) Append(id string) {
	h.ids = append(h.ids, id)
}

// Recent returns up to n of the most recent IDs, oldest first.
func (h *History) Recent(n int) []string {
	if n <= 0 {
		return nil
	}
	start := max(len(h.ids)-n, 0)
	return h.ids[start:]
}

// Len returns the number of recorded selections.
func (h *History) Len() int {
	return len(h.ids)
}

// IDs returns a copy of every recorded selection.
func (h *History) IDs() []string {
	return slices.Clone(h.ids)
}

// PolicyOptions configures a Policy.
type PolicyOptions struct {
	// Mix excludes tiles chosen within the last MixingLimit-1 selections.
	Mix         bool
	MixingLimit int

	// RandomMix picks uniformly among the RandomMaxMixingDistance closest
	// candidates that survive the Mix filter.
	RandomMix               bool
	RandomMaxMixingDistance int

	// Random is consulted only when RandomMix is set. Nil means a time
	// seeded generator.
	Random RandomSource
}

// Policy picks one tile per target colour. It keeps selection history and
// is not safe for concurrent use.
type Policy struct {
	tiles   []catalog.Tile
	opts    PolicyOptions
	history History
}

// NewPolicy creates a selection policy over the catalog's tiles.
func NewPolicy(cat *catalog.Catalog, opts PolicyOptions) (*Policy, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	if opts.Mix && opts.MixingLimit < 1 {
		return nil, fmt.Errorf("mixing limit must be a positive integer, got %d", opts.MixingLimit)
	}
	if opts.RandomMix && opts.RandomMaxMixingDistance < 1 {
		return nil, fmt.Errorf("random mixing distance must be a positive integer, got %d", opts.RandomMaxMixingDistance)
	}
	if opts.RandomMix && opts.Random == nil {
		opts.Random = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- visual variety only
	}

	return &Policy{
		tiles: cat.Tiles(),
		opts:  opts,
	}, nil
}

// Mode describes the active selection mode.
func (p *Policy) Mode() string {
	switch {
	case p.opts.Mix && p.opts.RandomMix:
		return "mix+random-mix"
	case p.opts.Mix:
		return "mix"
	case p.opts.RandomMix:
		return "random-mix"
	default:
		return "nearest"
	}
}

// Select resolves the tile for one target colour and records it in the
// history when mixing is enabled.
func (p *Policy) Select(target colour.RGB) catalog.Tile {
	candidates := Rank(target, p.tiles)

	if p.opts.Mix {
		// The most recent MixingLimit-1 picks are off limits; when that
		// leaves nothing, the unfiltered ranking is used.
		recent := p.history.Recent(p.opts.MixingLimit - 1)
		filtered := slices.DeleteFunc(slices.Clone(candidates), func(r Ranked) bool {
			return slices.Contains(recent, r.Tile.ID)
		})
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	chosen := candidates[0]
	if p.opts.RandomMix {
		pool := min(p.opts.RandomMaxMixingDistance, len(candidates))
		chosen = candidates[p.opts.Random.Intn(pool)]
	}

	if p.opts.Mix || p.opts.RandomMix {
		p.history.Append(chosen.Tile.ID)
	}
	return chosen.Tile
}

// History returns the IDs recorded so far.
func (p *Policy) History() []string {
	return p.history.IDs()
}
