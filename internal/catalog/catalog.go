// Package catalog builds the set of candidate tiles for a mosaic: one entry
// per usable image in a directory, paired with its dominant colour.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/image"
)

// ErrEmptyCatalog is returned when a tile directory holds no usable images.
var ErrEmptyCatalog = errors.New("no usable tile images found")

// Tile is a candidate mosaic cell image.
type Tile struct {
	// ID is the tile's file name inside the catalog directory.
	ID     string     `json:"id"`
	Colour colour.RGB `json:"colour"`
}

// Catalog is the ordered, immutable list of tiles for one run.
type Catalog struct {
	dir   string
	tiles []Tile
}

// New creates a catalog from tiles. The slice is copied.
func New(dir string, tiles []Tile) (*Catalog, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptyCatalog, dir)
	}
	return &Catalog{dir: dir, tiles: slices.Clone(tiles)}, nil
}

// Dir returns the directory the tiles were read from.
func (c *Catalog) Dir() string {
	return c.dir
}

// Len returns the number of tiles.
func (c *Catalog) Len() int {
	return len(c.tiles)
}

// Tiles returns a copy of the tiles in catalog order.
func (c *Catalog) Tiles() []Tile {
	return slices.Clone(c.tiles)
}

// Options configures Build.
type Options struct {
	// Extractor computes dominant colours. Defaults to k-means.
	Extractor colour.Extractor

	// IndexPath, when set, names an index file used to skip colour
	// extraction for unchanged files.
	IndexPath string

	Logger hclog.Logger

	// Progress is called after each file is analysed.
	Progress func(done, total int)
}

// Build scans dir for tile images and extracts one dominant colour per file.
// Files are processed in lexical order, which becomes the catalog order.
func Build(dir string, opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	extractor := opts.Extractor
	if extractor == nil {
		var err error
		extractor, err = colour.NewExtractor(colour.AlgorithmKMeans, colour.ExtractorOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create extractor: %w", err)
		}
	}

	files, err := image.ScanTileDirectory(dir)
	if err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("Found %d files", len(files)), "dir", dir)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptyCatalog, dir)
	}

	var known map[string]indexEntry
	if opts.IndexPath != "" {
		known, err = loadIndex(opts.IndexPath, dir)
		if err != nil {
			logger.Warn("ignoring catalog index", "path", opts.IndexPath, "error", err)
			known = nil
		}
	}

	logger.Info("Analyzing files")
	loader := image.NewDirLoader(dir)
	tiles := make([]Tile, 0, len(files))
	entries := make([]indexEntry, 0, len(files))
	reused := 0

	for i, f := range files {
		entry := newIndexEntry(f)
		if prev, ok := known[f.Name]; ok && prev.matches(entry) {
			entry.Colour = prev.Colour
			reused++
		} else {
			img, err := loader.Load(f.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to load tile %s: %w", f.Name, err)
			}
			entry.Colour, err = colour.DominantColour(extractor, img)
			if err != nil {
				return nil, fmt.Errorf("failed to extract dominant colour of %s: %w", f.Name, err)
			}
		}

		logger.Debug("analysed tile", "tile", f.Name, "colour", entry.Colour.Hex())
		tiles = append(tiles, Tile{ID: f.Name, Colour: entry.Colour})
		entries = append(entries, entry)

		if opts.Progress != nil {
			opts.Progress(i+1, len(files))
		}
	}

	if opts.IndexPath != "" {
		logger.Debug("catalog index reuse", "reused", reused, "extracted", len(files)-reused)
		if err := saveIndex(opts.IndexPath, dir, entries); err != nil {
			logger.Warn("failed to write catalog index", "path", opts.IndexPath, "error", err)
		}
	}

	return New(dir, tiles)
}
