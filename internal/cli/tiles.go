package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tessera/internal/compression"
)

// tileSource is a tile directory, possibly unpacked from an archive.
type tileSource struct {
	dir     string
	archive bool
	logger  hclog.Logger
}

// openTileSource resolves source to a directory of tiles. Archives are
// unpacked into a temporary directory that Close removes.
func openTileSource(source string, logger hclog.Logger) (*tileSource, error) {
	if !compression.IsArchive(source) {
		return &tileSource{dir: source, logger: logger}, nil
	}

	tmp, err := os.MkdirTemp("", "tessera-tiles-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary tile directory: %w", err)
	}
	ts := &tileSource{dir: tmp, archive: true, logger: logger}

	result, err := compression.ExtractTiles(source, tmp, logger)
	if err != nil {
		ts.Close()
		return nil, fmt.Errorf("failed to unpack tile archive: %w", err)
	}
	logger.Info("Unpacked tile archive", "archive", source, "tiles", len(result.Files), "skipped", result.Skipped)

	return ts, nil
}

// indexPath returns the catalog index to use with this source. Extracted
// tiles get fresh modification times, so archives never use one.
func (s *tileSource) indexPath(path string) string {
	if s.archive && path != "" {
		s.logger.Warn("catalog cache is not used with tile archives", "path", path)
		return ""
	}
	return path
}

// Close removes any temporary directory.
func (s *tileSource) Close() {
	if !s.archive {
		return
	}
	if err := os.RemoveAll(s.dir); err != nil {
		s.logger.Warn("failed to remove temporary tile directory", "path", s.dir, "error", err)
	}
}
