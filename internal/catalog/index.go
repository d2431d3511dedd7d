package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/image"
	"github.com/jmylchreest/tessera/internal/security"
)

const (
	indexVersion = 1

	// maxIndexSize bounds the decompressed index.
	maxIndexSize = 64 * 1024 * 1024
)

// indexEntry remembers the dominant colour of a file as it was when analysed.
type indexEntry struct {
	Name    string     `json:"name"`
	Size    int64      `json:"size"`
	ModTime int64      `json:"mod_time"`
	Colour  colour.RGB `json:"colour"`
}

type indexFile struct {
	Version int          `json:"version"`
	Dir     string       `json:"dir"`
	Entries []indexEntry `json:"entries"`
}

func newIndexEntry(f image.TileFile) indexEntry {
	return indexEntry{
		Name:    f.Name,
		Size:    f.Info.Size(),
		ModTime: f.Info.ModTime().UnixNano(),
	}
}

func (e indexEntry) matches(other indexEntry) bool {
	return e.Name == other.Name && e.Size == other.Size && e.ModTime == other.ModTime
}

// absDir normalises dir so indexes written from different working
// directories still match.
func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// loadIndex reads an index written for dir. A missing file yields an empty index.
func loadIndex(path, dir string) (map[string]indexEntry, error) {
	f, err := os.Open(path) // #nosec G304 - User-specified index path, intended to be read
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]indexEntry{}, nil
		}
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}

	var idx indexFile
	if err := json.NewDecoder(security.NewLimitedReader(xzr, maxIndexSize)).Decode(&idx); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	if idx.Version != indexVersion {
		return nil, fmt.Errorf("unsupported index version %d", idx.Version)
	}
	if idx.Dir != absDir(dir) {
		return nil, fmt.Errorf("index was written for %s", idx.Dir)
	}

	known := make(map[string]indexEntry, len(idx.Entries))
	for _, e := range idx.Entries {
		if security.ValidateFileName(e.Name) != nil {
			continue
		}
		known[e.Name] = e
	}
	return known, nil
}

// saveIndex writes entries as xz-compressed JSON, replacing path atomically.
func saveIndex(path, dir string, entries []indexEntry) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := func() error {
		xzw, err := xz.NewWriter(tmp)
		if err != nil {
			return fmt.Errorf("failed to create xz writer: %w", err)
		}
		idx := indexFile{Version: indexVersion, Dir: absDir(dir), Entries: entries}
		if err := json.NewEncoder(xzw).Encode(idx); err != nil {
			return fmt.Errorf("failed to encode index: %w", err)
		}
		if err := xzw.Close(); err != nil {
			return fmt.Errorf("failed to flush index: %w", err)
		}
		return nil
	}()
	closeErr := tmp.Close()

	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close index file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace index file: %w", err)
	}
	return nil
}
