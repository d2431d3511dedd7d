// Package compression unpacks tile images from archives so a zip or tarball
// of tiles can be used wherever a tile directory is expected.
package compression

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tessera/internal/image"
	"github.com/jmylchreest/tessera/internal/security"
)

// MaxEntrySize bounds the decompressed size of a single archive entry.
const MaxEntrySize = 64 * 1024 * 1024

// Format identifies a supported archive layout.
type Format string

// Supported archive formats.
const (
	FormatNone  Format = ""
	FormatZip   Format = "zip"
	FormatTarGz Format = "tar.gz"
	FormatTarXz Format = "tar.xz"
	FormatTarBz Format = "tar.bz2"
)

var suffixes = []struct {
	suffix string
	format Format
}{
	{".tar.gz", FormatTarGz},
	{".tgz", FormatTarGz},
	{".tar.xz", FormatTarXz},
	{".txz", FormatTarXz},
	{".tar.bz2", FormatTarBz},
	{".tbz", FormatTarBz},
	{".tbz2", FormatTarBz},
	{".zip", FormatZip},
}

// DetectFormat returns the archive format implied by path's extension, or
// FormatNone.
func DetectFormat(path string) Format {
	lower := strings.ToLower(path)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.format
		}
	}
	return FormatNone
}

// IsArchive reports whether path is a regular file in a supported archive
// format.
func IsArchive(path string) bool {
	if DetectFormat(path) == FormatNone {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Result describes an extraction.
type Result struct {
	// Files are the extracted tile names, in archive order.
	Files []string
	// Skipped counts entries that were not tile images or repeated a name.
	Skipped int
}

// ExtractTiles unpacks the tile images in archivePath into destDir.
// Directory structure is flattened: each entry is written under its base
// name, and only the first entry with a given name is kept.
func ExtractTiles(archivePath, destDir string, logger hclog.Logger) (*Result, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	format := DetectFormat(archivePath)
	if format == FormatNone {
		return nil, fmt.Errorf("unsupported archive format: %s", archivePath)
	}

	f, err := os.Open(archivePath) // #nosec G304 -- archive path is user input
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	x := &extractor{destDir: destDir, logger: logger, seen: make(map[string]bool)}

	switch format {
	case FormatZip:
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat archive: %w", err)
		}
		err = x.extractZip(f, info.Size())
		if err != nil {
			return nil, err
		}
	default:
		if err := x.extractTar(f, format); err != nil {
			return nil, err
		}
	}

	logger.Debug("archive extracted", "archive", archivePath, "tiles", len(x.result.Files), "skipped", x.result.Skipped)
	return &x.result, nil
}

// extractor writes accepted entries to destDir and tracks the result.
type extractor struct {
	destDir string
	logger  hclog.Logger
	seen    map[string]bool
	result  Result
}

// accept reports whether the entry named name should be extracted and
// returns the file name to use.
func (x *extractor) accept(name string) (string, bool) {
	base := filepath.Base(filepath.FromSlash(name))
	if !image.IsTileFile(base) || security.ValidateFileName(base) != nil || x.seen[base] {
		x.result.Skipped++
		return "", false
	}
	x.seen[base] = true
	return base, true
}

func (x *extractor) write(name string, r io.Reader) error {
	destPath := filepath.Join(x.destDir, name)

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) // #nosec G304 -- name validated by accept
	if err != nil {
		return fmt.Errorf("failed to create tile file: %w", err)
	}

	_, copyErr := io.Copy(out, security.NewLimitedReader(r, MaxEntrySize))
	closeErr := out.Close()

	if copyErr != nil {
		if errors.Is(copyErr, security.ErrLimitExceeded) {
			return fmt.Errorf("archive entry %s: %w", name, copyErr)
		}
		return fmt.Errorf("failed to extract %s: %w", name, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close tile file: %w", closeErr)
	}

	x.result.Files = append(x.result.Files, name)
	x.logger.Trace("extracted tile", "tile", name)
	return nil
}
