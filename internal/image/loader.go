// Package image provides utilities for loading, scaling and writing images.
package image

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/tessera/internal/security"
)

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image identified by name.
	Load(name string) (image.Image, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP.
func (l *FileLoader) Load(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	return img, nil
}

// DirLoader loads images by file name from a single directory.
type DirLoader struct {
	dir  string
	file *FileLoader
}

// NewDirLoader creates a DirLoader rooted at dir.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{dir: dir, file: NewFileLoader()}
}

// Load loads the image called name inside the loader's directory.
func (l *DirLoader) Load(name string) (image.Image, error) {
	if err := security.ValidateFileName(name); err != nil {
		return nil, fmt.Errorf("invalid tile name: %w", err)
	}
	return l.file.Load(filepath.Join(l.dir, name))
}

// ValidateImagePath checks that path points to a file the decoders recognise.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if _, _, err := image.DecodeConfig(file); err != nil {
		return fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	return nil
}

// TileExtensions returns the file suffixes accepted as tiles.
// Matching is case-sensitive.
func TileExtensions() []string {
	return []string{".jpg", ".png"}
}

// IsTileFile checks whether name ends in one of TileExtensions.
func IsTileFile(name string) bool {
	for _, ext := range TileExtensions() {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// TileFile describes a candidate tile found by ScanTileDirectory.
type TileFile struct {
	Name string
	Info os.FileInfo
}

// ScanTileDirectory lists the tile files of dirPath in lexical order.
// It does not recurse into subdirectories, but follows symlinks.
// An empty result is not an error here; callers decide.
func ScanTileDirectory(dirPath string) ([]TileFile, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []TileFile
	for _, entry := range entries {
		if !IsTileFile(entry.Name()) {
			continue
		}

		// For symlinks, stat the target to determine if it's a file.
		info, err := os.Stat(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			// Broken symlinks and permission issues.
			continue
		}
		if info.IsDir() {
			continue
		}

		files = append(files, TileFile{Name: entry.Name(), Info: info})
	}

	return files, nil
}
