package image

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// SavePNG encodes img as PNG at path. The file is written to a temporary
// sibling first and renamed into place, so path either holds a complete
// image or is left untouched.
func SavePNG(img image.Image, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpPath := tmp.Name()

	encodeErr := png.Encode(tmp, img)
	closeErr := tmp.Close()

	if encodeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode PNG: %w", encodeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close output file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil { // #nosec G302 - Output image needs standard read permissions
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
