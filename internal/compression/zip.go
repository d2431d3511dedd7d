package compression

import (
	"archive/zip"
	"fmt"
	"io"
)

// extractZip extracts tile entries from a zip archive.
func (x *extractor) extractZip(r io.ReaderAt, size int64) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("failed to create zip reader: %w", err)
	}

	for _, f := range zr.File {
		if !f.FileInfo().Mode().IsRegular() {
			continue
		}

		name, ok := x.accept(f.Name)
		if !ok {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
		}
		err = x.write(name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
