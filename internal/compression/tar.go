package compression

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// extractTar extracts tile entries from a compressed tar stream.
func (x *extractor) extractTar(r io.Reader, format Format) error {
	var (
		dr  io.Reader
		err error
	)
	switch format {
	case FormatTarGz:
		gzr, gzErr := gzip.NewReader(r)
		if gzErr != nil {
			return fmt.Errorf("failed to create gzip reader: %w", gzErr)
		}
		defer gzr.Close()
		dr = gzr
	case FormatTarXz:
		dr, err = xz.NewReader(r)
		if err != nil {
			return fmt.Errorf("failed to create xz reader: %w", err)
		}
	case FormatTarBz:
		dr = bzip2.NewReader(r)
	default:
		return fmt.Errorf("unsupported tar format: %s", format)
	}

	tr := tar.NewReader(dr)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar archive: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		name, ok := x.accept(header.Name)
		if !ok {
			continue
		}
		if err := x.write(name, tr); err != nil {
			return err
		}
	}
}
