package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tessera/internal/catalog"
	"github.com/jmylchreest/tessera/internal/colour"
)

// newCatalogCmd builds the catalog command.
func newCatalogCmd() *cobra.Command {
	var (
		format      string
		showPreview bool
		indexPath   string
	)

	cmd := &cobra.Command{
		Use:   "catalog <tileDirectory|archive>",
		Short: "List the tiles of a directory with their dominant colours",
		Long: `List every tile image a mosaic would use from a directory, in catalog
order, together with the dominant colour used to match it against target
pixels.

Only .jpg and .png files are considered (extensions are case-sensitive).

Examples:
  # Table of tiles and colours
  tessera catalog ./tiles

  # With colour swatches in the terminal
  tessera catalog --preview ./tiles

  # Machine readable
  tessera catalog --format json ./tiles

  # Tiles inside an archive
  tessera catalog tiles.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)

			tiles, err := openTileSource(args[0], logger)
			if err != nil {
				return err
			}
			defer tiles.Close()

			cat, err := catalog.Build(tiles.dir, catalog.Options{
				IndexPath: tiles.indexPath(indexPath),
				Logger:    logger.Named("catalog"),
			})
			if err != nil {
				return fmt.Errorf("failed to build tile catalog: %w", err)
			}

			switch format {
			case "table":
				return writeCatalogTable(cmd.OutOrStdout(), args[0], cat, showPreview)
			case "json":
				return writeCatalogJSON(cmd.OutOrStdout(), args[0], cat)
			default:
				return fmt.Errorf("invalid format: %s (valid: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json)")
	cmd.Flags().BoolVar(&showPreview, "preview", false, "show colour previews in terminal")
	cmd.Flags().StringVar(&indexPath, "catalog-cache", "", "path of an xz-compressed catalog index to reuse dominant colours")

	return cmd
}

func writeCatalogTable(w io.Writer, source string, cat *catalog.Catalog, showPreview bool) error {
	table := NewTable([]string{"#", "Tile", "Colour", "RGB"})
	for i, t := range cat.Tiles() {
		swatch := t.Colour.Hex()
		if showPreview {
			swatch = colour.FormatColourWithPreview(t.Colour, 4)
		}
		table.AddRow([]string{strconv.Itoa(i + 1), t.ID, swatch, t.Colour.String()})
	}

	if _, err := io.WriteString(w, table.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d tiles in %s\n", cat.Len(), source)
	return err
}

type catalogJSON struct {
	Source string         `json:"source"`
	Tiles  []catalog.Tile `json:"tiles"`
}

func writeCatalogJSON(w io.Writer, source string, cat *catalog.Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(catalogJSON{Source: source, Tiles: cat.Tiles()}); err != nil {
		return fmt.Errorf("failed to convert to JSON: %w", err)
	}
	return nil
}
