package colour

import (
	"fmt"
	"image"
)

// DominantSampleCount is the palette size used when only the dominant colour
// of an image is wanted.
const DominantSampleCount = 5

// Extractor defines the interface for color extraction algorithms.
type Extractor interface {
	// Extract extracts a color palette from an image.
	// The count parameter specifies the number of colors to extract.
	Extract(img image.Image, count int) (*Palette, error)
}

// Algorithm represents the color extraction algorithm type.
type Algorithm string

const (
	// AlgorithmKMeans uses k-means clustering for color extraction.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmKMeans,
	}
}

// ExtractorOptions tunes extractor construction.
type ExtractorOptions struct {
	// Seed fixes the clustering seed. Nil means each extraction derives a
	// seed from the image content.
	Seed *int64
}

// NewExtractor creates a new Extractor based on the specified algorithm.
func NewExtractor(alg Algorithm, opts ExtractorOptions) (Extractor, error) {
	switch alg {
	case AlgorithmKMeans:
		return NewKMeansExtractor(opts), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// DominantColour extracts a small palette from img and returns its heaviest colour.
func DominantColour(ex Extractor, img image.Image) (RGB, error) {
	palette, err := ex.Extract(img, DominantSampleCount)
	if err != nil {
		return RGB{}, err
	}
	return palette.Dominant()
}
