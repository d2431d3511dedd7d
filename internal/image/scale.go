package image

import (
	"image"

	"golang.org/x/image/draw"
)

// ScaleToSquare resizes img to exactly size x size pixels, ignoring its
// aspect ratio.
func ScaleToSquare(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	src := img.Bounds()
	if src.Dx() == size && src.Dy() == size {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}

// ResizeToWidth downsamples img to width while maintaining aspect ratio.
// Images already at or below width are returned unchanged.
func ResizeToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if width <= 0 || bounds.Dx() <= width {
		return img
	}

	height := max(bounds.Dy()*width/bounds.Dx(), 1)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
