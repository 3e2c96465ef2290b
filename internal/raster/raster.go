// Package raster holds the destructive image effects: block pixelation and
// crop.
package raster

import (
	"image"
	"image/draw"

	"github.com/example/flowmark/internal/annotation"
)

const (
	// BlockSize is the default pixelation tile edge.
	BlockSize = 10
	// MinSize is the smallest width or height a blur or crop region may have.
	MinSize = 5
	// RetainMargin is how far past the new top-left edge a translated
	// annotation start may fall and still survive a crop.
	RetainMargin = 50
)

// Normalize returns the rectangle spanned by two corner points.
func Normalize(a, b image.Point) image.Rectangle {
	return image.Rectangle{Min: a, Max: b}.Canon()
}

// Degenerate reports whether r is too small for blur or crop.
func Degenerate(r image.Rectangle) bool {
	r = r.Canon()
	return r.Dx() < MinSize || r.Dy() < MinSize
}

// Pixelate replaces each block×block tile of r with its mean colour. Tiles
// are anchored at r's top-left corner and clipped to the image. It reports
// false, leaving img untouched, when the part of r inside the image is
// degenerate.
func Pixelate(img *image.RGBA, r image.Rectangle, block int) bool {
	if img == nil {
		return false
	}
	r = r.Canon()
	area := r.Intersect(img.Bounds())
	if Degenerate(area) {
		return false
	}
	if block < 1 {
		block = BlockSize
	}
	for by := r.Min.Y; by < r.Max.Y; by += block {
		for bx := r.Min.X; bx < r.Max.X; bx += block {
			tile := image.Rect(bx, by, bx+block, by+block).Intersect(area)
			if tile.Empty() {
				continue
			}
			fillMean(img, tile)
		}
	}
	return true
}

func fillMean(img *image.RGBA, tile image.Rectangle) {
	var sr, sg, sb, sa, n uint64
	for y := tile.Min.Y; y < tile.Max.Y; y++ {
		off := img.PixOffset(tile.Min.X, y)
		for x := tile.Min.X; x < tile.Max.X; x++ {
			sr += uint64(img.Pix[off])
			sg += uint64(img.Pix[off+1])
			sb += uint64(img.Pix[off+2])
			sa += uint64(img.Pix[off+3])
			off += 4
			n++
		}
	}
	r, g, b, a := uint8(sr/n), uint8(sg/n), uint8(sb/n), uint8(sa/n)
	for y := tile.Min.Y; y < tile.Max.Y; y++ {
		off := img.PixOffset(tile.Min.X, y)
		for x := tile.Min.X; x < tile.Max.X; x++ {
			img.Pix[off] = r
			img.Pix[off+1] = g
			img.Pix[off+2] = b
			img.Pix[off+3] = a
			off += 4
		}
	}
}

// Crop returns a new zero-origin image holding the part of img inside r and
// the offset that was removed. r is clipped to the image first; the result is
// false when the clipped region is degenerate.
func Crop(img *image.RGBA, r image.Rectangle) (*image.RGBA, image.Point, bool) {
	if img == nil {
		return nil, image.Point{}, false
	}
	r = r.Canon().Intersect(img.Bounds())
	if Degenerate(r) {
		return img, image.Point{}, false
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out, r.Min.Sub(img.Bounds().Min), true
}

// Reanchor translates annotations by -offset and keeps those whose new start
// lies no more than RetainMargin pixels beyond the top or left edge. Kept
// annotations may still overhang the new image and are clipped when drawn.
func Reanchor(list []annotation.Annotation, offset image.Point) []annotation.Annotation {
	out := make([]annotation.Annotation, 0, len(list))
	for _, a := range list {
		moved := a.Translate(offset.Mul(-1))
		if moved.Start.X < -RetainMargin || moved.Start.Y < -RetainMargin {
			continue
		}
		out = append(out, moved)
	}
	return out
}
