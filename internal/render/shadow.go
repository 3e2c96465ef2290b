package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow added around an exported image.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns the shadow used by the -shadow export flag.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{Radius: 24, Offset: image.Pt(16, 16), Opacity: 0.55}
}

// ShadowResult is the padded image and where the original landed in it.
type ShadowResult struct {
	Image  *image.RGBA
	Offset image.Point
}

// ApplyShadow places img on a larger transparent canvas over a blurred copy
// of its alpha channel. The result has a zero origin.
func ApplyShadow(img *image.RGBA, opts ShadowOptions) ShadowResult {
	if img == nil {
		return ShadowResult{}
	}
	if img.Bounds().Empty() || opts.Opacity <= 0 {
		return ShadowResult{Image: img}
	}
	opacity := min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)

	src := img.Bounds()
	padded := src.Inset(-radius)
	shadow := padded.Add(opts.Offset)
	canvas := src.Union(shadow)
	shift := src.Min.Sub(canvas.Min)

	mask := image.NewGray(image.Rect(0, 0, padded.Dx(), padded.Dy()))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			mask.SetGray(x-padded.Min.X, y-padded.Min.Y, color.Gray{Y: img.RGBAAt(x, y).A})
		}
	}
	mask = boxBlur(mask, radius)

	dst := image.NewRGBA(canvas.Sub(canvas.Min))
	tint := image.NewUniform(color.RGBA{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, mask.Bounds().Add(shadow.Min.Sub(canvas.Min)), tint, image.Point{}, mask, image.Point{}, draw.Over)
	draw.Draw(dst, src.Sub(canvas.Min), img, src.Min, draw.Over)
	return ShadowResult{Image: dst, Offset: shift}
}

// boxBlur runs a separable mean filter of the given radius using running
// sums along rows and then columns.
func boxBlur(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		return src
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	tmp := image.NewGray(src.Rect)
	dst := image.NewGray(src.Rect)
	pass := func(n, step int, in, out []uint8) {
		prefix := make([]int, n+1)
		for i := 0; i < n; i++ {
			prefix[i+1] = prefix[i] + int(in[i*step])
		}
		for i := 0; i < n; i++ {
			lo, hi := max(i-radius, 0), min(i+radius, n-1)
			out[i*step] = uint8((prefix[hi+1] - prefix[lo]) / (hi - lo + 1))
		}
	}
	for y := 0; y < h; y++ {
		row := y * src.Stride
		pass(w, 1, src.Pix[row:], tmp.Pix[row:])
	}
	for x := 0; x < w; x++ {
		pass(h, tmp.Stride, tmp.Pix[x:], dst.Pix[x:])
	}
	return dst
}
