// Package viewport maps between display pixels and full-resolution image
// pixels under a single uniform scale.
package viewport

import (
	"image"
	"math"
)

// ToImage converts a display point to image space: floor(p / scale).
func ToImage(p image.Point, scale float64) image.Point {
	if scale <= 0 {
		return p
	}
	return image.Pt(
		int(math.Floor(float64(p.X)/scale)),
		int(math.Floor(float64(p.Y)/scale)),
	)
}

// ToDisplay converts an image point to display space: floor(p * scale).
func ToDisplay(p image.Point, scale float64) image.Point {
	if scale <= 0 {
		return p
	}
	return image.Pt(
		int(math.Floor(float64(p.X)*scale)),
		int(math.Floor(float64(p.Y)*scale)),
	)
}

// RecomputeScale returns the largest scale at which imageSize fits inside
// maxDisplay, never exceeding 1. Non-positive display bounds are ignored.
func RecomputeScale(imageSize, maxDisplay image.Point) float64 {
	if imageSize.X <= 0 || imageSize.Y <= 0 {
		return 1
	}
	scale := 1.0
	if maxDisplay.X > 0 {
		scale = math.Min(scale, float64(maxDisplay.X)/float64(imageSize.X))
	}
	if maxDisplay.Y > 0 {
		scale = math.Min(scale, float64(maxDisplay.Y)/float64(imageSize.Y))
	}
	return scale
}

// Mapper carries the current scale and the display offset of the image
// inside the host window.
type Mapper struct {
	Scale  float64
	Origin image.Point
}

// Identity maps display space onto image space unchanged.
func Identity() Mapper { return Mapper{Scale: 1} }

// Fit returns a Mapper that fits imageSize into maxDisplay at origin.
func Fit(imageSize, maxDisplay, origin image.Point) Mapper {
	return Mapper{Scale: RecomputeScale(imageSize, maxDisplay), Origin: origin}
}

// ToImage maps a window point into image space.
func (m Mapper) ToImage(p image.Point) image.Point {
	return ToImage(p.Sub(m.Origin), m.Scale)
}

// ToDisplay maps an image point into window space.
func (m Mapper) ToDisplay(p image.Point) image.Point {
	return ToDisplay(p, m.Scale).Add(m.Origin)
}

// RectToDisplay maps an image-space rectangle into window space.
func (m Mapper) RectToDisplay(r image.Rectangle) image.Rectangle {
	return image.Rectangle{Min: m.ToDisplay(r.Min), Max: m.ToDisplay(r.Max)}
}

// DisplayRect is where an image of imageSize lands in the window.
func (m Mapper) DisplayRect(imageSize image.Point) image.Rectangle {
	return m.RectToDisplay(image.Rectangle{Max: imageSize})
}
