package render

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/example/flowmark/internal/annotation"
	"github.com/example/flowmark/internal/viewport"
)

// Frame is the read-only state a preview is drawn from.
type Frame struct {
	Image       *image.RGBA
	Annotations []annotation.Annotation
	Selection   int
	Pending     *annotation.Annotation
	Scale       float64
}

// Preview composites f at full resolution, scales it to f.Scale and draws
// the editing overlays in display space.
func Preview(f Frame, ov Overlay) *image.RGBA {
	full := Composite(f.Image, f.Annotations)
	if f.Pending != nil {
		Draw(full, *f.Pending)
	}
	m := viewport.Mapper{Scale: f.Scale}
	if m.Scale <= 0 {
		m.Scale = 1
	}
	size := f.Image.Bounds().Size()
	out := image.NewRGBA(m.DisplayRect(size))
	if m.Scale == 1 {
		draw.Draw(out, out.Bounds(), full, image.Point{}, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(out, out.Bounds(), full, full.Bounds(), draw.Src, nil)
	}
	if f.Selection >= 0 && f.Selection < len(f.Annotations) {
		DrawSelection(out, m.RectToDisplay(Bounds(f.Annotations[f.Selection])), ov)
	}
	if f.Pending != nil {
		DrawPending(out, m, *f.Pending, ov)
	}
	return out
}

// Bounds is the image-space box an annotation occupies, used for the
// selection outline.
func Bounds(a annotation.Annotation) image.Rectangle {
	switch a.Kind {
	case annotation.Callout:
		return image.Rect(a.Start.X-CalloutRadius, a.Start.Y-CalloutRadius, a.Start.X+CalloutRadius, a.Start.Y+CalloutRadius)
	case annotation.Text:
		return TextBox(a)
	case annotation.Arrow:
		return a.Rect().Inset(-ArrowHeadWidth)
	default:
		return a.Rect()
	}
}

// DrawSelection outlines r with a dashed border and eight handles.
func DrawSelection(dst *image.RGBA, r image.Rectangle, ov Overlay) {
	drawDashedRect(dst, r, 4, 2, ov.Dash[0], ov.Dash[1])
	for _, h := range HandleRects(r) {
		draw.Draw(dst, h, image.NewUniform(ov.Handle), image.Point{}, draw.Src)
		strokeRect(dst, h, 1, ov.Border)
	}
}

// DrawCropMask darkens everything in dst outside keep.
func DrawCropMask(dst *image.RGBA, keep image.Rectangle, ov Overlay) {
	b := dst.Bounds()
	keep = keep.Canon().Intersect(b)
	src := image.NewUniform(ov.CropMask)
	if keep.Empty() {
		draw.Draw(dst, b, src, image.Point{}, draw.Over)
		return
	}
	for _, r := range []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, keep.Min.Y),
		image.Rect(b.Min.X, keep.Max.Y, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, keep.Min.Y, keep.Min.X, keep.Max.Y),
		image.Rect(keep.Max.X, keep.Min.Y, b.Max.X, keep.Max.Y),
	} {
		draw.Draw(dst, r, src, image.Point{}, draw.Over)
	}
}

// DrawPending decorates an in-progress blur or crop gesture in display
// space. Other kinds are already drawn into the composite.
func DrawPending(dst *image.RGBA, m viewport.Mapper, a annotation.Annotation, ov Overlay) {
	r := m.RectToDisplay(a.Rect())
	switch a.Kind {
	case annotation.CropRegion:
		DrawCropMask(dst, r, ov)
		drawDashedRect(dst, r, 4, 2, ov.Dash[0], ov.Dash[1])
		for _, h := range HandleRects(r) {
			draw.Draw(dst, h, image.NewUniform(ov.Handle), image.Point{}, draw.Src)
			strokeRect(dst, h, 1, ov.Border)
		}
	case annotation.BlurRegion:
		drawDashedRect(dst, r, 4, 1, a.Color, ov.Dash[0])
	}
}
