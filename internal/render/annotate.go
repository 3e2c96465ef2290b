// Package render draws annotations onto images, both at full resolution for
// export and scaled with editing overlays for the on-screen preview.
package render

import (
	"image"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/vec"

	"github.com/example/flowmark/internal/annotation"
)

// Draw renders a onto dst at image resolution. Blur and crop regions are
// gesture previews and draw nothing here; see DrawPending.
func Draw(dst *image.RGBA, a annotation.Annotation) {
	switch a.Kind {
	case annotation.Arrow:
		drawArrow(dst, a)
	case annotation.Rectangle:
		strokeRect(dst, a.Rect(), RectWidth, a.Color)
	case annotation.Text:
		drawText(dst, a)
	case annotation.Callout:
		drawCallout(dst, a)
	case annotation.BlurRegion, annotation.CropRegion:
	}
}

// Composite copies base and draws every annotation over it in order.
func Composite(base *image.RGBA, list []annotation.Annotation) *image.RGBA {
	out := image.NewRGBA(base.Bounds())
	draw.Draw(out, out.Bounds(), base, base.Bounds().Min, draw.Src)
	for _, a := range list {
		Draw(out, a)
	}
	return out
}

func drawArrow(dst *image.RGBA, a annotation.Annotation) {
	start, end := pt(a.Start), pt(a.End)
	strokeSegment(dst, start, end, ArrowWidth, a.Color)
	if tip, l, r, ok := arrowHead(start, end); ok {
		fillPolygon(dst, []vec.Vec2{tip, l, r}, a.Color)
	}
}

func drawCallout(dst *image.RGBA, a annotation.Annotation) {
	fillCircle(dst, pt(a.Start), CalloutRadius, a.Color)
	text := strconv.Itoa(a.Number)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(contrastColor(a.Color)), Face: calloutFace}
	w := d.MeasureString(text).Ceil()
	h := calloutFace.Metrics().Height.Ceil()
	d.Dot = fixed.P(a.Start.X-w/2, a.Start.Y+h/4)
	d.DrawString(text)
}

func drawText(dst *image.RGBA, a annotation.Annotation) {
	if a.Text == "" {
		return
	}
	draw.Draw(dst, TextBox(a), image.NewUniform(textBackground), image.Point{}, draw.Over)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(a.Color), Face: textFace, Dot: fixed.P(a.Start.X, a.Start.Y)}
	d.DrawString(a.Text)
}

// TextBox is the background box of a text annotation: the measured string
// padded 2px left, 4px right and 4px below the top of the glyphs.
func TextBox(a annotation.Annotation) image.Rectangle {
	d := &font.Drawer{Face: textFace}
	w := d.MeasureString(a.Text).Ceil()
	m := textFace.Metrics()
	h := m.Ascent.Ceil() + m.Descent.Ceil()
	x, y := a.Start.X-2, a.Start.Y-h
	return image.Rect(x, y, x+w+6, y+h+4)
}

// Measurer sizes text boxes from the rendering font for hit testing.
type Measurer struct{}

// TextBox implements hittest.TextMeasurer.
func (Measurer) TextBox(a annotation.Annotation) image.Rectangle { return TextBox(a) }
