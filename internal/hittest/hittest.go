// Package hittest decides which annotation, if any, lies under a point.
//
// All distances are in image pixels. At small display scales the effective
// on-screen target therefore shrinks with the image.
package hittest

import (
	"image"
	"unicode/utf8"

	"seehuhn.de/go/geom/vec"

	"github.com/example/flowmark/internal/annotation"
)

const (
	// CalloutRadius is the grab radius around a callout centre.
	CalloutRadius = 18
	// ArrowTolerance is the maximum distance from an arrow shaft.
	ArrowTolerance = 8
	// RectMargin inflates rectangular regions for easier grabbing.
	RectMargin = 5
)

// TextMeasurer reports the on-image box occupied by a text annotation.
type TextMeasurer interface {
	TextBox(a annotation.Annotation) image.Rectangle
}

// Heuristic approximates text boxes without font metrics.
type Heuristic struct{}

// TextBox sizes the box at 8px per rune plus padding, 22px tall, sitting on
// the baseline at Start.
func (Heuristic) TextBox(a annotation.Annotation) image.Rectangle {
	w := 8*utf8.RuneCountInString(a.Text) + 6
	return image.Rect(a.Start.X-2, a.Start.Y-18, a.Start.X-2+w, a.Start.Y+4)
}

// Tester applies per-kind containment rules.
type Tester struct {
	Text TextMeasurer
}

// New returns a Tester using m for text, or the heuristic when m is nil.
func New(m TextMeasurer) Tester {
	if m == nil {
		m = Heuristic{}
	}
	return Tester{Text: m}
}

// Contains reports whether p hits a.
func (t Tester) Contains(p image.Point, a annotation.Annotation) bool {
	switch a.Kind {
	case annotation.Callout:
		d := p.Sub(a.Start)
		return d.X*d.X+d.Y*d.Y <= CalloutRadius*CalloutRadius
	case annotation.Arrow:
		return segmentDistSq(toVec(p), toVec(a.Start), toVec(a.End)) <= ArrowTolerance*ArrowTolerance
	case annotation.Rectangle, annotation.BlurRegion, annotation.CropRegion:
		return within(p, a.Rect().Inset(-RectMargin))
	case annotation.Text:
		m := t.Text
		if m == nil {
			m = Heuristic{}
		}
		return within(p, m.TextBox(a))
	}
	return false
}

// FindAt returns the index of the top-most annotation containing p.
func (t Tester) FindAt(p image.Point, list []annotation.Annotation) (int, bool) {
	for i := len(list) - 1; i >= 0; i-- {
		if t.Contains(p, list[i]) {
			return i, true
		}
	}
	return -1, false
}

// Contains tests p against a with heuristic text boxes.
func Contains(p image.Point, a annotation.Annotation) bool {
	return New(nil).Contains(p, a)
}

// FindAt searches list top-most first with heuristic text boxes.
func FindAt(p image.Point, list []annotation.Annotation) (int, bool) {
	return New(nil).FindAt(p, list)
}

// within is an inclusive containment test; image.Point.In excludes Max.
func within(p image.Point, r image.Rectangle) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func toVec(p image.Point) vec.Vec2 {
	return vec.Vec2{X: float64(p.X), Y: float64(p.Y)}
}

// segmentDistSq is the squared distance from p to the segment a-b.
func segmentDistSq(p, a, b vec.Vec2) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return ap.X*ap.X + ap.Y*ap.Y
	}
	t := (ap.X*ab.X + ap.Y*ab.Y) / lenSq
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	d := p.Sub(a.Add(ab.Mul(t)))
	return d.X*d.X + d.Y*d.Y
}
