package annotation

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Kind identifies the variant of an Annotation.
type Kind int

const (
	Arrow Kind = iota
	Rectangle
	Text
	Callout
	BlurRegion
	CropRegion
)

var kindNames = [...]string{
	Arrow:      "arrow",
	Rectangle:  "rectangle",
	Text:       "text",
	Callout:    "callout",
	BlurRegion: "blur",
	CropRegion: "crop",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a kind name such as "arrow" or "rect" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arrow":
		return Arrow, nil
	case "rect", "rectangle":
		return Rectangle, nil
	case "text":
		return Text, nil
	case "callout", "number":
		return Callout, nil
	case "blur", "pixelate":
		return BlurRegion, nil
	case "crop":
		return CropRegion, nil
	}
	return 0, fmt.Errorf("unknown annotation kind %q", s)
}

// PointGesture reports whether the kind is placed with a single click.
func (k Kind) PointGesture() bool {
	return k == Text || k == Callout
}

// ErrNegativeCoordinate is returned by Validate when a point lies left of or
// above the image origin.
var ErrNegativeCoordinate = errors.New("annotation coordinate is negative")

// Annotation is one markup element placed on an image. Start and End are in
// the pixel space of the current base image; display scaling is never stored.
type Annotation struct {
	Kind   Kind
	Color  color.RGBA
	Start  image.Point
	End    image.Point
	Text   string
	Number int
}

// New creates a shape annotation spanning start to end.
func New(kind Kind, col color.RGBA, start, end image.Point) Annotation {
	if kind.PointGesture() {
		end = start
	}
	return Annotation{Kind: kind, Color: col, Start: start, End: end}
}

// NewText creates a text annotation anchored at the baseline point at.
func NewText(col color.RGBA, at image.Point, text string) Annotation {
	return Annotation{Kind: Text, Color: col, Start: at, End: at, Text: text}
}

// NewCallout creates a numbered marker centred on at.
func NewCallout(col color.RGBA, at image.Point, number int) Annotation {
	return Annotation{Kind: Callout, Color: col, Start: at, End: at, Number: number}
}

// Copy returns an independent copy of a.
func (a Annotation) Copy() Annotation {
	return a
}

// Validate checks that both points are non-negative. Clamping to the image is
// left to callers.
func (a Annotation) Validate() error {
	if a.Start.X < 0 || a.Start.Y < 0 || a.End.X < 0 || a.End.Y < 0 {
		return fmt.Errorf("%s %v-%v: %w", a.Kind, a.Start, a.End, ErrNegativeCoordinate)
	}
	return nil
}

// Rect returns the normalized rectangle spanned by Start and End.
func (a Annotation) Rect() image.Rectangle {
	return image.Rectangle{Min: a.Start, Max: a.End}.Canon()
}

// Translate returns a shifted by d.
func (a Annotation) Translate(d image.Point) Annotation {
	a.Start = a.Start.Add(d)
	a.End = a.End.Add(d)
	return a
}

func (a Annotation) String() string {
	switch a.Kind {
	case Text:
		return fmt.Sprintf("text %v %q", a.Start, a.Text)
	case Callout:
		return fmt.Sprintf("callout %v #%d", a.Start, a.Number)
	default:
		return fmt.Sprintf("%s %v-%v", a.Kind, a.Start, a.End)
	}
}

// Clone deep-copies a slice of annotations. A nil slice stays nil.
func Clone(list []Annotation) []Annotation {
	if list == nil {
		return nil
	}
	out := make([]Annotation, len(list))
	for i, a := range list {
		out[i] = a.Copy()
	}
	return out
}
