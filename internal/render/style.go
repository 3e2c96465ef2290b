package render

import (
	"image/color"
	"log"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Stroke and marker geometry for annotations, in image pixels.
const (
	ArrowWidth      = 3
	ArrowHeadLength = 15
	ArrowHeadWidth  = 8
	RectWidth       = 3
	CalloutRadius   = 14
	TextSize        = 14
	CalloutTextSize = 12
)

var (
	textBackground = color.RGBA{255, 255, 255, 200}
	textFace       font.Face
	calloutFace    font.Face
)

func init() {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	textFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: TextSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
	calloutFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: CalloutTextSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// Overlay holds the colours used for editing decorations in the preview.
type Overlay struct {
	Dash     [2]color.RGBA
	Handle   color.RGBA
	Border   color.RGBA
	CropMask color.RGBA
}

// DefaultOverlay is a black and white dashed outline with a translucent
// black crop mask.
func DefaultOverlay() Overlay {
	return Overlay{
		Dash:     [2]color.RGBA{{255, 255, 255, 255}, {0, 0, 0, 255}},
		Handle:   color.RGBA{255, 255, 255, 255},
		Border:   color.RGBA{0, 0, 0, 255},
		CropMask: color.RGBA{0, 0, 0, 128},
	}
}

// contrastColor picks black or white text for legibility on c.
func contrastColor(c color.RGBA) color.RGBA {
	brightness := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if brightness > 186 {
		return color.RGBA{0, 0, 0, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}
