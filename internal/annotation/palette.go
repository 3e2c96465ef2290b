package annotation

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// PaletteColor is a named swatch offered by the toolbar.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var palette = []PaletteColor{
	{"Red", color.RGBA{0xFF, 0x00, 0x00, 0xFF}},
	{"Green", color.RGBA{0x00, 0xAA, 0x00, 0xFF}},
	{"Blue", color.RGBA{0x00, 0x66, 0xFF, 0xFF}},
	{"Orange", color.RGBA{0xFF, 0x99, 0x00, 0xFF}},
	{"Purple", color.RGBA{0x99, 0x33, 0xFF, 0xFF}},
}

// Palette returns a copy of the default swatches.
func Palette() []PaletteColor {
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

// DefaultColor is the first palette entry.
func DefaultColor() color.RGBA { return palette[0].Color }

// ParseColor accepts a palette name, an SVG color name or a #RRGGBB[AA] value.
func ParseColor(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	for _, p := range palette {
		if strings.EqualFold(p.Name, spec) {
			return p.Color, nil
		}
	}
	if c, ok := colornames.Map[spec]; ok {
		return c, nil
	}
	if !strings.HasPrefix(spec, "#") || (len(spec) != 7 && len(spec) != 9) {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	val, err := strconv.ParseUint(spec[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(spec) == 7 {
		return color.RGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 0xFF}, nil
	}
	return color.RGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
}

// FormatColor renders c as #RRGGBB, or #RRGGBBAA when not opaque.
func FormatColor(c color.RGBA) string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
