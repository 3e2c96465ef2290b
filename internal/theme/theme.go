package theme

import (
	"fmt"
	"image/color"
	"io"
	"reflect"
)

// Theme defines the colours of the editor window chrome and of the editing
// overlays drawn over the image.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background around the image
	Foreground color.RGBA // Main text color

	// Toolbar and status bar
	ToolbarBackground color.RGBA
	StatusBackground  color.RGBA
	StatusText        color.RGBA

	// Tool Buttons
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonTextHover       color.RGBA
	ButtonTextPress       color.RGBA
	ButtonBorder          color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Overlays
	Selection    color.RGBA // Dashed outline of the selection
	SelectionAlt color.RGBA // Alternate dash colour
	Handle       color.RGBA
	HandleBorder color.RGBA
	CropMask     color.RGBA // Darkening outside a pending crop
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{220, 220, 220, 255},
		StatusBackground:      color.RGBA{200, 200, 200, 255},
		StatusText:            color.RGBA{0, 0, 0, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonTextHover:       color.RGBA{0, 0, 0, 255},
		ButtonTextPress:       color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
		Selection:             color.RGBA{255, 255, 255, 255},
		SelectionAlt:          color.RGBA{0, 0, 0, 255},
		Handle:                color.RGBA{255, 255, 255, 255},
		HandleBorder:          color.RGBA{0, 0, 0, 255},
		CropMask:              color.RGBA{0, 0, 0, 128},
	}
}

// Colors returns the colour fields of t in declaration order.
func (t *Theme) Colors() []NamedColor {
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	var out []NamedColor
	for i := 0; i < typ.NumField(); i++ {
		if c, ok := val.Field(i).Interface().(color.RGBA); ok {
			out = append(out, NamedColor{Key: typ.Field(i).Name, Color: c})
		}
	}
	return out
}

// NamedColor pairs a theme key with its value.
type NamedColor struct {
	Key   string
	Color color.RGBA
}

// Write emits t in the theme file format read by Parse.
func (t *Theme) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Name: %s\n", t.Name); err != nil {
		return err
	}
	for _, nc := range t.Colors() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", nc.Key, FormatColor(nc.Color)); err != nil {
			return err
		}
	}
	return nil
}

// FormatColor renders c as #RRGGBB, adding AA when it is not opaque.
func FormatColor(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
