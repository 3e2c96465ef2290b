package ui

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	statusHeight   = 24
	shortcutHeight = 24
	buttonHeight   = 22
	buttonGap      = 2
	swatchSize     = 18
	padding        = 4
)

// minToolbarWidth is widened to fit the longest toolbar label.
const minToolbarWidth = 48

// layout splits the window into chrome and the image area.
type layout struct {
	Window    image.Point
	Status    image.Rectangle
	Toolbar   image.Rectangle
	Canvas    image.Rectangle
	Shortcuts image.Rectangle
}

func labelWidth(s string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil() + 2*padding
}

// toolbarWidth fits the title and every label on one line.
func toolbarWidth(labels []string) int {
	w := minToolbarWidth
	for _, l := range labels {
		if n := labelWidth(l); n > w {
			w = n
		}
	}
	return w
}

func computeLayout(win image.Point, toolbarW int) layout {
	if win.X < toolbarW {
		win.X = toolbarW
	}
	if win.Y < statusHeight+shortcutHeight {
		win.Y = statusHeight + shortcutHeight
	}
	bottom := win.Y - shortcutHeight
	return layout{
		Window:    win,
		Status:    image.Rect(0, 0, win.X, statusHeight),
		Toolbar:   image.Rect(0, statusHeight, toolbarW, bottom),
		Canvas:    image.Rect(toolbarW, statusHeight, win.X, bottom),
		Shortcuts: image.Rect(0, bottom, win.X, win.Y),
	}
}

// windowSize is the window needed to show an image of display size d.
func windowSize(d image.Point, toolbarW int) image.Point {
	return image.Pt(d.X+toolbarW, d.Y+statusHeight+shortcutHeight)
}

// stackButtons places n full-width buttons down the toolbar from y and
// returns their rectangles and the next free y.
func stackButtons(bar image.Rectangle, y, n int) ([]image.Rectangle, int) {
	rects := make([]image.Rectangle, n)
	for i := range rects {
		rects[i] = image.Rect(bar.Min.X+padding, y, bar.Max.X-padding, y+buttonHeight)
		y += buttonHeight + buttonGap
	}
	return rects, y
}

// gridSwatches lays n square swatches out in rows across the toolbar.
func gridSwatches(bar image.Rectangle, y, n int) ([]image.Rectangle, int) {
	perRow := (bar.Dx() - padding) / (swatchSize + padding)
	if perRow < 1 {
		perRow = 1
	}
	rects := make([]image.Rectangle, n)
	for i := range rects {
		col, row := i%perRow, i/perRow
		x0 := bar.Min.X + padding + col*(swatchSize+padding)
		y0 := y + row*(swatchSize+padding)
		rects[i] = image.Rect(x0, y0, x0+swatchSize, y0+swatchSize)
	}
	rows := (n + perRow - 1) / perRow
	return rects, y + rows*(swatchSize+padding)
}

// rowButtons places labelled buttons left to right across a bar.
func rowButtons(bar image.Rectangle, labels []string) []image.Rectangle {
	rects := make([]image.Rectangle, len(labels))
	x := bar.Min.X + padding
	for i, l := range labels {
		w := labelWidth(l)
		rects[i] = image.Rect(x, bar.Min.Y+2, x+w, bar.Max.Y-2)
		x += w + padding
	}
	return rects
}
