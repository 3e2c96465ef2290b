package ui

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/flowmark/internal/render"
	"github.com/example/flowmark/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const checkerSize = 8

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 20, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// paintState is an immutable snapshot handed to the paint goroutine.
type paintState struct {
	layout    layout
	preview   *image.RGBA
	buttons   []buttonView
	shortcuts []buttonView
	status    string
	message   string
	prompt    *promptView
}

// painter owns the caches used while drawing and is confined to the paint
// goroutine.
type painter struct {
	th       *theme.Theme
	backdrop *image.RGBA
	cache    map[buttonView]*image.RGBA
	size     image.Point
}

func newPainter(th *theme.Theme) *painter {
	return &painter{th: th, cache: map[buttonView]*image.RGBA{}}
}

// overlayFromTheme maps theme colours onto the preview decorations.
func overlayFromTheme(th *theme.Theme) render.Overlay {
	return render.Overlay{
		Dash:     [2]color.RGBA{th.Selection, th.SelectionAlt},
		Handle:   th.Handle,
		Border:   th.HandleBorder,
		CropMask: th.CropMask,
	}
}

// draw renders st into dst. It returns false if ctx was cancelled part way.
func (p *painter) draw(ctx context.Context, dst *image.RGBA, st paintState) bool {
	if st.layout.Window != p.size {
		p.size = st.layout.Window
		p.backdrop = nil
		p.cache = map[buttonView]*image.RGBA{}
	}
	fill(dst, dst.Bounds(), p.th.Background)

	if st.preview != nil {
		pr := st.preview.Bounds().Sub(st.preview.Bounds().Min).Add(st.layout.Canvas.Min).Intersect(st.layout.Canvas)
		p.drawBackdrop(dst, st.layout.Canvas, pr)
		if ctx.Err() != nil {
			return false
		}
		draw.Draw(dst, pr, st.preview, st.preview.Bounds().Min, draw.Over)
	}
	if ctx.Err() != nil {
		return false
	}

	fill(dst, st.layout.Toolbar, p.th.ToolbarBackground)
	for _, b := range st.buttons {
		p.drawButton(dst, b)
	}
	fill(dst, st.layout.Status, p.th.StatusBackground)
	drawLabel(dst, st.layout.Status.Min.Add(image.Pt(padding, 16)), st.status, p.th.StatusText)
	fill(dst, st.layout.Shortcuts, p.th.StatusBackground)
	for _, b := range st.shortcuts {
		p.drawButton(dst, b)
	}
	if ctx.Err() != nil {
		return false
	}

	if st.message != "" {
		drawBox(dst, st.layout.Canvas, st.message, p.th)
	}
	if st.prompt != nil {
		drawBox(dst, st.layout.Canvas, st.prompt.label+": "+st.prompt.text+"|", p.th)
	}
	return ctx.Err() == nil
}

// drawBackdrop fills r with a checkerboard cached for the canvas area.
func (p *painter) drawBackdrop(dst *image.RGBA, canvasRect, r image.Rectangle) {
	if p.backdrop == nil || p.backdrop.Bounds() != canvasRect {
		p.backdrop = image.NewRGBA(canvasRect)
		drawCheckerboard(p.backdrop, canvasRect, checkerSize, p.th.CheckerLight, p.th.CheckerDark)
	}
	draw.Draw(dst, r, p.backdrop, r.Min, draw.Src)
}

// drawButton renders b once per state and reuses the result.
func (p *painter) drawButton(dst *image.RGBA, b buttonView) {
	img, ok := p.cache[b]
	if !ok {
		img = image.NewRGBA(b.rect)
		p.renderButton(img, b)
		p.cache[b] = img
	}
	draw.Draw(dst, b.rect, img, b.rect.Min, draw.Src)
}

func (p *painter) renderButton(dst *image.RGBA, b buttonView) {
	bg, fg := p.th.ButtonBackground, p.th.ButtonText
	switch b.state {
	case StateHover:
		bg, fg = p.th.ButtonBackgroundHover, p.th.ButtonTextHover
	case StatePressed:
		bg, fg = p.th.ButtonBackgroundPress, p.th.ButtonTextPress
	case StateDisabled:
		fg = blend(p.th.ButtonText, p.th.ButtonBackground)
	}
	if b.kind == buttonSwatch {
		fill(dst, b.rect, b.swatch)
		if b.state == StatePressed {
			strokeRect(dst, b.rect, 2, p.th.ButtonBorder)
		} else {
			strokeRect(dst, b.rect, 1, p.th.ButtonBorder)
		}
		return
	}
	fill(dst, b.rect, bg)
	strokeRect(dst, b.rect, 1, p.th.ButtonBorder)
	drawLabel(dst, image.Pt(b.rect.Min.X+padding, b.rect.Min.Y+15), b.label, fg)
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.RGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.SetRGBA(x, y, light)
			} else {
				dst.SetRGBA(x, y, dark)
			}
		}
	}
}

// drawBox centres a framed message inside area.
func drawBox(dst *image.RGBA, area image.Rectangle, msg string, th *theme.Theme) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: messageFace}
	w := d.MeasureString(msg).Ceil()
	m := messageFace.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	c := image.Pt((area.Min.X+area.Max.X)/2, (area.Min.Y+area.Max.Y)/2)
	px := c.X - w/2
	py := c.Y - (ascent+descent)/2 + ascent
	box := image.Rect(px-8, py-ascent-8, px+w+8, py+descent+8)
	bg := th.Background
	bg.A = 230
	draw.Draw(dst, box, image.NewUniform(bg), image.Point{}, draw.Over)
	strokeRect(dst, box, 2, th.ButtonBorder)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}

func drawLabel(dst *image.RGBA, at image.Point, s string, col color.RGBA) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13, Dot: fixed.P(at.X, at.Y)}
	d.DrawString(s)
}

func fill(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, w int, col color.RGBA) {
	src := image.NewUniform(col)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
}

func blend(a, b color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8((uint16(a.R) + uint16(b.R)) / 2),
		G: uint8((uint16(a.G) + uint16(b.G)) / 2),
		B: uint8((uint16(a.B) + uint16(b.B)) / 2),
		A: 255,
	}
}
