package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/vec"
)

func pt(p image.Point) vec.Vec2 {
	return vec.Vec2{X: float64(p.X), Y: float64(p.Y)}
}

// fillPolygon draws an antialiased closed polygon onto dst. The rasterizer is
// sized to the clipped bounding box of the points.
func fillPolygon(dst *image.RGBA, pts []vec.Vec2, col color.RGBA) {
	if len(pts) < 3 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	box := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
	box = box.Intersect(dst.Bounds())
	if box.Empty() {
		return
	}
	ras := vector.NewRasterizer(box.Dx(), box.Dy())
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	ras.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		ras.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	ras.ClosePath()
	ras.Draw(dst, box, image.NewUniform(col), image.Point{})
}

// circlePoints approximates a circle with a regular polygon.
func circlePoints(c vec.Vec2, r float64) []vec.Vec2 {
	n := int(math.Max(12, math.Ceil(r*2)))
	pts := make([]vec.Vec2, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = vec.Vec2{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}

func fillCircle(dst *image.RGBA, c vec.Vec2, r float64, col color.RGBA) {
	fillPolygon(dst, circlePoints(c, r), col)
}

// strokeSegment draws a thick line with round caps.
func strokeSegment(dst *image.RGBA, a, b vec.Vec2, width float64, col color.RGBA) {
	half := width / 2
	d := b.Sub(a)
	if d.Length() > 0 {
		n := d.Normalize().Rot90().Mul(half)
		fillPolygon(dst, []vec.Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}, col)
	}
	fillCircle(dst, a, half, col)
	fillCircle(dst, b, half, col)
}

// arrowHead returns the tip and the two barbs of a filled arrow head.
func arrowHead(start, end vec.Vec2) (tip, left, right vec.Vec2, ok bool) {
	d := end.Sub(start)
	if d.Length() == 0 {
		return end, end, end, false
	}
	u := d.Normalize()
	back := end.Sub(u.Mul(ArrowHeadLength))
	side := u.Rot90().Mul(ArrowHeadWidth)
	return end, back.Add(side), back.Sub(side), true
}

// strokeRect outlines r with bands of the given width centred on its edges.
func strokeRect(dst *image.RGBA, r image.Rectangle, width int, col color.RGBA) {
	if width < 1 {
		width = 1
	}
	lo := width / 2
	hi := width - lo
	outer := image.Rect(r.Min.X-lo, r.Min.Y-lo, r.Max.X+hi, r.Max.Y+hi)
	inner := image.Rect(r.Min.X+hi, r.Min.Y+hi, r.Max.X-lo, r.Max.Y-lo)
	src := image.NewUniform(col)
	bands := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y),
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y),
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y),
	}
	if inner.Empty() {
		bands = []image.Rectangle{outer}
	}
	for _, b := range bands {
		draw.Draw(dst, b, src, image.Point{}, draw.Over)
	}
}

func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash, thickness int, c1, c2 color.Color) {
	horiz := y0 == y1
	length := x1 - x0
	if !horiz {
		length = y1 - y0
	}
	step := 1
	if length < 0 {
		length = -length
		step = -1
	}
	b := img.Bounds()
	for i := 0; i <= length; i++ {
		col := c1
		if (i/dash)%2 == 1 {
			col = c2
		}
		for t := 0; t < thickness; t++ {
			x, y := x0+t, y0+i*step
			if horiz {
				x, y = x0+i*step, y0+t
			}
			if image.Pt(x, y).In(b) {
				img.Set(x, y, col)
			}
		}
	}
}

func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash, thickness int, c1, c2 color.Color) {
	drawDashedLine(img, rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Min.Y, rect.Max.X, rect.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Max.Y, rect.Min.X, rect.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Min.X, rect.Max.Y, rect.Min.X, rect.Min.Y, dash, thickness, c1, c2)
}

// HandleSize is the edge length of a selection handle square.
const HandleSize = 8

// HandleRects returns the eight resize handles around rect, clockwise from
// the top-left corner.
func HandleRects(rect image.Rectangle) []image.Rectangle {
	hs := HandleSize / 2
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	at := func(x, y int) image.Rectangle { return image.Rect(x-hs, y-hs, x+hs, y+hs) }
	return []image.Rectangle{
		at(rect.Min.X, rect.Min.Y),
		at(cx, rect.Min.Y),
		at(rect.Max.X, rect.Min.Y),
		at(rect.Max.X, cy),
		at(rect.Max.X, rect.Max.Y),
		at(cx, rect.Max.Y),
		at(rect.Min.X, rect.Max.Y),
		at(rect.Min.X, cy),
	}
}
