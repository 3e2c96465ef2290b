package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func opaque(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestApplyShadowLayout(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	tests := map[string]struct {
		opts       ShadowOptions
		wantBounds image.Rectangle
		wantOffset image.Point
		checks     map[image.Point]color.RGBA
	}{
		"hard shadow down right": {
			opts:       ShadowOptions{Offset: image.Pt(4, 4), Opacity: 1},
			wantBounds: image.Rect(0, 0, 14, 14),
			checks: map[image.Point]color.RGBA{
				{5, 5}:   white,
				{12, 12}: {0, 0, 0, 255},
				{12, 2}:  {},
			},
		},
		"soft shadow up left": {
			opts:       ShadowOptions{Radius: 1, Offset: image.Pt(-3, -2), Opacity: 0.5},
			wantBounds: image.Rect(0, 0, 14, 13),
			wantOffset: image.Pt(4, 3),
			checks: map[image.Point]color.RGBA{
				{4, 3}:   white,
				{13, 12}: white,
				{0, 12}:  {},
			},
		},
	}
	for name, tc := range tests {
		res := ApplyShadow(opaque(10, 10, white), tc.opts)
		if res.Image.Bounds() != tc.wantBounds {
			t.Errorf("%s: bounds %v, want %v", name, res.Image.Bounds(), tc.wantBounds)
			continue
		}
		if res.Offset != tc.wantOffset {
			t.Errorf("%s: offset %v, want %v", name, res.Offset, tc.wantOffset)
		}
		for p, want := range tc.checks {
			if got := res.Image.RGBAAt(p.X, p.Y); got != want {
				t.Errorf("%s: pixel %v = %v, want %v", name, p, got, want)
			}
		}
	}
}

func TestApplyShadowDisabled(t *testing.T) {
	img := opaque(4, 4, color.RGBA{200, 100, 50, 255})
	if res := ApplyShadow(img, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10)}); res.Image != img {
		t.Fatal("zero opacity should return the input unchanged")
	}
	if res := ApplyShadow(nil, DefaultShadowOptions()); res.Image != nil {
		t.Fatal("nil input produced an image")
	}
}

func TestApplyShadowFollowsAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 1))
	img.SetRGBA(0, 0, color.RGBA{A: 255})
	out := ApplyShadow(img, ShadowOptions{Offset: image.Pt(0, 2), Opacity: 1}).Image
	if got := out.RGBAAt(0, 2).A; got != 255 {
		t.Fatalf("shadow under opaque pixel has alpha %d", got)
	}
	if got := out.RGBAAt(3, 2).A; got != 0 {
		t.Fatalf("shadow under transparent pixel has alpha %d", got)
	}
}

func TestBoxBlurMean(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 3))
	src.SetGray(1, 1, color.Gray{255})
	out := boxBlur(src, 1)
	// Rows first: [127 85 127] in the middle row, then columns.
	if got := out.GrayAt(1, 1).Y; got != 28 {
		t.Errorf("centre = %d, want 28", got)
	}
	if got := out.GrayAt(0, 0).Y; got != 63 {
		t.Errorf("corner = %d, want 63", got)
	}
	if boxBlur(src, 0) != src {
		t.Error("radius 0 should not copy")
	}
}
