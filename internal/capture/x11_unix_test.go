//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"errors"
	"image/color"
	"testing"

	"github.com/jezek/xgb/xproto"
)

func TestRunningOnWayland(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("WAYLAND_DISPLAY", "")
	if !runningOnWayland() {
		t.Fatalf("expected wayland session when XDG_SESSION_TYPE=wayland")
	}

	t.Setenv("XDG_SESSION_TYPE", "x11")
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	if !runningOnWayland() {
		t.Fatalf("expected wayland session when WAYLAND_DISPLAY is set")
	}

	t.Setenv("XDG_SESSION_TYPE", "x11")
	t.Setenv("WAYLAND_DISPLAY", "")
	if runningOnWayland() {
		t.Fatalf("did not expect wayland session when indicators are absent")
	}
}

func TestX11ScreenshotRefusesWayland(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	if _, err := x11Screenshot(); !errors.Is(err, errWayland) {
		t.Fatalf("err = %v, want errWayland", err)
	}
}

func TestXImageToRGBA(t *testing.T) {
	setup := &xproto.SetupInfo{PixmapFormats: []xproto.Format{{Depth: 24, BitsPerPixel: 32, ScanlinePad: 32}}}
	// Two BGRX pixels per row.
	reply := &xproto.GetImageReply{Depth: 24, Data: []byte{
		1, 2, 3, 0, 4, 5, 6, 0,
		7, 8, 9, 0, 10, 11, 12, 0,
	}}
	img, err := xImageToRGBA(setup, reply, 2, 2, "test")
	if err != nil {
		t.Fatalf("xImageToRGBA: %v", err)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{12, 11, 10, 255}) {
		t.Fatalf("pixel = %v", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{3, 2, 1, 255}) {
		t.Fatalf("pixel = %v", got)
	}

	reply.Depth = 8
	if _, err := xImageToRGBA(setup, reply, 2, 2, "test"); err == nil {
		t.Fatalf("expected unsupported depth error")
	}
}

func TestXImageToRGBAByteOrders(t *testing.T) {
	tests := map[string]struct {
		setup xproto.SetupInfo
		depth byte
		data  []byte
		want  color.RGBA
	}{
		"msb first xrgb": {
			setup: xproto.SetupInfo{ImageByteOrder: xproto.ImageOrderMSBFirst, PixmapFormats: []xproto.Format{{Depth: 24, BitsPerPixel: 32}}},
			depth: 24,
			data:  []byte{0, 10, 20, 30},
			want:  color.RGBA{10, 20, 30, 255},
		},
		"argb alpha": {
			setup: xproto.SetupInfo{PixmapFormats: []xproto.Format{{Depth: 32, BitsPerPixel: 32}}},
			depth: 32,
			data:  []byte{30, 20, 10, 128},
			want:  color.RGBA{10, 20, 30, 128},
		},
		"packed 24": {
			setup: xproto.SetupInfo{PixmapFormats: []xproto.Format{{Depth: 24, BitsPerPixel: 24}}},
			depth: 24,
			data:  []byte{30, 20, 10},
			want:  color.RGBA{10, 20, 30, 255},
		},
		"rgb565 white": {
			setup: xproto.SetupInfo{PixmapFormats: []xproto.Format{{Depth: 16, BitsPerPixel: 16}}},
			depth: 16,
			data:  []byte{0xFF, 0xFF},
			want:  color.RGBA{255, 255, 255, 255},
		},
		"rgb565 red": {
			setup: xproto.SetupInfo{PixmapFormats: []xproto.Format{{Depth: 16, BitsPerPixel: 16}}},
			depth: 16,
			data:  []byte{0x00, 0xF8},
			want:  color.RGBA{255, 0, 0, 255},
		},
	}
	for name, tc := range tests {
		reply := &xproto.GetImageReply{Depth: tc.depth, Data: tc.data}
		img, err := xImageToRGBA(&tc.setup, reply, 1, 1, name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if got := img.RGBAAt(0, 0); got != tc.want {
			t.Errorf("%s: pixel = %v, want %v", name, got, tc.want)
		}
	}
}

func TestXImageToRGBAShortData(t *testing.T) {
	setup := &xproto.SetupInfo{PixmapFormats: []xproto.Format{{Depth: 24, BitsPerPixel: 32}}}
	reply := &xproto.GetImageReply{Depth: 24, Data: make([]byte, 12)}
	if _, err := xImageToRGBA(setup, reply, 4, 1, "short"); err == nil {
		t.Fatal("expected error for 12 bytes of 4x1 pixels")
	}
}
