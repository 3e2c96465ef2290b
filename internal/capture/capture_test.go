package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
)

func stubCapture(t *testing.T, portal func(bool, Options) (*image.RGBA, error), x11 func() (*image.RGBA, error)) {
	t.Helper()
	prevPortal, prevX11, prevMonitors := portalScreenshotFn, x11ScreenshotFn, listMonitorsFn
	t.Cleanup(func() {
		portalScreenshotFn = prevPortal
		x11ScreenshotFn = prevX11
		listMonitorsFn = prevMonitors
	})
	portalScreenshotFn = portal
	x11ScreenshotFn = x11
}

func desktopImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.SetRGBA(25, 5, color.RGBA{255, 0, 0, 255})
	return img
}

func TestScreenshotFallsBackToX11(t *testing.T) {
	want := desktopImage()
	called := false
	stubCapture(t,
		func(bool, Options) (*image.RGBA, error) {
			return nil, &dbus.Error{Name: "org.freedesktop.portal.Error.NotSupported"}
		},
		func() (*image.RGBA, error) {
			called = true
			return want, nil
		})

	got, err := Screenshot("", Options{})
	if err != nil {
		t.Fatalf("Screenshot returned error: %v", err)
	}
	if !called {
		t.Fatalf("expected x11 fallback to be used")
	}
	if got != want {
		t.Fatalf("expected x11 result, got %#v", got)
	}
}

func TestScreenshotFallsBackWhenPortalDisconnects(t *testing.T) {
	called := false
	stubCapture(t,
		func(bool, Options) (*image.RGBA, error) {
			return nil, fmt.Errorf("portal screenshot call: %w", &dbus.Error{Name: "org.freedesktop.DBus.Error.Disconnected"})
		},
		func() (*image.RGBA, error) {
			called = true
			return desktopImage(), nil
		})

	if _, err := Screenshot("", Options{}); err != nil {
		t.Fatalf("Screenshot returned error: %v", err)
	}
	if !called {
		t.Fatalf("expected x11 fallback to be used")
	}
}

func TestScreenshotFallbackFailure(t *testing.T) {
	stubCapture(t,
		func(bool, Options) (*image.RGBA, error) {
			return nil, fmt.Errorf("dbus connect: refused: %w", errNoSessionBus)
		},
		func() (*image.RGBA, error) {
			return nil, errors.New("no display")
		})

	_, err := Screenshot("", Options{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "x11 fallback") {
		t.Fatalf("expected x11 fallback context, got %v", err)
	}
}

func TestScreenshotCancelDoesNotFallBack(t *testing.T) {
	stubCapture(t,
		func(bool, Options) (*image.RGBA, error) { return nil, ErrCancelled },
		func() (*image.RGBA, error) {
			t.Fatalf("x11 fallback used after cancel")
			return nil, nil
		})

	if _, err := Screenshot("", Options{}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
}

func TestRegionDoesNotFallBack(t *testing.T) {
	portalErr := &dbus.Error{Name: "org.freedesktop.portal.Error.NotSupported"}
	var interactive bool
	stubCapture(t,
		func(i bool, _ Options) (*image.RGBA, error) {
			interactive = i
			return nil, portalErr
		},
		func() (*image.RGBA, error) {
			t.Fatalf("did not expect x11 fallback for interactive capture")
			return nil, nil
		})

	_, err := Region(Options{})
	if !interactive {
		t.Fatalf("region capture was not interactive")
	}
	var dbusErr *dbus.Error
	if !errors.As(err, &dbusErr) {
		t.Fatalf("expected wrapped portal error, got %v", err)
	}
}

func TestScreenshotCropsToDisplay(t *testing.T) {
	stubCapture(t,
		func(bool, Options) (*image.RGBA, error) { return desktopImage(), nil },
		nil)
	listMonitorsFn = func() ([]MonitorInfo, error) {
		return []MonitorInfo{
			{Index: 0, Name: "eDP-1", Rect: image.Rect(0, 0, 20, 20)},
			{Index: 1, Name: "HDMI-1", Rect: image.Rect(20, 0, 40, 20), Primary: true},
		}, nil
	}

	got, err := Screenshot("primary", Options{})
	if err != nil {
		t.Fatalf("Screenshot: %v", err)
	}
	if got.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Fatalf("bounds %v", got.Bounds())
	}
	if c := got.RGBAAt(5, 5); c != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("pixel %v", c)
	}

	if _, err := Screenshot("DP-9", Options{}); err == nil || !strings.Contains(err.Error(), `capture display "DP-9"`) {
		t.Fatalf("err = %v", err)
	}
}

func TestRegionRect(t *testing.T) {
	stubCapture(t,
		func(bool, Options) (*image.RGBA, error) { return desktopImage(), nil },
		nil)

	got, err := RegionRect(image.Rect(20, 0, 60, 10), Options{})
	if err != nil {
		t.Fatalf("RegionRect: %v", err)
	}
	if got.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Fatalf("bounds %v", got.Bounds())
	}
	if _, err := RegionRect(image.Rectangle{}, Options{}); !errors.Is(err, ErrEmptyRegion) {
		t.Fatalf("err = %v, want ErrEmptyRegion", err)
	}
	if _, err := RegionRect(image.Rect(100, 100, 120, 120), Options{}); !errors.Is(err, ErrEmptyRegion) {
		t.Fatalf("err = %v, want ErrEmptyRegion", err)
	}
}

func TestFindMonitor(t *testing.T) {
	monitors := []MonitorInfo{
		{Index: 0, Name: "eDP-1"},
		{Index: 1, Name: "HDMI-A-1", Primary: true},
	}
	for sel, want := range map[string]int{"": 0, "primary": 1, "#1": 1, "0": 0, "hdmi": 1} {
		got, err := FindMonitor(monitors, sel)
		if err != nil {
			t.Fatalf("FindMonitor(%q): %v", sel, err)
		}
		if got.Index != want {
			t.Errorf("FindMonitor(%q) = %d, want %d", sel, got.Index, want)
		}
	}
	for _, sel := range []string{"2", "-1", "vga"} {
		if _, err := FindMonitor(monitors, sel); err == nil {
			t.Errorf("FindMonitor(%q): expected error", sel)
		}
	}
	if _, err := FindMonitor(nil, ""); !errors.Is(err, errNoMonitors) {
		t.Fatalf("err = %v", err)
	}
}
