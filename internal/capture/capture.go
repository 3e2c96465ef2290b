// Package capture grabs screen pixels through the desktop portal, falling
// back to a direct X11 read of the root window when no portal answers.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/godbus/dbus/v5"
)

// Options tune what the compositor includes in the shot.
type Options struct {
	IncludeCursor      bool
	IncludeDecorations bool
}

var (
	portalScreenshotFn = portalScreenshot
	x11ScreenshotFn    = x11Screenshot
	listMonitorsFn     = listMonitors
)

// ErrEmptyRegion is returned when a requested rectangle has no area or lies
// outside the captured desktop.
var ErrEmptyRegion = errors.New("capture region is empty")

// Screenshot captures the whole desktop. A non-empty display selector crops
// the result to the matching monitor (see FindMonitor).
func Screenshot(display string, opts Options) (*image.RGBA, error) {
	img, err := desktop(opts)
	if err != nil {
		return nil, err
	}
	if display == "" {
		return img, nil
	}
	monitors, err := listMonitorsFn()
	if err != nil {
		return nil, fmt.Errorf("capture display %q: %w", display, err)
	}
	mon, err := FindMonitor(monitors, display)
	if err != nil {
		return nil, fmt.Errorf("capture display %q: %w", display, err)
	}
	return cropToRect(img, mon.Rect)
}

// Region asks the portal to let the user pick an area. There is no
// fallback since X11 has no selection UI of its own.
func Region(opts Options) (*image.RGBA, error) {
	img, err := portalScreenshotFn(true, opts)
	if err != nil {
		return nil, fmt.Errorf("capture region: %w", err)
	}
	return img, nil
}

// RegionRect captures rect, given in global desktop coordinates.
func RegionRect(rect image.Rectangle, opts Options) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, ErrEmptyRegion
	}
	shot, err := desktop(opts)
	if err != nil {
		return nil, err
	}
	return cropToRect(shot, rect)
}

func desktop(opts Options) (*image.RGBA, error) {
	img, err := portalScreenshotFn(false, opts)
	if err == nil {
		return img, nil
	}
	if !portalUnavailable(err) {
		return nil, err
	}
	img, xerr := x11ScreenshotFn()
	if xerr != nil {
		return nil, fmt.Errorf("portal screenshot: %v; x11 fallback: %w", err, xerr)
	}
	return img, nil
}

// portalUnavailable reports whether err means no portal could serve the
// request, as opposed to the user cancelling it.
func portalUnavailable(err error) bool {
	var dbusErr *dbus.Error
	if errors.As(err, &dbusErr) {
		switch {
		case strings.HasSuffix(dbusErr.Name, ".NotSupported"),
			strings.HasSuffix(dbusErr.Name, ".ServiceUnknown"),
			strings.HasSuffix(dbusErr.Name, ".UnknownMethod"),
			strings.HasSuffix(dbusErr.Name, ".Disconnected"),
			strings.HasSuffix(dbusErr.Name, ".NoReply"):
			return true
		}
		return false
	}
	return errors.Is(err, errNoSessionBus) || errors.Is(err, errPortalUnsupported)
}

// ErrCancelled is returned when the user dismisses the portal dialog.
var ErrCancelled = errors.New("screenshot cancelled")

var (
	errNoSessionBus      = errors.New("no session bus")
	errPortalUnsupported = errors.New("portal screenshot is not supported on this platform")
)

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image: %w", ErrEmptyRegion)
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
