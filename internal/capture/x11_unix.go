//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

var errWayland = errors.New("root window grab is blank under wayland")

func runningOnWayland() bool {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")), "wayland") {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

func rootScreen(conn *xgb.Conn) (*xproto.SetupInfo, *xproto.ScreenInfo, error) {
	setup := xproto.Setup(conn)
	if setup == nil {
		return nil, nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		return nil, nil, fmt.Errorf("xproto screen unavailable")
	}
	return setup, screen, nil
}

func x11Screenshot() (*image.RGBA, error) {
	if runningOnWayland() {
		return nil, errWayland
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()

	setup, screen, err := rootScreen(conn)
	if err != nil {
		return nil, err
	}
	w, h := screen.WidthInPixels, screen.HeightInPixels
	reply, err := xproto.GetImage(conn, xproto.ImageFormatZPixmap, xproto.Drawable(screen.Root), 0, 0, w, h, ^uint32(0)).Reply()
	if err != nil {
		return nil, fmt.Errorf("root window pixels: %w", err)
	}
	return xImageToRGBA(setup, reply, int(w), int(h), "root window")
}

func listMonitors() ([]MonitorInfo, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()

	_, screen, err := rootScreen(conn)
	if err != nil {
		return nil, err
	}
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("init randr: %w", err)
	}
	res, err := randr.GetScreenResources(conn, screen.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	primary := randr.Output(0)
	if p, err := randr.GetOutputPrimary(conn, screen.Root).Reply(); err == nil {
		primary = p.Output
	}
	var monitors []MonitorInfo
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		monitors = append(monitors, MonitorInfo{
			Index:   len(monitors),
			Name:    strings.TrimSpace(string(info.Name)),
			Rect:    image.Rect(int(crtc.X), int(crtc.Y), int(crtc.X)+int(crtc.Width), int(crtc.Y)+int(crtc.Height)),
			Primary: output == primary,
		})
	}
	if len(monitors) == 0 {
		return nil, errNoMonitors
	}
	return monitors, nil
}
