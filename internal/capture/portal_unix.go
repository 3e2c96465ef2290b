//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
)

var portalHandleToken = newPortalHandleToken

// portalTimeout bounds how long a non-interactive request may stay silent.
var portalTimeout = 30 * time.Second

func portalScreenshot(interactive bool, captureOpts Options) (*image.RGBA, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %v: %w", err, errNoSessionBus)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Printf("dbus close: %v", cerr)
		}
	}()

	sigc := make(chan *dbus.Signal, 4)
	conn.Signal(sigc)
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.portal.Request"),
		dbus.WithMatchMember("Response"),
	); err != nil {
		return nil, fmt.Errorf("portal screenshot subscribe: %w", err)
	}

	obj := conn.Object("org.freedesktop.portal.Desktop", "/org/freedesktop/portal/desktop")
	var handle dbus.ObjectPath
	call := obj.Call("org.freedesktop.portal.Screenshot.Screenshot", 0, "", portalScreenshotOptions(interactive, captureOpts))
	if call.Err != nil {
		return nil, fmt.Errorf("portal screenshot call: %w", call.Err)
	}
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("portal screenshot response: %w", err)
	}

	var timeout <-chan time.Time
	if !interactive {
		timeout = time.After(portalTimeout)
	}
	for {
		select {
		case sig := <-sigc:
			if sig.Path != handle || sig.Name != "org.freedesktop.portal.Request.Response" {
				continue
			}
			path, err := responseFile(sig.Body)
			if err != nil {
				return nil, err
			}
			img, err := loadPNG(path)
			if err != nil {
				return nil, fmt.Errorf("portal screenshot image: %w", err)
			}
			return img, nil
		case <-timeout:
			return nil, fmt.Errorf("portal screenshot: %w", &dbus.Error{Name: "org.freedesktop.DBus.Error.NoReply"})
		}
	}
}

// responseFile extracts the saved file path from a Request.Response body.
func responseFile(body []interface{}) (string, error) {
	if len(body) < 2 {
		return "", fmt.Errorf("portal screenshot: malformed response")
	}
	if code, ok := body[0].(uint32); ok && code != 0 {
		if code == 1 {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("portal screenshot: request failed with code %d", code)
	}
	res, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return "", fmt.Errorf("portal screenshot: malformed response")
	}
	v, ok := res["uri"]
	if !ok {
		return "", fmt.Errorf("portal screenshot: response missing image data")
	}
	raw, _ := v.Value().(string)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		return "", fmt.Errorf("portal screenshot: unexpected uri %q", raw)
	}
	return u.Path, nil
}

func newPortalHandleToken() string {
	return fmt.Sprintf("flowmark_%d", time.Now().UnixNano())
}

func portalScreenshotOptions(interactive bool, captureOpts Options) map[string]dbus.Variant {
	cursorMode := "hidden"
	if captureOpts.IncludeCursor {
		cursorMode = "embedded"
	}
	return map[string]dbus.Variant{
		"interactive":        dbus.MakeVariant(interactive),
		"handle_token":       dbus.MakeVariant(portalHandleToken()),
		"modal":              dbus.MakeVariant(interactive),
		"cursor_mode":        dbus.MakeVariant(cursorMode),
		"restore_window":     dbus.MakeVariant(captureOpts.IncludeDecorations),
		"include-decoration": dbus.MakeVariant(captureOpts.IncludeDecorations),
	}
}

// loadPNG decodes and then removes the file the portal wrote.
func loadPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("close %s: %v", path, cerr)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("remove %s: %v", path, err)
		}
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}
