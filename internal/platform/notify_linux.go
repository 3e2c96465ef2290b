//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
)

const (
	defaultTimeout = 5000
	notifyDest     = "org.freedesktop.Notifications"
	notifyPath     = "/org/freedesktop/Notifications"
)

// Notify calls org.freedesktop.Notifications.Notify on the session bus. An
// icon is passed both as app_icon and as the image-path hint, which servers
// prefer for showing a picture of the screenshot.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	hints := map[string]dbus.Variant{
		"category":      dbus.MakeVariant("transfer.complete"),
		"desktop-entry": dbus.MakeVariant("flowmark"),
	}
	if opts.IconPath != "" {
		hints["image-path"] = dbus.MakeVariant("file://" + opts.IconPath)
	}
	return conn.Object(notifyDest, notifyPath).Call(notifyDest+".Notify", 0,
		AppName, uint32(0), opts.IconPath, title, body, []string{}, hints, timeout).Err
}
