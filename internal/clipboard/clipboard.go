// Package clipboard copies finished screenshots to, and pastes source
// images from, the system clipboard.
package clipboard

import (
	"errors"
	"os"
)

var (
	// ErrEmpty is returned when the clipboard holds no data of the
	// requested format.
	ErrEmpty     = errors.New("clipboard has no data of that format")
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
