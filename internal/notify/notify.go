// Package notify turns capture, save and copy events into desktop
// notifications.
package notify

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/example/flowmark/internal/config"
	"github.com/example/flowmark/internal/platform"
	"github.com/example/flowmark/internal/viewport"
)

// Event identifies a notification trigger.
type Event string

const (
	EventCapture Event = "capture"
	EventSave    Event = "save"
	EventCopy    Event = "copy"
)

// thumbSize bounds the capture preview attached to a notification.
const thumbSize = 128

// Preferences holds the notification title and one message template per
// event. The first %s in a template is replaced by the event detail.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built-in wording.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.AppName,
		Templates: map[Event]string{
			EventCapture: "Captured %s",
			EventSave:    "Saved %s",
			EventCopy:    "Copied %s to clipboard",
		},
	}
}

// LoadPreferences overlays FLOWMARK_NOTIFY_* environment variables on the
// defaults.
func LoadPreferences() Preferences {
	p := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("FLOWMARK_NOTIFY_TITLE")); v != "" {
		p.Title = v
	}
	for env, ev := range map[string]Event{
		"FLOWMARK_NOTIFY_CAPTURE_TEXT": EventCapture,
		"FLOWMARK_NOTIFY_SAVE_TEXT":    EventSave,
		"FLOWMARK_NOTIFY_COPY_TEXT":    EventCopy,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			p.Templates[ev] = v
		}
	}
	return p
}

func (p Preferences) message(ev Event, detail string) string {
	tmpl := strings.TrimSpace(p.Templates[ev])
	return strings.TrimSpace(strings.Replace(tmpl, "%s", strings.TrimSpace(detail), 1))
}

// send is replaced in tests.
var send = platform.Notify

// Notifier posts notifications for the events that have been enabled. A nil
// *Notifier is valid and silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New returns a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	n := &Notifier{
		prefs:   Preferences{Title: prefs.Title, Templates: make(map[Event]string, len(prefs.Templates))},
		enabled: make(map[Event]bool),
	}
	for ev, tmpl := range prefs.Templates {
		n.prefs.Templates[ev] = tmpl
	}
	return n
}

// Enable switches one event on or off.
func (n *Notifier) Enable(ev Event, on bool) {
	if n == nil {
		return
	}
	n.enabled[ev] = on
}

// Enabled reports whether ev produces notifications.
func (n *Notifier) Enabled(ev Event) bool {
	return n != nil && n.enabled[ev]
}

// Configure applies the [notify] section of the config file.
func (n *Notifier) Configure(cfg config.Notify) {
	n.Enable(EventCapture, cfg.Capture)
	n.Enable(EventSave, cfg.Save)
	n.Enable(EventCopy, cfg.Copy)
}

// Capture announces a new screenshot, attaching a thumbnail of img.
func (n *Notifier) Capture(detail string, img image.Image) {
	if !n.Enabled(EventCapture) {
		return
	}
	var icon string
	if img != nil && !img.Bounds().Empty() {
		path, err := writeThumbnail(img)
		if err != nil {
			log.Printf("notification thumbnail: %v", err)
		} else {
			icon = path
			defer removeThumbnail(path)
		}
	}
	n.post(EventCapture, detail, icon)
}

// Save announces a written file; the file itself is the icon.
func (n *Notifier) Save(path string) {
	if !n.Enabled(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	var icon string
	if abs, err := filepath.Abs(detail); err == nil {
		detail = abs
		if st, err := os.Stat(abs); err == nil && st.Mode().IsRegular() {
			icon = abs
		}
	}
	n.post(EventSave, detail, icon)
}

// Copy announces a clipboard write.
func (n *Notifier) Copy(detail string) {
	if !n.Enabled(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.post(EventCopy, detail, "")
}

func (n *Notifier) post(ev Event, detail, icon string) {
	body := n.prefs.message(ev, detail)
	if body == "" {
		return
	}
	if err := send(n.prefs.Title, body, platform.Options{IconPath: icon}); err != nil {
		log.Printf("notification %s: %v", ev, err)
	}
}

// writeThumbnail stores a reduced copy of img as a temporary PNG.
func writeThumbnail(img image.Image) (string, error) {
	b := img.Bounds()
	scale := viewport.RecomputeScale(b.Size(), image.Pt(thumbSize, thumbSize))
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))
	thumb := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, b, draw.Src, nil)

	f, err := os.CreateTemp("", "flowmark-thumb-*.png")
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, thumb); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func removeThumbnail(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("remove thumbnail: %v", err)
	}
}
