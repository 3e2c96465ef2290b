// Package ui hosts the annotation canvas in a shiny window: toolbar,
// palette, scaled preview, modal prompts and the save and copy actions.
package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/flowmark/internal/annotation"
	"github.com/example/flowmark/internal/canvas"
	"github.com/example/flowmark/internal/clipboard"
	"github.com/example/flowmark/internal/output"
	"github.com/example/flowmark/internal/platform"
	"github.com/example/flowmark/internal/render"
	"github.com/example/flowmark/internal/theme"
)

// messageDuration is how long a status toast stays up.
const messageDuration = 2 * time.Second

// Notifier is told about finished saves and copies.
type Notifier interface {
	Save(path string)
	Copy(detail string)
}

// eventSource is the part of screen.Window the event loop reads from.
type eventSource interface {
	NextEvent() interface{}
	Send(event interface{})
}

// App is the desktop editor around one canvas controller.
type App struct {
	ctrl       *canvas.Controller
	theme      *theme.Theme
	overlay    render.Overlay
	title      string
	output     string
	saveDir    string
	notifier   Notifier
	maxDisplay image.Point
	canvasOpts []canvas.Option
	onClose    func()
	closeOnce  sync.Once

	copyImage func(image.Image) error
	writePNG  func(string, image.Image) error
	now       func() time.Time

	events  eventSource
	present func(paintState)
	jobs    chan<- func()

	toolbarW      int
	layout        layout
	buttons       []*button
	shortcuts     []*button
	keys          map[KeyShortcut]func()
	hover         int
	hoverShortcut int

	view          canvas.View
	preview       *image.RGBA
	dirty         bool
	busy          bool
	resizePending bool
	closed        bool
	prompt        *promptView
	message       string
	messageUntil  time.Time
	lastSaved     string
}

// Option configures an App.
type Option func(*App)

// WithTheme sets the chrome and overlay colours.
func WithTheme(th *theme.Theme) Option { return func(a *App) { a.theme = th } }

// WithOutput fixes the path Save writes to. Without it each save gets a
// fresh generated name in the save directory.
func WithOutput(path string) Option { return func(a *App) { a.output = path } }

// WithSaveDir sets where generated file names are placed.
func WithSaveDir(dir string) Option { return func(a *App) { a.saveDir = dir } }

// WithNotifier reports saves and copies.
func WithNotifier(n Notifier) Option { return func(a *App) { a.notifier = n } }

// WithMaxDisplay bounds the initial preview size.
func WithMaxDisplay(p image.Point) Option { return func(a *App) { a.maxDisplay = p } }

// WithCanvasOptions passes options through to the controller.
func WithCanvasOptions(opts ...canvas.Option) Option {
	return func(a *App) { a.canvasOpts = append(a.canvasOpts, opts...) }
}

// WithTitle sets the detail shown after the program name in the title bar.
func WithTitle(title string) Option { return func(a *App) { a.title = title } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *App) { a.onClose = fn } }

// New builds the editor for img. The window is not opened until Run.
func New(img *image.RGBA, opts ...Option) (*App, error) {
	a := &App{
		theme:         theme.Default(),
		maxDisplay:    image.Pt(1280, 800),
		copyImage:     clipboard.WriteImage,
		writePNG:      output.WritePNG,
		now:           time.Now,
		hover:         -1,
		hoverShortcut: -1,
		dirty:         true,
	}
	for _, o := range opts {
		o(a)
	}
	a.overlay = overlayFromTheme(a.theme)

	copts := append([]canvas.Option{
		canvas.WithPrompter(a),
		canvas.WithMaxDisplay(a.maxDisplay),
	}, a.canvasOpts...)
	ctrl, err := canvas.New(img, copts...)
	if err != nil {
		return nil, err
	}
	a.ctrl = ctrl

	a.buildChrome()
	disp := ctrl.Mapper().DisplayRect(ctrl.View().Image.Bounds().Size()).Size()
	sz, lo := windowSize(disp, a.toolbarW), a.minWindow()
	if sz.X < lo.X {
		sz.X = lo.X
	}
	if sz.Y < lo.Y {
		sz.Y = lo.Y
	}
	a.resize(sz)
	return a, nil
}

// Controller exposes the canvas being edited.
func (a *App) Controller() *canvas.Controller { return a.ctrl }

// LastSaved is the path of the most recent successful save.
func (a *App) LastSaved() string { return a.lastSaved }

// WindowTitle joins the program name with non-empty detail parts.
func WindowTitle(parts ...string) string {
	out := []string{platform.AppName}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " - ")
}

// Run executes the UI loop using shiny's driver.
func (a *App) Run() error {
	var err error
	driver.Main(func(s screen.Screen) { err = a.Main(s) })
	return err
}

// Main runs the window on s until it is closed.
func (a *App) Main(s screen.Screen) error {
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Width:  a.layout.Window.X,
		Height: a.layout.Window.Y,
		Title:  WindowTitle(a.title),
	})
	if err != nil {
		return fmt.Errorf("new window: %w", err)
	}
	defer w.Release()
	defer a.notifyClose()
	a.events = w

	p := newPainter(a.theme)
	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			b, err := s.NewBuffer(st.layout.Window)
			if err != nil {
				log.Printf("new buffer: %v", err)
			} else {
				if p.draw(ctx, b.RGBA(), st) {
					w.Upload(image.Point{}, b, b.Bounds())
					w.Publish()
				}
				b.Release()
			}
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)
	a.present = func(st paintState) {
		paintMu.Lock()
		if paintCancel != nil && dropCount < frameDropThreshold {
			paintCancel()
			dropCount++
		}
		paintMu.Unlock()
		select {
		case paintCh <- st:
		default:
			select {
			case <-paintCh:
			default:
			}
			paintCh <- st
		}
	}
	defer func() { a.present = nil }()

	jobs := make(chan func(), 1)
	go runJobs(jobs, func() { w.Send(jobDone{}) })
	defer close(jobs)
	a.jobs = jobs

	a.paint()
	for a.handleEvent(w.NextEvent()) {
	}
	paintMu.Lock()
	if paintCancel != nil {
		paintCancel()
	}
	paintMu.Unlock()
	return nil
}

func (a *App) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

func sizeOf(e size.Event) image.Point { return image.Pt(e.WidthPx, e.HeightPx) }

// handleEvent dispatches one window event and reports whether the loop
// should keep running.
func (a *App) handleEvent(e interface{}) bool {
	switch e := e.(type) {
	case lifecycle.Event:
		if e.To == lifecycle.StageDead {
			return false
		}
	case size.Event:
		a.resize(sizeOf(e))
		a.paint()
	case paint.Event:
		a.paint()
	case jobDone:
		a.busy = false
		if a.resizePending {
			a.resize(a.layout.Window)
		}
		a.invalidate()
		a.paint()
	case key.Event:
		if !a.busy {
			a.handleKey(e)
		}
	case mouse.Event:
		if !a.busy {
			a.handleMouse(e)
		}
	}
	return !a.closed
}

// resize lays the chrome out for a window of sz and refits the preview.
func (a *App) resize(sz image.Point) {
	a.layout = computeLayout(sz, a.toolbarW)
	a.layoutChrome()
	if a.busy {
		a.resizePending = true
		return
	}
	a.resizePending = false
	a.ctrl.SetOrigin(a.layout.Canvas.Min)
	if c := a.layout.Canvas.Size(); c.X > 0 && c.Y > 0 {
		a.ctrl.SetMaxDisplay(c)
	}
	a.invalidate()
}

func (a *App) invalidate() { a.dirty = true }

func (a *App) handleMouse(e mouse.Event) {
	p := image.Pt(int(e.X), int(e.Y))
	if a.message != "" && a.now().Before(a.messageUntil) && e.Direction == mouse.DirPress {
		a.messageUntil = time.Time{}
		a.paint()
		return
	}
	gesture := a.ctrl.Busy()
	if !gesture && !p.In(a.layout.Canvas) {
		a.handleChrome(p, e)
		return
	}
	if a.hover >= 0 || a.hoverShortcut >= 0 {
		a.hover, a.hoverShortcut = -1, -1
		a.paint()
	}
	if gesture && e.Direction == mouse.DirRelease && e.Button == mouse.ButtonLeft && rasterTool(a.ctrl.Tool()) {
		a.submit(func() { a.ctrl.HandleMouse(e) })
		return
	}
	if a.ctrl.HandleMouse(e) {
		a.invalidate()
		a.paint()
	}
}

func rasterTool(t canvas.Tool) bool { return t == canvas.ToolBlur || t == canvas.ToolCrop }

func (a *App) handleChrome(p image.Point, e mouse.Event) {
	press := e.Direction == mouse.DirPress && e.Button == mouse.ButtonLeft
	hover, hoverShortcut := hitButton(a.buttons, p), hitButton(a.shortcuts, p)
	changed := hover != a.hover || hoverShortcut != a.hoverShortcut
	a.hover, a.hoverShortcut = hover, hoverShortcut
	switch {
	case press && hover >= 0:
		a.activate(a.buttons[hover])
	case press && hoverShortcut >= 0:
		a.activate(a.shortcuts[hoverShortcut])
	case changed:
		a.paint()
	}
}

func (a *App) activate(b *button) {
	if b.enabled != nil && !b.enabled(a.view) {
		return
	}
	if b.activate != nil {
		b.activate()
	}
	a.invalidate()
	a.paint()
}

func (a *App) handleKey(e key.Event) {
	if e.Direction == key.DirRelease {
		return
	}
	if fn, ok := a.keys[shortcutOf(e)]; ok {
		fn()
		a.invalidate()
		a.paint()
		return
	}
	if a.ctrl.HandleKey(e) {
		a.invalidate()
		a.paint()
	}
}

// flash shows msg as a toast and schedules the repaint that clears it.
func (a *App) flash(msg string) {
	a.message = msg
	a.messageUntil = a.now().Add(messageDuration)
	log.Print(msg)
	if ev := a.events; ev != nil {
		time.AfterFunc(messageDuration, func() { ev.Send(paint.Event{}) })
	}
}

// paint refreshes the preview when needed and hands a snapshot to the
// painter. While a job runs the previous preview is reused.
func (a *App) paint() {
	if !a.busy && a.dirty {
		a.view = a.ctrl.View()
		a.preview = render.Preview(a.view.Frame(), a.overlay)
		a.dirty = false
	}
	if a.present == nil {
		return
	}
	a.present(a.snapshot())
}

func (a *App) snapshot() paintState {
	st := paintState{
		layout:  a.layout,
		preview: a.preview,
		status:  a.statusLine(),
	}
	if a.prompt != nil {
		p := *a.prompt
		st.prompt = &p
	}
	for i, b := range a.buttons {
		st.buttons = append(st.buttons, b.view(a.view, i == a.hover))
	}
	for i, b := range a.shortcuts {
		st.shortcuts = append(st.shortcuts, b.view(a.view, i == a.hoverShortcut))
	}
	if a.message != "" && a.now().Before(a.messageUntil) {
		st.message = a.message
	}
	return st
}

func (a *App) statusLine() string {
	v := a.view
	parts := []string{
		toolLabel(v.Tool)[2:],
		colorName(v.Color),
		fmt.Sprintf("%.0f%%", v.Scale*100),
	}
	if v.Image != nil {
		b := v.Image.Bounds()
		parts = append(parts, fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
	}
	if a.busy {
		parts = append(parts, "working...")
	}
	return strings.Join(parts, "  |  ")
}

func colorName(c color.RGBA) string {
	for _, pc := range annotation.Palette() {
		if pc.Color == c {
			return pc.Name
		}
	}
	return annotation.FormatColor(c)
}
