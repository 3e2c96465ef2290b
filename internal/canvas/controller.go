// Package canvas is the annotation editor state machine. It owns the live
// canvas snapshot and its undo history, turns display-space pointer and key
// events into edits, and exposes a read-only view for rendering.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/example/flowmark/internal/annotation"
	"github.com/example/flowmark/internal/history"
	"github.com/example/flowmark/internal/hittest"
	"github.com/example/flowmark/internal/raster"
	"github.com/example/flowmark/internal/render"
	"github.com/example/flowmark/internal/viewport"
)

// ErrInvalidImage is returned by New for a nil or empty source image.
var ErrInvalidImage = errors.New("invalid source image")

const (
	// DefaultDoubleClickInterval is the longest gap between two presses
	// that still counts as a double click.
	DefaultDoubleClickInterval = 400 * time.Millisecond
	// DoubleClickSlop is how far apart, in display pixels, the presses of a
	// double click may land.
	DoubleClickSlop = 4
	// MinDrag is the distance a shape gesture must exceed on either axis to
	// be kept.
	MinDrag = 5
)

// Controller drives one editing session over a single image.
type Controller struct {
	state   history.State
	history *history.Manager

	tool     Tool
	color    color.RGBA
	selected int
	pending  *annotation.Annotation
	drag     *dragState

	mapper     viewport.Mapper
	maxDisplay image.Point
	block      int

	prompter Prompter
	hits     hittest.Tester

	now         func() time.Time
	dblInterval time.Duration
	lastPress   time.Time
	lastPressAt image.Point
	buttonDown  bool

	historyCap int
	measurer   hittest.TextMeasurer
	rev        uint64
}

type dragState struct {
	index  int
	last   image.Point
	before history.State
	moved  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithPrompter sets the collaborator used for text and number entry.
func WithPrompter(p Prompter) Option { return func(c *Controller) { c.prompter = p } }

// WithColor sets the initial drawing colour.
func WithColor(col color.RGBA) Option { return func(c *Controller) { c.color = col } }

// WithHistoryCapacity bounds the undo stack.
func WithHistoryCapacity(n int) Option { return func(c *Controller) { c.historyCap = n } }

// WithMaxDisplay sets the largest display area the image is fitted into.
// A zero axis is unbounded.
func WithMaxDisplay(p image.Point) Option { return func(c *Controller) { c.maxDisplay = p } }

// WithBlockSize sets the pixelation tile edge.
func WithBlockSize(n int) Option { return func(c *Controller) { c.block = n } }

// WithTextMeasurer replaces the text box used for hit testing.
func WithTextMeasurer(m hittest.TextMeasurer) Option {
	return func(c *Controller) { c.measurer = m }
}

// WithClock replaces time.Now for double-click detection.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// WithDoubleClickInterval sets the double-click window.
func WithDoubleClickInterval(d time.Duration) Option {
	return func(c *Controller) { c.dblInterval = d }
}

// WithOrigin sets where the image's top-left corner sits in display space.
func WithOrigin(p image.Point) Option { return func(c *Controller) { c.mapper.Origin = p } }

// New starts a session on a copy of img.
func New(img *image.RGBA, opts ...Option) (*Controller, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image: %w", ErrInvalidImage)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("image size %dx%d: %w", b.Dx(), b.Dy(), ErrInvalidImage)
	}
	c := &Controller{
		color:       annotation.DefaultColor(),
		selected:    -1,
		block:       raster.BlockSize,
		prompter:    NopPrompter{},
		measurer:    render.Measurer{},
		now:         time.Now,
		dblInterval: DefaultDoubleClickInterval,
	}
	for _, o := range opts {
		o(c)
	}
	if c.prompter == nil {
		c.prompter = NopPrompter{}
	}
	c.hits = hittest.New(c.measurer)
	c.history = history.New(c.historyCap)
	c.state = history.State{Image: copyImage(img), NextCallout: 1}
	c.rescale()
	return c, nil
}

// copyImage returns a zero-origin copy of img.
func copyImage(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

func (c *Controller) rescale() {
	c.mapper.Scale = viewport.RecomputeScale(c.state.Image.Bounds().Size(), c.maxDisplay)
}

// SetMaxDisplay refits the image into a new display area.
func (c *Controller) SetMaxDisplay(p image.Point) {
	c.maxDisplay = p
	c.rescale()
}

// SetOrigin moves the image within display space.
func (c *Controller) SetOrigin(p image.Point) { c.mapper.Origin = p }

// Mapper returns the current display mapping.
func (c *Controller) Mapper() viewport.Mapper { return c.mapper }

// Tool returns the active tool.
func (c *Controller) Tool() Tool { return c.tool }

// Color returns the drawing colour.
func (c *Controller) Color() color.RGBA { return c.color }

// Selection returns the selected index, or -1.
func (c *Controller) Selection() int { return c.selected }

// Busy reports whether a gesture is in progress.
func (c *Controller) Busy() bool { return c.pending != nil || c.drag != nil }

// SetTool switches tools. A drag-move in progress is committed where it
// stands; an unfinished shape is abandoned. Leaving the select tool clears
// the selection.
func (c *Controller) SetTool(t Tool) {
	c.pending = nil
	c.finishDrag()
	c.lastPress = time.Time{}
	if t != ToolSelect {
		c.selected = -1
	}
	c.tool = t
}

// SetColor changes the drawing colour and recolours the selection.
func (c *Controller) SetColor(col color.RGBA) bool {
	c.color = col
	if !c.hasSelection() || c.state.Annotations[c.selected].Color == col {
		return false
	}
	c.save(c.state)
	c.state.Annotations[c.selected].Color = col
	return true
}

// Select sets the selection by index. Out-of-range indices clear it.
func (c *Controller) Select(i int) {
	if i < 0 || i >= len(c.state.Annotations) {
		c.selected = -1
		return
	}
	c.selected = i
}

func (c *Controller) hasSelection() bool {
	return c.selected >= 0 && c.selected < len(c.state.Annotations)
}

// toImage maps a display point into the image, clamped to its bounds.
func (c *Controller) toImage(p image.Point) image.Point {
	q := c.mapper.ToImage(p)
	b := c.state.Image.Bounds()
	q.X = min(max(q.X, b.Min.X), b.Max.X)
	q.Y = min(max(q.Y, b.Min.Y), b.Max.Y)
	return q
}

// Press handles a primary button press at display point p.
func (c *Controller) Press(p image.Point) {
	now := c.now()
	double := c.tool == ToolSelect && !c.lastPress.IsZero() &&
		now.Sub(c.lastPress) <= c.dblInterval && near(p, c.lastPressAt, DoubleClickSlop)
	if double {
		c.lastPress = time.Time{}
		c.DoubleClick(p)
		return
	}
	c.lastPress, c.lastPressAt = now, p

	at := c.toImage(p)
	switch c.tool {
	case ToolSelect:
		i, ok := c.hits.FindAt(at, c.state.Annotations)
		if !ok {
			c.selected = -1
			return
		}
		c.selected = i
		// The image cannot change during a drag, so only the list is copied.
		before := c.state
		before.Annotations = annotation.Clone(c.state.Annotations)
		c.drag = &dragState{index: i, last: at, before: before}
	case ToolText:
		text, ok := c.prompter.PromptText("")
		if !ok || text == "" {
			return
		}
		c.save(c.state)
		c.state.Annotations = append(c.state.Annotations, annotation.NewText(c.color, at, text))
	case ToolCallout:
		c.save(c.state)
		c.state.Annotations = append(c.state.Annotations, annotation.NewCallout(c.color, at, c.state.NextCallout))
		c.state.NextCallout++
	default:
		k, _ := c.tool.kind()
		a := annotation.New(k, c.color, at, at)
		c.pending = &a
	}
}

func near(a, b image.Point, slop int) bool {
	d := a.Sub(b)
	return abs(d.X) <= slop && abs(d.Y) <= slop
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Move handles pointer motion while a gesture is active.
func (c *Controller) Move(p image.Point) {
	at := c.toImage(p)
	switch {
	case c.drag != nil:
		d := at.Sub(c.drag.last)
		if d == (image.Point{}) {
			return
		}
		c.state.Annotations[c.drag.index] = c.state.Annotations[c.drag.index].Translate(d)
		c.drag.last = at
		c.drag.moved = true
	case c.pending != nil:
		c.pending.End = at
	}
}

// Release finishes the active gesture at p.
func (c *Controller) Release(p image.Point) {
	c.Move(p)
	if c.finishDrag() {
		return
	}
	if c.pending == nil {
		return
	}
	a := *c.pending
	c.pending = nil
	switch a.Kind {
	case annotation.BlurRegion:
		c.ApplyBlur(a.Rect())
	case annotation.CropRegion:
		c.ApplyCrop(a.Rect())
	default:
		d := a.End.Sub(a.Start)
		if abs(d.X) <= MinDrag && abs(d.Y) <= MinDrag {
			return
		}
		c.save(c.state)
		c.state.Annotations = append(c.state.Annotations, a)
	}
}

// finishDrag ends a drag-move, recording one history entry if the
// annotation actually moved. It reports whether a drag was in progress.
func (c *Controller) finishDrag() bool {
	d := c.drag
	if d == nil {
		return false
	}
	c.drag = nil
	if d.moved {
		c.save(d.before)
	}
	return true
}

// Cancel abandons any unfinished gesture. A drag in progress is rolled back.
func (c *Controller) Cancel() {
	if c.drag != nil && c.drag.moved {
		c.state.Annotations = c.drag.before.Annotations
	}
	c.drag = nil
	c.pending = nil
}

// DoubleClick edits the text or callout number under p. It only applies to
// the select tool and reports whether anything changed.
func (c *Controller) DoubleClick(p image.Point) bool {
	if c.tool != ToolSelect {
		return false
	}
	c.Cancel()
	i, ok := c.hits.FindAt(c.toImage(p), c.state.Annotations)
	if !ok {
		return false
	}
	c.selected = i
	a := c.state.Annotations[i]
	switch a.Kind {
	case annotation.Text:
		text, ok := c.prompter.PromptText(a.Text)
		if !ok || text == "" || text == a.Text {
			return false
		}
		c.save(c.state)
		c.state.Annotations[i].Text = text
	case annotation.Callout:
		n, ok := c.prompter.PromptNumber(a.Number)
		if !ok || n == a.Number {
			return false
		}
		c.save(c.state)
		c.state.Annotations[i].Number = n
	default:
		return false
	}
	return true
}

// Delete removes the selected annotation.
func (c *Controller) Delete() bool {
	if !c.hasSelection() {
		return false
	}
	c.Cancel()
	c.save(c.state)
	c.state.Annotations = append(c.state.Annotations[:c.selected], c.state.Annotations[c.selected+1:]...)
	c.selected = -1
	return true
}

// Nudge moves the selected annotation by d image pixels.
func (c *Controller) Nudge(d image.Point) bool {
	if !c.hasSelection() || d == (image.Point{}) || c.drag != nil {
		return false
	}
	c.save(c.state)
	c.state.Annotations[c.selected] = c.state.Annotations[c.selected].Translate(d)
	return true
}

// Undo restores the previous snapshot.
func (c *Controller) Undo() bool {
	c.Cancel()
	st, ok := c.history.Undo(c.state)
	if !ok {
		return false
	}
	c.restore(st)
	return true
}

// Redo reapplies the last undone snapshot.
func (c *Controller) Redo() bool {
	c.Cancel()
	st, ok := c.history.Redo(c.state)
	if !ok {
		return false
	}
	c.restore(st)
	return true
}

// save records st as the undo point for the edit about to happen.
func (c *Controller) save(st history.State) {
	c.history.Save(st)
	c.rev++
}

// Revision increases whenever the canvas content changes, including undo
// and redo.
func (c *Controller) Revision() uint64 { return c.rev }

func (c *Controller) restore(st history.State) {
	c.rev++
	c.state = st
	c.selected = -1
	c.rescale()
}

// CanUndo reports whether Undo would change anything.
func (c *Controller) CanUndo() bool { return c.history.CanUndo() }

// CanRedo reports whether Redo would change anything.
func (c *Controller) CanRedo() bool { return c.history.CanRedo() }

// ApplyBlur pixelates the image-space rectangle r. It is ignored when the
// part of r inside the image is degenerate.
func (c *Controller) ApplyBlur(r image.Rectangle) bool {
	c.Cancel()
	if raster.Degenerate(r.Canon().Intersect(c.state.Image.Bounds())) {
		return false
	}
	c.save(c.state)
	return raster.Pixelate(c.state.Image, r, c.block)
}

// ApplyCrop replaces the image with its part inside r and moves annotations
// into the new coordinate space, dropping those left far outside.
func (c *Controller) ApplyCrop(r image.Rectangle) bool {
	c.Cancel()
	if raster.Degenerate(r.Canon().Intersect(c.state.Image.Bounds())) {
		return false
	}
	c.save(c.state)
	img, offset, ok := raster.Crop(c.state.Image, r)
	if !ok {
		return false
	}
	c.state.Image = img
	c.state.Annotations = raster.Reanchor(c.state.Annotations, offset)
	c.selected = -1
	c.rescale()
	return true
}

// AddAnnotation appends a as one undoable action. Blur and crop regions are
// applied to the image instead of being stored. Callouts with no number take
// the next counter value.
func (c *Controller) AddAnnotation(a annotation.Annotation) (bool, error) {
	if err := a.Validate(); err != nil {
		return false, err
	}
	c.Cancel()
	switch a.Kind {
	case annotation.BlurRegion:
		return c.ApplyBlur(a.Rect()), nil
	case annotation.CropRegion:
		return c.ApplyCrop(a.Rect()), nil
	case annotation.Text:
		if a.Text == "" {
			return false, nil
		}
	}
	c.save(c.state)
	if a.Kind == annotation.Callout {
		if a.Number == 0 {
			a.Number = c.state.NextCallout
		}
		if a.Number >= c.state.NextCallout {
			c.state.NextCallout = a.Number + 1
		}
	}
	c.state.Annotations = append(c.state.Annotations, a)
	return true, nil
}

// View is a read-only snapshot for the renderer.
type View struct {
	Image       *image.RGBA
	Annotations []annotation.Annotation
	Selection   int
	Scale       float64
	Origin      image.Point
	Pending     *annotation.Annotation
	Tool        Tool
	Color       color.RGBA
	CanUndo     bool
	CanRedo     bool
}

// View returns the current rendering feed. The annotations and pending
// gesture are copies; the image is shared and must not be modified.
func (c *Controller) View() View {
	v := View{
		Image:       c.state.Image,
		Annotations: annotation.Clone(c.state.Annotations),
		Selection:   -1,
		Scale:       c.mapper.Scale,
		Origin:      c.mapper.Origin,
		Tool:        c.tool,
		Color:       c.color,
		CanUndo:     c.history.CanUndo(),
		CanRedo:     c.history.CanRedo(),
	}
	if c.hasSelection() {
		v.Selection = c.selected
	}
	if c.pending != nil {
		p := *c.pending
		v.Pending = &p
	}
	return v
}

// Frame converts v into the renderer's input.
func (v View) Frame() render.Frame {
	return render.Frame{
		Image:       v.Image,
		Annotations: v.Annotations,
		Selection:   v.Selection,
		Pending:     v.Pending,
		Scale:       v.Scale,
	}
}

// State returns a deep copy of the live snapshot.
func (c *Controller) State() history.State { return c.state.Clone() }

// Export flattens the image and all annotations at full resolution.
func (c *Controller) Export() *image.RGBA {
	return render.Composite(c.state.Image, c.state.Annotations)
}
