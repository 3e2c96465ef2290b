package canvas

import (
	"image"
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
)

// HandleMouse feeds a window mouse event into the controller. Only the left
// button drives gestures. It reports whether the event was used.
func (c *Controller) HandleMouse(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		c.buttonDown = true
		c.Press(p)
		return true
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft || !c.buttonDown {
			return false
		}
		c.buttonDown = false
		c.Release(p)
		return true
	case mouse.DirNone:
		if !c.buttonDown || !c.Busy() {
			return false
		}
		c.Move(p)
		return true
	}
	return false
}

// HandleKey applies editing shortcuts. It reports whether the controller
// state changed.
func (c *Controller) HandleKey(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	ctrl := e.Modifiers&key.ModControl != 0
	shift := e.Modifiers&key.ModShift != 0
	switch e.Code {
	case key.CodeDeleteForward, key.CodeDeleteBackspace:
		return c.Delete()
	case key.CodeEscape:
		changed := c.Busy() || c.selected >= 0
		c.Cancel()
		c.selected = -1
		return changed
	case key.CodeZ:
		if ctrl && shift {
			return c.Redo()
		}
		if ctrl {
			return c.Undo()
		}
	case key.CodeY:
		if ctrl {
			return c.Redo()
		}
	case key.CodeLeftArrow, key.CodeRightArrow, key.CodeUpArrow, key.CodeDownArrow:
		return c.Nudge(nudgeDelta(e.Code, shift))
	}
	if ctrl || e.Modifiers&(key.ModAlt|key.ModMeta) != 0 {
		return false
	}
	r := unicode.ToLower(e.Rune)
	for _, t := range Tools() {
		if t.Shortcut() == r {
			if t == c.tool {
				return false
			}
			c.SetTool(t)
			return true
		}
	}
	return false
}

func nudgeDelta(code key.Code, shift bool) image.Point {
	step := 1
	if shift {
		step = 10
	}
	switch code {
	case key.CodeLeftArrow:
		return image.Pt(-step, 0)
	case key.CodeRightArrow:
		return image.Pt(step, 0)
	case key.CodeUpArrow:
		return image.Pt(0, -step)
	case key.CodeDownArrow:
		return image.Pt(0, step)
	}
	return image.Point{}
}
