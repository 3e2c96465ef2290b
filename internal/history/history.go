// Package history keeps bounded undo and redo stacks of full canvas
// snapshots.
package history

import (
	"bytes"
	"image"
	"slices"

	"github.com/example/flowmark/internal/annotation"
)

// DefaultCapacity bounds the undo stack when no capacity is configured.
const DefaultCapacity = 50

// State is one snapshot of the canvas: base image, annotations in z-order
// (first is bottom) and the next callout number.
type State struct {
	Image       *image.RGBA
	Annotations []annotation.Annotation
	NextCallout int
}

// Clone deep-copies s including the pixel buffer.
func (s State) Clone() State {
	out := State{
		Annotations: annotation.Clone(s.Annotations),
		NextCallout: s.NextCallout,
	}
	if s.Image != nil {
		out.Image = &image.RGBA{
			Pix:    bytes.Clone(s.Image.Pix),
			Stride: s.Image.Stride,
			Rect:   s.Image.Rect,
		}
	}
	return out
}

// Equal reports whether both snapshots hold the same pixels, annotations and
// counter.
func (s State) Equal(o State) bool {
	if s.NextCallout != o.NextCallout {
		return false
	}
	if !slices.Equal(s.Annotations, o.Annotations) {
		return false
	}
	if s.Image == nil || o.Image == nil {
		return s.Image == o.Image
	}
	return s.Image.Rect == o.Image.Rect && bytes.Equal(s.Image.Pix, o.Image.Pix)
}

// Manager holds the undo and redo stacks. Each entry is an independent deep
// copy so later edits to the live state never leak into history.
type Manager struct {
	capacity int
	undo     []State
	redo     []State
}

// New returns a Manager keeping at most capacity undo entries.
func New(capacity int) *Manager {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Manager{capacity: capacity}
}

// Capacity reports the undo bound.
func (m *Manager) Capacity() int { return m.capacity }

// Save records current before a user action. The redo stack is cleared and
// the oldest undo entry is evicted when the bound is exceeded.
func (m *Manager) Save(current State) {
	m.undo = append(m.undo, current.Clone())
	if over := len(m.undo) - m.capacity; over > 0 {
		clear(m.undo[:over])
		m.undo = m.undo[over:]
	}
	clear(m.redo)
	m.redo = m.redo[:0]
}

// Undo moves current onto the redo stack and returns the previous snapshot.
// It reports false when there is nothing to undo.
func (m *Manager) Undo(current State) (State, bool) {
	if len(m.undo) == 0 {
		return State{}, false
	}
	prev := m.undo[len(m.undo)-1]
	m.undo[len(m.undo)-1] = State{}
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, current.Clone())
	return prev, true
}

// Redo moves current onto the undo stack and returns the next snapshot. It
// reports false when there is nothing to redo.
func (m *Manager) Redo(current State) (State, bool) {
	if len(m.redo) == 0 {
		return State{}, false
	}
	next := m.redo[len(m.redo)-1]
	m.redo[len(m.redo)-1] = State{}
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, current.Clone())
	return next, true
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Len returns the depth of both stacks.
func (m *Manager) Len() (undo, redo int) { return len(m.undo), len(m.redo) }

// Clear drops all history.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}
