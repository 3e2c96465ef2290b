package history

import (
	"image"
	"image/color"
	"testing"

	"github.com/example/flowmark/internal/annotation"
)

func newState(fill uint8) State {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = fill
	}
	return State{Image: img, NextCallout: 1}
}

func TestCloneIsDeep(t *testing.T) {
	s := newState(10)
	s.Annotations = []annotation.Annotation{annotation.NewText(annotation.DefaultColor(), image.Pt(1, 1), "a")}
	c := s.Clone()
	if !s.Equal(c) {
		t.Fatalf("clone not equal to source")
	}
	c.Image.Pix[0] = 99
	c.Annotations[0].Text = "b"
	if s.Image.Pix[0] != 10 || s.Annotations[0].Text != "a" {
		t.Fatalf("clone shares storage with source")
	}
	if s.Equal(c) {
		t.Fatalf("modified clone still equal")
	}
}

func TestUndoRedoEmptyReportsFalse(t *testing.T) {
	m := New(5)
	if _, ok := m.Undo(newState(0)); ok {
		t.Fatalf("undo on empty history succeeded")
	}
	if _, ok := m.Redo(newState(0)); ok {
		t.Fatalf("redo on empty history succeeded")
	}
}

// apply simulates a user action: save, then mutate the live state.
func apply(m *Manager, live State, i int) State {
	m.Save(live)
	next := live.Clone()
	next.Image.SetRGBA(i%4, i/4%4, color.RGBA{uint8(i), 1, 2, 255})
	next.Annotations = append(next.Annotations, annotation.NewCallout(annotation.DefaultColor(), image.Pt(i, i), next.NextCallout))
	next.NextCallout++
	return next
}

func TestUndoRedoRoundTrip(t *testing.T) {
	const n = 7
	m := New(20)
	initial := newState(0)
	live := initial.Clone()
	for i := 0; i < n; i++ {
		live = apply(m, live, i)
	}
	final := live.Clone()
	for i := 0; i < n; i++ {
		var ok bool
		live, ok = m.Undo(live)
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
	}
	if !live.Equal(initial) {
		t.Fatalf("after %d undos state differs from initial", n)
	}
	if _, ok := m.Undo(live); ok {
		t.Fatalf("extra undo succeeded")
	}
	for i := 0; i < n; i++ {
		var ok bool
		live, ok = m.Redo(live)
		if !ok {
			t.Fatalf("redo %d failed", i)
		}
	}
	if !live.Equal(final) {
		t.Fatalf("after %d redos state differs from final", n)
	}
}

func TestSaveClearsRedo(t *testing.T) {
	m := New(10)
	live := apply(m, newState(0), 1)
	live, _ = m.Undo(live)
	if !m.CanRedo() {
		t.Fatalf("expected redo entry")
	}
	apply(m, live, 2)
	if m.CanRedo() {
		t.Fatalf("save did not clear redo")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	m := New(3)
	live := newState(0)
	for i := 0; i < 5; i++ {
		live = apply(m, live, i)
	}
	if u, _ := m.Len(); u != 3 {
		t.Fatalf("undo depth = %d, want 3", u)
	}
	for m.CanUndo() {
		live, _ = m.Undo(live)
	}
	// The two oldest snapshots were evicted, so the oldest reachable one has
	// two callouts already.
	if got := len(live.Annotations); got != 2 {
		t.Fatalf("oldest reachable state has %d annotations, want 2", got)
	}
	if New(0).Capacity() != DefaultCapacity {
		t.Fatalf("expected default capacity")
	}
}
