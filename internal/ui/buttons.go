package ui

import (
	"image"
	"image/color"

	"github.com/example/flowmark/internal/canvas"
)

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
	StateDisabled
)

type buttonKind int

const (
	buttonLabel buttonKind = iota
	buttonSwatch
)

// button is an interactive chrome element. The predicates read a View
// snapshot so they never touch the controller while a job runs.
type button struct {
	label    string
	kind     buttonKind
	swatch   color.RGBA
	rect     image.Rectangle
	selected func(canvas.View) bool
	enabled  func(canvas.View) bool
	activate func()
}

// buttonView is everything the painter needs to draw one button. It is a
// comparable value so it can key the render cache.
type buttonView struct {
	label  string
	kind   buttonKind
	swatch color.RGBA
	rect   image.Rectangle
	state  ButtonState
}

func (b *button) view(v canvas.View, hover bool) buttonView {
	st := StateDefault
	switch {
	case b.enabled != nil && !b.enabled(v):
		st = StateDisabled
	case b.selected != nil && b.selected(v):
		st = StatePressed
	case hover:
		st = StateHover
	}
	return buttonView{label: b.label, kind: b.kind, swatch: b.swatch, rect: b.rect, state: st}
}

func hitButton(buttons []*button, p image.Point) int {
	for i, b := range buttons {
		if p.In(b.rect) {
			return i
		}
	}
	return -1
}

func toolLabel(t canvas.Tool) string {
	name := []rune(t.String())
	if len(name) > 0 && name[0] >= 'a' && name[0] <= 'z' {
		name[0] -= 'a' - 'A'
	}
	return string(t.Shortcut()-'a'+'A') + ":" + string(name)
}
