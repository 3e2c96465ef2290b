package ui

import (
	"fmt"
	"image"
	"log"
	"unicode"

	"golang.org/x/mobile/event/key"

	"github.com/example/flowmark/internal/annotation"
	"github.com/example/flowmark/internal/canvas"
	"github.com/example/flowmark/internal/output"
	"github.com/example/flowmark/internal/platform"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

const shortcutMods = key.ModControl | key.ModShift | key.ModAlt | key.ModMeta

// shortcutOf normalises e so letter keys match regardless of case.
func shortcutOf(e key.Event) KeyShortcut {
	sc := KeyShortcut{Code: e.Code, Modifiers: e.Modifiers & shortcutMods}
	switch {
	case e.Rune > 0 && unicode.IsPrint(e.Rune):
		sc.Rune = unicode.ToLower(e.Rune)
		sc.Code = 0
	case e.Code >= key.CodeA && e.Code <= key.CodeZ:
		// Drivers differ on the rune reported while Control is held.
		sc.Rune = 'a' + rune(e.Code-key.CodeA)
		sc.Code = 0
	}
	return sc
}

// buildChrome creates the toolbar, the shortcut bar and the app-level key
// bindings. Editing keys are left to the controller.
func (a *App) buildChrome() {
	labels := []string{platform.AppName}
	for _, t := range canvas.Tools() {
		t := t
		b := &button{
			label:    toolLabel(t),
			selected: func(v canvas.View) bool { return v.Tool == t },
			activate: func() { a.ctrl.SetTool(t) },
		}
		a.buttons = append(a.buttons, b)
		labels = append(labels, b.label)
	}
	for _, pc := range annotation.Palette() {
		col := pc.Color
		a.buttons = append(a.buttons, &button{
			label:    pc.Name,
			kind:     buttonSwatch,
			swatch:   col,
			selected: func(v canvas.View) bool { return v.Color == col },
			activate: func() { a.ctrl.SetColor(col) },
		})
	}
	for _, b := range []*button{
		{label: "Undo", enabled: func(v canvas.View) bool { return v.CanUndo }, activate: func() { a.ctrl.Undo() }},
		{label: "Redo", enabled: func(v canvas.View) bool { return v.CanRedo }, activate: func() { a.ctrl.Redo() }},
		{label: "Save", activate: a.save},
		{label: "Copy", activate: a.copy},
	} {
		a.buttons = append(a.buttons, b)
		labels = append(labels, b.label)
	}
	a.toolbarW = toolbarWidth(labels)

	a.shortcuts = []*button{
		{label: "^Z Undo", enabled: func(v canvas.View) bool { return v.CanUndo }, activate: func() { a.ctrl.Undo() }},
		{label: "^Y Redo", enabled: func(v canvas.View) bool { return v.CanRedo }, activate: func() { a.ctrl.Redo() }},
		{label: "Del Delete", enabled: func(v canvas.View) bool { return v.Selection >= 0 }, activate: func() { a.ctrl.Delete() }},
		{label: "^S Save", activate: a.save},
		{label: "^C Copy", activate: a.copy},
		{label: "^Q Quit", activate: a.quit},
	}

	a.keys = map[KeyShortcut]func(){
		{Rune: 's', Modifiers: key.ModControl}: a.save,
		{Rune: 'c', Modifiers: key.ModControl}: a.copy,
		{Rune: 'q', Modifiers: key.ModControl}: a.quit,
		{Rune: 'w', Modifiers: key.ModControl}: a.quit,
	}
}

// toolbarRects stacks tools, swatches and actions down bar and returns the
// y just below the last one.
func (a *App) toolbarRects(bar image.Rectangle) ([]image.Rectangle, int) {
	tools := len(canvas.Tools())
	swatches := len(annotation.Palette())
	rects, y := stackButtons(bar, bar.Min.Y+padding, tools)
	sw, y := gridSwatches(bar, y+padding, swatches)
	rects = append(rects, sw...)
	acts, y := stackButtons(bar, y+padding, len(a.buttons)-tools-swatches)
	return append(rects, acts...), y
}

// layoutChrome positions the buttons for the current layout.
func (a *App) layoutChrome() {
	rects, _ := a.toolbarRects(a.layout.Toolbar)
	for i, b := range a.buttons {
		b.rect = rects[i]
	}
	for i, r := range rowButtons(a.layout.Shortcuts, a.shortcutLabels()) {
		a.shortcuts[i].rect = r
	}
}

func (a *App) shortcutLabels() []string {
	labels := make([]string, len(a.shortcuts))
	for i, s := range a.shortcuts {
		labels[i] = s.label
	}
	return labels
}

// minWindow is the smallest window showing the whole toolbar and shortcut
// bar.
func (a *App) minWindow() image.Point {
	_, h := a.toolbarRects(image.Rect(0, 0, a.toolbarW, 0))
	row := rowButtons(image.Rect(0, 0, 0, shortcutHeight), a.shortcutLabels())
	w := a.toolbarW
	if n := len(row); n > 0 && row[n-1].Max.X+padding > w {
		w = row[n-1].Max.X + padding
	}
	return image.Pt(w, h+statusHeight+shortcutHeight)
}

// save writes the flattened image. An explicit output path is reused;
// otherwise every save gets a new generated name.
func (a *App) save() {
	img := a.ctrl.Export()
	path := a.output
	if path == "" {
		dir := a.saveDir
		if dir == "" {
			d, err := output.DefaultDir()
			if err != nil {
				log.Printf("save: %v", err)
				a.flash("save failed")
				return
			}
			dir = d
		}
		path = output.NewPath(dir, a.now())
	}
	if err := a.writePNG(path, img); err != nil {
		log.Printf("save: %v", err)
		a.flash("save failed")
		return
	}
	a.lastSaved = path
	a.flash(fmt.Sprintf("saved %s", path))
	if a.notifier != nil {
		a.notifier.Save(path)
	}
}

func (a *App) copy() {
	img := a.ctrl.Export()
	if err := a.copyImage(img); err != nil {
		log.Printf("copy: %v", err)
		a.flash("copy failed")
		return
	}
	a.flash("image copied to clipboard")
	if a.notifier != nil {
		a.notifier.Copy(describe(img))
	}
}

func describe(img image.Image) string {
	b := img.Bounds()
	return fmt.Sprintf("%dx%d image", b.Dx(), b.Dy())
}

func (a *App) quit() { a.closed = true }
