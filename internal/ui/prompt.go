package ui

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// maxPromptLen caps prompt input in runes.
const maxPromptLen = 200

// lineEditor is the single-line input behind a modal prompt.
type lineEditor struct {
	text    string
	numeric bool
}

// handle applies e and reports whether the prompt finished and, if so,
// whether it was confirmed.
func (ed *lineEditor) handle(e key.Event) (done, ok bool) {
	if e.Direction == key.DirRelease {
		return false, false
	}
	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		return true, true
	case key.CodeEscape:
		return true, false
	case key.CodeDeleteBackspace:
		if _, n := utf8.DecodeLastRuneInString(ed.text); n > 0 {
			ed.text = ed.text[:len(ed.text)-n]
		}
		return false, false
	}
	if e.Modifiers&(key.ModControl|key.ModAlt|key.ModMeta) != 0 {
		return false, false
	}
	r := e.Rune
	if r < 0 || !unicode.IsPrint(r) || utf8.RuneCountInString(ed.text) >= maxPromptLen {
		return false, false
	}
	if ed.numeric && !unicode.IsDigit(r) {
		return false, false
	}
	ed.text += string(r)
	return false, false
}

type promptView struct {
	label string
	text  string
}

// PromptText asks for annotation text in a modal overlay.
func (a *App) PromptText(initial string) (string, bool) {
	ed := &lineEditor{text: initial}
	if !a.runPrompt("Text", ed) {
		return "", false
	}
	return ed.text, true
}

// PromptNumber asks for a positive callout number.
func (a *App) PromptNumber(initial int) (int, bool) {
	ed := &lineEditor{numeric: true}
	if initial > 0 {
		ed.text = strconv.Itoa(initial)
	}
	if !a.runPrompt("Number", ed) {
		return 0, false
	}
	n, err := strconv.Atoi(ed.text)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// runPrompt pumps window events until the editor finishes. Pointer input
// is swallowed while the prompt is up.
func (a *App) runPrompt(label string, ed *lineEditor) bool {
	if a.events == nil {
		return false
	}
	a.prompt = &promptView{label: label, text: ed.text}
	defer func() {
		a.prompt = nil
		a.paint()
	}()
	a.paint()
	for {
		switch e := a.events.NextEvent().(type) {
		case key.Event:
			done, ok := ed.handle(e)
			if done {
				return ok
			}
			a.prompt.text = ed.text
			a.paint()
		case paint.Event:
			a.paint()
		case size.Event:
			a.resize(sizeOf(e))
			a.paint()
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				a.closed = true
				return false
			}
		}
	}
}
