// Package script replays a YAML list of annotation operations against a
// canvas controller so edits can be applied without a window.
//
//	color: red
//	ops:
//	  - {op: arrow, from: [10, 10], to: [90, 90]}
//	  - {op: text, at: [20, 40], text: "Click here", color: blue}
//	  - {op: callout, at: [50, 50]}
//	  - {op: blur, from: [0, 0], to: [40, 20]}
//	  - {op: move, at: [50, 50], by: [5, 0]}
package script

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/flowmark/internal/annotation"
	"github.com/example/flowmark/internal/canvas"
)

// ErrInvalidOp reports an operation that is unknown or missing arguments.
var ErrInvalidOp = errors.New("invalid operation")

// ErrScaled is returned by Run when the controller does not map display
// points one to one onto the image.
var ErrScaled = errors.New("controller is not at scale 1")

// Point is an [x, y] pair in image pixels.
type Point [2]int

func (p Point) pt() image.Point { return image.Pt(p[0], p[1]) }

// Op is one scripted edit.
type Op struct {
	Op     string `yaml:"op"`
	From   *Point `yaml:"from,omitempty"`
	To     *Point `yaml:"to,omitempty"`
	At     *Point `yaml:"at,omitempty"`
	By     *Point `yaml:"by,omitempty"`
	Text   string `yaml:"text,omitempty"`
	Number int    `yaml:"number,omitempty"`
	Color  string `yaml:"color,omitempty"`
}

// Script is a parsed operation list with an optional default colour.
type Script struct {
	Color string `yaml:"color,omitempty"`
	Ops   []Op   `yaml:"ops"`
}

// Result counts what happened during Run. Skipped operations were valid
// but changed nothing, such as a too-small drag or an undo with no history.
type Result struct {
	Applied int
	Skipped int
}

// Parse decodes and validates a script.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode writes s as YAML.
func (s *Script) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode script: %w", err)
	}
	return enc.Close()
}

// Validate checks every operation and the colours it names.
func (s *Script) Validate() error {
	if s.Color != "" {
		if _, err := annotation.ParseColor(s.Color); err != nil {
			return err
		}
	}
	for i, op := range s.Ops {
		if err := op.validate(); err != nil {
			return fmt.Errorf("op %d (%s): %w", i, op.Op, err)
		}
	}
	return nil
}

func (op Op) name() string { return strings.ToLower(strings.TrimSpace(op.Op)) }

func (op Op) validate() error {
	if op.Color != "" {
		if _, err := annotation.ParseColor(op.Color); err != nil {
			return err
		}
	}
	need := func(fields ...string) error {
		for _, f := range fields {
			var missing bool
			switch f {
			case "from":
				missing = op.From == nil
			case "to":
				missing = op.To == nil
			case "at":
				missing = op.At == nil
			case "by":
				missing = op.By == nil
			case "text":
				missing = op.Text == ""
			}
			if missing {
				return fmt.Errorf("missing %s: %w", f, ErrInvalidOp)
			}
		}
		return nil
	}
	switch op.name() {
	case "undo", "redo", "delete":
		return nil
	case "select":
		return need("at")
	case "move":
		return need("at", "by")
	}
	k, err := annotation.ParseKind(op.Op)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidOp)
	}
	switch k {
	case annotation.Text:
		return need("at", "text")
	case annotation.Callout:
		if op.Number < 0 {
			return fmt.Errorf("negative callout number: %w", ErrInvalidOp)
		}
		return need("at")
	default:
		return need("from", "to")
	}
}

// Run applies s to ctrl in order. Shapes, blur, crop, selection and moves
// are driven through pointer gestures; text and numbered callouts are added
// directly. It stops at the first operation that fails.
func Run(ctrl *canvas.Controller, s *Script) (Result, error) {
	var res Result
	if m := ctrl.Mapper(); m.Scale != 1 || m.Origin != (image.Point{}) {
		return res, ErrScaled
	}
	base := ctrl.Color()
	if s.Color != "" {
		c, err := annotation.ParseColor(s.Color)
		if err != nil {
			return res, err
		}
		base = c
	}
	for i, op := range s.Ops {
		before := ctrl.Revision()
		if err := apply(ctrl, op, base); err != nil {
			return res, fmt.Errorf("op %d (%s): %w", i, op.Op, err)
		}
		if ctrl.Revision() != before {
			res.Applied++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}

func apply(ctrl *canvas.Controller, op Op, base color.RGBA) error {
	if err := op.validate(); err != nil {
		return err
	}
	col := base
	if op.Color != "" {
		col, _ = annotation.ParseColor(op.Color)
	}
	switch op.name() {
	case "undo":
		ctrl.Undo()
		return nil
	case "redo":
		ctrl.Redo()
		return nil
	case "delete":
		ctrl.Delete()
		return nil
	case "select":
		ctrl.SetTool(canvas.ToolSelect)
		ctrl.Press(op.At.pt())
		ctrl.Release(op.At.pt())
		return nil
	case "move":
		from := op.At.pt()
		to := from.Add(op.By.pt())
		ctrl.SetTool(canvas.ToolSelect)
		ctrl.Press(from)
		ctrl.Move(to)
		ctrl.Release(to)
		return nil
	}

	k, _ := annotation.ParseKind(op.Op)
	switch k {
	case annotation.Text:
		ctrl.SetTool(canvas.ToolText)
		ctrl.SetColor(col)
		_, err := ctrl.AddAnnotation(annotation.NewText(col, op.At.pt(), op.Text))
		return err
	case annotation.Callout:
		ctrl.SetTool(canvas.ToolCallout)
		ctrl.SetColor(col)
		if op.Number > 0 {
			_, err := ctrl.AddAnnotation(annotation.NewCallout(col, op.At.pt(), op.Number))
			return err
		}
		ctrl.Press(op.At.pt())
		ctrl.Release(op.At.pt())
		return nil
	}
	tool, err := canvas.ParseTool(op.Op)
	if err != nil {
		return err
	}
	ctrl.SetTool(tool)
	ctrl.SetColor(col)
	from, to := op.From.pt(), op.To.pt()
	ctrl.Press(from)
	ctrl.Move(to)
	ctrl.Release(to)
	return nil
}
