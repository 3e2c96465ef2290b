package canvas

import (
	"fmt"
	"strings"

	"github.com/example/flowmark/internal/annotation"
)

// Tool is the active editing mode.
type Tool int

const (
	ToolSelect Tool = iota
	ToolArrow
	ToolRectangle
	ToolText
	ToolCallout
	ToolBlur
	ToolCrop
)

var toolNames = [...]string{
	ToolSelect:    "select",
	ToolArrow:     "arrow",
	ToolRectangle: "rectangle",
	ToolText:      "text",
	ToolCallout:   "callout",
	ToolBlur:      "blur",
	ToolCrop:      "crop",
}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	return []Tool{ToolSelect, ToolArrow, ToolRectangle, ToolText, ToolCallout, ToolBlur, ToolCrop}
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// Shortcut is the single-letter key that selects t.
func (t Tool) Shortcut() rune {
	switch t {
	case ToolSelect:
		return 's'
	case ToolArrow:
		return 'a'
	case ToolRectangle:
		return 'r'
	case ToolText:
		return 't'
	case ToolCallout:
		return 'c'
	case ToolBlur:
		return 'b'
	case ToolCrop:
		return 'x'
	}
	return 0
}

// ParseTool accepts a tool name or any annotation kind alias.
func ParseTool(s string) (Tool, error) {
	if strings.EqualFold(strings.TrimSpace(s), "select") || strings.EqualFold(strings.TrimSpace(s), "move") {
		return ToolSelect, nil
	}
	k, err := annotation.ParseKind(s)
	if err != nil {
		return 0, fmt.Errorf("unknown tool %q", s)
	}
	return toolForKind(k), nil
}

func toolForKind(k annotation.Kind) Tool {
	switch k {
	case annotation.Arrow:
		return ToolArrow
	case annotation.Rectangle:
		return ToolRectangle
	case annotation.Text:
		return ToolText
	case annotation.Callout:
		return ToolCallout
	case annotation.BlurRegion:
		return ToolBlur
	case annotation.CropRegion:
		return ToolCrop
	}
	return ToolSelect
}

// kind maps a drawing tool to the annotation kind it creates. Select has no
// kind and reports false.
func (t Tool) kind() (annotation.Kind, bool) {
	switch t {
	case ToolArrow:
		return annotation.Arrow, true
	case ToolRectangle:
		return annotation.Rectangle, true
	case ToolText:
		return annotation.Text, true
	case ToolCallout:
		return annotation.Callout, true
	case ToolBlur:
		return annotation.BlurRegion, true
	case ToolCrop:
		return annotation.CropRegion, true
	}
	return 0, false
}
