package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/example/flowmark/internal/annotation"
	"github.com/example/flowmark/internal/script"
)

// drawCmd applies one annotation to an image without opening a window.
type drawCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	output        string
	fromClipboard bool
	toClipboard   bool
	colorSpec     string
	op            script.Op
	shadow        shadowFlags
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{root: r, fs: fs}
	fs.Usage = usageFunc(d)
	fs.StringVar(&d.file, "file", "", "input image file")
	fs.StringVar(&d.output, "output", "", "output file path, or - for stdout (defaults to the input file unless -to-clipboard is set)")
	fs.BoolVar(&d.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&d.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.StringVar(&d.colorSpec, "color", "", "palette name, color name or #RRGGBB (default: the configured color)")
	d.shadow.register(fs)

	flagArgs, positionals, err := splitArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) < 1 {
		return nil, &UsageError{of: d}
	}
	d.op, err = parseDrawOp(strings.ToLower(positionals[0]), positionals[1:])
	if err != nil {
		return nil, usageErrorf(d, "%v", err)
	}
	if d.colorSpec != "" {
		if _, err := annotation.ParseColor(d.colorSpec); err != nil {
			return nil, usageErrorf(d, "%v", err)
		}
		d.op.Color = d.colorSpec
	}
	if d.fromClipboard {
		if d.file != "" {
			return nil, usageErrorf(d, "choose one of -file or -from-clipboard")
		}
		if d.output == "" && !d.toClipboard {
			return nil, fmt.Errorf("output file is required when reading from the clipboard")
		}
	} else {
		if d.file == "" {
			return nil, fmt.Errorf("input file is required")
		}
		if d.output == "" && !d.toClipboard {
			d.output = d.file
		}
	}
	if _, err := d.shadow.options(); err != nil {
		return nil, usageErrorf(d, "%v", err)
	}
	return d, nil
}

// parseDrawOp turns "arrow 1 2 3 4" style arguments into a script operation.
func parseDrawOp(shape string, args []string) (script.Op, error) {
	op := script.Op{Op: shape}
	switch shape {
	case "arrow", "rect", "rectangle", "blur", "crop":
		v, err := expectInts(args, 4, shape)
		if err != nil {
			return op, err
		}
		op.From = &script.Point{v[0], v[1]}
		op.To = &script.Point{v[2], v[3]}
	case "text":
		if len(args) < 3 {
			return op, fmt.Errorf("text requires x y and content")
		}
		v, err := expectInts(args[:2], 2, shape)
		if err != nil {
			return op, err
		}
		op.At = &script.Point{v[0], v[1]}
		op.Text = strings.Join(args[2:], " ")
		if strings.TrimSpace(op.Text) == "" {
			return op, fmt.Errorf("text content cannot be empty")
		}
	case "callout":
		if len(args) != 2 && len(args) != 3 {
			return op, fmt.Errorf("callout requires x y and an optional number")
		}
		v, err := expectInts(args, len(args), shape)
		if err != nil {
			return op, err
		}
		op.At = &script.Point{v[0], v[1]}
		if len(v) == 3 {
			if v[2] < 1 {
				return op, fmt.Errorf("callout number must be positive")
			}
			op.Number = v[2]
		}
	default:
		return op, fmt.Errorf("unsupported shape %q", shape)
	}
	s := script.Script{Ops: []script.Op{op}}
	if err := s.Validate(); err != nil {
		return op, err
	}
	return op, nil
}

func (d *drawCmd) Run() error {
	img, detail, err := loadInput(d.file, d.fromClipboard)
	if err != nil {
		return err
	}
	out, res, err := d.root.replay(img, &script.Script{Ops: []script.Op{d.op}})
	if err != nil {
		return fmt.Errorf("draw %s: %w", d.op.Op, err)
	}
	if res.Applied == 0 {
		fmt.Fprintf(os.Stderr, "warning: %s changed nothing (too small or outside the image)\n", d.op.Op)
	}
	out, err = d.shadow.apply(out)
	if err != nil {
		return err
	}
	return d.root.emit(out, sink{output: d.output, toClipboard: d.toClipboard}, detail)
}
