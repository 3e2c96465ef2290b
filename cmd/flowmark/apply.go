package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/example/flowmark/internal/canvas"
	"github.com/example/flowmark/internal/output"
	"github.com/example/flowmark/internal/script"
)

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

// applyCmd replays a script of operations onto an image.
type applyCmd struct {
	*root
	fs            *flag.FlagSet
	script        string
	file          string
	fromClipboard bool
	output        string
	toClipboard   bool
	shadow        shadowFlags
}

func (a *applyCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseApplyCmd(args []string, r *root) (*applyCmd, error) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	a := &applyCmd{root: r, fs: fs}
	fs.Usage = usageFunc(a)
	fs.StringVar(&a.script, "script", "", "YAML operation script, or - for stdin")
	fs.StringVar(&a.file, "file", "", "input image file")
	fs.BoolVar(&a.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.StringVar(&a.output, "output", "", "output file path, or - for stdout (defaults to the input file unless -to-clipboard is set)")
	fs.BoolVar(&a.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	a.shadow.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, usageErrorf(a, "unexpected argument %q", fs.Arg(0))
	}
	if a.script == "" {
		return nil, usageErrorf(a, "-script is required")
	}
	switch {
	case a.file == "" && !a.fromClipboard:
		return nil, usageErrorf(a, "input file is required")
	case a.file != "" && a.fromClipboard:
		return nil, usageErrorf(a, "choose one of -file or -from-clipboard")
	case a.script == "-" && a.output == "-":
		return nil, usageErrorf(a, "stdin and stdout cannot both be used")
	}
	if a.output == "" && !a.toClipboard {
		if a.file == "" {
			return nil, usageErrorf(a, "output file is required when reading from the clipboard")
		}
		a.output = a.file
	}
	if _, err := a.shadow.options(); err != nil {
		return nil, usageErrorf(a, "%v", err)
	}
	return a, nil
}

func (a *applyCmd) Run() error {
	s, err := a.loadScript()
	if err != nil {
		return err
	}
	img, detail, err := loadInput(a.file, a.fromClipboard)
	if err != nil {
		return err
	}
	out, res, err := a.root.replay(img, s)
	if err != nil {
		return fmt.Errorf("apply %s: %w", a.script, err)
	}
	fmt.Fprintf(os.Stderr, "applied %d operations (%d changed nothing)\n", res.Applied, res.Skipped)
	out, err = a.shadow.apply(out)
	if err != nil {
		return err
	}
	return a.root.emit(out, sink{output: a.output, toClipboard: a.toClipboard}, detail)
}

func (a *applyCmd) loadScript() (*script.Script, error) {
	if a.script == "-" {
		s, err := script.Parse(stdin)
		if err != nil {
			return nil, fmt.Errorf("script from stdin: %w", err)
		}
		return s, nil
	}
	f, err := os.Open(a.script)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	s, err := script.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", a.script, err)
	}
	return s, nil
}

// replay runs s against a fresh controller at full resolution and returns
// the flattened result.
func (r *root) replay(img *image.RGBA, s *script.Script) (*image.RGBA, script.Result, error) {
	opts, err := r.canvasOptions()
	if err != nil {
		return nil, script.Result{}, err
	}
	ctrl, err := canvas.New(img, opts...)
	if err != nil {
		return nil, script.Result{}, err
	}
	res, err := script.Run(ctrl, s)
	if err != nil {
		return nil, res, err
	}
	return ctrl.Export(), res, nil
}

// loadInput reads the image named by file, or the clipboard image.
func loadInput(file string, fromClipboard bool) (*image.RGBA, string, error) {
	if fromClipboard {
		img, err := readClipboardFn()
		if err != nil {
			return nil, "", fmt.Errorf("read clipboard image: %w", err)
		}
		return output.ToRGBA(img), "image", nil
	}
	img, err := output.ReadImage(file)
	if err != nil {
		return nil, "", err
	}
	return img, filepath.Base(file), nil
}
