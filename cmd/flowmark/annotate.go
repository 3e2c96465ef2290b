package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/flowmark/internal/capture"
	"github.com/example/flowmark/internal/config"
	"github.com/example/flowmark/internal/output"
	"github.com/example/flowmark/internal/ui"
)

// runEditorFn opens the window; tests replace it to inspect the editor.
var runEditorFn = func(app *ui.App) error { return app.Run() }

// annotateCmd represents the annotate subcommand.
type annotateCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	fromClipboard bool
	output        string
	saveDir       string
	maxDisplay    string
	capture       bool
	target        captureTarget
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a := &annotateCmd{root: r, fs: fs}
	fs.Usage = usageFunc(a)
	fs.StringVar(&a.file, "file", "", "image file to annotate")
	fs.BoolVar(&a.fromClipboard, "from-clipboard", false, "annotate the image on the clipboard")
	fs.StringVar(&a.output, "output", "", "file Ctrl+S writes to (default: the opened PNG, else a generated name)")
	fs.StringVar(&a.saveDir, "save-dir", "", "directory for generated file names (default from config)")
	fs.StringVar(&a.maxDisplay, "max-display", "", "largest preview size as WxH (default from config)")
	a.target.register(fs)

	flagArgs, positionals, err := splitArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	switch len(positionals) {
	case 0:
	case 2:
		if positionals[0] != "capture" {
			return nil, usageErrorf(a, "unexpected argument %q", positionals[0])
		}
		a.capture = true
		a.target.mode = strings.ToLower(positionals[1])
		if err := a.target.validate(); err != nil {
			return nil, usageErrorf(a, "%v", err)
		}
	default:
		return nil, &UsageError{of: a}
	}

	sources := 0
	for _, set := range []bool{a.file != "", a.fromClipboard, a.capture} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return nil, usageErrorf(a, "no image source: use -file, -from-clipboard or capture")
	case a.fromClipboard && a.capture:
		return nil, usageErrorf(a, "-from-clipboard is not supported together with capture")
	case sources > 1:
		return nil, usageErrorf(a, "choose only one of -file, -from-clipboard or capture")
	}
	if a.maxDisplay != "" {
		if _, err := config.ParseSize(a.maxDisplay); err != nil {
			return nil, usageErrorf(a, "%v", err)
		}
	}
	return a, nil
}

func (a *annotateCmd) Run() error {
	img, detail, err := a.load()
	if errors.Is(err, capture.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "capture cancelled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("annotate %s: %w", detail, err)
	}
	opts, err := a.editorOptions(detail)
	if err != nil {
		return err
	}
	app, err := ui.New(img, opts...)
	if err != nil {
		return fmt.Errorf("annotate %s: %w", detail, err)
	}
	if err := runEditorFn(app); err != nil {
		return err
	}
	if saved := app.LastSaved(); saved != "" {
		fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	}
	return nil
}

// load returns the image to edit and a short description of where it came
// from.
func (a *annotateCmd) load() (*image.RGBA, string, error) {
	switch {
	case a.capture:
		detail := "capture " + a.target.describe()
		img, err := a.target.grab()
		if err != nil {
			return nil, detail, err
		}
		a.root.notifyCapture(a.target.describe(), img)
		return img, detail, nil
	case a.fromClipboard:
		img, err := readClipboardFn()
		if err != nil {
			return nil, "clipboard", fmt.Errorf("read clipboard image: %w", err)
		}
		return output.ToRGBA(img), "clipboard", nil
	default:
		img, err := output.ReadImage(a.file)
		if err != nil {
			return nil, a.file, err
		}
		return img, a.file, nil
	}
}

func (a *annotateCmd) editorOptions(detail string) ([]ui.Option, error) {
	saveDir := a.saveDir
	if saveDir == "" {
		saveDir = a.root.saveDir()
	}
	opts := []ui.Option{
		ui.WithTheme(a.root.currentTheme()),
		ui.WithTitle(filepath.Base(detail)),
		ui.WithSaveDir(saveDir),
	}
	if a.root != nil && a.root.notifier != nil {
		opts = append(opts, ui.WithNotifier(a.root.notifier))
	}
	if out := a.outputPath(); out != "" {
		opts = append(opts, ui.WithOutput(out))
	}
	if size, ok, err := a.displaySize(); err != nil {
		return nil, err
	} else if ok {
		opts = append(opts, ui.WithMaxDisplay(size))
	}
	copts, err := a.root.canvasOptions()
	if err != nil {
		return nil, err
	}
	if len(copts) > 0 {
		opts = append(opts, ui.WithCanvasOptions(copts...))
	}
	return opts, nil
}

// outputPath is where saves go. An opened PNG is overwritten in place.
func (a *annotateCmd) outputPath() string {
	if a.output != "" {
		return a.output
	}
	if a.file != "" && strings.EqualFold(filepath.Ext(a.file), ".png") {
		return a.file
	}
	return ""
}

func (a *annotateCmd) displaySize() (image.Point, bool, error) {
	if a.maxDisplay != "" {
		p, err := config.ParseSize(a.maxDisplay)
		return p, err == nil, err
	}
	if a.root != nil && a.root.config != nil {
		if p := a.root.config.MaxDisplay; p.X > 0 && p.Y > 0 {
			return p, true, nil
		}
	}
	return image.Point{}, false, nil
}
