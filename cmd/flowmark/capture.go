package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/example/flowmark/internal/capture"
	"github.com/example/flowmark/internal/clipboard"
	"github.com/example/flowmark/internal/output"
)

// Swapped in tests.
var (
	captureScreenshotFn = capture.Screenshot
	captureRegionFn     = capture.Region
	captureRegionRectFn = capture.RegionRect
	readClipboardFn     = clipboard.ReadImage
	writeClipboardFn    = clipboard.WriteImage
	defaultDirFn        = output.DefaultDir
	nowFn               = time.Now
)

// captureTarget describes what to grab: the whole screen of one display, an
// interactive region, or a fixed rectangle.
type captureTarget struct {
	mode               string
	display            string
	rect               string
	includeCursor      bool
	includeDecorations bool
}

func (t *captureTarget) register(fs *flag.FlagSet) {
	fs.StringVar(&t.display, "display", "", "display to capture: name, index, #N or primary")
	fs.StringVar(&t.rect, "rect", "", "region as x0,y0,x1,y1 instead of selecting interactively")
	fs.BoolVar(&t.includeCursor, "include-cursor", false, "include the mouse pointer when supported")
	fs.BoolVar(&t.includeDecorations, "include-decorations", false, "include window decorations when supported")
}

func (t *captureTarget) validate() error {
	switch t.mode {
	case "screen":
		if t.rect != "" {
			return errors.New("-rect only applies to region captures")
		}
	case "region":
		if t.display != "" {
			return errors.New("-display only applies to screen captures")
		}
		if t.rect != "" {
			if _, err := parseRect(t.rect); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported capture mode %q", t.mode)
	}
	return nil
}

func (t *captureTarget) options() capture.Options {
	return capture.Options{
		IncludeCursor:      t.includeCursor,
		IncludeDecorations: t.includeDecorations,
	}
}

func (t *captureTarget) grab() (*image.RGBA, error) {
	var (
		img *image.RGBA
		err error
	)
	switch t.mode {
	case "screen":
		img, err = captureScreenshotFn(t.display, t.options())
	case "region":
		if t.rect == "" {
			img, err = captureRegionFn(t.options())
			break
		}
		var rect image.Rectangle
		rect, err = parseRect(t.rect)
		if err == nil {
			img, err = captureRegionRectFn(rect, t.options())
		}
	default:
		err = fmt.Errorf("unsupported capture mode %q", t.mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to capture %s: %w", t.mode, err)
	}
	return img, nil
}

func (t *captureTarget) describe() string {
	switch t.mode {
	case "screen":
		if d := strings.TrimSpace(t.display); d != "" {
			return fmt.Sprintf("screen %s", d)
		}
	case "region":
		if r := strings.TrimSpace(t.rect); r != "" {
			return fmt.Sprintf("region %s", r)
		}
	}
	return firstNonEmpty(t.mode, "capture")
}

// captureCmd captures and saves without opening the editor.
type captureCmd struct {
	*root
	fs          *flag.FlagSet
	target      captureTarget
	output      string
	toClipboard bool
	shadow      shadowFlags
}

func (c *captureCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseCaptureCmd(args []string, r *root) (*captureCmd, error) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	c := &captureCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "output", "", "output file path, or - for stdout (default: a generated name in the save directory)")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the capture to the clipboard instead of saving it")
	c.target.register(fs)
	c.shadow.register(fs)

	flagArgs, positionals, err := splitArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) != 1 {
		return nil, &UsageError{of: c}
	}
	c.target.mode = strings.ToLower(positionals[0])
	if err := c.target.validate(); err != nil {
		return nil, usageErrorf(c, "%v", err)
	}
	if c.toClipboard && c.output != "" {
		return nil, usageErrorf(c, "-output and -to-clipboard are mutually exclusive")
	}
	if _, err := c.shadow.options(); err != nil {
		return nil, usageErrorf(c, "%v", err)
	}
	return c, nil
}

func (c *captureCmd) Run() error {
	img, err := c.target.grab()
	if errors.Is(err, capture.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "capture cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	detail := c.target.describe()
	c.root.notifyCapture(detail, img)
	img, err = c.shadow.apply(img)
	if err != nil {
		return err
	}
	dst := sink{output: c.output, toClipboard: c.toClipboard}
	if !c.toClipboard && dst.output == "" {
		dst.output = output.NewPath(c.root.saveDir(), nowFn())
	}
	return c.root.emit(img, dst, detail)
}
