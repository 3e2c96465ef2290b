package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/flowmark/internal/output"
	"github.com/example/flowmark/internal/render"
)

// Swapped in tests.
var (
	writePNGFn           = output.WritePNG
	stdout     io.Writer = os.Stdout
)

// sink is where a finished image goes. An output of "-" is stdout.
type sink struct {
	output      string
	toClipboard bool
}

func (r *root) emit(img *image.RGBA, dst sink, detail string) error {
	if dst.toClipboard {
		if err := writeClipboardFn(img); err != nil {
			return fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		fmt.Fprintf(os.Stderr, "copied %s to clipboard\n", firstNonEmpty(detail, "image"))
		r.notifyCopy(firstNonEmpty(detail, "image"))
	}
	switch dst.output {
	case "":
		return nil
	case "-":
		if err := png.Encode(stdout, img); err != nil {
			return fmt.Errorf("write PNG to stdout: %w", err)
		}
		fmt.Fprintln(os.Stderr, "wrote PNG data to stdout")
		return nil
	}
	if err := writePNGFn(dst.output, img); err != nil {
		return err
	}
	saved := dst.output
	if abs, err := filepath.Abs(dst.output); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	r.notifySave(saved)
	return nil
}

// shadowFlags adds an optional drop shadow to exported images.
type shadowFlags struct {
	enabled bool
	radius  int
	offset  string
	opacity float64
}

func (s *shadowFlags) register(fs *flag.FlagSet) {
	def := render.DefaultShadowOptions()
	fs.BoolVar(&s.enabled, "shadow", false, "add a drop shadow around the image")
	fs.IntVar(&s.radius, "shadow-radius", def.Radius, "shadow blur radius in pixels")
	fs.StringVar(&s.offset, "shadow-offset", formatShadowOffset(def.Offset), "shadow offset as x,y")
	fs.Float64Var(&s.opacity, "shadow-opacity", def.Opacity, "shadow opacity between 0 and 1")
}

func (s *shadowFlags) options() (render.ShadowOptions, error) {
	opts := render.DefaultShadowOptions()
	opts.Radius = max(s.radius, 0)
	opts.Opacity = min(max(s.opacity, 0), 1)
	if s.offset != "" {
		pt, err := parseShadowOffset(s.offset)
		if err != nil {
			return opts, err
		}
		opts.Offset = pt
	}
	return opts, nil
}

func (s *shadowFlags) apply(img *image.RGBA) (*image.RGBA, error) {
	if !s.enabled {
		return img, nil
	}
	opts, err := s.options()
	if err != nil {
		return nil, err
	}
	return render.ApplyShadow(img, opts).Image, nil
}

func parseShadowOffset(val string) (image.Point, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("invalid shadow offset %q", val)
	}
	vals, err := expectInts([]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}, 2, "shadow offset")
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid shadow offset %q", val)
	}
	return image.Pt(vals[0], vals[1]), nil
}

func formatShadowOffset(pt image.Point) string {
	return fmt.Sprintf("%d,%d", pt.X, pt.Y)
}
