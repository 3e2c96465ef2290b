package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/example/flowmark/internal/capture"
	"github.com/example/flowmark/internal/config"
	"github.com/example/flowmark/internal/output"
	"github.com/example/flowmark/internal/theme"
	"github.com/example/flowmark/internal/ui"
)

var white = color.RGBA{255, 255, 255, 255}

func whitePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	path := filepath.Join(t.TempDir(), "in.png")
	if err := output.WritePNG(path, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRoot(t *testing.T) *root {
	t.Helper()
	cfg := config.New()
	cfg.SaveDir = t.TempDir()
	return &root{program: "flowmark", config: cfg}
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = orig })
	return &buf
}

func TestCaptureRunCaptureError(t *testing.T) {
	original := captureScreenshotFn
	sentinel := errors.New("boom")
	captureScreenshotFn = func(string, capture.Options) (*image.RGBA, error) { return nil, sentinel }
	t.Cleanup(func() { captureScreenshotFn = original })

	cmd := &captureCmd{target: captureTarget{mode: "screen"}, output: "-"}
	err := cmd.Run()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if want := "failed to capture screen"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to contain %q, got %v", want, err)
	}
}

func TestCaptureSavesGeneratedName(t *testing.T) {
	origShot, origNow := captureScreenshotFn, nowFn
	var gotDisplay string
	captureScreenshotFn = func(display string, _ capture.Options) (*image.RGBA, error) {
		gotDisplay = display
		return image.NewRGBA(image.Rect(0, 0, 4, 3)), nil
	}
	nowFn = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	t.Cleanup(func() { captureScreenshotFn, nowFn = origShot, origNow })

	r := testRoot(t)
	cmd, err := parseCaptureCmd([]string{"screen", "-display", "primary"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotDisplay != "primary" {
		t.Fatalf("display %q", gotDisplay)
	}
	matches, err := filepath.Glob(filepath.Join(r.config.SaveDir, "screenshot_20240309_140507_*.png"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("saved files %v (%v)", matches, err)
	}
	img, err := output.ReadImage(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("bounds %v", img.Bounds())
	}
}

func TestCaptureRegionRectWithShadow(t *testing.T) {
	orig := captureRegionRectFn
	var gotRect image.Rectangle
	captureRegionRectFn = func(r image.Rectangle, _ capture.Options) (*image.RGBA, error) {
		gotRect = r
		return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
	}
	t.Cleanup(func() { captureRegionRectFn = orig })

	out := filepath.Join(t.TempDir(), "shot.png")
	cmd, err := parseCaptureCmd([]string{"-rect", "10,10,30,20", "-shadow", "-shadow-radius", "2", "-shadow-offset", "3,4", "-output", out, "region"}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotRect != image.Rect(10, 10, 30, 20) {
		t.Fatalf("rect %v", gotRect)
	}
	img, err := output.ReadImage(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got.X <= 20 || got.Y <= 10 {
		t.Fatalf("shadow did not pad the image: %v", got)
	}
}

func TestParseCaptureErrors(t *testing.T) {
	tests := map[string][]string{
		"no mode":         {},
		"bad mode":        {"window"},
		"rect on screen":  {"-rect", "0,0,5,5", "screen"},
		"bad rect":        {"-rect", "0,0,5", "region"},
		"display region":  {"-display", "1", "region"},
		"both sinks":      {"-output", "a.png", "-to-clipboard", "screen"},
		"bad shadow":      {"-shadow-offset", "1", "screen"},
		"two positionals": {"screen", "region"},
	}
	for name, args := range tests {
		if _, err := parseCaptureCmd(args, testRoot(t)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestAnnotateCaptureError(t *testing.T) {
	origShot, origEditor := captureScreenshotFn, runEditorFn
	sentinel := errors.New("denied")
	captureScreenshotFn = func(string, capture.Options) (*image.RGBA, error) { return nil, sentinel }
	runEditorFn = func(*ui.App) error {
		t.Fatal("editor opened after a failed capture")
		return nil
	}
	t.Cleanup(func() { captureScreenshotFn, runEditorFn = origShot, origEditor })

	cmd := &annotateCmd{capture: true, target: captureTarget{mode: "screen"}, root: testRoot(t)}
	err := cmd.Run()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if want := "annotate capture screen"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected message context, got %v", err)
	}
}

func TestAnnotateOpenError(t *testing.T) {
	cmd := &annotateCmd{file: "missing.png", root: testRoot(t)}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "annotate missing.png") {
		t.Fatalf("expected open error context, got %v", err)
	}
}

func TestAnnotateOpensEditorOnFile(t *testing.T) {
	in := whitePNG(t, 40, 30)
	r := testRoot(t)
	r.config.Color = "blue"
	r.config.MaxDisplay = image.Pt(20, 15)

	orig := runEditorFn
	var got *ui.App
	runEditorFn = func(app *ui.App) error {
		got = app
		return nil
	}
	t.Cleanup(func() { runEditorFn = orig })

	cmd, err := parseAnnotateCmd([]string{"-file", in}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got == nil {
		t.Fatal("editor not started")
	}
	ctrl := got.Controller()
	if b := ctrl.State().Image.Bounds(); b != image.Rect(0, 0, 40, 30) {
		t.Fatalf("bounds %v", b)
	}
	if ctrl.Color() != (color.RGBA{0x00, 0x66, 0xFF, 0xFF}) {
		t.Fatalf("configured color not applied: %v", ctrl.Color())
	}
	if cmd.outputPath() != in {
		t.Fatalf("output %q, want the opened file", cmd.outputPath())
	}
}

func TestAnnotateFromClipboard(t *testing.T) {
	orig, origEditor := readClipboardFn, runEditorFn
	readClipboardFn = func() (image.Image, error) { return image.NewRGBA(image.Rect(3, 3, 13, 8)), nil }
	var got *ui.App
	runEditorFn = func(app *ui.App) error { got = app; return nil }
	t.Cleanup(func() { readClipboardFn, runEditorFn = orig, origEditor })

	cmd, err := parseAnnotateCmd([]string{"-from-clipboard"}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if b := got.Controller().State().Image.Bounds(); b != image.Rect(0, 0, 10, 5) {
		t.Fatalf("bounds %v", b)
	}
}

func TestParseAnnotateErrors(t *testing.T) {
	tests := map[string]struct {
		args []string
		want string
	}{
		"no source":         {nil, "no image source"},
		"clipboard capture": {[]string{"-from-clipboard", "capture", "screen"}, "not supported"},
		"two sources":       {[]string{"-file", "a.png", "-from-clipboard"}, "only one"},
		"bad capture":       {[]string{"capture", "window"}, "unsupported capture mode"},
		"stray argument":    {[]string{"open", "a.png"}, "unexpected argument"},
		"bad size":          {[]string{"-file", "a.png", "-max-display", "big"}, "not WxH"},
	}
	for name, tc := range tests {
		_, err := parseAnnotateCmd(tc.args, testRoot(t))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %v, want it to mention %q", name, err, tc.want)
		}
	}
}

func TestApplyScript(t *testing.T) {
	in := whitePNG(t, 60, 60)
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "ops.yaml")
	if err := os.WriteFile(scriptPath, []byte("color: red\nops:\n  - {op: rect, from: [10, 10], to: [40, 40]}\n  - {op: crop, from: [5, 5], to: [55, 55]}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.png")
	cmd, err := parseApplyCmd([]string{"-script", scriptPath, "-file", in, "-output", out}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	img, err := output.ReadImage(out)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 50, 50) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if got := img.RGBAAt(5, 20); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("rectangle edge after crop = %v", got)
	}
	if got := img.RGBAAt(20, 20); got != white {
		t.Fatalf("interior = %v", got)
	}
}

func TestApplyScriptFromStdinToClipboard(t *testing.T) {
	origIn, origClip := stdin, writeClipboardFn
	stdin = strings.NewReader("ops: [{op: callout, at: [10, 10]}]")
	var copied image.Image
	writeClipboardFn = func(img image.Image) error { copied = img; return nil }
	t.Cleanup(func() { stdin, writeClipboardFn = origIn, origClip })

	in := whitePNG(t, 30, 30)
	before, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	cmd, err := parseApplyCmd([]string{"-script", "-", "-file", in, "-to-clipboard"}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if copied == nil {
		t.Fatal("nothing copied")
	}
	if got := output.ToRGBA(copied).RGBAAt(19, 10); got == white {
		t.Fatalf("callout not drawn: %v", got)
	}
	after, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("input rewritten although only the clipboard was requested")
	}
}

func TestApplyReportsScriptErrors(t *testing.T) {
	in := whitePNG(t, 30, 30)
	scriptPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(scriptPath, []byte("ops: [{op: lasso}]"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd, err := parseApplyCmd([]string{"-script", scriptPath, "-file", in}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "op 0") {
		t.Fatalf("err = %v, want the failing op index", err)
	}
}

func TestParseApplyErrors(t *testing.T) {
	tests := map[string][]string{
		"no script":        {"-file", "a.png"},
		"no input":         {"-script", "a.yaml"},
		"two inputs":       {"-script", "a.yaml", "-file", "a.png", "-from-clipboard"},
		"clipboard no out": {"-script", "a.yaml", "-from-clipboard"},
		"stdin stdout":     {"-script", "-", "-file", "a.png", "-output", "-"},
		"positional":       {"-script", "a.yaml", "-file", "a.png", "extra"},
	}
	for name, args := range tests {
		if _, err := parseApplyCmd(args, testRoot(t)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseDrawAcceptsTrailingFlags(t *testing.T) {
	d, err := parseDrawCmd([]string{"arrow", "1", "2", "30", "40", "-file", "in.png", "-color", "blue"}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.output != "in.png" {
		t.Fatalf("output %q, want the input file", d.output)
	}
	if d.op.Op != "arrow" || *d.op.From != [2]int{1, 2} || *d.op.To != [2]int{30, 40} || d.op.Color != "blue" {
		t.Fatalf("op %+v", d.op)
	}
}

func TestParseDrawClipboardRequiresOutput(t *testing.T) {
	_, err := parseDrawCmd([]string{"-from-clipboard", "arrow", "0", "0", "10", "10"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "output file is required when reading from the clipboard"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseDrawOp(t *testing.T) {
	op, err := parseDrawOp("text", []string{"5", "6", "Click", "here"})
	if err != nil {
		t.Fatal(err)
	}
	if op.Text != "Click here" || *op.At != [2]int{5, 6} {
		t.Fatalf("text op %+v", op)
	}
	op, err = parseDrawOp("callout", []string{"5", "6", "4"})
	if err != nil {
		t.Fatal(err)
	}
	if op.Number != 4 {
		t.Fatalf("callout op %+v", op)
	}
	for name, args := range map[string][]string{
		"circle":  {"1", "2", "3"},
		"arrow":   {"1", "2", "3"},
		"rect":    {"1", "2", "3", "x"},
		"text":    {"1", "2"},
		"callout": {"1", "2", "0"},
		"blur":    {},
	} {
		if _, err := parseDrawOp(name, args); err == nil {
			t.Errorf("%s %v: expected error", name, args)
		}
	}
}

func TestDrawCropAndCopy(t *testing.T) {
	orig := writeClipboardFn
	var copied image.Image
	writeClipboardFn = func(img image.Image) error { copied = img; return nil }
	t.Cleanup(func() { writeClipboardFn = orig })

	in := whitePNG(t, 80, 60)
	out := filepath.Join(t.TempDir(), "out.png")
	d, err := parseDrawCmd([]string{"-file", in, "-to-clipboard", "-output", out, "crop", "10", "10", "60", "40"}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := d.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	img, err := output.ReadImage(out)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 50, 30) {
		t.Fatalf("saved bounds %v", img.Bounds())
	}
	if copied == nil || copied.Bounds() != img.Bounds() {
		t.Fatalf("clipboard image %v", copied)
	}
}

func TestSplitArgs(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.String("color", "", "")
	fs.Bool("to-clipboard", false, "")
	flags, pos, err := splitArgs(fs, []string{"callout", "-3", "--color", "red", "4", "-to-clipboard", "--", "-color"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"-color", "red", "-to-clipboard"}, flags); diff != "" {
		t.Errorf("flags (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"callout", "-3", "4", "-color"}, pos); diff != "" {
		t.Errorf("positionals (-want +got):\n%s", diff)
	}
	if _, _, err := splitArgs(fs, []string{"-color"}); err == nil {
		t.Error("expected missing value error")
	}
}

func TestThemePrecedence(t *testing.T) {
	r := testRoot(t)
	r.config.Theme = "dark"
	t.Setenv("FLOWMARK_THEME", "")
	if got := r.selectedTheme(); got != "dark" {
		t.Fatalf("config theme = %q", got)
	}
	t.Setenv("FLOWMARK_THEME", "ocean")
	if got := r.selectedTheme(); got != "ocean" {
		t.Fatalf("env theme = %q", got)
	}
	r.themeName = "default"
	if got := r.selectedTheme(); got != "default" {
		t.Fatalf("flag theme = %q", got)
	}
}

func TestResolveTheme(t *testing.T) {
	t.Setenv("FLOWMARK_THEME", "")
	r := testRoot(t)
	loader := &theme.Loader{ConfigDir: t.TempDir(), SystemDir: t.TempDir()}

	mine := theme.Default()
	mine.Name = "mine"
	r.config.Themes["mine"] = mine
	r.themeName = "mine"
	if got := r.resolveTheme(loader); got != mine {
		t.Fatalf("config section not used: %+v", got)
	}
	r.themeName = "dark"
	if got := r.resolveTheme(loader); got.Name != "Dark" {
		t.Fatalf("embedded theme = %q", got.Name)
	}
	r.themeName = "missing"
	if got := r.resolveTheme(loader); got.Name != "Default" {
		t.Fatalf("fallback theme = %q", got.Name)
	}
}

func TestRootUnknownCommand(t *testing.T) {
	t.Setenv("FLOWMARK_THEME", "")
	r := testRoot(t)
	r.fs = flag.NewFlagSet("flowmark", flag.ContinueOnError)
	err := r.Run([]string{"bogus"})
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("err = %v, want usage error", err)
	}
	for _, want := range []string{`unknown command "bogus"`, "Usage: flowmark", "annotate"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("help missing %q:\n%s", want, err)
		}
	}
}

func TestSubcommandHelpListsFlags(t *testing.T) {
	d := &drawCmd{root: &root{program: "flowmark draw"}, fs: flag.NewFlagSet("draw", flag.ContinueOnError)}
	d.fs.String("color", "", "stroke color")
	help := (&UsageError{of: d}).Error()
	for _, want := range []string{"Usage: flowmark draw", "-color", "stroke color", "callout x y [number]"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestConfigPrintAppliesFlags(t *testing.T) {
	buf := captureStdout(t)
	r := testRoot(t)
	r.saveAlerts = true
	r.themeName = "dark"
	cmd, err := parseConfigCmd([]string{"print"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("printed config does not parse: %v\n%s", err, buf)
	}
	if cfg.Theme != "dark" || !cfg.Notify.Save || cfg.Notify.Copy {
		t.Fatalf("printed config %+v", cfg)
	}
	if r.config.Theme != "" {
		t.Fatal("printing modified the loaded config")
	}
}

func TestConfigSaveWritesOverridePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowmark.rc")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	orig := configPathOverride
	configPathOverride = path
	t.Cleanup(func() { configPathOverride = orig })

	r := testRoot(t)
	r.config.Color = "green"
	cmd, err := parseConfigCmd([]string{"save"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "color = green") {
		t.Fatalf("saved config:\n%s", data)
	}
}

func TestColorsListsPaletteAndTheme(t *testing.T) {
	buf := captureStdout(t)
	r := testRoot(t)
	r.config.Color = "green"
	cmd, err := parseColorsCmd(nil, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{"*  1: Green", "#FF0000", "theme Default:", "CropMask", "#00000080"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestVersion(t *testing.T) {
	buf := captureStdout(t)
	orig := commit
	commit = "abc123"
	t.Cleanup(func() { commit = orig })
	cmd, err := parseVersionCmd(nil, &root{program: "flowmark version"})
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	if want := "flowmark version dev\ncommit: abc123\n"; buf.String() != want {
		t.Fatalf("output %q, want %q", buf.String(), want)
	}
}

func TestCancelledCaptureIsNotAnError(t *testing.T) {
	orig := captureRegionFn
	captureRegionFn = func(capture.Options) (*image.RGBA, error) {
		return nil, fmt.Errorf("capture region: %w", capture.ErrCancelled)
	}
	t.Cleanup(func() { captureRegionFn = orig })

	cmd := &captureCmd{target: captureTarget{mode: "region"}, root: testRoot(t)}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	entries, err := os.ReadDir(cmd.root.config.SaveDir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("files written after cancel: %v (%v)", entries, err)
	}
}
