package config

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/screens
color = #112233
history_limit = 20
blur_block = 16
max_display = 1280x800

[notify]
capture = true
save = false
copy = true

[theme.my_custom_theme]
Background = #111111
Foreground = #FFFFFF
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}

	if cfg.SaveDir != "/tmp/screens" {
		t.Errorf("Expected save_dir '/tmp/screens', got '%s'", cfg.SaveDir)
	}

	if cfg.Color != "#112233" {
		t.Errorf("Expected color '#112233', got '%s'", cfg.Color)
	}
	if cfg.HistoryLimit != 20 || cfg.BlurBlock != 16 {
		t.Errorf("Unexpected limits: history=%d blur=%d", cfg.HistoryLimit, cfg.BlurBlock)
	}
	if cfg.MaxDisplay != image.Pt(1280, 800) {
		t.Errorf("Unexpected max_display %v", cfg.MaxDisplay)
	}

	if !cfg.Notify.Capture {
		t.Error("Expected notify.capture to be true")
	}
	if cfg.Notify.Save {
		t.Error("Expected notify.save to be false")
	}
	if !cfg.Notify.Copy {
		t.Error("Expected notify.copy to be true")
	}

	theme, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}

	if theme.Background.R != 0x11 || theme.Background.G != 0x11 || theme.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", theme.Background)
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/shots
color = blue
history_limit = 10
max_display = 800x0

[notify]
capture = true
save = true
copy = false

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
CropMask = #00000040
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	// 4. Compare relevant fields
	if cfg.Theme != cfg2.Theme {
		t.Errorf("Theme mismatch: %q vs %q", cfg.Theme, cfg2.Theme)
	}
	if cfg.SaveDir != cfg2.SaveDir {
		t.Errorf("SaveDir mismatch: %q vs %q", cfg.SaveDir, cfg2.SaveDir)
	}
	if cfg.Color != cfg2.Color || cfg.HistoryLimit != cfg2.HistoryLimit || cfg.MaxDisplay != cfg2.MaxDisplay {
		t.Errorf("Editor settings mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	// Check theme persistence
	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if diff := cmp.Diff(t1, t2); diff != "" {
		t.Errorf("Theme mismatch (-first +second):\n%s", diff)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	for _, input := range []string{
		"history_limit = zero",
		"blur_block = 0",
		"max_display = wide",
		"[notify]\ncapture = maybe",
		"[theme.x]\nBackground = red",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("Parse(%q) succeeded", input)
		}
	}
}

func TestLoaderPrefersOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.rc")
	if err := os.WriteFile(path, []byte("theme = dark\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", "")
	l := NewLoader("v1.0.0", path)
	if got := l.GetConfigPath(); got != path {
		t.Fatalf("GetConfigPath = %q, want %q", got, path)
	}
	cfg, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "dark" {
		t.Fatalf("theme %q", cfg.Theme)
	}

	l = NewLoader("v1.0.0", filepath.Join(dir, "missing.rc"))
	if got := l.GetConfigPath(); got != "" {
		t.Fatalf("GetConfigPath = %q, want none", got)
	}
	cfg, err = l.Load()
	if err != nil || cfg.Theme != "" {
		t.Fatalf("defaults not returned: %+v, %v", cfg, err)
	}
}

func TestLoaderUserConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	l := NewLoader("v1.0.0", "")
	want := filepath.Join(dir, "flowmark", "config.rc")
	if got, err := l.SavePath(); err != nil || got != want {
		t.Fatalf("SavePath = %q, %v; want %q", got, err, want)
	}
	alt := filepath.Join(dir, "flowmark", "flowmark.rc")
	if err := os.MkdirAll(filepath.Dir(alt), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(alt, []byte("color = blue\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := l.GetConfigPath(); got != alt {
		t.Fatalf("GetConfigPath = %q, want %q", got, alt)
	}
	if got, _ := l.SavePath(); got != alt {
		t.Fatalf("SavePath = %q, want the file in use", got)
	}
}
