package theme

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmbeddedDefaultMatchesBuiltin(t *testing.T) {
	l := &Loader{}
	got, err := l.Load("default")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Fatalf("embedded default differs (-builtin +embedded):\n%s", diff)
	}
}

func TestEmbeddedNames(t *testing.T) {
	if diff := cmp.Diff([]string{"dark", "default"}, EmbeddedNames()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}

func TestParseIgnoresUnknownAndComments(t *testing.T) {
	th, err := Parse(strings.NewReader("# comment\nName: Mine\nbackground: #010203\nSparkle: #FFFFFF\ncropmask: #11223344\n"))
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "Mine" {
		t.Errorf("name %q", th.Name)
	}
	if th.Background != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("background %v", th.Background)
	}
	if th.CropMask != (color.RGBA{0x11, 0x22, 0x33, 0x44}) {
		t.Errorf("crop mask %v", th.CropMask)
	}
	if th.Handle != Default().Handle {
		t.Errorf("unset key lost its default: %v", th.Handle)
	}
}

func TestParseBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Background: red\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	th := Default()
	th.Name = "Custom"
	th.Selection = color.RGBA{1, 2, 3, 4}
	var buf bytes.Buffer
	if err := th.Write(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(th, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestLoaderSearchOrder(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "config")
	sysDir := filepath.Join(dir, "system")
	for _, d := range []string{cfgDir, sysDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	write := func(path, body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(cfgDir, "ocean.theme"), "Name: Ocean Config\n")
	write(filepath.Join(sysDir, "ocean.theme"), "Name: Ocean System\n")
	write(filepath.Join(sysDir, "forest.theme"), "Name: Forest\n")

	l := &Loader{ConfigDir: cfgDir, SystemDir: sysDir}
	for name, want := range map[string]string{
		"ocean":  "Ocean Config",
		"forest": "Forest",
		"dark":   "Dark",
		"":       "Default",
	} {
		th, err := l.Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if th.Name != want {
			t.Errorf("Load(%q) = %q, want %q", name, th.Name, want)
		}
	}
	if _, err := l.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
