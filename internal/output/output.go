// Package output names, writes and reads the PNG files the editor works on.
package output

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Filename builds screenshot_YYYYMMDD_HHMMSS_<id>.png where id is the first
// eight hex digits of u.
func Filename(now time.Time, u uuid.UUID) string {
	return fmt.Sprintf("screenshot_%s_%s.png", now.Format("20060102_150405"), u.String()[:8])
}

// NewPath returns a fresh file name in dir.
func NewPath(dir string, now time.Time) string {
	return filepath.Join(dir, Filename(now, uuid.New()))
}

// DefaultDir is where screenshots are saved when no directory is
// configured: $XDG_DATA_HOME/flowmark/screenshots, falling back to
// ~/.local/share.
func DefaultDir() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "flowmark", "screenshots"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "flowmark", "screenshots"), nil
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(path string, img image.Image) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("close %s: %v", path, cerr)
			if err == nil {
				err = cerr
			}
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("write PNG to %q: %w", path, err)
	}
	return nil
}

// ReadImage decodes a PNG or JPEG file into a zero-origin RGBA image.
func ReadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts img to a zero-origin *image.RGBA, reusing it when it
// already is one.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
