//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error

	clipboardInit  = clipboard.Init
	clipboardRead  = clipboard.Read
	clipboardWrite = func(f clipboard.Format, data []byte) { clipboard.Write(f, data) }
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		initErr = clipboardInit()
	})
	return initErr
}

// WriteImage publishes img to the clipboard as PNG.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode clipboard image: %w", err)
	}
	clipboardWrite(clipboard.FmtImage, buf.Bytes())
	return nil
}

// ReadImage decodes the PNG on the clipboard.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data := clipboardRead(clipboard.FmtImage)
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard image: %w", err)
	}
	return img, nil
}

// WriteText places text on the clipboard.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	clipboardWrite(clipboard.FmtText, []byte(text))
	return nil
}

// ReadText returns the clipboard text.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	data := clipboardRead(clipboard.FmtText)
	if len(data) == 0 {
		return "", ErrEmpty
	}
	return string(data), nil
}
