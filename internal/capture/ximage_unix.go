//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/jezek/xgb/xproto"
)

// pixelReader decodes one ZPixmap pixel.
type pixelReader func(p []byte) color.RGBA

// xImageToRGBA converts a ZPixmap GetImage reply. True-colour visuals of 16,
// 24 and 32 bits per pixel are understood in either server byte order; the
// fourth byte is only treated as alpha on depth 32 visuals.
func xImageToRGBA(setup *xproto.SetupInfo, reply *xproto.GetImageReply, width, height int, what string) (*image.RGBA, error) {
	switch {
	case setup == nil:
		return nil, fmt.Errorf("%s: no connection setup", what)
	case width <= 0 || height <= 0:
		return nil, fmt.Errorf("%s has empty geometry", what)
	case reply == nil || len(reply.Data) == 0:
		return nil, fmt.Errorf("%s pixels: empty reply", what)
	}
	bpp, read, err := pixelFormat(setup, reply.Depth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	stride := len(reply.Data) / height
	if stride*height != len(reply.Data) || stride < width*bpp {
		return nil, fmt.Errorf("%s pixels: %d bytes do not fit %dx%d", what, len(reply.Data), width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := reply.Data[y*stride:]
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, read(row[x*bpp:x*bpp+bpp]))
		}
	}
	return img, nil
}

// pixelFormat picks the bytes per pixel and decoder for depth.
func pixelFormat(setup *xproto.SetupInfo, depth byte) (int, pixelReader, error) {
	bits := 0
	for _, f := range setup.PixmapFormats {
		if f.Depth == depth {
			bits = int(f.BitsPerPixel)
			break
		}
	}
	var order binary.ByteOrder = binary.LittleEndian
	if setup.ImageByteOrder == xproto.ImageOrderMSBFirst {
		order = binary.BigEndian
	}
	switch bits {
	case 32:
		return 4, func(p []byte) color.RGBA {
			v := order.Uint32(p)
			a := uint8(0xFF)
			if depth == 32 {
				a = uint8(v >> 24)
			}
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: a}
		}, nil
	case 24:
		return 3, func(p []byte) color.RGBA {
			if order == binary.BigEndian {
				return color.RGBA{R: p[0], G: p[1], B: p[2], A: 0xFF}
			}
			return color.RGBA{R: p[2], G: p[1], B: p[0], A: 0xFF}
		}, nil
	case 16:
		return 2, func(p []byte) color.RGBA {
			v := order.Uint16(p)
			r, g, b := uint8(v>>11&0x1F), uint8(v>>5&0x3F), uint8(v&0x1F)
			return color.RGBA{R: r<<3 | r>>2, G: g<<2 | g>>4, B: b<<3 | b>>2, A: 0xFF}
		}, nil
	case 0:
		return 0, nil, fmt.Errorf("no pixmap format for depth %d", depth)
	}
	return 0, nil, fmt.Errorf("unsupported %d bits per pixel at depth %d", bits, depth)
}
