//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import "image"

func portalScreenshot(bool, Options) (*image.RGBA, error) {
	return nil, errPortalUnsupported
}
