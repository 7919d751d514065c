//go:build !linux || !cgo

package fbpreview

import (
	"fmt"
	"runtime"
)

func openFramebuffer(path string) (Device, error) {
	return nil, fmt.Errorf("framebuffer %s: not supported on %s", path, runtime.GOOS)
}
