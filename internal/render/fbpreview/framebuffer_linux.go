//go:build linux && cgo

package fbpreview

import fb "github.com/gonutz/framebuffer"

type fbDevice struct{ *fb.Device }

func (d fbDevice) Close() error {
	d.Device.Close()
	return nil
}

func openFramebuffer(path string) (Device, error) {
	dev, err := fb.Open(path)
	if err != nil {
		return nil, err
	}
	return fbDevice{dev}, nil
}
