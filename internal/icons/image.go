package icons

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rook-computer/crhashtag/internal/card"
	"github.com/rook-computer/crhashtag/internal/render/layout"
	qrcode "github.com/skip2/go-qrcode"
	_ "golang.org/x/image/webp"
)

// QRPrefix marks an icon source that is generated instead of loaded.
const QRPrefix = "qr:"

const defaultQRSizePx = 512

// Load decodes an image file into NRGBA.
func Load(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("icon %s: %w", path, card.ErrAssetNotFound)
		}
		return nil, fmt.Errorf("icon %s: %w: %v", path, card.ErrAssetDecode, err)
	}
	return imaging.Clone(img), nil
}

// Resize scales img to fit inside box keeping its aspect ratio.
// It returns nil for an empty image or box.
func Resize(img image.Image, box card.Size) *image.NRGBA {
	if img == nil || box.W <= 0 || box.H <= 0 {
		return nil
	}
	width, height := layout.FitSize(img.Bounds().Size(), box)
	if width == 0 || height == 0 {
		return nil
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// QR returns a QR code image for payload, sizePx wide.
func QR(payload string, sizePx int) (*image.NRGBA, error) {
	if payload == "" {
		return nil, fmt.Errorf("qr icon: %w: empty payload", card.ErrAssetDecode)
	}
	if sizePx <= 0 {
		sizePx = defaultQRSizePx
	}
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr icon: %w: %v", card.ErrAssetDecode, err)
	}
	return imaging.Clone(code.Image(sizePx)), nil
}

// Resolve returns the decoded image of a card icon, loading it from the
// catalog or generating it when only the source is known.
func (c Catalog) Resolve(icon card.Icon) (image.Image, error) {
	if icon.Image != nil {
		return icon.Image, nil
	}
	var (
		img *image.NRGBA
		err error
	)
	if payload, ok := strings.CutPrefix(icon.Source, QRPrefix); ok {
		img, err = QR(payload, defaultQRSizePx)
	} else if path, ok := c.Path(icon.Source); ok {
		img, err = Load(path)
	} else {
		err = fmt.Errorf("icon %q: %w", icon.Source, card.ErrAssetNotFound)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}
