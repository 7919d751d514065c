package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/rook-computer/crhashtag/internal/card"
	"golang.org/x/image/font/basicfont"
)

var (
	red         = color.RGBA{R: 0xFF, A: 0xFF}
	redStroke   = color.RGBA{R: 0x7F, A: 0xFF}
	redOutline  = color.RGBA{R: 0xFF, G: 0x80, B: 0x80, A: 0xFF}
	redShadow   = color.RGBA{R: 0xFF, G: 0xAA, B: 0xAA, A: 0xFF}
	transparent = color.RGBA{}
)

// solidMask is a fully covered 10x10 block sitting on the baseline.
func solidMask() *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, -10, 10, 0))
	for i := range mask.Pix {
		mask.Pix[i] = 0xFF
	}
	return mask
}

func TestStrokeAndOutlineRings(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	effects := card.Effects{Stroke: true, StrokeWidth: 2, Outline: true, OutlineWidth: 1, ShadowOffset: 1}
	drawLine(dst, solidMask(), 50, 50, red, effects)

	// Glyph block covers x 50..59, y 40..49.
	cases := []struct {
		name string
		at   image.Point
		want color.RGBA
	}{
		{"inside", image.Pt(55, 45), red},
		{"1px right", image.Pt(60, 45), redOutline},
		{"2px right", image.Pt(61, 45), redStroke},
		{"3px right", image.Pt(62, 45), transparent},
		{"1px left", image.Pt(49, 45), redOutline},
		{"2px left", image.Pt(48, 45), redStroke},
		{"1px above", image.Pt(55, 39), redOutline},
		{"2px above", image.Pt(55, 38), redStroke},
		{"2px below", image.Pt(55, 51), redStroke},
	}
	for _, tc := range cases {
		if got := dst.RGBAAt(tc.at.X, tc.at.Y); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestShadowFallsBelowRight(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	effects := card.Effects{Shadow: true, ShadowOffset: 3, OutlineWidth: 1, StrokeWidth: 1}
	drawLine(dst, solidMask(), 50, 50, red, effects)

	if got := dst.RGBAAt(55, 45); got != red {
		t.Errorf("Expected main glyph on top of the shadow, got %v", got)
	}
	if got := dst.RGBAAt(62, 47); got != redShadow {
		t.Errorf("Expected shadow right of the glyph, got %v", got)
	}
	if got := dst.RGBAAt(55, 52); got != redShadow {
		t.Errorf("Expected shadow below the glyph, got %v", got)
	}
	if got := dst.RGBAAt(47, 45); got != transparent {
		t.Errorf("Expected nothing left of the glyph, got %v", got)
	}
	if got := dst.RGBAAt(55, 37); got != transparent {
		t.Errorf("Expected nothing above the glyph, got %v", got)
	}
}

func TestShadowPaintedUnderStroke(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	effects := card.Effects{Shadow: true, ShadowOffset: 1, Stroke: true, StrokeWidth: 2, OutlineWidth: 1}
	drawLine(dst, solidMask(), 50, 50, red, effects)

	// The shadow block reaches x 60 and the stroke ring covers it.
	if got := dst.RGBAAt(60, 45); got != redStroke {
		t.Errorf("Expected stroke over shadow, got %v", got)
	}
}

func TestGlyphMaskIsClipped(t *testing.T) {
	clip := image.Rect(0, -20, 30, 5)
	mask := glyphMask(basicfont.Face7x13, "HHHHHHHHHHHHHHHHHHHH", clip)
	if mask == nil {
		t.Fatal("Expected a mask")
	}
	if !mask.Bounds().In(clip) {
		t.Errorf("Expected mask bounds inside %v, got %v", clip, mask.Bounds())
	}
	if glyphMask(basicfont.Face7x13, "HH", image.Rect(500, 0, 600, 10)) != nil {
		t.Error("Expected no mask when the text lies outside the clip")
	}
}
