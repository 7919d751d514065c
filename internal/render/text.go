package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/rook-computer/crhashtag/internal/card"
	"github.com/rook-computer/crhashtag/internal/palette"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// glyphMask rasterizes text once with its baseline origin at (0, 0),
// keeping only the pixels inside clip. Glyphs wholly outside clip are
// never rasterized. Every stamp of every layer reuses the same mask.
func glyphMask(face font.Face, text string, clip image.Rectangle) *image.Alpha {
	bounds, _ := font.BoundString(face, text)
	rect := fixedRect(bounds).Intersect(clip)
	if rect.Empty() {
		return nil
	}
	mask := image.NewAlpha(rect)
	dot := fixed.P(0, 0)
	prev := rune(-1)
	for _, r := range text {
		if prev >= 0 {
			dot.X += face.Kern(prev, r)
		}
		gb, advance, _ := face.GlyphBounds(r)
		if fixedRect(gb.Add(dot)).Overlaps(rect) {
			dr, glyph, gp, _, ok := face.Glyph(dot, r)
			if ok && !dr.Empty() {
				draw.DrawMask(mask, dr, image.Opaque, image.Point{}, glyph, gp, draw.Over)
			}
		}
		dot.X += advance
		prev = r
	}
	return mask
}

func fixedRect(r fixed.Rectangle26_6) image.Rectangle {
	return image.Rect(r.Min.X.Floor(), r.Min.Y.Floor(), r.Max.X.Ceil(), r.Max.Y.Ceil())
}

// stamp paints mask in a uniform color with its origin at (x, y).
func stamp(dst draw.Image, mask *image.Alpha, x, y int, c color.Color) {
	r := mask.Bounds().Add(image.Pt(x, y))
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

// halo stamps mask at every offset of the (2w+1)x(2w+1) square except
// the center.
func halo(dst draw.Image, mask *image.Alpha, x, y, w int, c color.Color) {
	for dx := -w; dx <= w; dx++ {
		for dy := -w; dy <= w; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			stamp(dst, mask, x+dx, y+dy, c)
		}
	}
}

// drawLine paints the effect layers and then the line itself. (x, y) is
// the baseline origin.
func drawLine(dst draw.Image, mask *image.Alpha, x, y int, base color.RGBA, effects card.Effects) {
	if !effects.Any() {
		stamp(dst, mask, x, y, base)
		return
	}
	effects = effects.Normalized()
	if effects.Shadow {
		w := effects.ShadowOffset
		stamp(dst, mask, x+w, y+w, palette.DeriveRGBA(base, palette.Shadow))
	}
	if effects.Stroke {
		halo(dst, mask, x, y, effects.StrokeWidth, palette.DeriveRGBA(base, palette.Stroke))
	}
	if effects.Outline {
		halo(dst, mask, x, y, effects.OutlineWidth, palette.DeriveRGBA(base, palette.Outline))
	}
	stamp(dst, mask, x, y, base)
}
