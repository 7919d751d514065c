package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/rook-computer/crhashtag/internal/card"
	"github.com/rook-computer/crhashtag/internal/fonts"
	"github.com/rook-computer/crhashtag/internal/icons"
	"github.com/rook-computer/crhashtag/internal/palette"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// FaceSource resolves a font identifier to a face. It must never fail.
type FaceSource interface {
	Face(name string, size int) (font.Face, fonts.Source)
}

// IconSource turns a card icon into pixels.
type IconSource interface {
	Resolve(icon card.Icon) (image.Image, error)
}

// Compositor rasterizes cards. It holds no per-render state and can be
// shared between goroutines when its sources can.
type Compositor struct {
	Fonts  FaceSource
	Icons  IconSource
	Logger Logger
}

// NewCompositor wires the font and icon sources. A nil face source means
// fonts are resolved from system and built-in fonts only.
func NewCompositor(faces FaceSource, iconSource IconSource, logger Logger) *Compositor {
	if faces == nil {
		faces = fonts.NewLoader(fonts.Catalog{}, logger)
	}
	return &Compositor{Fonts: faces, Icons: iconSource, Logger: logger}
}

// Render paints every active card, in order, onto one transparent canvas
// of the given size. A card that fails is logged and left out; the others
// still render.
func (c *Compositor) Render(comps []card.Composition, size image.Point) *image.RGBA {
	if size.X <= 0 || size.Y <= 0 {
		size = image.Pt(DefaultCanvasSize, DefaultCanvasSize)
	}
	canvas := image.NewRGBA(image.Rectangle{Max: size})
	for i, comp := range comps {
		if !comp.Active {
			continue
		}
		layer := image.NewRGBA(canvas.Bounds())
		if err := c.paint(layer, comp); err != nil {
			c.errorf("card %d skipped: %v", i+1, err)
			continue
		}
		draw.Draw(canvas, canvas.Bounds(), layer, image.Point{}, draw.Over)
	}
	return canvas
}

// RenderOne renders a single card on the default canvas, whatever its
// Active flag says.
func (c *Compositor) RenderOne(comp card.Composition) *image.RGBA {
	comp.Active = true
	return c.Render([]card.Composition{comp}, image.Pt(DefaultCanvasSize, DefaultCanvasSize))
}

func (c *Compositor) paint(layer *image.RGBA, comp card.Composition) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while painting: %v", r)
		}
	}()

	for i := 0; i < card.LineCount; i++ {
		line, ok := comp.Line(i)
		if !ok {
			continue
		}
		c.paintLine(layer, line, comp.Effects)
	}
	for _, key := range card.IconKeys {
		c.pasteIcon(layer, comp, key)
	}
	return nil
}

func (c *Compositor) paintLine(layer *image.RGBA, line card.Line, effects card.Effects) {
	if line.Font == "" {
		c.errorf("line %d has no font selected, using fallback", line.Index+1)
	}
	face, source := c.face(line.Font, line.Size)
	if source != fonts.SourceCatalog && line.Font != "" {
		c.infof("line %d rendered with %s font instead of %s", line.Index+1, source, line.Font)
	}

	base, err := palette.ParseHex(line.Color)
	if err != nil {
		c.errorf("line %d: %v, using %s", line.Index+1, err, card.DefaultColor)
		base = color.RGBA{A: 0xFF}
	}

	x := int(math.Round(line.Pos.X))
	baseline := int(math.Round(line.Pos.Y)) + face.Metrics().Ascent.Ceil()
	// Only the part of the line that can reach the layer is rasterized.
	clip := layer.Bounds().Sub(image.Pt(x, baseline)).Inset(-effects.Reach())
	mask := glyphMask(face, line.Text, clip)
	if mask == nil {
		return
	}
	drawLine(layer, mask, x, baseline, base, effects)
}

func (c *Compositor) face(name string, size int) (font.Face, fonts.Source) {
	if c.Fonts == nil {
		return basicfont.Face7x13, fonts.SourceBasic
	}
	return c.Fonts.Face(name, size)
}

func (c *Compositor) pasteIcon(layer *image.RGBA, comp card.Composition, key card.ElementKey) {
	icon, ok := comp.Icons[key]
	if !ok || (icon.Source == "" && icon.Image == nil) {
		return
	}
	img := icon.Image
	if img == nil {
		if c.Icons == nil {
			c.errorf("%s %q omitted: no icon source configured", key, icon.Source)
			return
		}
		resolved, err := c.Icons.Resolve(icon)
		if err != nil {
			c.errorf("%s omitted: %v", key, err)
			return
		}
		img = resolved
	}

	resized := icons.Resize(img, comp.IconBox(key))
	if resized == nil {
		return
	}
	pos := comp.Position(key)
	pasteMasked(layer, resized, image.Pt(int(pos.X), int(pos.Y)))
}

// pasteMasked replaces dst pixels with src, weighted by the src alpha:
// out = dst + (src - dst) * a for every channel, alpha included.
func pasteMasked(dst *image.RGBA, src *image.NRGBA, at image.Point) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(at).Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s := src.NRGBAAt(x-at.X+src.Bounds().Min.X, y-at.Y+src.Bounds().Min.Y)
			if s.A == 0 {
				continue
			}
			if s.A == 0xFF {
				dst.Set(x, y, s)
				continue
			}
			d := color.NRGBAModel.Convert(dst.RGBAAt(x, y)).(color.NRGBA)
			a := uint32(s.A)
			mix := func(dc, sc uint8) uint8 {
				return uint8((uint32(dc)*(255-a) + uint32(sc)*a + 127) / 255)
			}
			dst.Set(x, y, color.NRGBA{R: mix(d.R, s.R), G: mix(d.G, s.G), B: mix(d.B, s.B), A: mix(d.A, s.A)})
		}
	}
}

// Preview downscales a rendered canvas to a side x side thumbnail.
func Preview(img image.Image, side int) *image.NRGBA {
	if side <= 0 {
		side = DefaultPreviewSize
	}
	return imaging.Resize(img, side, side, imaging.Lanczos)
}

func (c *Compositor) infof(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Infof("render", format, args...)
	}
}

func (c *Compositor) errorf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Errorf("render", format, args...)
	}
}
