// Package palette derives effect colors from a line's base color and reads
// the colors encoded in swatch file names.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// EffectKind selects which derived color to compute.
type EffectKind int

const (
	Shadow EffectKind = iota
	Outline
	Stroke
)

func (k EffectKind) String() string {
	switch k {
	case Shadow:
		return "shadow"
	case Outline:
		return "outline"
	case Stroke:
		return "stroke"
	}
	return "unknown"
}

// Factors applied to the base color for each effect.
const (
	ShadowFactor  = 3.0
	OutlineFactor = 2.0
	StrokeFactor  = 2.0
)

// ParseHex parses "#rrggbb", "rrggbb" or the three digit short forms.
// The result is always opaque.
func ParseHex(hex string) (color.RGBA, error) {
	s := strings.TrimSpace(hex)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// FormatHex renders c as lowercase "#rrggbb", ignoring alpha.
func FormatHex(c color.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// Darken divides each channel by factor and floors the result.
func Darken(c color.RGBA, factor float64) color.RGBA {
	factor = sanitizeFactor(factor)
	apply := func(ch uint8) uint8 {
		return clampChannel(math.Floor(float64(ch) / factor))
	}
	return color.RGBA{R: apply(c.R), G: apply(c.G), B: apply(c.B), A: c.A}
}

// Lighten moves each channel toward white by (1 - 1/factor) of the
// remaining distance and rounds the result.
func Lighten(c color.RGBA, factor float64) color.RGBA {
	factor = sanitizeFactor(factor)
	t := 1 - 1/factor
	apply := func(ch uint8) uint8 {
		v := float64(ch)
		return clampChannel(math.Round(v + (255-v)*t))
	}
	return color.RGBA{R: apply(c.R), G: apply(c.G), B: apply(c.B), A: c.A}
}

// DeriveRGBA returns the effect color of kind for base.
func DeriveRGBA(base color.RGBA, kind EffectKind) color.RGBA {
	switch kind {
	case Shadow:
		return Lighten(base, ShadowFactor)
	case Outline:
		return Lighten(base, OutlineFactor)
	case Stroke:
		return Darken(base, StrokeFactor)
	}
	return base
}

// Derive is the hex form of DeriveRGBA.
func Derive(hex string, kind EffectKind) (string, error) {
	base, err := ParseHex(hex)
	if err != nil {
		return "", err
	}
	return FormatHex(DeriveRGBA(base, kind)), nil
}

// EffectColors holds every color used to paint one line.
type EffectColors struct {
	Text    string `json:"text"`
	Shadow  string `json:"shadow"`
	Outline string `json:"outline"`
	Stroke  string `json:"stroke"`
}

// DeriveAll computes the text, shadow, outline and stroke colors of a line.
func DeriveAll(hex string) (EffectColors, error) {
	base, err := ParseHex(hex)
	if err != nil {
		return EffectColors{}, err
	}
	return EffectColors{
		Text:    FormatHex(base),
		Shadow:  FormatHex(DeriveRGBA(base, Shadow)),
		Outline: FormatHex(DeriveRGBA(base, Outline)),
		Stroke:  FormatHex(DeriveRGBA(base, Stroke)),
	}, nil
}

func sanitizeFactor(factor float64) float64 {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return 1
	}
	return factor
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
