package card

import (
	"fmt"
	"strings"
)

// DefaultFontSize is used when a line has no stored size.
const DefaultFontSize = 32

// MaxFontSize and MaxIconSide bound what a card may ask the renderer to
// rasterize: one canvas side.
const (
	MaxFontSize = 1200
	MaxIconSide = 1200
)

// Line is a fully resolved text line ready for painting.
type Line struct {
	Index int
	Text  string
	Font  string // empty when no font is selected; the renderer falls back
	Size  int
	Color string
	Pos   Point
}

// Line resolves line i. It reports false when the slot is out of range
// or empty.
func (c Composition) Line(i int) (Line, bool) {
	if i < 0 || i >= LineCount || c.Lines[i] == "" {
		return Line{}, false
	}
	key := TextKey(i)

	size, ok := c.FontSizes[key]
	if !ok || size <= 0 {
		size = DefaultFontSize
	}
	size = min(size, MaxFontSize)
	pos, ok := c.Positions[key]
	if !ok {
		pos = Point{X: 150, Y: float64(150 + i*100)}
	}

	return Line{
		Index: i,
		Text:  c.Lines[i],
		Font:  c.FontAt(i),
		Size:  size,
		Color: c.ColorAt(i),
		Pos:   pos,
	}, true
}

// FontAt returns the font for line i: its own selection, else the first
// selected font, else "".
func (c Composition) FontAt(i int) string {
	if i >= 0 && i < len(c.Fonts) {
		return c.Fonts[i]
	}
	if len(c.Fonts) > 0 {
		return c.Fonts[0]
	}
	return ""
}

// ColorAt returns the base color of line i, padding with DefaultColor.
func (c Composition) ColorAt(i int) string {
	if i >= 0 && i < len(c.Colors) && strings.TrimSpace(c.Colors[i]) != "" {
		return c.Colors[i]
	}
	return DefaultColor
}

// LineColors returns exactly three base colors.
func (c Composition) LineColors() [LineCount]string {
	var out [LineCount]string
	for i := range out {
		out[i] = c.ColorAt(i)
	}
	return out
}

// Position returns the stored position of an element, or its default.
func (c Composition) Position(key ElementKey) Point {
	if pos, ok := c.Positions[key]; ok {
		return pos
	}
	return defaultPositions()[key]
}

// Validate reports whether the card can be exported.
// A card with text but no font selected is rejected.
func (c Composition) Validate() error {
	if len(c.Fonts) == 0 && c.HasText() {
		return fmt.Errorf("%w: text present but no font selected", ErrInvalidComposition)
	}
	if len(c.Fonts) > LineCount {
		return fmt.Errorf("%w: %d fonts selected, at most %d", ErrInvalidComposition, len(c.Fonts), LineCount)
	}
	return nil
}

// CheckLimits rejects sizes and effect magnitudes the renderer would
// have to clamp.
func (c Composition) CheckLimits() error {
	for key, size := range c.FontSizes {
		if size < 0 || size > MaxFontSize {
			return fmt.Errorf("%w: %s font size %d outside 1..%d", ErrInvalidComposition, key, size, MaxFontSize)
		}
	}
	for key, box := range c.IconSizes {
		if box.W < 0 || box.H < 0 || box.W > MaxIconSide || box.H > MaxIconSide {
			return fmt.Errorf("%w: %s size %dx%d outside 1..%d", ErrInvalidComposition, key, box.W, box.H, MaxIconSide)
		}
	}
	return c.Effects.CheckRange()
}

// IconBox returns the icon box of key clamped to MaxIconSide, or the
// default box when none is stored.
func (c Composition) IconBox(key ElementKey) Size {
	box, ok := c.IconSizes[key]
	if !ok {
		box = New().IconSizes[key]
	}
	box.W = min(box.W, MaxIconSide)
	box.H = min(box.H, MaxIconSide)
	return box
}

func trimmed(s string) string { return strings.TrimSpace(s) }

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
