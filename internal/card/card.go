package card

import (
	"fmt"
	"image"
	"strconv"
)

// ElementKey addresses a positionable element of a card.
type ElementKey string

const (
	Text0     ElementKey = "text0"
	Text1     ElementKey = "text1"
	Text2     ElementKey = "text2"
	SmallIcon ElementKey = "small_icon"
	BigIcon   ElementKey = "big_icon"
)

// LineCount is the fixed number of text slots on a card.
const LineCount = 3

// DefaultColor is used for every line without an explicit color.
const DefaultColor = "#000000"

// TextKey returns the element key of line i.
func TextKey(i int) ElementKey { return ElementKey("text" + strconv.Itoa(i)) }

// IconKeys lists the icon slots in paste order.
var IconKeys = []ElementKey{SmallIcon, BigIcon}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Icon is an overlay image. Source is an icon catalog file name or a
// "qr:<payload>" reference; Image is the decoded picture and is shared
// between clones.
type Icon struct {
	Source string      `json:"source"`
	Image  image.Image `json:"-"`
}

// Effects toggles the text effect layers of every line on the card.
// Colors are never stored; they are derived from each line's color.
type Effects struct {
	Shadow       bool `json:"shadow"`
	Outline      bool `json:"outline"`
	Stroke       bool `json:"stroke"`
	ShadowOffset int  `json:"shadow_offset"`
	OutlineWidth int  `json:"outline_width"`
	StrokeWidth  int  `json:"stroke_width"`
}

// Effect magnitude limits, in canvas pixels.
const (
	MaxShadowOffset = 10
	MaxEffectWidth  = 5
)

// Normalized clamps the effect magnitudes to their allowed ranges.
func (e Effects) Normalized() Effects {
	out := e
	out.ShadowOffset = clamp(out.ShadowOffset, 1, MaxShadowOffset)
	out.OutlineWidth = clamp(out.OutlineWidth, 1, MaxEffectWidth)
	out.StrokeWidth = clamp(out.StrokeWidth, 1, MaxEffectWidth)
	return out
}

// Any reports whether at least one effect layer is enabled.
func (e Effects) Any() bool { return e.Shadow || e.Outline || e.Stroke }

// Reach is the farthest distance, in pixels, an enabled effect layer
// extends past the glyphs.
func (e Effects) Reach() int {
	if !e.Any() {
		return 0
	}
	n := e.Normalized()
	reach := 0
	if n.Shadow {
		reach = max(reach, n.ShadowOffset)
	}
	if n.Outline {
		reach = max(reach, n.OutlineWidth)
	}
	if n.Stroke {
		reach = max(reach, n.StrokeWidth)
	}
	return reach
}

// CheckRange rejects magnitudes outside the allowed ranges. Zero means
// unset and is accepted.
func (e Effects) CheckRange() error {
	checks := []struct {
		name  string
		value int
		max   int
	}{
		{"shadow_offset", e.ShadowOffset, MaxShadowOffset},
		{"outline_width", e.OutlineWidth, MaxEffectWidth},
		{"stroke_width", e.StrokeWidth, MaxEffectWidth},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > c.max {
			return fmt.Errorf("%w: %s %d outside 1..%d", ErrInvalidComposition, c.name, c.value, c.max)
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// Composition describes one card.
type Composition struct {
	Active    bool                 `json:"active"`
	Lines     [LineCount]string    `json:"lines"`
	Fonts     []string             `json:"fonts"`
	Colors    []string             `json:"colors"`
	FontSizes map[ElementKey]int   `json:"font_sizes"`
	Positions map[ElementKey]Point `json:"positions"`
	IconSizes map[ElementKey]Size  `json:"icon_sizes"`
	Icons     map[ElementKey]Icon  `json:"icons"`
	Effects   Effects              `json:"effects"`
}

// New returns a card with the defaults used when a card is added by hand.
func New() Composition {
	return Composition{
		Active: true,
		Colors: []string{DefaultColor, DefaultColor, DefaultColor},
		FontSizes: map[ElementKey]int{
			Text0: 50,
			Text1: 50,
			Text2: 50,
		},
		Positions: defaultPositions(),
		IconSizes: map[ElementKey]Size{
			SmallIcon: {W: 70, H: 70},
			BigIcon:   {W: 150, H: 150},
		},
		Icons: map[ElementKey]Icon{},
		Effects: Effects{
			ShadowOffset: 3,
			OutlineWidth: 1,
			StrokeWidth:  2,
		},
	}
}

// Imported returns a card built from one triple of an import file.
// Imported cards use larger type and icon boxes than hand-made ones.
func Imported(lines [LineCount]string) Composition {
	c := New()
	c.Lines = lines
	c.FontSizes = map[ElementKey]int{
		Text0: 150,
		Text1: 160,
		Text2: 140,
	}
	c.IconSizes = map[ElementKey]Size{
		SmallIcon: {W: 150, H: 150},
		BigIcon:   {W: 300, H: 300},
	}
	return c
}

func defaultPositions() map[ElementKey]Point {
	return map[ElementKey]Point{
		Text0:     {X: 150, Y: 150},
		Text1:     {X: 150, Y: 250},
		Text2:     {X: 150, Y: 350},
		SmallIcon: {X: 600, Y: 600},
		BigIcon:   {X: 100, Y: 600},
	}
}

// Clone deep-copies the card. Decoded icon images are shared.
func (c Composition) Clone() Composition {
	out := c
	out.Fonts = cloneStrings(c.Fonts)
	out.Colors = cloneStrings(c.Colors)
	out.FontSizes = cloneMap(c.FontSizes)
	out.Positions = cloneMap(c.Positions)
	out.IconSizes = cloneMap(c.IconSizes)
	out.Icons = cloneMap(c.Icons)
	return out
}

// HasText reports whether any line carries non-blank text.
func (c Composition) HasText() bool {
	for _, line := range c.Lines {
		if trimmed(line) != "" {
			return true
		}
	}
	return false
}

// Label is a short human readable name used in listings.
func (c Composition) Label(index int) string {
	label := "Card " + strconv.Itoa(index+1)
	if c.Lines[0] != "" {
		label += ": " + truncateRunes(c.Lines[0], 20)
	}
	return label
}

func cloneStrings(input []string) []string {
	if input == nil {
		return nil
	}
	out := make([]string, len(input))
	copy(out, input)
	return out
}

func cloneMap[K comparable, V any](input map[K]V) map[K]V {
	if input == nil {
		return nil
	}
	out := make(map[K]V, len(input))
	for k, v := range input {
		out[k] = v
	}
	return out
}
