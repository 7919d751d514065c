package palette

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rook-computer/crhashtag/internal/card"
)

var swatchPattern = regexp.MustCompile(`(?i)rgb([0-9a-f]{6})`)

// ExtractColors returns every "rgbRRGGBB" color in filename, left to right,
// as "#RRGGBB" with the digits as written.
func ExtractColors(filename string) []string {
	matches := swatchPattern.FindAllStringSubmatch(filename, -1)
	if len(matches) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, "#"+m[1])
	}
	return out
}

// Swatch is one entry of the color swatch catalog.
type Swatch struct {
	Name   string   `json:"name"`
	Path   string   `json:"-"`
	Colors []string `json:"colors"`
}

// LoadSwatches lists the .png files of dir whose name contains "rgb".
// The result is sorted by name.
func LoadSwatches(dir string) ([]Swatch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("swatch dir %s: %w", dir, card.ErrAssetNotFound)
		}
		return nil, fmt.Errorf("swatch dir %s: %w", dir, err)
	}
	swatches := make([]Swatch, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".png") || !strings.Contains(lower, "rgb") {
			continue
		}
		swatches = append(swatches, Swatch{
			Name:   name,
			Path:   filepath.Join(dir, name),
			Colors: ExtractColors(name),
		})
	}
	sort.Slice(swatches, func(i, j int) bool { return swatches[i].Name < swatches[j].Name })
	return swatches, nil
}

// LineColors maps up to two selected swatches onto the three lines of a
// card: the first swatch colors lines 1 and 2, the second swatch colors
// line 3. Without a second swatch line 3 repeats line 2. Missing colors
// are black. Extra swatches are ignored.
func LineColors(selected ...[]string) [card.LineCount]string {
	out := [card.LineCount]string{card.DefaultColor, card.DefaultColor, card.DefaultColor}
	if len(selected) == 0 {
		return out
	}
	first := selected[0]
	if len(first) > 0 {
		out[0] = first[0]
	}
	if len(first) > 1 {
		out[1] = first[1]
	}
	if len(selected) > 1 {
		if len(selected[1]) > 0 {
			out[2] = selected[1][0]
		}
		return out
	}
	out[2] = out[1]
	return out
}
