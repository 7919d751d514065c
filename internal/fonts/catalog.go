// Package fonts lists the font catalog and turns font identifiers into
// faces, degrading to system and built-in fonts when a file is unusable.
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rook-computer/crhashtag/internal/card"
)

// Catalog is an immutable listing of the font directory.
type Catalog struct {
	Dir   string
	Names []string
}

// LoadCatalog lists the .ttf and .otf files of dir, sorted by name.
func LoadCatalog(dir string) (Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Catalog{Dir: dir}, fmt.Errorf("font dir %s: %w", dir, card.ErrAssetNotFound)
		}
		return Catalog{Dir: dir}, fmt.Errorf("font dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".ttf" || ext == ".otf" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return Catalog{Dir: dir, Names: names}, nil
}

// Contains reports whether name is listed in the catalog.
func (c Catalog) Contains(name string) bool {
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Path joins a font identifier onto the catalog directory. Identifiers
// that try to leave the directory are rejected.
func (c Catalog) Path(name string) (string, bool) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return "", false
	}
	return filepath.Join(c.Dir, name), true
}

// SystemFontPaths returns well-known font files for the running OS,
// most preferred first.
func SystemFontPaths() []string {
	switch runtime.GOOS {
	case "windows":
		winDir := os.Getenv("WINDIR")
		if winDir == "" {
			winDir = `C:\Windows`
		}
		var paths []string
		for _, f := range []string{"arial.ttf", "verdana.ttf", "segoeui.ttf", "calibri.ttf", "tahoma.ttf"} {
			paths = append(paths, filepath.Join(winDir, "Fonts", f))
		}
		return paths
	case "darwin":
		return []string{
			"/System/Library/Fonts/SFNS.ttf",
			"/System/Library/Fonts/SFNSText.ttf",
			"/Library/Fonts/Arial.ttf",
			"/System/Library/Fonts/Helvetica.ttc",
			"/Library/Fonts/Verdana.ttf",
		}
	case "linux":
		return []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/TTF/Arial.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/ubuntu/Ubuntu-R.ttf",
		}
	}
	return nil
}
