// Package icons lists the icon catalog, ranks it against free-text
// queries and loads icons for compositing.
package icons

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rook-computer/crhashtag/internal/card"
)

// Extensions accepted in the icon catalog.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// Catalog is an immutable listing of the icon directory.
type Catalog struct {
	Dir   string
	Names []string
}

// LoadCatalog lists the image files of dir, sorted by name. Only file
// names are read; pixel data is loaded on demand.
func LoadCatalog(dir string) (Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Catalog{Dir: dir}, fmt.Errorf("icon dir %s: %w", dir, card.ErrAssetNotFound)
		}
		return Catalog{Dir: dir}, fmt.Errorf("icon dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if hasImageExt(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return Catalog{Dir: dir, Names: names}, nil
}

// Search ranks the catalog against query.
func (c Catalog) Search(query string) []Match {
	return Rank(c.Names, query)
}

// Path joins an icon name onto the catalog directory.
func (c Catalog) Path(name string) (string, bool) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return "", false
	}
	return filepath.Join(c.Dir, name), true
}

func hasImageExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
