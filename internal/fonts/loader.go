package fonts

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/rook-computer/crhashtag/internal/card"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Source tells which step of the fallback chain produced a face.
type Source string

const (
	SourceCatalog Source = "catalog"
	SourceSystem  Source = "system"
	SourceBuiltin Source = "builtin"
	SourceBasic   Source = "basic"
)

// DPI of 72 makes a point size equal to a pixel size.
const DPI = 72

// parsed is a font file ready to produce faces. Parsed fonts are shared;
// every face is created fresh because faces are not safe for concurrent use.
type parsed interface {
	newFace(size float64) (font.Face, error)
}

type otFont struct{ f *opentype.Font }

func (p otFont) newFace(size float64) (font.Face, error) {
	return opentype.NewFace(p.f, &opentype.FaceOptions{Size: size, DPI: DPI, Hinting: font.HintingFull})
}

type ttFont struct{ f *truetype.Font }

func (p ttFont) newFace(size float64) (font.Face, error) {
	return truetype.NewFace(p.f, &truetype.Options{Size: size, DPI: DPI, Hinting: font.HintingFull}), nil
}

// Loader resolves font identifiers against a Catalog.
// Safe for concurrent use.
type Loader struct {
	Catalog     Catalog
	SystemFonts []string
	Logger      Logger

	mu      sync.Mutex
	fonts   map[string]parsed // by file path
	warned  map[string]bool   // by identifier
	system  parsed
	sysDone bool
	builtin parsed
}

func NewLoader(catalog Catalog, logger Logger) *Loader {
	return &Loader{Catalog: catalog, SystemFonts: SystemFontPaths(), Logger: logger}
}

// Face returns a face for the identifier at size pixels. It never fails:
// a missing or unreadable font degrades to a system font, then to the
// built-in Go font, then to basicfont.
func (l *Loader) Face(name string, size int) (font.Face, Source) {
	if size <= 0 {
		size = card.DefaultFontSize
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if name != "" {
		p, err := l.catalogFont(name)
		if err == nil {
			face, ferr := p.newFace(float64(size))
			if ferr == nil {
				return face, SourceCatalog
			}
			err = fmt.Errorf("font %s: %w: %v", name, card.ErrAssetDecode, ferr)
		}
		l.warnOnce(name, err)
	}

	if p := l.systemFont(); p != nil {
		if face, err := p.newFace(float64(size)); err == nil {
			return face, SourceSystem
		}
	}

	if p := l.builtinFont(); p != nil {
		if face, err := p.newFace(float64(size)); err == nil {
			return face, SourceBuiltin
		}
	}
	return basicfont.Face7x13, SourceBasic
}

func (l *Loader) catalogFont(name string) (parsed, error) {
	path, ok := l.Catalog.Path(name)
	if !ok {
		return nil, fmt.Errorf("font %q: %w", name, card.ErrAssetNotFound)
	}
	if p, ok := l.fonts[path]; ok {
		return p, nil
	}
	p, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	if l.fonts == nil {
		l.fonts = make(map[string]parsed)
	}
	l.fonts[path] = p
	return p, nil
}

func (l *Loader) systemFont() parsed {
	if l.sysDone {
		return l.system
	}
	l.sysDone = true
	for _, path := range l.SystemFonts {
		p, err := parseFile(path)
		if err != nil {
			continue
		}
		l.system = p
		if l.Logger != nil {
			l.Logger.Infof("fonts", "system fallback font %s", path)
		}
		break
	}
	return l.system
}

func (l *Loader) builtinFont() parsed {
	if l.builtin != nil {
		return l.builtin
	}
	p, err := parseBytes(goregular.TTF)
	if err != nil {
		if l.Logger != nil {
			l.Logger.Errorf("fonts", "built-in font parse failed, using basicfont: %v", err)
		}
		return nil
	}
	l.builtin = p
	return p
}

func (l *Loader) warnOnce(name string, err error) {
	if l.warned == nil {
		l.warned = make(map[string]bool)
	}
	if l.warned[name] {
		return
	}
	l.warned[name] = true
	if l.Logger != nil {
		l.Logger.Errorf("fonts", "%v, falling back", err)
	}
}

func parseFile(path string) (parsed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("font %s: %w", path, card.ErrAssetNotFound)
		}
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	p, err := parseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	return p, nil
}

// parseBytes tries the sfnt parser first and freetype's truetype parser
// second; some older TrueType files only load with the latter.
func parseBytes(data []byte) (parsed, error) {
	f, otErr := opentype.Parse(data)
	if otErr == nil {
		return otFont{f: f}, nil
	}
	if tt, err := truetype.Parse(data); err == nil {
		return ttFont{f: tt}, nil
	}
	return nil, fmt.Errorf("%w: %v", card.ErrAssetDecode, otErr)
}
