package export

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rook-computer/crhashtag/internal/card"
)

const (
	filePrefix = "CrHashtag_"
	slugRunes  = 20
	// invalidChars cannot appear in file names on common file systems.
	invalidChars = `\/*?:"<>|`
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Renderer paints compositions onto a canvas of the given size.
type Renderer interface {
	Render(comps []card.Composition, size image.Point) *image.RGBA
}

// Exporter writes rendered cards as PNG files.
type Exporter struct {
	Renderer   Renderer
	OutputDir  string
	CanvasSize int
	Logger     Logger
	Now        func() time.Time
}

// Result is the outcome of one card in a batch export.
type Result struct {
	Index int    `json:"index"`
	Path  string `json:"path,omitempty"`
	Err   error  `json:"-"`
}

// OutputPath builds dir/CrHashtag_<timestamp>[_<slug>].png from the first
// line of the first composition and makes sure dir exists.
func OutputPath(dir string, comps []card.Composition, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w: %v", dir, card.ErrOutputWrite, err)
	}
	name := filePrefix + now.Format("20060102_150405")
	if len(comps) > 0 {
		if slug := Slug(comps[0].Lines[0]); slug != "" {
			name += "_" + slug
		}
	}
	return filepath.Join(dir, name+".png"), nil
}

// Slug keeps the first 20 runes of text and drops characters that are not
// allowed in file names.
func Slug(text string) string {
	if r := []rune(text); len(r) > slugRunes {
		text = string(r[:slugRunes])
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidChars, r) {
			return -1
		}
		return r
	}, text)
}

// Export renders the active compositions onto one canvas and writes it to
// path, or to a timestamped file in OutputDir when path is empty. Any
// active composition failing validation blocks the export.
func (e *Exporter) Export(comps []card.Composition, path string) (string, error) {
	for i, c := range comps {
		if !c.Active {
			continue
		}
		if err := c.Validate(); err != nil {
			return "", fmt.Errorf("card %d: %w", i+1, err)
		}
	}
	return e.write(comps, path)
}

func (e *Exporter) write(comps []card.Composition, path string) (string, error) {
	if path == "" {
		var err error
		path, err = OutputPath(e.dir(), comps, e.now())
		if err != nil {
			return "", err
		}
	}
	img := e.Renderer.Render(comps, e.size())
	if err := WritePNG(path, img); err != nil {
		e.errorf("%v", err)
		return "", err
	}
	e.infof("wrote %s", path)
	return path, nil
}

// ExportAll writes CrHashtag_P<n>.png for every active card with text,
// numbering the exported cards from 1. A failing card is reported in its
// Result and the rest are still exported. Result errors carry no card
// prefix; Result.Index identifies the card.
func (e *Exporter) ExportAll(comps []card.Composition) []Result {
	var results []Result
	n := 0
	for i, c := range comps {
		if !c.Active || !c.HasText() {
			continue
		}
		n++
		path := filepath.Join(e.dir(), fmt.Sprintf("%sP%d.png", filePrefix, n))
		res := Result{Index: i}
		if err := c.Validate(); err != nil {
			res.Err = err
		} else if err := os.MkdirAll(e.dir(), 0o755); err != nil {
			res.Err = fmt.Errorf("create %s: %w: %v", e.dir(), card.ErrOutputWrite, err)
		} else {
			res.Path, res.Err = e.write([]card.Composition{c}, path)
		}
		if res.Err != nil {
			e.errorf("card %d not exported: %v", i+1, res.Err)
		}
		results = append(results, res)
	}
	return results
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// WritePNG encodes img as PNG at path. Failures wrap card.ErrOutputWrite.
func WritePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w: %v", path, card.ErrOutputWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w: %v", path, card.ErrOutputWrite, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode %s: %w: %v", path, card.ErrOutputWrite, err)
	}
	return nil
}

// IsWriteError reports whether err came from writing the output file.
func IsWriteError(err error) bool {
	return errors.Is(err, card.ErrOutputWrite)
}

func (e *Exporter) dir() string {
	if e.OutputDir == "" {
		return "OUTPUT"
	}
	return e.OutputDir
}

func (e *Exporter) size() image.Point {
	side := e.CanvasSize
	if side <= 0 {
		side = 1200
	}
	return image.Pt(side, side)
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Exporter) infof(format string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Infof("export", format, args...)
	}
}

func (e *Exporter) errorf(format string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Errorf("export", format, args...)
	}
}
