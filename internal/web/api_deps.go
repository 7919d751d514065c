package web

import (
	"errors"
	"image"

	"github.com/rook-computer/crhashtag/internal/card"
	"github.com/rook-computer/crhashtag/internal/export"
	"github.com/rook-computer/crhashtag/internal/fonts"
	"github.com/rook-computer/crhashtag/internal/icons"
	"github.com/rook-computer/crhashtag/internal/palette"
	"github.com/rook-computer/crhashtag/internal/render"
	"github.com/rook-computer/crhashtag/internal/state"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// CardStore abstracts the card list used by the API.
//
// The concrete implementation is typically *state.Store.
type CardStore interface {
	Snapshot() state.State
	Get(i int) (card.Composition, error)
	Append(c card.Composition) int
	Delete(i int) error
	Replace(cards []card.Composition)
	Update(i int, fn func(*card.Composition)) error
	Select(i int) error
}

// CardRenderer renders a single card on the export canvas.
type CardRenderer interface {
	RenderOne(comp card.Composition) *image.RGBA
}

// CardExporter writes cards to disk.
type CardExporter interface {
	Export(comps []card.Composition, path string) (string, error)
	ExportAll(comps []card.Composition) []export.Result
}

type APIV1Deps struct {
	Store       CardStore
	Fonts       fonts.Catalog
	Icons       icons.Catalog
	Swatches    []palette.Swatch
	Renderer    CardRenderer
	Exporter    CardExporter
	PreviewSize int
	CanvasSize  int
	Logger      Logger
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Store == nil {
		out.Store = state.NewStore()
	}
	if out.Renderer == nil {
		out.Renderer = render.NewCompositor(nil, out.Icons, out.Logger)
	}
	if out.Exporter == nil {
		out.Exporter = NoopExporter{Err: errors.New("export not configured")}
	}
	if out.PreviewSize <= 0 {
		out.PreviewSize = render.DefaultPreviewSize
	}
	if out.CanvasSize <= 0 {
		out.CanvasSize = render.DefaultCanvasSize
	}
	return out
}

type NoopExporter struct{ Err error }

func (e NoopExporter) Export([]card.Composition, string) (string, error) {
	return "", e.err()
}

func (e NoopExporter) ExportAll(comps []card.Composition) []export.Result {
	var out []export.Result
	for i, c := range comps {
		if c.Active && c.HasText() {
			out = append(out, export.Result{Index: i, Err: e.err()})
		}
	}
	return out
}

func (e NoopExporter) err() error {
	if e.Err != nil {
		return e.Err
	}
	return errors.New("export not configured")
}
