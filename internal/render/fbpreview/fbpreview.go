package fbpreview

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/rook-computer/crhashtag/internal/card"
	"github.com/rook-computer/crhashtag/internal/render"
	"github.com/rook-computer/crhashtag/internal/render/layout"
	"github.com/rook-computer/crhashtag/internal/state"
	xdraw "golang.org/x/image/draw"
)

// Device is a pixel sink such as a Linux framebuffer.
type Device interface {
	Bounds() image.Rectangle
	Set(x, y int, c color.Color)
	Close() error
}

// Source is the part of state.Store the loop reads.
type Source interface {
	Version() uint64
	Snapshot() state.State
}

// Renderer draws one card on the export canvas.
type Renderer interface {
	RenderOne(comp card.Composition) *image.RGBA
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// FBPreview mirrors the selected card onto a framebuffer, letterboxed on
// the preview background.
type FBPreview struct {
	Path       string
	Background color.Color
	Interval   time.Duration
	Logger     Logger

	// Open is used by Start; nil means the platform framebuffer.
	Open func(path string) (Device, error)

	mu    sync.Mutex
	dev   Device
	frame *image.RGBA
}

func New(path string) *FBPreview {
	return &FBPreview{Path: path, Background: render.PreviewBackground, Interval: time.Second / 10}
}

func (p *FBPreview) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev != nil {
		return nil
	}
	open := p.Open
	if open == nil {
		open = openFramebuffer
	}
	dev, err := open(p.Path)
	if err != nil {
		return err
	}
	p.dev = dev
	bounds := dev.Bounds()
	p.infof("framebuffer %s open, bounds=%dx%d", p.Path, bounds.Dx(), bounds.Dy())
	return nil
}

func (p *FBPreview) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev == nil {
		return nil
	}
	err := p.dev.Close()
	p.dev = nil
	return err
}

// Show scales img into the largest centered square of the device.
// Transparent card pixels show the background.
func (p *FBPreview) Show(img image.Image) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev == nil {
		return errors.New("framebuffer not open")
	}
	bounds := p.dev.Bounds()
	if p.frame == nil || p.frame.Bounds() != bounds {
		p.frame = image.NewRGBA(bounds)
	}
	draw.Draw(p.frame, bounds, image.NewUniform(p.background()), image.Point{}, draw.Src)
	if img != nil {
		square := layout.FitSquare(bounds)
		xdraw.NearestNeighbor.Scale(p.frame, square, img, img.Bounds(), xdraw.Over, nil)
	}
	blit(p.dev, p.frame)
	return nil
}

// RunLoop redraws whenever the store version changes, until ctx is done.
func (p *FBPreview) RunLoop(ctx context.Context, src Source, r Renderer) {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second / 10
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var shown uint64
	first := true
	for {
		if v := src.Version(); first || v != shown {
			first = false
			snap := src.Snapshot()
			shown = snap.Version
			p.redraw(snap, r)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *FBPreview) redraw(snap state.State, r Renderer) {
	var img image.Image
	if c, ok := snap.Current(); ok && r != nil {
		img = r.RenderOne(c)
	}
	if err := p.Show(img); err != nil {
		p.errorf("redraw: %v", err)
		return
	}
	p.infof("redraw done, version=%d", snap.Version)
}

func (p *FBPreview) background() color.Color {
	if p.Background == nil {
		return render.PreviewBackground
	}
	return p.Background
}

func blit(dev Device, frame *image.RGBA) {
	b := frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := frame.RGBAAt(x, y)
			px.A = 0xFF
			dev.Set(x, y, px)
		}
	}
}

func (p *FBPreview) infof(format string, args ...interface{}) {
	if p.Logger != nil {
		p.Logger.Infof("fb", format, args...)
	}
}

func (p *FBPreview) errorf(format string, args ...interface{}) {
	if p.Logger != nil {
		p.Logger.Errorf("fb", format, args...)
	}
}
