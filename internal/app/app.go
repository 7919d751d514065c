package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/crhashtag/internal/card"
	"github.com/rook-computer/crhashtag/internal/config"
	"github.com/rook-computer/crhashtag/internal/export"
	"github.com/rook-computer/crhashtag/internal/fonts"
	"github.com/rook-computer/crhashtag/internal/icons"
	"github.com/rook-computer/crhashtag/internal/palette"
	"github.com/rook-computer/crhashtag/internal/render"
	"github.com/rook-computer/crhashtag/internal/render/fbpreview"
	"github.com/rook-computer/crhashtag/internal/state"
	"github.com/rook-computer/crhashtag/internal/system"
	"github.com/rook-computer/crhashtag/internal/web"
)

// ErrNoCards is returned by operations that need at least one card.
var ErrNoCards = errors.New("no cards")

type App struct {
	Config     config.Config
	Store      *state.Store
	Fonts      fonts.Catalog
	Icons      icons.Catalog
	Swatches   []palette.Swatch
	Compositor *render.Compositor
	Exporter   *export.Exporter
	Logger     Logger

	// Web and Preview are optional; Start runs whichever is set.
	Web     web.Server
	Preview *fbpreview.FBPreview

	exitOnce atomic.Bool
	exitCh   chan error
}

// New loads the asset catalogs named by cfg and wires the renderer and
// exporter. A missing asset directory is logged and leaves that catalog
// empty.
func New(cfg config.Config, logger Logger) *App {
	if logger == nil {
		logger = NoopLogger{}
	}
	app := &App{Config: cfg, Store: state.NewStore(), Logger: logger, exitCh: make(chan error, 1)}

	var err error
	if app.Fonts, err = fonts.LoadCatalog(cfg.FontDir); err != nil {
		logger.Errorf("app", "font catalog: %v", err)
	}
	if app.Icons, err = icons.LoadCatalog(cfg.IconDir); err != nil {
		logger.Errorf("app", "icon catalog: %v", err)
	}
	if app.Swatches, err = palette.LoadSwatches(cfg.SwatchDir); err != nil {
		logger.Errorf("app", "swatch catalog: %v", err)
	}
	logger.Infof("app", "catalogs: %d fonts, %d icons, %d swatches", len(app.Fonts.Names), len(app.Icons.Names), len(app.Swatches))

	app.Compositor = render.NewCompositor(fonts.NewLoader(app.Fonts, logger), app.Icons, logger)
	app.Exporter = &export.Exporter{
		Renderer:   app.Compositor,
		OutputDir:  cfg.OutputDir,
		CanvasSize: cfg.CanvasSize,
		Logger:     logger,
	}
	return app
}

// NewWebServer builds the HTTP API over the app's store and catalogs.
func (app *App) NewWebServer() *web.HTTPServer {
	srv := web.NewHTTPServer(app.Config.ListenAddr, web.APIV1Deps{
		Store:       app.Store,
		Fonts:       app.Fonts,
		Icons:       app.Icons,
		Swatches:    app.Swatches,
		Renderer:    app.Compositor,
		Exporter:    app.Exporter,
		PreviewSize: app.Config.PreviewSize,
		CanvasSize:  app.Config.CanvasSize,
		Logger:      app.Logger,
	})
	srv.DevMode = app.Config.DevMode
	srv.StaticDir = app.Config.StaticDir
	srv.Logger = app.Logger
	return srv
}

// ImportFile replaces every card with the cards of an import file.
// Imported cards get the default font so they can be exported as is.
func (app *App) ImportFile(path string) (int, error) {
	cards, err := card.LoadImportFile(path)
	if err != nil {
		return 0, err
	}
	if name := app.DefaultFont(); name != "" {
		for i := range cards {
			if len(cards[i].Fonts) == 0 {
				cards[i].Fonts = []string{name}
			}
		}
	}
	app.Store.Replace(cards)
	app.Logger.Infof("app", "imported %d cards from %s", len(cards), path)
	return len(cards), nil
}

// DefaultFont returns the configured default font, else the first
// catalog font, else "".
func (app *App) DefaultFont() string {
	if name := app.Config.DefaultFont; name != "" {
		if !app.Fonts.Contains(name) {
			app.Logger.Errorf("app", "default font %q is not in the font catalog, fallback fonts will be used", name)
		}
		return name
	}
	if len(app.Fonts.Names) > 0 {
		return app.Fonts.Names[0]
	}
	return ""
}

// ExportCurrent writes the selected card to path, or to a timestamped
// file in the output directory when path is empty.
func (app *App) ExportCurrent(path string) (string, error) {
	_, c, ok := app.Store.Current()
	if !ok {
		return "", ErrNoCards
	}
	c.Active = true
	return app.Exporter.Export([]card.Composition{c}, path)
}

// ExportCombined writes every active card onto one canvas.
func (app *App) ExportCombined(path string) (string, error) {
	snap := app.Store.Snapshot()
	if len(snap.Cards) == 0 {
		return "", ErrNoCards
	}
	return app.Exporter.Export(snap.Cards, path)
}

// ExportAll writes one file per active card with text.
func (app *App) ExportAll() ([]export.Result, error) {
	results := app.Exporter.ExportAll(app.Store.Snapshot().Cards)
	if len(results) == 0 {
		return nil, ErrNoCards
	}
	if failed := export.Failed(results); len(failed) > 0 {
		return results, fmt.Errorf("%d of %d cards failed: %w", len(failed), len(results), failed[0].Err)
	}
	return results, nil
}

// SearchIcons ranks the icon catalog against query.
func (app *App) SearchIcons(query string) []icons.Match {
	return app.Icons.Search(query)
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start runs the web server and framebuffer preview until ctx is done or
// Exit is called.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup

	if app.Web != nil {
		if err := app.Web.Start(runCtx); err != nil {
			app.Logger.Errorf("app", "web server start error: %v", err)
			return err
		}
		defer func() { _ = app.Web.Stop() }()
	}

	if app.Preview != nil {
		app.Preview.Logger = app.Logger
		if err := app.Preview.Start(runCtx); err != nil {
			app.Logger.Errorf("app", "framebuffer start error: %v", err)
			return err
		}
		defer func() { _ = app.Preview.Stop() }()

		restore := system.EnterPreviewConsole(app.Logger)
		defer restore()

		system.WatchKeys(runCtx, app.Logger, app.handleKey)

		wg.Add(1)
		go func() {
			defer wg.Done()
			app.Preview.RunLoop(runCtx, app.Store, app.Compositor)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	cancel()
	wg.Wait()
	return err
}

func (app *App) handleKey(k system.Key) {
	action := system.ActionFor(k)
	switch action {
	case system.ActionNone:
		return
	case system.ActionExit:
		app.Logger.Infof("input", "exit key pressed")
		app.Exit(nil)
		return
	}
	cur, _, ok := app.Store.Current()
	if !ok {
		return
	}
	next := system.Step(action, cur, app.Store.Len())
	if err := app.Store.Select(next); err != nil {
		app.Logger.Errorf("input", "select card %d: %v", next+1, err)
	}
}

func (app *App) Stop() error {
	var errs []error
	if app.Web != nil {
		errs = append(errs, app.Web.Stop())
	}
	if app.Preview != nil {
		errs = append(errs, app.Preview.Stop())
	}
	return errors.Join(errs...)
}
