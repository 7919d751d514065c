package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/crhashtag/internal/app"
	"github.com/rook-computer/crhashtag/internal/config"
	"github.com/rook-computer/crhashtag/internal/render/fbpreview"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Flags
	configPath := flag.String("config", "", "TOML config file; also configurable via "+config.EnvConfigFile)
	debug := flag.Bool("debug", false, "enable debug logging to the configured log path")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+config.EnvStdioLog)
	importPath := flag.String("import", "", "replace the cards with the ones in this text file (three lines per card)")
	doExport := flag.Bool("export", false, "render every active card onto one PNG")
	exportAll := flag.Bool("export-all", false, "write one PNG per active card with text")
	outPath := flag.String("out", "", "file for -export; default is a timestamped name in the output dir")
	outputDir := flag.String("output-dir", "", "override the output directory")
	fontName := flag.String("font", "", "font for imported cards without one; also configurable via "+config.EnvFont)
	search := flag.String("search", "", "rank the icon catalog against this query and exit")
	serve := flag.Bool("serve", false, "run the HTTP API")
	listen := flag.String("listen", "", "http listen address; also configurable via "+config.EnvListenAddr)
	dev := flag.Bool("dev", false, "enable permissive CORS; also configurable via "+config.EnvDevMode)
	staticDir := flag.String("static-dir", "", "serve a web UI from this directory")
	fb := flag.Bool("fb", false, "mirror the selected card on the framebuffer")
	flag.Parse()

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv(config.EnvStdioLog)
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		return 2
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *fontName != "" {
		cfg.DefaultFont = *fontName
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *staticDir != "" {
		cfg.StaticDir = *staticDir
	}
	cfg.DevMode = cfg.DevMode || *dev
	cfg.Debug = cfg.Debug || *debug

	// Local file logger when debug enabled
	var logger app.Logger = app.NoopLogger{}
	if cfg.Debug {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logger = app.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	a := app.New(cfg, logger)

	if *search != "" {
		for _, m := range a.SearchIcons(*search) {
			fmt.Printf("%6.1f  %s  %v\n", m.Score, m.Name, m.Terms)
		}
		return 0
	}

	if *importPath != "" {
		n, err := a.ImportFile(*importPath)
		if err != nil {
			fmt.Println("import error:", err)
			return 1
		}
		fmt.Printf("imported %d cards\n", n)
	}

	status := 0
	if *doExport {
		path, err := a.ExportCombined(*outPath)
		if err != nil {
			fmt.Println("export error:", err)
			status = 1
		} else {
			fmt.Println("image saved to:", path)
		}
	}
	if *exportAll {
		results, err := a.ExportAll()
		for _, r := range results {
			if r.Err == nil {
				fmt.Printf("card %d: %s\n", r.Index+1, r.Path)
			} else {
				fmt.Printf("card %d: %v\n", r.Index+1, r.Err)
			}
		}
		if err != nil {
			fmt.Println("export error:", err)
			status = 1
		}
	}

	if !*serve && !*fb {
		if *importPath == "" && !*doExport && !*exportAll {
			flag.Usage()
			return 2
		}
		return status
	}

	if *serve {
		a.Web = a.NewWebServer()
	}
	if *fb {
		a.Preview = fbpreview.New(cfg.FBDevice)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve {
		fmt.Println("serving on", cfg.ListenAddr)
	}
	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("app error:", err)
		return 1
	}
	if err := a.Stop(); err != nil {
		fmt.Println("app stop error:", err)
	}
	return status
}
