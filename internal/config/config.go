package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

const (
	EnvConfigFile = "CRHASHTAG_CONFIG"
	EnvFontDir    = "CRHASHTAG_FONT_DIR"
	EnvFont       = "CRHASHTAG_FONT"
	EnvIconDir    = "CRHASHTAG_ICON_DIR"
	EnvSwatchDir  = "CRHASHTAG_SWATCH_DIR"
	EnvOutputDir  = "CRHASHTAG_OUTPUT_DIR"
	EnvCanvas     = "CRHASHTAG_CANVAS"
	EnvPreview    = "CRHASHTAG_PREVIEW"
	EnvListenAddr = "CRHASHTAG_LISTEN"
	EnvDevMode    = "CRHASHTAG_DEV"
	EnvFBDevice   = "CRHASHTAG_FB"
	EnvStdioLog   = "CRHASHTAG_STDIO_LOG"
)

// Config holds asset locations and runtime settings. Directories are
// relative to the working directory unless absolute.
type Config struct {
	FontDir     string `toml:"font_dir"`
	DefaultFont string `toml:"default_font"`
	IconDir     string `toml:"icon_dir"`
	SwatchDir   string `toml:"swatch_dir"`
	OutputDir   string `toml:"output_dir"`
	CanvasSize  int    `toml:"canvas_size"`
	PreviewSize int    `toml:"preview_size"`

	ListenAddr string `toml:"listen_addr"`
	DevMode    bool   `toml:"dev_mode"`
	StaticDir  string `toml:"static_dir"`

	FBDevice string `toml:"fb_device"`
	LogPath  string `toml:"log_path"`
	Debug    bool   `toml:"debug"`
}

func Default() Config {
	return Config{
		FontDir:     "FONT MAP",
		IconDir:     "ICONS",
		SwatchDir:   "COLOR MAP",
		OutputDir:   "OUTPUT",
		CanvasSize:  1200,
		PreviewSize: 800,
		ListenAddr:  ":8080",
		FBDevice:    "/dev/fb0",
		LogPath:     "./crhashtag-debug.log",
	}
}

// Load returns the defaults overlaid with the TOML file at path (or the
// file named by CRHASHTAG_CONFIG) and then with the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from CRHASHTAG_* variables.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		EnvFontDir:    &c.FontDir,
		EnvFont:       &c.DefaultFont,
		EnvIconDir:    &c.IconDir,
		EnvSwatchDir:  &c.SwatchDir,
		EnvOutputDir:  &c.OutputDir,
		EnvListenAddr: &c.ListenAddr,
		EnvFBDevice:   &c.FBDevice,
	}
	for env, dst := range strs {
		if raw := os.Getenv(env); raw != "" {
			*dst = raw
		}
	}

	ints := map[string]*int{
		EnvCanvas:  &c.CanvasSize,
		EnvPreview: &c.PreviewSize,
	}
	for env, dst := range ints {
		raw := os.Getenv(env)
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be an integer (got %q): %w", env, raw, err)
		}
		*dst = parsed
	}

	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		c.DevMode = parsed
	}
	return nil
}

func (c Config) Validate() error {
	if c.CanvasSize <= 0 {
		return fmt.Errorf("canvas size must be positive (got %d)", c.CanvasSize)
	}
	if c.PreviewSize <= 0 {
		return fmt.Errorf("preview size must be positive (got %d)", c.PreviewSize)
	}
	return nil
}
