// Package config loads the dashboard configuration from a TOML file and
// watches it for live edits.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/waydash/waydash"
	"github.com/waydash/waydash/wayland"
)

// Config is the on-disk configuration. Zero values fall back to the
// defaults below, so a partial file is fine.
type Config struct {
	// Mode is "layer-shell" or "window".
	Mode string `toml:"mode"`
	// Layer is "background", "bottom", "top", or "overlay".
	Layer  string `toml:"layer"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	// Background is an RRGGBB or RRGGBBAA hex color.
	Background string `toml:"background"`
	// Margin is the padding between the surface edge and the widgets.
	Margin    uint32 `toml:"margin"`
	Namespace string `toml:"namespace"`
	Title     string `toml:"title"`
	AppID     string `toml:"app_id"`
	// OutputMode is "active" (one surface, compositor placement) or
	// "all" (one surface per output).
	OutputMode string `toml:"output_mode"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Mode:       "layer-shell",
		Layer:      "overlay",
		Width:      1024,
		Height:     640,
		Background: "282828e6",
		Margin:     8,
		Namespace:  "waydash",
		Title:      "waydash",
		AppID:      "waydash",
		OutputMode: "active",
	}
}

// Path returns the config file location under XDG_CONFIG_HOME.
func Path() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "waydash", "config.toml")
}

// Load reads path, layering the file over the defaults. A missing file
// is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if _, err := cfg.BackgroundColor(); err != nil {
		return Default(), err
	}
	if _, err := cfg.Options(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// BackgroundColor decodes the background hex color.
func (c Config) BackgroundColor() (waydash.Color, error) {
	col, err := waydash.Hex(c.Background)
	if err != nil {
		return waydash.Color{}, fmt.Errorf("config: background: %w", err)
	}
	return col, nil
}

// Options translates the config into compositor connection options.
func (c Config) Options() (wayland.Options, error) {
	opts := wayland.Options{
		Width:                 c.Width,
		Height:                c.Height,
		Anchor:                0, // centered
		KeyboardInteractivity: wayland.KeyboardInteractivityExclusive,
		Namespace:             c.Namespace,
		Title:                 c.Title,
		AppID:                 c.AppID,
	}

	switch c.Mode {
	case "layer-shell", "":
		opts.Mode = wayland.ModeLayerShell
	case "window":
		opts.Mode = wayland.ModeWindow
	default:
		return opts, fmt.Errorf("config: unknown mode %q", c.Mode)
	}

	switch c.Layer {
	case "background":
		opts.Layer = wayland.LayerBackground
	case "bottom":
		opts.Layer = wayland.LayerBottom
	case "top":
		opts.Layer = wayland.LayerTop
	case "overlay", "":
		opts.Layer = wayland.LayerOverlay
	default:
		return opts, fmt.Errorf("config: unknown layer %q", c.Layer)
	}

	switch c.OutputMode {
	case "active", "":
		opts.OutputMode = wayland.OutputModeActive
	case "all":
		opts.OutputMode = wayland.OutputModeAll
	default:
		return opts, fmt.Errorf("config: unknown output mode %q", c.OutputMode)
	}
	return opts, nil
}

// Watch reloads path on every write and hands the result to onChange.
// It returns a stop function. Only changes that parse cleanly are
// delivered; broken intermediate saves are logged and skipped.
func Watch(path string, onChange func(Config)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	// Watch the directory: editors replace the file on save, which
	// drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != path || !ev.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					waydash.Logger().Warn("config reload skipped", "error", err)
					continue
				}
				waydash.Logger().Info("config reloaded", "path", path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				waydash.Logger().Warn("config watcher error", "error", err)
			}
		}
	}()
	return func() { watcher.Close() }, nil
}
