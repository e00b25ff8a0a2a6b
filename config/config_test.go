package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waydash/waydash"
	"github.com/waydash/waydash/wayland"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, "mode = \"window\"\nwidth = 800\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "window", cfg.Mode)
	assert.Equal(t, uint32(800), cfg.Width)
	assert.Equal(t, Default().Height, cfg.Height)
	assert.Equal(t, Default().Background, cfg.Background)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	for name, content := range map[string]string{
		"syntax":      "mode = [broken",
		"background":  "background = \"chartreuse\"",
		"mode":        "mode = \"hologram\"",
		"layer":       "layer = \"basement\"",
		"output mode": "output_mode = \"some\"",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_BackgroundColor(t *testing.T) {
	cfg := Default()
	cfg.Background = "ff0000"
	col, err := cfg.BackgroundColor()
	require.NoError(t, err)
	assert.Equal(t, waydash.RGB(1, 0, 0).ARGB8888(), col.ARGB8888())
}

func TestConfig_Options(t *testing.T) {
	cfg := Default()
	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, wayland.ModeLayerShell, opts.Mode)
	assert.Equal(t, wayland.LayerOverlay, opts.Layer)
	assert.Equal(t, wayland.KeyboardInteractivityExclusive, opts.KeyboardInteractivity)
	assert.Equal(t, "waydash", opts.Namespace)

	assert.Equal(t, wayland.OutputModeActive, opts.OutputMode)

	cfg.Mode = "window"
	cfg.Layer = "top"
	cfg.OutputMode = "all"
	opts, err = cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, wayland.ModeWindow, opts.Mode)
	assert.Equal(t, wayland.LayerTop, opts.Layer)
	assert.Equal(t, wayland.OutputModeAll, opts.OutputMode)
}

func TestWatch_DeliversCleanReloads(t *testing.T) {
	path := writeConfig(t, "width = 100\n")
	changes := make(chan Config, 4)
	stop, err := Watch(path, func(cfg Config) { changes <- cfg })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("width = 200\n"), 0o644))
	select {
	case cfg := <-changes:
		assert.Equal(t, uint32(200), cfg.Width)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload delivered")
	}

	// A broken save is skipped, then the fixed one arrives.
	require.NoError(t, os.WriteFile(path, []byte("width = [oops"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("width = 300\n"), 0o644))
	deadline := time.After(2 * time.Second)
	for {
		select {
		case cfg := <-changes:
			// Editors and the watcher can double-report earlier writes;
			// only the repaired value matters.
			if cfg.Width == 300 {
				return
			}
		case <-deadline:
			t.Fatal("fixed config never delivered")
		}
	}
}
