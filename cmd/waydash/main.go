// Command waydash shows a shared-memory dashboard surface on a Wayland
// compositor, as a layer-shell overlay or a plain window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/waydash/waydash"
	"github.com/waydash/waydash/buffer"
	"github.com/waydash/waydash/config"
	"github.com/waydash/waydash/layout"
	"github.com/waydash/waydash/render"
	"github.com/waydash/waydash/session"
	"github.com/waydash/waydash/wayland"
	"github.com/waydash/waydash/widget"
)

func main() {
	var (
		configPath = flag.String("config", config.Path(), "configuration file")
		mode       = flag.String("mode", "", "override surface mode (layer-shell or window)")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	waydash.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*configPath, *mode); err != nil {
		fmt.Fprintln(os.Stderr, "waydash:", err)
		os.Exit(1)
	}
}

func run(configPath, modeOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if modeOverride != "" {
		cfg.Mode = modeOverride
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	background, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}

	client, err := wayland.Connect(opts)
	if err != nil {
		return err
	}
	defer client.Close()

	// A launcher may hand us a token so the compositor focuses the
	// surface right away.
	if token := os.Getenv("XDG_ACTIVATION_TOKEN"); token != "" && client.HasActivation() {
		if err := client.Activate(token); err != nil {
			waydash.Logger().Warn("activation failed", "error", err)
		}
		os.Unsetenv("XDG_ACTIVATION_TOKEN")
	}

	table, root := buildDashboard(cfg.Margin)
	swap := buffer.NewSwap(client)
	orch := render.New(client, swap, table, root, background)
	sess := session.New(client, orch, swap)

	stopWatch, err := config.Watch(configPath, func(cfg config.Config) {
		sess.Do(func() {
			if col, err := cfg.BackgroundColor(); err == nil {
				orch.SetBackground(col)
			}
		})
	})
	if err != nil {
		waydash.Logger().Warn("config not watched", "error", err)
	} else {
		defer stopWatch()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = sess.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, session.ErrClosed) {
		return nil
	}
	return err
}

// buildDashboard assembles the default widget set: a status row packed
// against the right edge above a content column.
func buildDashboard(margin uint32) (*widget.Table, *layout.Node) {
	table := widget.NewTable(
		widget.NewSwatch(48, 48, waydash.RGB(0.8, 0.2, 0.2), waydash.RGB(0.2, 0.8, 0.2), waydash.RGB(0.2, 0.2, 0.8)),
		widget.NewSwatch(48, 48, waydash.RGB(0.9, 0.7, 0.1), waydash.RGB(0.1, 0.7, 0.9)),
		widget.NewSpacer(16, 48, waydash.ARGB(0, 0, 0, 0)),
		widget.NewSwatch(48, 48, waydash.RGB(0.6, 0.6, 0.6), waydash.RGB(0.9, 0.9, 0.9)),
	)
	pad := waydash.Insets{Left: margin, Top: margin, Right: margin, Bottom: margin}
	root := layout.Margin(pad, layout.Vertical(
		layout.InvertedHorizontal(layout.Leaf(0), layout.Leaf(2), layout.Leaf(1)),
		layout.Leaf(3),
	))
	return table, root
}
