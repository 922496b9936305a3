// Command keyrepeat-gui is the windowed keyboard repeater.
package main

import (
	"flag"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"keyrepeat/cmd/keyrepeat-gui/internal/theme"
	"keyrepeat/cmd/keyrepeat-gui/internal/ui"
	"keyrepeat/internal/config"
	"keyrepeat/internal/controller"
	"keyrepeat/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Settings file (default: the last-session file)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}

	go func() {
		w := new(app.Window)
		w.Option(app.Title("Keyboard Repeater"))
		w.Option(app.Size(unit.Dp(1000), unit.Dp(760)))

		if err := run(w, path); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func newLogger(path string) (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Output = "file"
	cfg.FilePath = config.LogPath()
	cfg.FileEnabled = false

	level := os.Getenv(config.EnvLogLevel)
	if level == "" {
		if s, err := config.Load(path); err == nil {
			level = s.LogLevel
		}
	}
	if level != "" {
		lvl, err := logging.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return logging.New(cfg)
}

func run(w *app.Window, path string) error {
	logger, err := newLogger(path)
	if err != nil {
		return err
	}
	defer logger.Close()

	loop := controller.NewLoop(
		controller.WithWake(w.Invalidate),
		controller.WithLoopLogger(logger.Logger),
	)
	ctrl, err := controller.New(controller.Config{
		Invoke: loop.Invoke,
		Store:  config.NewLoader(path, config.WithLogger(logger.Logger)),
		Logger: logger,
		Watch:  true,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	initErr := ctrl.Init()

	t := theme.New(material.NewTheme())
	dashboard := ui.NewDashboard(t, ctrl, loop.Invoke, func() {
		w.Perform(system.ActionClose)
	})
	if initErr != nil {
		logger.Warn("hotkeys unavailable", "error", initErr)
		dashboard.SetMessage(ui.Message{Text: "Hotkeys unavailable: " + initErr.Error(), Severity: ui.Warning})
	}

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			loop.Drain()
			gtx := app.NewContext(&ops, e)
			dashboard.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}
