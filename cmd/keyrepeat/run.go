package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"keyrepeat/internal/config"
	"keyrepeat/internal/controller"
	"keyrepeat/internal/engine"
	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/logging"
	"keyrepeat/internal/state"
)

// app is a controller driven by a Loop on the main goroutine.
type app struct {
	loop   *controller.Loop
	ctrl   *controller.Controller
	logger *logging.Logger
}

func newApp(path string, logEnabled, jsonLogs, watch bool) (*app, error) {
	logger, err := newLogger(logLevelFor(path), logEnabled, jsonLogs)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	loop := controller.NewLoop(controller.WithLoopLogger(logger.Logger))
	ctrl, err := controller.New(controller.Config{
		Invoke:   loop.Invoke,
		Store:    config.NewLoader(path, config.WithLogger(logger.Logger)),
		Logger:   logger,
		Headless: true,
		Watch:    watch,
	})
	if err != nil {
		logger.Close()
		return nil, err
	}
	return &app{loop: loop, ctrl: ctrl, logger: logger}, nil
}

func (a *app) close() {
	if err := a.ctrl.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	a.logger.Close()
}

func cmdRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Settings file (default: the last-session file)")
	keys := fs.String("keys", "", "Comma-separated keys to repeat")
	interval := fs.String("interval", "", "Interval between cycles")
	unit := fs.String("unit", "", "Interval unit: seconds or minutes")
	targetExe := fs.String("target", "", "Executable whose window receives the keys")
	startNow := fs.Bool("start", false, "Start repeating immediately")
	logEnabled := fs.Bool("log", false, "Write the repeat log")
	save := fs.Bool("save", false, "Save the resulting settings as the default")
	noWatch := fs.Bool("no-watch", false, "Do not reload the settings file when it changes")
	showMetrics := fs.Bool("metrics", false, "Print metrics on exit (JSON with --json)")
	jsonLogs := fs.Bool("json", false, "Log and print metrics in JSON")
	fs.Parse(os.Args[2:])

	path := settingsPath(*configPath)
	a, err := newApp(path, *logEnabled, *jsonLogs, !*noWatch)
	if err != nil {
		fatalf("%v", err)
	}
	defer a.close()

	a.ctrl.Subscribe(printEvent)

	hotkeysOK := true
	if err := a.ctrl.Init(); err != nil {
		hotkeysOK = false
		fmt.Fprintf(os.Stderr, "Warning: hotkeys unavailable: %v\n", err)
	}

	if *keys != "" {
		a.ctrl.ClearSelection()
		for _, k := range splitList(*keys) {
			id := keycatalog.Normalize(keycatalog.ID(k))
			if !keycatalog.Known(id) {
				fmt.Fprintf(os.Stderr, "Warning: %q is not a known key; it will be typed as a character if possible\n", k)
			}
			if err := a.ctrl.SelectKey(id); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", k, err)
			}
		}
	}
	if *interval != "" || *unit != "" {
		text, u := a.ctrl.Settings().Interval()
		if *interval != "" {
			text = *interval
		}
		if *unit != "" {
			u = state.ParseUnit(*unit)
		}
		a.ctrl.SetInterval(text, u)
	}
	if *targetExe != "" {
		a.ctrl.SetTargetExe(*targetExe)
	}
	if *save {
		if err := a.ctrl.SaveDefault(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			fmt.Printf("Settings saved to %s\n", path)
		}
	}

	printStatus(a.ctrl.Status(), hotkeysOK)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *startNow {
		a.loop.Invoke(func() {
			if err := a.ctrl.Start(); err != nil && !errors.Is(err, engine.ErrNoKeysSelected) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		})
	} else if !hotkeysOK {
		fmt.Fprintln(os.Stderr, "Nothing to do: hotkeys are unavailable and --start was not given.")
		return
	}

	a.loop.Run(ctx)
	fmt.Println()
	fmt.Println("Exiting.")

	if *showMetrics {
		a.ctrl.Stop()
		reg := a.ctrl.Metrics().Registry()
		if *jsonLogs {
			reg.WriteJSON(os.Stdout)
		} else {
			reg.WritePrometheus(os.Stdout)
		}
	}
}

func cmdHotkey() {
	fs := flag.NewFlagSet("hotkey", flag.ExitOnError)
	configPath := fs.String("config", "", "Settings file to update (default: the last-session file)")
	timeout := fs.Duration("timeout", 30*time.Second, "How long to wait for a key press")
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: keyrepeat hotkey <start|stop> [--config file] [--timeout 30s]")
		os.Exit(1)
	}
	fs.Parse(os.Args[3:])

	var which state.Which
	switch strings.ToLower(os.Args[2]) {
	case "start":
		which = state.Start
	case "stop":
		which = state.Stop
	default:
		fatalf("unknown hotkey %q (want start or stop)", os.Args[2])
	}

	path := settingsPath(*configPath)
	a, err := newApp(path, false, false, false)
	if err != nil {
		fatalf("%v", err)
	}
	defer a.close()

	if err := a.ctrl.Init(); err != nil {
		fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result error
	a.ctrl.Subscribe(func(ev controller.Event) {
		if ev.Kind != controller.HotkeyCaptured {
			return
		}
		result = ev.Err
		if ev.Err == nil {
			if err := a.ctrl.SaveDefault(); err != nil {
				result = err
			} else {
				fmt.Printf("%s hotkey set to %s\n", capitalize(which.String()), keycatalog.Label(ev.Key))
				if ev.Deselected {
					fmt.Printf("%s was removed from the selected keys.\n", keycatalog.Label(ev.Key))
				}
			}
		}
		cancel()
	})

	if err := a.ctrl.CaptureHotkey(which); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Press the key to use as the %s hotkey...\n", which.String())

	a.loop.Run(ctx)
	switch {
	case result != nil:
		fatalf("%v", result)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		fatalf("no key pressed within %s", *timeout)
	}
}

func printStatus(st controller.Status, hotkeysOK bool) {
	fmt.Println("=== Keyboard Repeater ===")
	fmt.Println()
	if len(st.Selected) == 0 {
		fmt.Println("Keys:      (none selected)")
	} else {
		labels := make([]string, 0, len(st.Selected))
		for _, id := range st.Selected {
			labels = append(labels, keycatalog.Label(id))
		}
		fmt.Printf("Keys:      %s\n", strings.Join(labels, " "))
	}
	fmt.Printf("Interval:  %s %s\n", st.IntervalText, strings.ToLower(st.Unit.String()))
	if st.TargetExe == "" {
		fmt.Println("Target:    foreground window")
	} else {
		fmt.Printf("Target:    %s\n", st.TargetExe)
	}
	if hotkeysOK {
		fmt.Printf("Hotkeys:   start %s, stop %s\n", keycatalog.Label(st.Bindings.Start), keycatalog.Label(st.Bindings.Stop))
	}
	if st.LogEnabled {
		fmt.Printf("Log:       %s\n", st.LogPath)
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to exit.")
}

func printEvent(ev controller.Event) {
	switch ev.Kind {
	case controller.StateChanged:
		switch {
		case ev.State == engine.Running:
			fmt.Printf("[%s] Running\n", time.Now().Format("15:04:05"))
		case ev.Err != nil:
			fmt.Printf("[%s] Stopped: %v\n", time.Now().Format("15:04:05"), ev.Err)
		default:
			fmt.Printf("[%s] Stopped\n", time.Now().Format("15:04:05"))
		}
	case controller.SettingsChanged:
		fmt.Printf("[%s] Settings reloaded\n", time.Now().Format("15:04:05"))
		if len(ev.Dropped) > 0 {
			fmt.Printf("           dropped hotkeys from selection: %v\n", ev.Dropped)
		}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
