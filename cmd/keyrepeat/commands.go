package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"time"

	"keyrepeat/internal/config"
	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/logging"
	"keyrepeat/internal/target"
)

func cmdKeys() {
	flags := flag.NewFlagSet("keys", flag.ExitOnError)
	layout := flags.Bool("layout", false, "Print the keys as an on-screen keyboard")
	flags.Parse(os.Args[2:])

	if *layout {
		printLayout("Main", keycatalog.MainLayout())
		printLayout("Numpad", keycatalog.NumpadLayout())
		return
	}

	fmt.Printf("%-12s %-10s %-6s %-4s %s\n", "ID", "LABEL", "VK", "EXT", "NAME")
	for _, id := range keycatalog.All() {
		r := keycatalog.Representation(id)
		ext := ""
		if r.Extended {
			ext = "yes"
		}
		fmt.Printf("%-12s %-10s 0x%02X   %-4s %s\n", id, keycatalog.Label(id), r.VK, ext, r.Name)
	}
	fmt.Printf("\n%d keys (%s)\n", len(keycatalog.All()), runtime.GOOS)
}

func printLayout(title string, rows []keycatalog.Row) {
	fmt.Printf("%s:\n", title)
	for _, row := range rows {
		var b strings.Builder
		b.WriteString(strings.Repeat(" ", row.Indent/18))
		for _, k := range row.Caps {
			width := k.Width
			if width == 0 {
				width = 4
			}
			label := k.Label
			if len(label) > width {
				label = label[:width]
			}
			fmt.Fprintf(&b, "[%-*s]", width, label)
		}
		fmt.Println(strings.TrimRight(b.String(), " "))
	}
	fmt.Println()
}

func cmdConfig() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, `Usage: keyrepeat config <action> [args]

ACTIONS:
    path                  Print the default settings file path
    show [file]           Print the settings after migration and overrides
    validate <file>       Check a settings file
    convert <in> <out>    Convert between .json, .toml and .yaml
    reset                 Overwrite the default settings file with defaults`)
		os.Exit(1)
	}

	action := os.Args[2]
	args := os.Args[3:]

	switch action {
	case "path":
		fmt.Println(config.DefaultPath())

	case "show":
		path := config.DefaultPath()
		if len(args) > 0 {
			path = args[0]
		}
		l := config.NewLoader(path)
		s, err := l.Load()
		if err != nil {
			fatalf("%v", err)
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "(%s does not exist; showing defaults)\n", path)
		}
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Println(string(data))

	case "validate":
		if len(args) < 1 {
			fatalf("usage: keyrepeat config validate <file>")
		}
		s, err := config.Load(args[0])
		if err != nil {
			fatalf("%v", err)
		}
		warnings := config.ValidateSettings(s).Warnings()
		for _, w := range warnings {
			fmt.Printf("warning: %s\n", w.Error())
		}
		fmt.Printf("%s: OK (%d keys, %d warnings)\n", args[0], len(s.SelectedKeys), len(warnings))

	case "convert":
		if len(args) < 2 {
			fatalf("usage: keyrepeat config convert <in> <out>")
		}
		s, err := config.Load(args[0])
		if err != nil {
			fatalf("%v", err)
		}
		if err := config.Save(s, args[1]); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Wrote %s\n", args[1])

	case "reset":
		l := config.NewLoader("")
		if _, err := l.Clear(); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Restored defaults in %s\n", l.Path())

	default:
		fatalf("unknown config action %q", action)
	}
}

func cmdLog() {
	flags := flag.NewFlagSet("log", flag.ExitOnError)
	n := flags.Int("n", logging.TailLines, "Number of lines to show")
	clearLog := flags.Bool("clear", false, "Empty the log file")
	flags.Parse(os.Args[2:])

	path := config.LogPath()

	if *clearLog {
		if err := os.Truncate(path, 0); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fatalf("%v", err)
		}
		fmt.Printf("Cleared %s\n", path)
		return
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("(Log file not created yet.)\nPath: %s\n\nRun 'keyrepeat run --log' to write logs.\n", path)
		return
	}
	lines, err := logging.Tail(path, *n)
	if err != nil {
		fatalf("could not read log: %v", err)
	}
	if len(lines) == 0 {
		fmt.Println("(empty)")
		return
	}
	for _, line := range lines {
		fmt.Println(line)
	}
}

func cmdForeground() {
	flags := flag.NewFlagSet("foreground", flag.ExitOnError)
	delay := flags.Duration("delay", 3*time.Second, "Time to switch to the target window")
	save := flags.Bool("save", false, "Store the executable as the target in the default settings")
	flags.Parse(os.Args[2:])

	if !target.Supported {
		fatalf("%v", target.ErrNotSupported)
	}

	if *delay > 0 {
		fmt.Printf("Switch to the target window; reading it in %s...\n", *delay)
		time.Sleep(*delay)
	}

	exe, err := target.ForegroundExe()
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(exe)

	if *save {
		l := config.NewLoader("")
		s, err := l.Load()
		if err != nil {
			fatalf("%v", err)
		}
		s.TargetExe = exe
		if err := l.Save(s); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Target saved to %s\n", l.Path())
	}
}
