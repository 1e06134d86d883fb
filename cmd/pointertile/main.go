package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/pointertile/internal/config"
	"github.com/1broseidon/pointertile/internal/daemon"
	"github.com/1broseidon/pointertile/internal/hotkeys"
	"github.com/1broseidon/pointertile/internal/input"
	"github.com/1broseidon/pointertile/internal/ipc"
	"github.com/1broseidon/pointertile/internal/platform"
	"github.com/1broseidon/pointertile/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: pointertile daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: pointertile daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "cursor":
		os.Exit(runCursor(os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "touches":
		os.Exit(runToggle("touches", os.Args[2:], func(c *ipc.Client, enabled bool) error {
			return c.SetShowTouches(enabled)
		}))
	case "stylus-icon":
		os.Exit(runToggle("stylus-icon", os.Args[2:], func(c *ipc.Client, enabled bool) error {
			return c.SetStylusIcon(enabled)
		}))
	case "icons":
		os.Exit(runIcons(os.Args[2:]))
	case "pointer-icon":
		os.Exit(runPointerIcon(os.Args[2:]))
	case "default-display":
		os.Exit(runDefaultDisplay(os.Args[2:]))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "key":
		os.Exit(runKey(os.Args[2:]))
	case "dump":
		os.Exit(runDump(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pointertile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the pointertile daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  displays            List connected displays")
	fmt.Fprintln(w, "  cursor              Show the mouse cursor position")
	fmt.Fprintln(w, "  move                Move the cursor by a relative delta")
	fmt.Fprintln(w, "  key                 Inject a key press through the routing pipeline")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  touches on|off         Toggle touch spot rendering")
	fmt.Fprintln(w, "  stylus-icon on|off     Toggle the hovering stylus icon")
	fmt.Fprintln(w, "  icons show|hide        Show or hide pointer icons on a display")
	fmt.Fprintln(w, "  pointer-icon           Set the icon style for one pointer")
	fmt.Fprintln(w, "  default-display <name> Set the output that owns unassociated mice")
	fmt.Fprintln(w, "  focus <display-id>     Mark a display as holding input focus")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  dump                Dump the pointer routing state")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the interactive status viewer")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'pointertile <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pointertile status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:      %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds:      %d\n", status.UptimeSeconds)
	fmt.Printf("default_display:     %s (%d)\n", status.DefaultDisplayName, status.DefaultDisplay)
	fmt.Printf("show_touches:        %v\n", status.ShowTouches)
	fmt.Printf("stylus_pointer_icon: %v\n", status.StylusPointerIcon)
	fmt.Printf("device_count:        %d\n", status.DeviceCount)
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "output as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pointertile displays [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List connected displays with their geometry.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetViewports()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data.Viewports); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	for _, vp := range data.Viewports {
		fmt.Printf("%d  %-10s %dx%d+%d+%d\n", vp.ID, vp.Name, vp.Width, vp.Height, vp.X, vp.Y)
	}
	return 0
}

func runCursor(args []string) int {
	fs := flag.NewFlagSet("cursor", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	display := fs.Int("display", -1, "display ID (default: the default mouse display)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pointertile cursor [--display N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the mouse cursor position on a display.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	cursor, err := client.GetCursor(int32(*display))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !cursor.Valid {
		fmt.Println("no mouse cursor")
		return 1
	}
	fmt.Printf("%.1f %.1f\n", cursor.X, cursor.Y)
	return 0
}

func runMove(args []string) int {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	dx := fs.Float64("dx", 0, "horizontal delta in pixels")
	dy := fs.Float64("dy", 0, "vertical delta in pixels")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pointertile move --dx N --dy N")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Move the mouse cursor by a relative delta through the routing pipeline.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.InjectMotion(0, *dx, *dy, input.InvalidDisplayID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runToggle(name string, args []string, apply func(*ipc.Client, bool) error) int {
	usage := func(w io.Writer) {
		fmt.Fprintf(w, "Usage: pointertile %s on|off\n", name)
	}
	if len(args) != 1 {
		usage(os.Stderr)
		return 2
	}
	var enabled bool
	switch args[0] {
	case "on":
		enabled = true
	case "off":
		enabled = false
	case "help", "-h", "--help":
		usage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "expected on or off, got %q\n", args[0])
		usage(os.Stderr)
		return 2
	}

	if err := apply(ipc.NewClient(), enabled); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runIcons(args []string) int {
	fs := flag.NewFlagSet("icons", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	display := fs.Int("display", 0, "display ID")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pointertile icons [--display N] show|hide")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show or hide all pointer icons on one display.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	var visible bool
	switch fs.Arg(0) {
	case "show":
		visible = true
	case "hide":
		visible = false
	default:
		fmt.Fprintf(os.Stderr, "expected show or hide, got %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.SetIconVisibility(int32(*display), visible); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPointerIcon(args []string) int {
	fs := flag.NewFlagSet("pointer-icon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	style := fs.Int("style", 0, "icon style (0 = default presentation)")
	display := fs.Int("display", -1, "display ID owning the pointer")
	device := fs.Int("device", -1, "device ID owning the pointer")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pointertile pointer-icon --style N [--display N] [--device N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Set the icon style for the pointer on a display or device.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.SetPointerIcon(int32(*style), int32(*display), int32(*device)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runKey(args []string) int {
	fs := flag.NewFlagSet("key", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	code := fs.Int("code", 0, "key code")
	meta := fs.Uint("meta", 0, "meta state bitmask")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pointertile key --code N [--meta N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Inject a key press through the routing pipeline. With fade-on-typing")
		fmt.Fprintln(os.Stderr, "enabled, a non-modifier key fades the mouse cursor.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *code <= 0 {
		fmt.Fprintln(os.Stderr, "--code is required")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.InjectKey(0, int32(*code), uint32(*meta), input.InvalidDisplayID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDefaultDisplay(args []string) int {
	usage := func(w io.Writer) {
		fmt.Fprintln(w, "Usage: pointertile default-display <output-name>")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Set the output (e.g. HDMI-1) that hosts the cursor for mice")
		fmt.Fprintln(w, "without an associated display.")
	}
	if len(args) == 1 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		usage(os.Stdout)
		return 0
	}
	if len(args) != 1 {
		usage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	if err := client.SetDefaultDisplay(args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runFocus(args []string) int {
	usage := func(w io.Writer) {
		fmt.Fprintln(w, "Usage: pointertile focus <display-id>")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Mark a display as holding input focus, for fade-on-typing on key")
		fmt.Fprintln(w, "events that carry no display.")
	}
	if len(args) == 1 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		usage(os.Stdout)
		return 0
	}
	if len(args) != 1 {
		usage(os.Stderr)
		return 2
	}
	id, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid display ID %q\n", args[0])
		usage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	if err := client.SetFocusedDisplay(int32(id)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDump(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: pointertile dump")
		return 2
	}
	client := ipc.NewClient()
	dump, err := client.Dump()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Print(dump)
	return 0
}

func runReload(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: pointertile reload")
		return 2
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reload requested")
	return 0
}

func runConfig(args []string) int {
	usage := func(w io.Writer) {
		fmt.Fprintln(w, "Usage:")
		fmt.Fprintln(w, "  pointertile config validate [--file PATH]")
		fmt.Fprintln(w, "  pointertile config print [--file PATH]")
	}
	if len(args) == 0 {
		usage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "validate", "print":
	case "help", "-h", "--help":
		usage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n\n", args[0])
		usage(os.Stderr)
		return 2
	}

	fs := flag.NewFlagSet("config "+args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	file := fs.String("file", "", "config file path (default: ~/.config/pointertile/config.yaml)")
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	var cfg *config.Config
	var err error
	if *file != "" {
		cfg, err = config.LoadFromPath(*file)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if args[0] == "validate" {
		fmt.Println("configuration is valid")
		return 0
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	os.Stdout.Write(out)
	return 0
}

func runTUI(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: pointertile tui")
		return 2
	}
	if err := tui.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, logCloser, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}
	slog.SetDefault(logger)

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	d := daemon.New(cfg, backend, logger)

	reloadChan := make(chan struct{}, 1)
	ipcServer, err := ipc.NewServer(d, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	registerHotkeys(backend, d, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := d.Run(ctx); err != nil {
			logger.Error("daemon stopped", "error", err)
			backend.StopEventLoop()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					logger.Info("received SIGHUP, reloading config")
					newCfg, err := config.Load()
					if err != nil {
						logger.Error("config reload failed", "error", err)
						continue
					}
					d.Reload(newCfg)

				case os.Interrupt, syscall.SIGTERM:
					logger.Info("shutting down")
					cancel()
					ipcServer.Stop()
					backend.StopEventLoop()
					return
				}

			case <-reloadChan:
				newCfg, err := config.Load()
				if err != nil {
					logger.Error("config reload failed", "error", err)
					continue
				}
				d.Reload(newCfg)
			}
		}
	}()

	logger.Info("pointertile daemon started")
	backend.EventLoop()
}

func buildLogger(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closer = f
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

func registerHotkeys(backend platform.Backend, d *daemon.Daemon, cfg *config.Config, logger *slog.Logger) {
	handler := hotkeys.NewHandler(backend)

	if cfg.Hotkeys.ToggleShowTouches != "" {
		if err := handler.RegisterFunc(cfg.Hotkeys.ToggleShowTouches, d.ToggleShowTouches); err != nil {
			logger.Warn("failed to register show-touches hotkey",
				"hotkey", cfg.Hotkeys.ToggleShowTouches, "error", err)
		}
	}
	if cfg.Hotkeys.ToggleStylusIcon != "" {
		if err := handler.RegisterFunc(cfg.Hotkeys.ToggleStylusIcon, d.ToggleStylusIcon); err != nil {
			logger.Warn("failed to register stylus-icon hotkey",
				"hotkey", cfg.Hotkeys.ToggleStylusIcon, "error", err)
		}
	}
}
