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
	"syscall"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/glassdesk/glassdesk/internal/config"
	"github.com/glassdesk/glassdesk/internal/desktop"
	"github.com/glassdesk/glassdesk/internal/ipc"
	"github.com/glassdesk/glassdesk/internal/mcp"
	"github.com/glassdesk/glassdesk/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: glassdesk daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: glassdesk daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
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
	fmt.Fprintln(w, "Usage: glassdesk <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the glassdesk daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window list         List windows and stacking order")
	fmt.Fprintln(w, "  window focus        Focus a window")
	fmt.Fprintln(w, "  window close        Close a window")
	fmt.Fprintln(w, "  window snap         Snap a window left/right/maximized")
	fmt.Fprintln(w, "  window minimize     Minimize a window")
	fmt.Fprintln(w, "  window maximize     Toggle a window's maximized state")
	fmt.Fprintln(w, "  window cycle        Cycle focus through visible windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config show         Print configuration")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config path         Print config file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'glassdesk <command> --help' for command-specific options.")
}

// logLevel maps a validated config log_level name to its slog level.
func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func runDaemon() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	desk := desktop.New(desktop.Options{Config: cfg})
	log.Println("Desktop session initialized")

	// Config reload channel, fed by IPC RELOAD and the file watcher
	reloadChan := make(chan struct{}, 1)

	ipcServer, err := ipc.NewServer(cfg, desk, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	httpServer := server.New(desk, cfg.Server.Addr)
	if err := httpServer.Start(); err != nil {
		log.Fatalf("Failed to start HTTP server: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Stop(ctx)
	}()

	// Watch the config file for edits
	configPath, err := config.DefaultConfigPath()
	if err == nil {
		watcher, werr := config.NewWatcher(configPath, func(newCfg *config.Config) {
			ipcServer.UpdateConfig(newCfg)
			log.Println("Config reloaded from file change")
		})
		if werr != nil {
			log.Printf("Warning: config watcher unavailable: %v", werr)
		} else {
			defer watcher.Close()
		}
	}

	log.Println("glassdesk daemon started successfully")

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				newCfg, err := config.Load()
				if err != nil {
					log.Printf("Config reload failed: %v", err)
					continue
				}
				ipcServer.UpdateConfig(newCfg)
				log.Println("Config reloaded successfully")

			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down glassdesk daemon...")
				return
			}

		case <-reloadChan:
			// Config was reloaded via IPC; nothing else holds config state,
			// the next snapshot consumers pick it up from the IPC server.
			log.Println("Config updated via IPC")
		}
	}
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glassdesk status [--json]")
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

	if *jsonOut || !term.IsTerminal(int(os.Stdout.Fd())) {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("window_count:    %d\n", status.WindowCount)
	fmt.Printf("focused_window:  %s\n", status.FocusedWindow)
	fmt.Printf("viewport:        %dx%d\n", status.Viewport.Width, status.Viewport.Height)
	fmt.Printf("start_menu_open: %v\n", status.StartMenuOpen)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  glassdesk window list [--json]")
	fmt.Fprintln(w, "  glassdesk window focus <window-id>")
	fmt.Fprintln(w, "  glassdesk window close [--force] <window-id>")
	fmt.Fprintln(w, "  glassdesk window snap <window-id> <left|right|maximized>")
	fmt.Fprintln(w, "  glassdesk window minimize <window-id>")
	fmt.Fprintln(w, "  glassdesk window maximize <window-id>")
	fmt.Fprintln(w, "  glassdesk window cycle")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'glassdesk window <command> --help' for command-specific options.")
}

func runWindow(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printWindowUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		jsonOut := fs.Bool("json", false, "Print windows as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		data, err := client.ListWindows()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		if *jsonOut || !term.IsTerminal(int(os.Stdout.Fd())) {
			out, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Println(string(out))
			return 0
		}

		// Back-to-front, topmost printed last
		byID := make(map[string]int)
		for i, win := range data.Windows {
			byID[win.ID] = i
		}
		for _, id := range data.ZOrder {
			win := data.Windows[byID[id]]
			state := ""
			if win.Minimized {
				state = " [minimized]"
			} else if win.Maximized {
				state = " [maximized]"
			} else if win.SnapState != "none" && win.SnapState != "" {
				state = fmt.Sprintf(" [%s]", win.SnapState)
			}
			marker := " "
			if win.Focused {
				marker = "*"
			}
			fmt.Printf("%s %-36s %-16s %4dx%-4d at (%d,%d)%s\n",
				marker, win.ID, win.AppID, win.Bounds.Width, win.Bounds.Height, win.Bounds.X, win.Bounds.Y, state)
		}
		return 0

	case "focus", "minimize", "maximize":
		if len(args) != 2 {
			fmt.Fprintf(os.Stderr, "window %s requires exactly one window id\n", args[0])
			return 2
		}
		var err error
		switch args[0] {
		case "focus":
			err = client.FocusWindow(args[1])
		case "minimize":
			err = client.MinimizeWindow(args[1])
		case "maximize":
			err = client.MaximizeWindow(args[1])
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "close":
		fs := flag.NewFlagSet("close", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		force := fs.Bool("force", false, "Close even if the window has unsaved state")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "window close requires exactly one window id")
			return 2
		}
		if err := client.CloseWindow(fs.Arg(0), *force); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "snap":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "window snap requires a window id and a state (left|right|maximized)")
			return 2
		}
		if err := client.SnapWindow(args[1], args[2]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "cycle":
		if err := client.Cycle(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  glassdesk config show [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  glassdesk config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  glassdesk config path")
		return 2
	}

	switch args[0] {
	case "show":
		fs := flag.NewFlagSet("show", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/glassdesk/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		if *printDefaults {
			cfg = config.DefaultConfig()
		} else {
			var err error
			if *path == "" {
				cfg, err = config.Load()
			} else {
				cfg, err = config.LoadFromPath(*path)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/glassdesk/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "path":
		p, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(p)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}

func runMCP(args []string) int {
	if len(args) == 0 || args[0] != "serve" {
		fmt.Fprintln(os.Stderr, "Usage: glassdesk mcp serve")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	desk := desktop.New(desktop.Options{Config: cfg})

	srv := mcp.NewServer(desk)
	if err := srv.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
