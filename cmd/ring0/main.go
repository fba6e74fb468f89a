package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/term"

	"github.com/andyrewlee/ring0/internal/app"
	"github.com/andyrewlee/ring0/internal/config"
	"github.com/andyrewlee/ring0/internal/logging"
	"github.com/andyrewlee/ring0/internal/safego"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("ring0 %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if !shouldLaunchTUI(
		term.IsTerminal(os.Stdin.Fd()),
		term.IsTerminal(os.Stdout.Fd()),
	) {
		fmt.Fprintln(os.Stderr, "ring0 needs an interactive terminal")
		os.Exit(1)
	}

	os.Exit(run())
}

func shouldLaunchTUI(stdinIsTTY, stdoutIsTTY bool) bool {
	return stdinIsTTY && stdoutIsTTY
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		if cfg, err = config.DefaultConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving config paths: %v\n", err)
			return 1
		}
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create %s: %v\n", cfg.Paths.Home, err)
	}

	if err := logging.Initialize(cfg.Paths.LogDir, logging.ParseLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize logging: %v\n", err)
	}
	defer logging.Close()

	logging.Info("Starting ring0 %s shell=%q log=%s", version, cfg.Shell, logging.GetLogPath())

	startSignalDebug()
	startPprof()

	a, err := app.New(cfg)
	if err != nil {
		logging.Error("Failed to initialize app: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing app: %v\n", err)
		return 1
	}

	p := tea.NewProgram(
		a,
		tea.WithFilter(mouseEventFilter),
	)
	a.SetMsgSender(p.Send)
	safego.SetPanicHandler(a.PanicHandler())
	defer safego.SetPanicHandler(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logging.WithError(a.WatchConfig(ctx), "config watcher disabled")

	code := 0
	if _, err := p.Run(); err != nil {
		logging.Error("App exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		code = 1
	}
	cancel()
	a.Shutdown()

	logging.Info("ring0 shutdown complete")
	return code
}

var lastMouseWheelEvent time.Time

// mouseEventFilter drops motion events and throttles wheel bursts.
func mouseEventFilter(m tea.Model, msg tea.Msg) tea.Msg {
	switch msg.(type) {
	case tea.MouseMotionMsg:
		return nil
	case tea.MouseWheelMsg:
		now := time.Now()
		if now.Sub(lastMouseWheelEvent) < 15*time.Millisecond {
			return nil
		}
		lastMouseWheelEvent = now
	}
	return msg
}

func startPprof() {
	raw := strings.TrimSpace(os.Getenv("RING0_PPROF"))
	if raw == "" {
		return
	}
	switch strings.ToLower(raw) {
	case "0", "false", "no":
		return
	}

	addr := raw
	if raw == "1" || strings.ToLower(raw) == "true" {
		addr = "127.0.0.1:6060"
	} else if _, err := strconv.Atoi(raw); err == nil {
		addr = "127.0.0.1:" + raw
	}

	safego.Go("pprof", func() {
		logging.Info("pprof listening on %s", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			logging.Warn("pprof server stopped: %v", err)
		}
	})
}
