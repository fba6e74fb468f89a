// Package app hosts a terminal session inside a bubbletea program.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	zone "github.com/lrstanley/bubblezone"

	"github.com/andyrewlee/ring0/internal/config"
	"github.com/andyrewlee/ring0/internal/logging"
	"github.com/andyrewlee/ring0/internal/perf"
	"github.com/andyrewlee/ring0/internal/safego"
	"github.com/andyrewlee/ring0/internal/screen"
	"github.com/andyrewlee/ring0/internal/session"
)

// initialSize is used until the first WindowSizeMsg arrives.
var initialSize = screen.Size{Cols: 120, Rows: 30}

// App is the bubbletea model for a single terminal pane.
type App struct {
	cfg    *config.Config
	keymap KeyMap
	styles styles
	zone   *zone.Manager

	coord *session.Coordinator

	width, height int
	ready         bool
	cursorOn      bool
	startErr      error
	quitting      bool
	notice        string

	msgSink func(tea.Msg)
}

// New builds the model. sessionOpts are passed through to the coordinator.
func New(cfg *config.Config, sessionOpts ...session.Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	opts := append([]session.Option{session.WithLivenessInterval(cfg.LivenessInterval)}, sessionOpts...)
	coord, err := session.New(initialSize, opts...)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:      cfg,
		keymap:   KeyMapFromConfig(cfg.KeyMap),
		styles:   defaultStyles(),
		zone:     zone.New(),
		coord:    coord,
		cursorOn: true,
	}, nil
}

// SetMsgSender wires a sender for messages produced off the UI goroutine.
func (a *App) SetMsgSender(send func(tea.Msg)) { a.msgSink = send }

// Init starts the shell and the frame and blink tickers.
func (a *App) Init() tea.Cmd {
	a.startSession()
	return tea.Batch(frameTick(), blinkTick())
}

func (a *App) startSession() {
	if err := a.coord.Start(a.cfg.Shell); err != nil {
		a.startErr = err
		logging.Error("Failed to start shell: %v", err)
		a.coord.ShowSystemMessage(fmt.Sprintf("Failed to start shell: %v\r\nPress %s to exit.\r\n",
			err, a.keymap.Quit.Help().Key))
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func blinkTick() tea.Cmd {
	return tea.Tick(blinkInterval, func(time.Time) tea.Msg { return blinkMsg{} })
}

// Update routes bubbletea messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.ready = true
		if err := a.coord.Resize(gridSize(msg.Width, msg.Height)); err != nil {
			logging.Warn("resize failed: %v", err)
		}

	case tea.KeyPressMsg:
		return a, a.handleKey(msg)

	case tea.PasteMsg:
		a.sendInput([]byte(msg.Content))

	case pasteMsg:
		if msg.err != nil {
			logging.Warn("%v", msg.err)
			a.notice = "clipboard unavailable"
			return a, nil
		}
		a.sendInput([]byte(msg.text))

	case tea.MouseWheelMsg:
		a.handleWheel(msg)

	case frameMsg:
		return a, a.handleFrame(time.Time(msg))

	case blinkMsg:
		if a.cfg.CursorBlink {
			a.cursorOn = !a.cursorOn
		} else {
			a.cursorOn = true
		}
		return a, blinkTick()

	case ConfigReloadedMsg:
		a.applyConfig(msg.Config)

	case panicMsg:
		where := "see log"
		if path := logging.GetLogPath(); path != "" {
			where = "see " + path
		}
		a.notice = fmt.Sprintf("%s crashed (%s)", msg.name, where)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		return a.quit()
	case key.Matches(msg, a.keymap.Paste):
		return readClipboard()
	case key.Matches(msg, a.keymap.ScrollUp):
		a.coord.ScrollView(a.pageRows())
		return nil
	case key.Matches(msg, a.keymap.ScrollDown):
		a.coord.ScrollView(-a.pageRows())
		return nil
	case key.Matches(msg, a.keymap.ScrollTop):
		a.coord.ScrollView(a.coord.ScrollbackLen())
		return nil
	case key.Matches(msg, a.keymap.ScrollBottom):
		a.coord.ScrollToBottom()
		return nil
	}

	if b := KeyToBytes(msg); len(b) > 0 {
		a.sendInput(b)
	}
	if a.coord.ExitRequested() {
		return a.quit()
	}
	return nil
}

func (a *App) pageRows() int {
	return max(a.coord.Size().Rows-1, 1)
}

func (a *App) sendInput(b []byte) {
	if err := a.coord.FeedInput(b); err != nil && !errors.Is(err, session.ErrNoSession) {
		a.notice = "write failed"
	}
	a.cursorOn = true
}

func (a *App) handleWheel(msg tea.MouseWheelMsg) {
	if !a.inPane(msg.X, msg.Y) {
		return
	}
	lines := a.cfg.ScrollLines
	switch msg.Button {
	case tea.MouseWheelUp:
		a.coord.ScrollView(lines)
	case tea.MouseWheelDown:
		a.coord.ScrollView(-lines)
	}
}

// inPane reports whether a cell lies inside the marked terminal pane.
func (a *App) inPane(x, y int) bool {
	info := a.zone.Get(paneZoneID)
	if info == nil || info.IsZero() {
		return false
	}
	return x >= info.StartX && x <= info.EndX && y >= info.StartY && y <= info.EndY
}

func (a *App) handleFrame(now time.Time) tea.Cmd {
	defer perf.Time("app.frame")()

	a.coord.Pump()
	a.coord.CheckLiveness(now)
	if a.startErr == nil && a.coord.Closed() {
		if a.coord.ExitRequested() {
			logging.Info("exit requested; quitting")
		} else {
			logging.Info("session ended; quitting")
		}
		return a.quit()
	}
	return frameTick()
}

func (a *App) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	cfg.Paths = a.cfg.Paths
	a.cfg = cfg
	a.keymap = KeyMapFromConfig(cfg.KeyMap)
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	if !cfg.CursorBlink {
		a.cursorOn = true
	}
	a.notice = "config reloaded"
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	return tea.Quit
}

// WatchConfig reloads settings while ctx is live. Reloads reach the model
// through the sender set with SetMsgSender.
func (a *App) WatchConfig(ctx context.Context) error {
	if a.cfg.Paths == nil {
		return nil
	}
	w, err := config.NewWatcher(a.cfg.Paths, func(cfg *config.Config) {
		if a.msgSink != nil {
			a.msgSink(ConfigReloadedMsg{Config: cfg})
		}
	})
	if err != nil {
		return err
	}
	safego.Go("config-watcher", func() {
		defer w.Close()
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn("config watcher stopped: %v", err)
		}
	})
	return nil
}

// PanicHandler surfaces recovered background panics in the status line.
// Install it with safego.SetPanicHandler once SetMsgSender has been called.
func (a *App) PanicHandler() safego.PanicHandler {
	return func(name string, _ any, _ []byte) {
		if a.msgSink != nil {
			a.msgSink(panicMsg{name: name})
		}
	}
}

// Shutdown releases the session and zone manager.
func (a *App) Shutdown() {
	logging.WithError(a.coord.Close(), "session close")
	a.zone.Close()
	perf.Flush("shutdown")
}
