package session

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andyrewlee/ring0/internal/logging"
	"github.com/andyrewlee/ring0/internal/perf"
	"github.com/andyrewlee/ring0/internal/pty"
	"github.com/andyrewlee/ring0/internal/screen"
	"github.com/andyrewlee/ring0/internal/vt"
)

// DefaultLivenessInterval is the minimum spacing between liveness probes.
const DefaultLivenessInterval = 500 * time.Millisecond

// livenessStrikes is how many consecutive "not running" probes close a session.
const livenessStrikes = 2

// ErrNoSession is returned by input and resize calls when no process is attached.
var ErrNoSession = errors.New("no active session")

// Process is the coordinator's view of a spawned child.
type Process interface {
	Reader() io.Reader
	Write(p []byte) (int, error)
	Resize(size pty.Size) error
	IsRunning() (bool, error)
	Close() error
}

// Spawner starts a process attached to a pseudo-terminal.
type Spawner func(command string, size pty.Size, opts ...pty.Option) (Process, error)

func spawnPTY(command string, size pty.Size, opts ...pty.Option) (Process, error) {
	s, err := pty.Spawn(command, size, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSpawner replaces the pseudo-terminal spawner.
func WithSpawner(fn Spawner) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.spawn = fn
		}
	}
}

// WithLivenessInterval sets the minimum spacing between liveness probes.
func WithLivenessInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.livenessInterval = d
		}
	}
}

// WithDir sets the working directory for spawned processes.
func WithDir(dir string) Option {
	return func(c *Coordinator) { c.spawnOpts = append(c.spawnOpts, pty.WithDir(dir)) }
}

// WithEnv appends environment variables for spawned processes.
func WithEnv(env ...string) Option {
	return func(c *Coordinator) { c.spawnOpts = append(c.spawnOpts, pty.WithEnv(env...)) }
}

// WithClock overrides the time source used to stamp session starts.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// Coordinator owns one session and its screen. Every method must be called
// from the same goroutine; only the relay runs elsewhere and it talks to the
// coordinator through the queue.
type Coordinator struct {
	screen  *screen.Screen
	decoder vt.Decoder

	spawn            Spawner
	spawnOpts        []pty.Option
	livenessInterval time.Duration
	now              func() time.Time

	proc      Process
	queue     *Queue
	relayDone <-chan struct{}

	closed        bool
	exitRequested bool
	line          []byte

	lastProbe time.Time
	strikes   int

	msgs []Message
	ops  []vt.Op
}

// New returns a coordinator with a blank screen of the given size and no
// running session.
func New(size screen.Size, opts ...Option) (*Coordinator, error) {
	scr, err := screen.New(size)
	if err != nil {
		return nil, err
	}
	c := &Coordinator{
		screen:           scr,
		spawn:            spawnPTY,
		livenessInterval: DefaultLivenessInterval,
		now:              time.Now,
		closed:           true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func ptySize(s screen.Size) pty.Size { return pty.SizeOf(s.Cols, s.Rows) }

// Start spawns command at the current screen size and begins relaying its
// output. A previous session is torn down first.
func (c *Coordinator) Start(command string) error {
	_ = c.detach()

	size := c.screen.Size()
	proc, err := c.spawn(command, ptySize(size), c.spawnOpts...)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	c.proc = proc
	c.queue = NewQueue()
	c.relayDone = StartRelay(proc.Reader(), c.queue)
	c.closed = false
	c.exitRequested = false
	c.line = c.line[:0]
	c.strikes = 0
	c.lastProbe = c.now()
	c.screen.Clear()
	logging.Info("session started: %q at %s", command, size)
	return nil
}

// FeedInput writes p to the session and returns the view to the live grid.
// A submitted line reading "exit" marks the session as finished.
func (c *Coordinator) FeedInput(p []byte) error {
	if c.proc == nil || c.closed {
		return ErrNoSession
	}
	c.screen.ScrollToBottom()
	c.trackLine(p)
	if _, err := c.proc.Write(p); err != nil {
		logging.Warn("session write failed: %v", err)
		return fmt.Errorf("write input: %w", err)
	}
	return nil
}

func (c *Coordinator) trackLine(p []byte) {
	for _, b := range p {
		switch {
		case b == '\r' || b == '\n':
			if strings.EqualFold(strings.TrimSpace(string(c.line)), "exit") {
				logging.Info("exit typed; closing session")
				c.exitRequested = true
				c.closed = true
			}
			c.line = c.line[:0]
		case b == 0x7f || b == 0x08:
			if len(c.line) > 0 {
				_, n := utf8.DecodeLastRune(c.line)
				c.line = c.line[:len(c.line)-n]
			}
		case b == 0x03 || b == 0x15:
			// ctrl+c and ctrl+u discard the line.
			c.line = c.line[:0]
		case b < 0x20:
			// Other control bytes are not part of the typed line.
		default:
			c.line = append(c.line, b)
		}
	}
}

// PollIncoming drains every pending relay message without blocking. The
// returned slice belongs to the caller.
func (c *Coordinator) PollIncoming() []Message {
	if c.queue == nil {
		return nil
	}
	return c.queue.Drain(nil)
}

// drain is PollIncoming into a buffer reused across pumps.
func (c *Coordinator) drain() []Message {
	if c.queue == nil {
		return nil
	}
	c.msgs = c.queue.Drain(c.msgs[:0])
	return c.msgs
}

// Ready is signalled when the relay has queued output. It is nil without
// a session.
func (c *Coordinator) Ready() <-chan struct{} {
	if c.queue == nil {
		return nil
	}
	return c.queue.Ready()
}

// Pump applies all queued output to the screen. It reports whether anything
// changed.
func (c *Coordinator) Pump() bool {
	msgs := c.drain()
	if len(msgs) == 0 {
		return false
	}
	defer perf.Time("session.pump")()

	for _, m := range msgs {
		if m.Closed {
			if !c.closed {
				logging.Info("session output closed")
			}
			c.closed = true
			continue
		}
		perf.Count("session.bytes", int64(len(m.Data)))
		c.ops = c.decoder.Advance(m.Data, c.ops[:0])
		c.screen.ApplyAll(c.ops)
	}
	return true
}

// Resize changes the pseudo-terminal and the grid to size. An unchanged
// size does nothing. The pseudo-terminal goes first so a failed resize
// leaves both at the old size and a retry reaches the OS again.
func (c *Coordinator) Resize(size screen.Size) error {
	if err := size.Validate(); err != nil {
		return err
	}
	if size == c.screen.Size() {
		return nil
	}
	if c.proc != nil && !c.closed {
		if err := c.proc.Resize(ptySize(size)); err != nil {
			logging.Warn("pty resize failed: %v", err)
			return err
		}
	}
	if err := c.screen.Resize(size); err != nil {
		return err
	}
	logging.Debug("session resized to %s", size)
	return nil
}

// CheckLiveness probes the child at most once per liveness interval and
// reports whether the session is still considered open. Two consecutive
// negative probes close it. Probe errors are logged and otherwise ignored.
func (c *Coordinator) CheckLiveness(now time.Time) bool {
	if c.proc == nil || c.closed {
		return false
	}
	if now.Sub(c.lastProbe) < c.livenessInterval {
		return true
	}
	c.lastProbe = now

	running, err := c.proc.IsRunning()
	switch {
	case err != nil:
		logging.Warn("session liveness probe failed: %v", err)
	case running:
		c.strikes = 0
	default:
		c.strikes++
		if c.strikes >= livenessStrikes {
			logging.Info("session process no longer running")
			c.closed = true
			return false
		}
	}
	return true
}

// Decode runs the decoder over p.
func (c *Coordinator) Decode(p []byte) []vt.Op {
	return c.decoder.Advance(p, nil)
}

// ApplyOperations applies ops to the screen in order.
func (c *Coordinator) ApplyOperations(ops []vt.Op) {
	c.screen.ApplyAll(ops)
}

// ShowSystemMessage replaces the grid contents with text.
func (c *Coordinator) ShowSystemMessage(text string) {
	c.screen.Clear()
	c.screen.ApplyAll(c.Decode([]byte(text)))
}

// RenderRows returns the visible rows, row-major.
func (c *Coordinator) RenderRows() []rune { return c.screen.RenderRows() }

// Frame snapshots the visible rows with an optional cursor.
func (c *Coordinator) Frame(cursorVisible bool) screen.Frame {
	return c.screen.Frame(cursorVisible)
}

// ScrollView moves the view through history; see screen.Screen.ScrollView.
func (c *Coordinator) ScrollView(delta int) bool { return c.screen.ScrollView(delta) }

// ScrollToBottom returns the view to the live grid.
func (c *Coordinator) ScrollToBottom() { c.screen.ScrollToBottom() }

// CursorPosition returns the cursor column and row.
func (c *Coordinator) CursorPosition() (col, row int) {
	cur := c.screen.Cursor()
	return cur.Col, cur.Row
}

// IsScrolled reports whether the view is showing history.
func (c *Coordinator) IsScrolled() bool { return c.screen.IsScrolled() }

// ScrollOffset returns how many rows the view is scrolled back.
func (c *Coordinator) ScrollOffset() int { return c.screen.ScrollOffset() }

// Size returns the grid size.
func (c *Coordinator) Size() screen.Size { return c.screen.Size() }

// ScrollbackLen returns the number of history rows.
func (c *Coordinator) ScrollbackLen() int { return c.screen.ScrollbackLen() }

// Closed reports whether the session has ended or was never started.
func (c *Coordinator) Closed() bool { return c.closed }

// ExitRequested reports whether the user typed "exit".
func (c *Coordinator) ExitRequested() bool { return c.exitRequested }

// Close ends the session. The queue is closed before the process so the
// relay stops without reporting a Closed message nobody will read.
func (c *Coordinator) Close() error {
	err := c.detach()
	c.closed = true
	return err
}

func (c *Coordinator) detach() error {
	if c.queue != nil {
		c.queue.Close()
		c.queue = nil
	}
	var err error
	if c.proc != nil {
		err = c.proc.Close()
		c.proc = nil
	}
	c.relayDone = nil
	return err
}

// RelayDone closes once the current relay goroutine has exited. It is nil
// without a session.
func (c *Coordinator) RelayDone() <-chan struct{} { return c.relayDone }
