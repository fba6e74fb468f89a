// Package pty runs a child process attached to a pseudo-terminal.
package pty

import (
	"io"
	"sync"

	"github.com/andyrewlee/ring0/internal/logging"
)

// backend is the platform half of a Session.
type backend interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	resize(size Size) error
	isRunning() (bool, error)
	bytesAvailable() (int, error)
	pid() int
	close() error
}

type spawnConfig struct {
	dir string
	env []string
}

// Option configures Spawn.
type Option func(*spawnConfig)

// WithDir sets the child's working directory.
func WithDir(dir string) Option {
	return func(c *spawnConfig) { c.dir = dir }
}

// WithEnv appends variables to the inherited environment.
func WithEnv(env ...string) Option {
	return func(c *spawnConfig) { c.env = append(c.env, env...) }
}

// Session is a running child process and its pseudo-terminal.
type Session struct {
	mu      sync.Mutex
	backend backend
	size    Size
	closed  bool
}

// Spawn starts command attached to a new pseudo-terminal of the given size.
// On failure every resource acquired so far has been released.
func Spawn(command string, size Size, opts ...Option) (*Session, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}
	cfg := &spawnConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	b, err := startBackend(command, size, cfg)
	if err != nil {
		logging.Error("pty spawn %q failed: %v", command, err)
		return nil, err
	}
	logging.Info("pty spawned %q pid=%d size=%s", command, b.pid(), size)
	return &Session{backend: b, size: size}, nil
}

// Resize propagates a new size to the pseudo-terminal. Equal sizes are a no-op.
func (s *Session) Resize(size Size) error {
	if err := size.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if size == s.size {
		return nil
	}
	if err := s.backend.resize(size); err != nil {
		return &ResizeError{Size: size, Err: err}
	}
	s.size = size
	return nil
}

// IsRunning reports whether the child process is still alive. It never blocks.
func (s *Session) IsRunning() (bool, error) {
	s.mu.Lock()
	b, closed := s.backend, s.closed
	s.mu.Unlock()
	if closed {
		return false, nil
	}
	return b.isRunning()
}

// Read reads child output. It blocks until output is available.
// The mutex is not held during the read so Close can interrupt it.
func (s *Session) Read(p []byte) (int, error) {
	s.mu.Lock()
	b, closed := s.backend, s.closed
	s.mu.Unlock()
	if closed {
		return 0, io.EOF
	}
	return b.Read(p)
}

// Write sends input to the child.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	b, closed := s.backend, s.closed
	s.mu.Unlock()
	if closed {
		return 0, io.ErrClosedPipe
	}
	return b.Write(p)
}

// Reader returns the output side for a relay goroutine.
func (s *Session) Reader() io.Reader { return readerFunc(s.Read) }

// Writer returns the input side.
func (s *Session) Writer() io.Writer { return writerFunc(s.Write) }

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// BytesAvailable reports how many output bytes are buffered and unread.
func (s *Session) BytesAvailable() (int, error) {
	s.mu.Lock()
	b, closed := s.backend, s.closed
	s.mu.Unlock()
	if closed {
		return 0, ErrClosed
	}
	return b.bytesAvailable()
}

// Size returns the last size applied.
func (s *Session) Size() Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Pid returns the child process id.
func (s *Session) Pid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return 0
	}
	return s.backend.pid()
}

// Close terminates the child and releases every handle. Safe to call twice.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	err := s.backend.close()
	if err != nil {
		logging.Warn("pty close: %v", err)
	} else {
		logging.Debug("pty closed")
	}
	return err
}
