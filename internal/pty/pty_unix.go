//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package pty

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"github.com/andyrewlee/ring0/internal/safego"
)

type unixBackend struct {
	ptyFile *os.File
	cmd     *exec.Cmd

	mu     sync.Mutex
	exited bool
	done   chan struct{}
	td     teardown
}

func startBackend(command string, size Size, cfg *spawnConfig) (backend, error) {
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = cfg.dir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Env = append(cmd.Env, cfg.env...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: size.Cols, Rows: size.Rows})
	if err != nil {
		return nil, spawnErr("start process", err)
	}
	master := newGuard(ptmx, func(f *os.File) { _ = f.Close() })
	defer master.release()

	b := &unixBackend{ptyFile: master.get(), cmd: cmd, done: make(chan struct{})}
	b.td.add(func() error {
		if b.cmd.Process != nil {
			if err := b.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				return err
			}
			<-b.done
		}
		return nil
	})

	safego.Go("pty.wait", b.wait)

	// Closing the master unblocks a relay parked in Read.
	b.td.add(master.take().Close)
	return b, nil
}

func (b *unixBackend) wait() {
	_ = b.cmd.Wait()
	b.mu.Lock()
	b.exited = true
	b.mu.Unlock()
	close(b.done)
}

func (b *unixBackend) Read(p []byte) (int, error) {
	n, err := b.ptyFile.Read(p)
	// Linux reports EIO on the master once the child side is gone.
	if errors.Is(err, syscall.EIO) {
		return n, io.EOF
	}
	return n, err
}

func (b *unixBackend) Write(p []byte) (int, error) { return b.ptyFile.Write(p) }

func (b *unixBackend) resize(size Size) error {
	return pty.Setsize(b.ptyFile, &pty.Winsize{Cols: size.Cols, Rows: size.Rows})
}

func (b *unixBackend) isRunning() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.exited, nil
}

// bytesAvailable goes through SyscallConn; Fd would switch the master to
// blocking mode and Close could no longer interrupt a pending Read.
func (b *unixBackend) bytesAvailable() (int, error) {
	rc, err := b.ptyFile.SyscallConn()
	if err != nil {
		return 0, err
	}
	var n int
	var ioctlErr error
	if err := rc.Control(func(fd uintptr) {
		n, ioctlErr = unix.IoctlGetInt(int(fd), inqRequest)
	}); err != nil {
		return 0, err
	}
	return n, ioctlErr
}

func (b *unixBackend) pid() int {
	if b.cmd.Process == nil {
		return 0
	}
	return b.cmd.Process.Pid
}

func (b *unixBackend) close() error {
	return b.td.run()
}
