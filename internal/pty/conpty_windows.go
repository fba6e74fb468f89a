//go:build windows

package pty

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/andyrewlee/ring0/internal/logging"
	"github.com/andyrewlee/ring0/internal/safego"
)

// stillActive is the STILL_ACTIVE exit code GetExitCodeProcess reports for
// a live process.
const stillActive = 259

const peekInterval = 10 * time.Millisecond

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procPeekNamedPipe = kernel32.NewProc("PeekNamedPipe")
)

type conptyBackend struct {
	hpc windows.Handle

	// Our ends: we write input and read output.
	input, output windows.Handle

	process   windows.Handle
	processID uint32

	// console closes the pseudo console; td releases every other handle in
	// reverse acquisition order.
	console teardown
	td      teardown

	// ioMu is held for reading around every pipe call so close never frees a
	// handle another goroutine is using.
	ioMu      sync.RWMutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

func closeHandle(h windows.Handle) {
	if h != 0 && h != windows.InvalidHandle {
		_ = windows.CloseHandle(h)
	}
}

// maxCoord is the largest dimension a console COORD can carry.
const maxCoord = 0x7fff

func coord(size Size) windows.Coord {
	return windows.Coord{
		X: int16(min(size.Cols, maxCoord)),
		Y: int16(min(size.Rows, maxCoord)),
	}
}

func createPipe() (r, w *guard[windows.Handle], err error) {
	sa := &windows.SecurityAttributes{InheritHandle: 1}
	sa.Length = uint32(unsafe.Sizeof(*sa))
	var rh, wh windows.Handle
	if err := windows.CreatePipe(&rh, &wh, sa, 0); err != nil {
		return nil, nil, err
	}
	return newGuard(rh, closeHandle), newGuard(wh, closeHandle), nil
}

func setInherit(h windows.Handle, inherit bool) error {
	var flags uint32
	if inherit {
		flags = windows.HANDLE_FLAG_INHERIT
	}
	return windows.SetHandleInformation(h, windows.HANDLE_FLAG_INHERIT, flags)
}

func startBackend(command string, size Size, cfg *spawnConfig) (backend, error) {
	inRead, inWrite, err := createPipe()
	if err != nil {
		return nil, spawnErr("create input pipe", err)
	}
	defer inRead.release()
	defer inWrite.release()

	outRead, outWrite, err := createPipe()
	if err != nil {
		return nil, spawnErr("create output pipe", err)
	}
	defer outRead.release()
	defer outWrite.release()

	// Only the console ends may leak into the child.
	for _, h := range []struct {
		h       windows.Handle
		inherit bool
	}{
		{inRead.get(), true},
		{outWrite.get(), true},
		{inWrite.get(), false},
		{outRead.get(), false},
	} {
		if err := setInherit(h.h, h.inherit); err != nil {
			return nil, spawnErr("set handle inheritance", err)
		}
	}

	var hpc windows.Handle
	if err := windows.CreatePseudoConsole(coord(size), inRead.get(), outWrite.get(), 0, &hpc); err != nil {
		return nil, spawnErr("create pseudo console", err)
	}
	console := newGuard(hpc, windows.ClosePseudoConsole)
	defer console.release()

	attrs, err := windows.NewProcThreadAttributeList(1)
	if err != nil {
		return nil, spawnErr("allocate attribute list", err)
	}
	attrList := newGuard(attrs, (*windows.ProcThreadAttributeListContainer).Delete)
	defer attrList.release()

	// The attribute value is the HPCON itself, not a pointer to it, so the
	// handle bits are reinterpreted as a pointer without arithmetic.
	if err := attrs.Update(
		windows.PROC_THREAD_ATTRIBUTE_PSEUDOCONSOLE,
		*(*unsafe.Pointer)(unsafe.Pointer(&hpc)),
		unsafe.Sizeof(hpc),
	); err != nil {
		return nil, spawnErr("attach pseudo console", err)
	}

	si := &windows.StartupInfoEx{ProcThreadAttributeList: attrs.List()}
	si.Cb = uint32(unsafe.Sizeof(*si))
	si.Flags |= windows.STARTF_USESTDHANDLES
	si.StdInput = inRead.get()
	si.StdOutput = outWrite.get()
	si.StdErr = outWrite.get()

	cmdLine, err := windows.UTF16PtrFromString(command)
	if err != nil {
		return nil, spawnErr("encode command line", err)
	}
	var dir *uint16
	if cfg.dir != "" {
		if dir, err = windows.UTF16PtrFromString(cfg.dir); err != nil {
			return nil, spawnErr("encode working directory", err)
		}
	}
	flags := uint32(windows.EXTENDED_STARTUPINFO_PRESENT | windows.CREATE_NO_WINDOW)
	var env *uint16
	if len(cfg.env) > 0 {
		env = environmentBlock(append(os.Environ(), cfg.env...))
		flags |= windows.CREATE_UNICODE_ENVIRONMENT
	}

	var pi windows.ProcessInformation
	if err := windows.CreateProcess(nil, cmdLine, nil, nil, true, flags, env, dir, &si.StartupInfo, &pi); err != nil {
		return nil, spawnErr("create process", err)
	}
	process := newGuard(pi.Process, closeHandle)
	defer process.release()
	thread := newGuard(pi.Thread, closeHandle)
	defer thread.release()

	b := &conptyBackend{
		input:     inWrite.get(),
		output:    outRead.get(),
		process:   pi.Process,
		processID: pi.ProcessId,
	}

	hpc = console.take()
	b.hpc = hpc
	b.console.add(func() error {
		windows.ClosePseudoConsole(hpc)
		return nil
	})

	for _, g := range []*guard[windows.Handle]{inRead, inWrite, outRead, outWrite} {
		h := g.take()
		b.td.add(func() error { closeHandle(h); return nil })
	}
	proc := process.take()
	b.td.add(func() error {
		var err error
		if running, _ := b.isRunning(); running {
			if err = windows.TerminateProcess(b.process, 1); err != nil {
				logging.Warn("conpty: terminate pid=%d: %v", b.processID, err)
			}
		}
		closeHandle(proc)
		return err
	})
	th := thread.take()
	b.td.add(func() error { closeHandle(th); return nil })
	return b, nil
}

// environmentBlock builds a double-NUL terminated UTF-16 block.
func environmentBlock(env []string) *uint16 {
	var units []uint16
	for _, kv := range env {
		units = append(units, utf16.Encode([]rune(kv))...)
		units = append(units, 0)
	}
	units = append(units, 0)
	return &units[0]
}

func (b *conptyBackend) peek() (uint32, error) {
	var avail uint32
	r1, _, err := procPeekNamedPipe.Call(uintptr(b.output), 0, 0, 0, uintptr(unsafe.Pointer(&avail)), 0)
	if r1 == 0 {
		return 0, err
	}
	return avail, nil
}

// Read polls with PeekNamedPipe and only calls ReadFile once data is
// waiting, so no OS thread stays parked in a read Close cannot cancel.
func (b *conptyBackend) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		b.ioMu.RLock()
		if b.closed {
			b.ioMu.RUnlock()
			return 0, io.EOF
		}
		avail, err := b.peek()
		if err != nil {
			b.ioMu.RUnlock()
			return 0, readErr(err)
		}
		if avail > 0 {
			var n uint32
			err := windows.ReadFile(b.output, p, &n, nil)
			b.ioMu.RUnlock()
			if err != nil {
				return int(n), readErr(err)
			}
			return int(n), nil
		}
		b.ioMu.RUnlock()
		time.Sleep(peekInterval)
	}
}

func readErr(err error) error {
	if errors.Is(err, windows.ERROR_BROKEN_PIPE) {
		return io.EOF
	}
	return err
}

func (b *conptyBackend) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b.ioMu.RLock()
	defer b.ioMu.RUnlock()
	if b.closed {
		return 0, io.ErrClosedPipe
	}
	var n uint32
	if err := windows.WriteFile(b.input, p, &n, nil); err != nil {
		return int(n), err
	}
	return int(n), nil
}

func (b *conptyBackend) resize(size Size) error {
	return windows.ResizePseudoConsole(b.hpc, coord(size))
}

func (b *conptyBackend) isRunning() (bool, error) {
	var code uint32
	if err := windows.GetExitCodeProcess(b.process, &code); err != nil {
		return false, err
	}
	return code == stillActive, nil
}

func (b *conptyBackend) bytesAvailable() (int, error) {
	b.ioMu.RLock()
	defer b.ioMu.RUnlock()
	n, err := b.peek()
	return int(n), err
}

func (b *conptyBackend) pid() int { return int(b.processID) }

// drain discards console output until stop closes. Older Windows builds
// block in ClosePseudoConsole until the output pipe has been read dry.
func (b *conptyBackend) drain(stop <-chan struct{}) {
	buf := make([]byte, 4096)
	for {
		select {
		case <-stop:
			return
		default:
		}
		b.ioMu.RLock()
		avail, err := b.peek()
		if err == nil && avail > 0 {
			var n uint32
			err = windows.ReadFile(b.output, buf, &n, nil)
		}
		b.ioMu.RUnlock()
		if err != nil {
			return
		}
		if avail == 0 {
			time.Sleep(peekInterval)
		}
	}
}

// close shuts the pseudo console first, with output still being drained,
// then takes the exclusive lock and releases the remaining handles.
func (b *conptyBackend) close() error {
	b.closeOnce.Do(func() {
		stop := make(chan struct{})
		drained := safego.GoWait("conpty.drain", func() { b.drain(stop) })
		_ = b.console.run()
		close(stop)
		<-drained

		b.ioMu.Lock()
		defer b.ioMu.Unlock()
		b.closed = true
		b.closeErr = b.td.run()
	})
	return b.closeErr
}
