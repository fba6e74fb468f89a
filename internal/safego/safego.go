package safego

import (
	"runtime/debug"
	"sync"

	"github.com/andyrewlee/ring0/internal/logging"
)

// PanicHandler is notified after a goroutine panic has been recovered and logged.
type PanicHandler func(name string, recovered any, stack []byte)

var (
	handlerMu sync.RWMutex
	handler   PanicHandler
)

// SetPanicHandler installs h as the process-wide panic hook. nil removes it.
func SetPanicHandler(h PanicHandler) {
	handlerMu.Lock()
	handler = h
	handlerMu.Unlock()
}

// Run calls fn, turning a panic into an error log plus a handler callback.
// Runtime-fatal errors (concurrent map writes, stack exhaustion) still abort.
func Run(name string, fn func()) {
	defer recoverPanic(name)
	fn()
}

// Go runs fn on a new goroutine under Run.
func Go(name string, fn func()) {
	go Run(name, fn)
}

// GoWait is Go with a channel that closes once fn has returned or panicked.
func GoWait(name string, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(name, fn)
	}()
	return done
}

func recoverPanic(name string) {
	r := recover()
	if r == nil {
		return
	}
	if name == "" {
		name = "goroutine"
	}
	stack := debug.Stack()
	logging.Error("panic in %s: %v\n%s", name, r, stack)

	handlerMu.RLock()
	h := handler
	handlerMu.RUnlock()
	if h == nil {
		return
	}
	defer func() { _ = recover() }()
	h(name, r, stack)
}
