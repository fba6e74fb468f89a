//go:build !windows

package main

import (
	"bytes"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/andyrewlee/ring0/internal/logging"
	"github.com/andyrewlee/ring0/internal/safego"
)

// startSignalDebug registers a SIGUSR1 handler for goroutine dumps in dev
// builds or when RING0_DEBUG_SIGNALS is set.
func startSignalDebug() {
	if version != "dev" && strings.TrimSpace(os.Getenv("RING0_DEBUG_SIGNALS")) == "" {
		return
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	safego.Go("signal-debug", func() {
		for range ch {
			var buf bytes.Buffer
			if err := pprof.Lookup("goroutine").WriteTo(&buf, 2); err != nil {
				logging.Warn("Failed to write goroutine dump: %v", err)
				continue
			}
			logging.Warn("GOROUTINE DUMP\n%s", buf.String())
		}
	})
}
