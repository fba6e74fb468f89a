package app

import (
	"time"

	"github.com/andyrewlee/ring0/internal/config"
)

// frameMsg drives one pump of session output.
type frameMsg time.Time

// blinkMsg toggles the cursor.
type blinkMsg struct{}

// pasteMsg carries clipboard text read off the UI goroutine.
type pasteMsg struct {
	text string
	err  error
}

// ConfigReloadedMsg is sent by the config watcher after a successful reload.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// panicMsg reports a recovered panic in a background goroutine.
type panicMsg struct {
	name string
}
