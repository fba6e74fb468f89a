package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
)

// clipboardRead is swapped in tests.
var clipboardRead = clipboard.ReadAll

func readClipboard() tea.Cmd {
	return func() tea.Msg {
		text, err := clipboardRead()
		if err != nil {
			return pasteMsg{err: fmt.Errorf("clipboard error: %w", err)}
		}
		return pasteMsg{text: text}
	}
}
