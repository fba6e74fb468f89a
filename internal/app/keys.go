package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/ring0/internal/logging"
)

// KeyToBytes converts a key press message to bytes for the session.
func KeyToBytes(msg tea.KeyPressMsg) []byte {
	key := msg.Key()
	logging.Debug("KeyToBytes: code=%d mod=%d str=%q", key.Code, key.Mod, msg.String())

	if key.Mod&tea.ModCtrl != 0 {
		if b, ok := controlCode(key.Code); ok {
			return []byte{b}
		}
	}

	switch key.Code {
	case tea.KeyEnter:
		return []byte{'\r'}
	case tea.KeyBackspace:
		return []byte{0x7f}
	case tea.KeyTab:
		if key.Mod&tea.ModShift != 0 {
			return []byte{0x1b, '[', 'Z'}
		}
		return []byte{'\t'}
	case tea.KeySpace:
		return []byte{' '}
	case tea.KeyEscape:
		return []byte{0x1b}
	case tea.KeyUp:
		return []byte{0x1b, '[', 'A'}
	case tea.KeyDown:
		return []byte{0x1b, '[', 'B'}
	case tea.KeyRight:
		return []byte{0x1b, '[', 'C'}
	case tea.KeyLeft:
		return []byte{0x1b, '[', 'D'}
	case tea.KeyHome:
		return []byte{0x1b, '[', 'H'}
	case tea.KeyEnd:
		return []byte{0x1b, '[', 'F'}
	case tea.KeyDelete:
		return []byte{0x1b, '[', '3', '~'}
	case tea.KeyPgUp:
		return []byte{0x1b, '[', '5', '~'}
	case tea.KeyPgDown:
		return []byte{0x1b, '[', '6', '~'}
	}

	if key.Mod&tea.ModAlt != 0 && key.Text != "" {
		return append([]byte{0x1b}, []byte(key.Text)...)
	}

	if key.Text != "" {
		return []byte(key.Text)
	}

	if s := msg.String(); len(s) == 1 {
		return []byte(s)
	}

	return nil
}

// controlCode maps ctrl+letter to its C0 control byte. ctrl+i and ctrl+m
// are left to the tab and enter cases.
func controlCode(code rune) (byte, bool) {
	if code >= 'A' && code <= 'Z' {
		code += 'a' - 'A'
	}
	if code < 'a' || code > 'z' || code == 'i' || code == 'm' {
		return 0, false
	}
	return byte(code-'a') + 1, true
}
