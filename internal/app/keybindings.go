package app

import (
	"charm.land/bubbles/v2/key"

	"github.com/andyrewlee/ring0/internal/config"
)

// KeyMap holds the keys the host handles itself. Everything else goes to
// the session.
type KeyMap struct {
	Quit         key.Binding
	Paste        key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	ScrollTop    key.Binding
	ScrollBottom key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "paste"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("shift+pgup"),
			key.WithHelp("shift+pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("shift+pgdown"),
			key.WithHelp("shift+pgdown", "scroll down"),
		),
		ScrollTop: key.NewBinding(
			key.WithKeys("shift+home"),
			key.WithHelp("shift+home", "oldest history"),
		),
		ScrollBottom: key.NewBinding(
			key.WithKeys("shift+end"),
			key.WithHelp("shift+end", "live view"),
		),
	}
}

// KeyMapFromConfig applies user overrides on top of the defaults.
func KeyMapFromConfig(cfg config.KeyMapConfig) KeyMap {
	km := DefaultKeyMap()
	override := func(b *key.Binding, action string) {
		keys, ok := cfg.BindingFor(action)
		if !ok || len(keys) == 0 {
			return
		}
		help := b.Help()
		*b = key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help.Desc))
	}
	override(&km.Quit, "quit")
	override(&km.Paste, "paste")
	override(&km.ScrollUp, "scroll_up")
	override(&km.ScrollDown, "scroll_down")
	override(&km.ScrollTop, "scroll_top")
	override(&km.ScrollBottom, "scroll_bottom")
	return km
}

// ShortHelp lists the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Paste, k.ScrollUp, k.ScrollDown}
}
