package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the checkout screen.
type KeyMap struct {
	// Form navigation.
	Next key.Binding
	Prev key.Binding

	Submit key.Binding

	// Back leaves an expired checkout for seat selection. It is only
	// active while the expiry overlay is shown.
	Back key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab/↓", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-tab/↑", "previous field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "purchase"),
	),
	Back: key.NewBinding(
		key.WithKeys("enter", "esc", "b"),
		key.WithHelp("enter", "choose seats again"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}
