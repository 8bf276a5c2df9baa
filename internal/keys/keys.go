// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the history viewer keybindings.
type KeyMap struct {
	// Stepping
	Revert   key.Binding
	Apply    key.Binding
	First    key.Binding
	Last     key.Binding
	Finalize key.Binding

	// General
	ToggleDiff key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Revert: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "revert diff"),
		),
		Apply: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "apply next diff"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g/home", "revert all"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G/end", "apply all"),
		),
		Finalize: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "finalize open diff"),
		),
		ToggleDiff: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle line diff"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Revert, k.Apply, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Revert, k.Apply, k.First, k.Last},
		{k.Finalize, k.ToggleDiff, k.Help, k.Quit},
	}
}
