package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the picker keybindings.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Confirm    key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	NextFolder key.Binding
	PrevFolder key.Binding
	Search     key.Binding
	Cancel     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "select"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "pgup", "["),
			key.WithHelp("←/[", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "pgdown", "]"),
			key.WithHelp("→/]", "next page"),
		),
		NextFolder: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next folder"),
		),
		PrevFolder: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev folder"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc/q", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Confirm, k.Search, k.NextFolder, k.NextPage, k.Cancel}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Confirm},
		{k.PrevPage, k.NextPage, k.PrevFolder, k.NextFolder},
		{k.Search, k.Cancel},
	}
}
