package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Actions
	Open        key.Binding
	Add         key.Binding
	BulkAdd     key.Binding
	Rename      key.Binding
	Delete      key.Binding
	Refresh     key.Binding
	RefreshOne  key.Binding
	Embeddable  key.Binding
	GridSize    key.Binding
	AutoRefresh key.Binding
	SetKey      key.Binding
	Filter      key.Binding
	Reload      key.Binding
	Help        key.Binding
	Escape      key.Binding
	Quit        key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "right"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "pgdown"),
			key.WithHelp("]", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "pgup"),
			key.WithHelp("[", "prev page"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "open in player"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		BulkAdd: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "bulk add"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh all"),
		),
		RefreshOne: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh playlist"),
		),
		Embeddable: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "check embeddable"),
		),
		GridSize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "grid size"),
		),
		AutoRefresh: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle auto-refresh"),
		),
		SetKey: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "set API key"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Add, k.Rename, k.Delete, k.Refresh, k.GridSize, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.NextPage, k.PrevPage},
		{k.Open, k.Add, k.BulkAdd, k.Rename, k.Delete, k.Filter},
		{k.Refresh, k.RefreshOne, k.Embeddable, k.AutoRefresh, k.SetKey, k.Reload},
		{k.GridSize, k.Help, k.Escape, k.Quit},
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
