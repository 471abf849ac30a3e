package terminal

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the key bindings of the terminal viewer.
type KeyMap struct {
	ToggleView  key.Binding
	Search      key.Binding
	EndSearch   key.Binding
	ClearSearch key.Binding
	PrevColumn  key.Binding
	NextColumn  key.Binding
	Sort        key.Binding
	Copy        key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Quit        key.Binding
}

// DefaultKeyMap is the vi-flavoured binding set used by New.
var DefaultKeyMap = KeyMap{
	ToggleView:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle view")),
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	EndSearch:   key.NewBinding(key.WithKeys("enter", "esc", "tab")),
	ClearSearch: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
	PrevColumn:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
	NextColumn:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
	Sort:        key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "sort")),
	Copy:        key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "copy")),
	Up:          key.NewBinding(key.WithKeys("up", "k")),
	Down:        key.NewBinding(key.WithKeys("down", "j")),
	PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+b")),
	PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+f", " ")),
	Top:         key.NewBinding(key.WithKeys("home", "g")),
	Bottom:      key.NewBinding(key.WithKeys("end", "G")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp returns the bindings shown in the help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleView, k.Search, k.PrevColumn, k.NextColumn, k.Sort, k.Copy, k.Quit}
}
