package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open      key.Binding
	Up        key.Binding
	Local     key.Binding
	Recursive key.Binding
	Refresh   key.Binding
	Tag       key.Binding
	Owner     key.Binding
	FixTimes  key.Binding
	Cancel    key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Up:        key.NewBinding(key.WithKeys("backspace", "left", "h"), key.WithHelp("⌫", "up")),
		Local:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Recursive: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "search below")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Tag:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tag")),
		Owner:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "owner")),
		FixTimes:  key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "fix times")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Open, k.Up, k.Local, k.Recursive, k.Refresh, k.Tag, k.Owner, k.FixTimes, k.Quit}
}
