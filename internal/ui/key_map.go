package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	generate key.Binding
	sel      key.Binding
	edit     key.Binding
	editHere key.Binding
	open     key.Binding
	submit   key.Binding
	back     key.Binding
	fresh    key.Binding
	quit     key.Binding
	exit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		generate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate")),
		sel:      key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit selected")),
		editHere: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit frame")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open PDF")),
		submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "apply edit")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		fresh:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new storyboard")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		exit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.sel},
		{k.edit, k.editHere, k.open},
		{k.fresh, k.back, k.quit},
	}
}
