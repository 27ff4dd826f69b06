package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap collects the dashboard bindings. Tab digits (1-9) are matched on the
// raw rune instead of a binding so the map stays profile-agnostic.
type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
	Demo    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Up      key.Binding
	Down    key.Binding
	Approve key.Binding
	Reject  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Demo:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "demo")),
		NextTab: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev tab")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j", "down")),
		Approve: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Reject:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
	}
}

// helpBindings is the footer order. Review-only keys are included; the footer
// dims them on tabs where they do nothing.
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{k.Refresh, k.Demo, k.NextTab, k.Approve, k.Reject, k.Quit}
}
