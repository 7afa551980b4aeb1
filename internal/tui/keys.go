package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the demo keybindings.
type KeyMap struct {
	Success    key.Binding
	Error      key.Binding
	Warning    key.Binding
	Info       key.Binding
	Update     key.Binding
	Dismiss    key.Binding
	DismissAll key.Binding
	Clear      key.Binding
	Quit       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Success:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "success")),
		Error:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "error")),
		Warning:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "warning")),
		Info:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
		Update:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update newest")),
		Dismiss:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss newest")),
		DismissAll: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "dismiss all")),
		Clear:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Success, k.Error, k.Warning, k.Info, k.Dismiss, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Success, k.Error, k.Warning, k.Info},
		{k.Update, k.Dismiss, k.DismissAll, k.Clear, k.Quit},
	}
}
