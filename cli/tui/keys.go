package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send       key.Binding
	NextThread key.Binding
	PrevThread key.Binding
	Lobby      key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	NextThread: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next thread"),
	),
	PrevThread: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev thread"),
	),
	Lobby: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "thread list"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "scroll down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

func helpLine() string {
	bindings := []key.Binding{keys.Send, keys.NextThread, keys.Lobby, keys.ScrollUp, keys.Quit}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return helpStyle.Render(joinDot(parts))
}
