package components

import "charm.land/bubbles/v2/key"

// KeyMap holds the key bindings shared by all screens.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Back       key.Binding
	Instrument key.Binding
	Hint       key.Binding
	Diagnose   key.Binding
	Next       key.Binding
	Debrief    key.Binding
}

// Keys is the default key map.
var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", "space"),
		key.WithHelp("Enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("b", "backspace"),
		key.WithHelp("B", "back to testing"),
	),
	Instrument: key.NewBinding(
		key.WithKeys("m", "tab"),
		key.WithHelp("M", "switch meter"),
	),
	Hint: key.NewBinding(
		key.WithKeys("h", "?"),
		key.WithHelp("H", "hint"),
	),
	Diagnose: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("D", "diagnose"),
	),
	Next: key.NewBinding(
		key.WithKeys("enter", "n"),
		key.WithHelp("Enter", "next"),
	),
	Debrief: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("C", "coach debrief"),
	),
}
