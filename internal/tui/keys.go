package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the task list UI.
type KeyMap struct {
	// List navigation.
	Up   key.Binding
	Down key.Binding

	// Mutations on the task under the cursor.
	Toggle key.Binding
	Delete key.Binding

	// Submit creates a task from the draft. Only active while the
	// input has focus.
	Submit key.Binding

	Focus  key.Binding // Switch between input and list.
	Blur   key.Binding // Leave the input.
	Reload key.Binding

	Quit      key.Binding // List only, so "q" can be typed.
	ForceQuit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "toggle"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "add"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch"),
	),
	Blur: key.NewBinding(
		key.WithKeys("esc"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}
