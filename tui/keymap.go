package tui

import "github.com/charmbracelet/bubbles/key"

type keymap struct {
	quit, lock, stepBack, stepForward, showHelp key.Binding
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
		lock: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "lock controls"),
		),
		stepBack: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "frame back"),
		),
		stepForward: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "frame forward"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit, k.lock, k.showHelp}
}

func (k *keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.quit, k.showHelp},
		{k.lock, k.stepBack, k.stepForward},
	}
}
