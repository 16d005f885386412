package tui

import (
	"reflect"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the application-level bindings handled before the editor.
type KeyMap struct {
	Quit         key.Binding
	Save         key.Binding
	RunSelection key.Binding
	RunTemplate  key.Binding
	ClosePicker  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:         key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
		Save:         key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		RunSelection: key.NewBinding(key.WithKeys("alt+a"), key.WithHelp("alt+a", "run selection as prompt")),
		RunTemplate:  key.NewBinding(key.WithKeys("alt+d"), key.WithHelp("alt+d", "run custom prompt")),
		ClosePicker:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close picker")),
	}
}

func (km KeyMap) isZero() bool { return reflect.DeepEqual(km, KeyMap{}) }
