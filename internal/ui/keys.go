package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"tracescope/internal/notify"
)

// KeyMap holds the viewer's bindings. It is also the controller's command
// surface: the step bindings are enabled and disabled with the trace.
type KeyMap struct {
	Back    key.Binding
	Forward key.Binding
	Up      key.Binding
	Down    key.Binding
	Goto    key.Binding
	Edit    key.Binding
	Unset   key.Binding
	Suggest key.Binding
	Help    key.Binding
	Quit    key.Binding

	Confirm key.Binding
	Cancel  key.Binding
}

// NewKeyMap returns the default bindings with stepping disabled until a
// trace is loaded.
func NewKeyMap() *KeyMap {
	k := &KeyMap{
		Back:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "back")),
		Forward: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "forward")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev var")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next var")),
		Goto:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "goto")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit value")),
		Unset:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "drop edit")),
		Suggest: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "suggest")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel/dismiss")),
	}
	k.Back.SetEnabled(false)
	k.Forward.SetEnabled(false)
	return k
}

func (k *KeyMap) binding(cmd notify.Command) *key.Binding {
	switch cmd {
	case notify.StepBackward:
		return &k.Back
	case notify.StepForward:
		return &k.Forward
	}
	return nil
}

// EnableCommands implements notify.Surface.
func (k *KeyMap) EnableCommands(cmds ...notify.Command) {
	for _, c := range cmds {
		if b := k.binding(c); b != nil {
			b.SetEnabled(true)
		}
	}
}

// DisableCommands implements notify.Surface.
func (k *KeyMap) DisableCommands(cmds ...notify.Command) {
	for _, c := range cmds {
		if b := k.binding(c); b != nil {
			b.SetEnabled(false)
		}
	}
}

// ShortHelp implements help.KeyMap.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Forward, k.Edit, k.Suggest, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Back, k.Forward, k.Goto},
		{k.Up, k.Down, k.Edit, k.Unset, k.Suggest},
		{k.Cancel, k.Help, k.Quit},
	}
}

// inputKeys is shown while a prompt is open.
type inputKeys struct{ k *KeyMap }

func (i inputKeys) ShortHelp() []key.Binding { return []key.Binding{i.k.Confirm, i.k.Cancel} }
func (i inputKeys) FullHelp() [][]key.Binding { return [][]key.Binding{i.ShortHelp()} }
