package notify

import "tracescope/internal/point"

// Multi fans out events to several observers and alerters.
type Multi struct {
	observers []Observer
	alerters  []Alerter
}

// NewMulti creates a Multi. Each target is registered as an Observer, an
// Alerter, or both, depending on what it implements.
func NewMulti(targets ...any) *Multi {
	m := &Multi{}
	for _, t := range targets {
		m.Add(t)
	}
	return m
}

// Add registers another target.
func (m *Multi) Add(target any) {
	if o, ok := target.(Observer); ok {
		m.observers = append(m.observers, o)
	}
	if a, ok := target.(Alerter); ok {
		m.alerters = append(m.alerters, a)
	}
}

// SetTracePoint forwards to every observer.
func (m *Multi) SetTracePoint(line int) {
	for _, o := range m.observers {
		o.SetTracePoint(line)
	}
}

// GetAdvice forwards a separate copy of modified to every observer.
func (m *Multi) GetAdvice(modified point.ExecutionPoint) {
	for i, o := range m.observers {
		if i == len(m.observers)-1 {
			o.GetAdvice(modified)
			continue
		}
		o.GetAdvice(modified.Clone())
	}
}

// Alert forwards to every alerter.
func (m *Multi) Alert(a Alert) {
	for _, al := range m.alerters {
		al.Alert(a)
	}
}

// Commands is a Surface that remembers which commands are enabled.
type Commands struct {
	enabled map[Command]bool
}

// NewCommands returns a surface with every command disabled.
func NewCommands() *Commands {
	return &Commands{enabled: make(map[Command]bool)}
}

func (c *Commands) EnableCommands(cmds ...Command) {
	for _, cmd := range cmds {
		c.enabled[cmd] = true
	}
}

func (c *Commands) DisableCommands(cmds ...Command) {
	for _, cmd := range cmds {
		c.enabled[cmd] = false
	}
}

// Enabled reports whether cmd is currently enabled.
func (c *Commands) Enabled(cmd Command) bool {
	if c == nil {
		return false
	}
	return c.enabled[cmd]
}
