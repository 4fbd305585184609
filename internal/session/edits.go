package session

import (
	"tracescope/internal/goals"
	"tracescope/internal/nav"
)

// Edits holds the target values typed for the selected point.
type Edits struct {
	order []string
	text  map[string]string
}

// NewEdits returns an empty set.
func NewEdits() *Edits {
	return &Edits{text: make(map[string]string)}
}

// Set records text as the target of name.
func (e *Edits) Set(name, text string) {
	if _, ok := e.text[name]; !ok {
		e.order = append(e.order, name)
	}
	e.text[name] = text
}

// Unset drops the edit of name and reports whether there was one.
func (e *Edits) Unset(name string) bool {
	if _, ok := e.text[name]; !ok {
		return false
	}
	delete(e.text, name)
	for i, n := range e.order {
		if n == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the edit of name.
func (e *Edits) Get(name string) (string, bool) {
	t, ok := e.text[name]
	return t, ok
}

// Len returns the number of edited names.
func (e *Edits) Len() int { return len(e.order) }

// Reset drops every edit.
func (e *Edits) Reset() {
	e.order = e.order[:0]
	clear(e.text)
}

// Ordered lists the edits of the variables snap shows, in display order.
// Edits of names snap does not show are left out.
func (e *Edits) Ordered(snap nav.Snapshot) []goals.Edit {
	out := make([]goals.Edit, 0, len(e.order))
	for _, v := range snap.Vars {
		if t, ok := e.text[v.Name]; ok {
			out = append(out, goals.Edit{Name: v.Name, Text: t})
		}
	}
	return out
}
