// Package goals turns edits of displayed variable values into a goal set
// and the modified execution point handed to the advice engine.
package goals

import (
	"tracescope/internal/point"
)

// Edit is the text a user typed as the desired value of a variable.
type Edit struct {
	Name string
	Text string
}

// Goal pairs the observed value of a variable with the desired one.
type Goal struct {
	Name     string
	OldValue Int
	NewValue Int
}

// Extract builds the goal set for the variables frame displays. Edits are
// matched by display name, which is the sanitized frame key; the goal keeps
// the frame key. Edits with empty text and edits of names the frame does not
// show are dropped. When a name is edited twice the last text wins but the
// first position is kept. A nil frame, or one without variables, yields no
// goals.
func Extract(frame *point.Frame, edits []Edit) []Goal {
	shown := displayed(frame)
	if len(shown) == 0 {
		return nil
	}
	var out []Goal
	pos := make(map[string]int, len(edits))
	for _, e := range edits {
		if e.Text == "" {
			continue
		}
		key, ok := shown[e.Name]
		if !ok {
			continue
		}
		v, _ := frame.Lookup(key)
		g := Goal{
			Name:     key,
			OldValue: ParseInt(point.Sanitize(v.String())),
			NewValue: ParseInt(e.Text),
		}
		if i, ok := pos[key]; ok {
			out[i] = g
			continue
		}
		pos[key] = len(out)
		out = append(out, g)
	}
	return out
}

// displayed maps each display name of frame to its frame key. A raw key
// also maps to itself unless it is taken by another variable's display name.
func displayed(frame *point.Frame) map[string]string {
	names := frame.Names()
	if len(names) == 0 {
		return nil
	}
	shown := make(map[string]string, len(names))
	for _, name := range names {
		if _, dup := shown[point.Sanitize(name)]; !dup {
			shown[point.Sanitize(name)] = name
		}
	}
	for _, name := range names {
		if _, taken := shown[name]; !taken {
			shown[name] = name
		}
	}
	return shown
}

// Apply returns a deep copy of p whose active frame lists only the goal
// names, in goal order, with the desired values as locals. NaN goals are
// encoded as null. A point without frames has nothing to edit and is
// returned unchanged. p is not modified.
func Apply(p *point.ExecutionPoint, goals []Goal) point.ExecutionPoint {
	modified := p.Clone()
	if len(modified.CallStack) == 0 {
		return modified
	}
	names := make([]string, 0, len(goals))
	locals := make(map[string]point.Value, len(goals))
	for _, g := range goals {
		names = append(names, g.Name)
		if g.NewValue.NaN {
			locals[g.Name] = point.NullValue()
		} else {
			locals[g.Name] = point.IntValue(g.NewValue.Value)
		}
	}
	modified.CallStack[0] = point.Frame{OrderedVarNames: names, Locals: locals}
	return modified
}

// Modify runs Extract on the active frame of p and Apply on the result.
// ok is false when p shows no variables or no goal survives, in which case
// nothing should be sent.
func Modify(p *point.ExecutionPoint, edits []Edit) (modified point.ExecutionPoint, goals []Goal, ok bool) {
	frame, found := p.Top()
	if !found {
		return point.ExecutionPoint{}, nil, false
	}
	goals = Extract(frame, edits)
	if len(goals) == 0 {
		return point.ExecutionPoint{}, nil, false
	}
	return Apply(p, goals), goals, true
}
