package nav

import (
	"tracescope/internal/point"
	"tracescope/internal/traceerr"
)

// Var is one local of the visible frame, formatted for display.
type Var struct {
	Name    string
	Display string
	Value   point.Value
}

// Snapshot is what the viewer shows for the selected point: its line and
// the locals of the innermost frame.
type Snapshot struct {
	Index    int
	Line     int
	Event    point.Event
	FuncName string
	Vars     []Var
}

// Lookup returns the visible variable called name.
func (s Snapshot) Lookup(name string) (Var, bool) {
	for _, v := range s.Vars {
		if v.Name == name {
			return v, true
		}
	}
	return Var{}, false
}

func snapshotAt(tr point.Trace, index int) (Snapshot, error) {
	p := &tr[index]
	if p.Line < 1 {
		return Snapshot{}, traceerr.CorruptedLine(index, "point has corrupted line %d", p.Line)
	}
	snap := Snapshot{Index: index, Line: p.Line, Event: p.Event, FuncName: p.FuncName}
	top, ok := p.Top()
	if !ok {
		return snap, nil
	}
	for _, name := range top.Names() {
		v, _ := top.Lookup(name)
		snap.Vars = append(snap.Vars, Var{
			Name:    point.Sanitize(name),
			Display: point.Sanitize(v.String()),
			Value:   v,
		})
	}
	return snap, nil
}
