package scope

import (
	"slices"

	"tracescope/internal/notify"
	"tracescope/internal/point"
	"tracescope/internal/traceerr"
)

// InstructionLimitMessage is the alert text sent for instruction limit points.
const InstructionLimitMessage = "VM reached instruction limit"

// openScope is a scope whose return has been seen but whose call has not.
// Nodes are collected last-to-first and reversed once the scope closes.
type openScope struct {
	depth  int
	ret    string
	closer *PointNode
	nodes  []*PointNode
}

func (o *openScope) close() *Scope {
	slices.Reverse(o.nodes)
	return &Scope{Depth: o.depth, Points: o.nodes, Return: o.closer}
}

// Build reconstructs the scope tree of tr. Points are folded last-to-first so
// a call's return value is known before the call node is emitted: each
// return opens a scope carrying its return value on a stack, and the matching
// call pops it. Instruction limit points are reported to alerter and produce
// no node. alerter may be nil.
//
// Build never returns a partial tree.
func Build(tr point.Trace, alerter notify.Alerter) (*Tree, error) {
	if tr == nil {
		return nil, traceerr.InvalidInput("trace must be an array, received null")
	}
	if alerter == nil {
		alerter = notify.Nop
	}

	nodes := make([]*PointNode, len(tr))
	var open Stack[*openScope]
	cur := &openScope{}

	for i := len(tr) - 1; i >= 0; i-- {
		p := &tr[i]
		switch p.Event {
		case point.EventInstructionLimit:
			alerter.Alert(notify.Alert{
				Severity: notify.SeverityFatal,
				Message:  InstructionLimitMessage,
				Details:  notify.AlertDetails{Large: true, Code: p.ExceptionMessage},
			})

		case point.EventCall:
			top, ok := p.Top()
			if !ok || top.Locals == nil {
				return nil, traceerr.MalformedTrace(i, "cannot get local variables")
			}
			outer, ok := open.Pop()
			if !ok {
				return nil, traceerr.MissingReturnValue(i)
			}
			node := &PointNode{
				Index:       i,
				Line:        p.Line,
				Point:       p,
				FuncName:    point.Sanitize(p.FuncName),
				Args:        argsOf(top),
				ReturnValue: cur.ret,
				Scope:       cur.close(),
			}
			nodes[i] = node
			cur = outer
			cur.nodes = append(cur.nodes, node)

		case point.EventReturn:
			top, ok := p.Top()
			if !ok {
				return nil, traceerr.MissingReturnField(i)
			}
			ret, ok := top.Lookup(point.ReturnKey)
			if !ok {
				return nil, traceerr.MissingReturnField(i)
			}
			node := &PointNode{Index: i, Line: p.Line, Point: p}
			nodes[i] = node
			open.Push(cur)
			cur = &openScope{
				depth:  open.Len(),
				ret:    point.Sanitize(ret.String()),
				closer: node,
			}

		case point.EventStepLine:
			node := &PointNode{Index: i, Line: p.Line, Point: p}
			nodes[i] = node
			cur.nodes = append(cur.nodes, node)

		default:
			return nil, traceerr.UnknownEvent(i, p.Event.String())
		}
	}

	if open.Len() > 0 {
		return nil, traceerr.MalformedTrace(cur.closer.Index, "return without a matching call")
	}
	return &Tree{Root: cur.close(), nodes: nodes}, nil
}

// argsOf lists the frame's own locals in display order, without the
// reserved return slot.
func argsOf(f *point.Frame) []Arg {
	names := f.Names()
	args := make([]Arg, 0, len(names))
	for _, name := range names {
		if name == point.ReturnKey {
			continue
		}
		v, _ := f.Lookup(name)
		args = append(args, Arg{Name: point.Sanitize(name), Value: point.Sanitize(v.String())})
	}
	return args
}
