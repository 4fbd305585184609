// Package point holds the execution trace model: the ordered sequence of
// execution points emitted by an interpreter, their call stack frames and the
// pre-serialized local variable values.
//
// Points are immutable once ingested. Decoding validates the wire shape once;
// consumers read fields directly instead of probing optional keys.
package point

import (
	"fmt"
	"slices"
	"sort"
)

// ReturnKey is the reserved local holding a function's return value on
// return events.
const ReturnKey = "__return__"

// NoLine is stored for points whose line is missing or not a positive
// integer. Instruction limit points usually carry none.
const NoLine = 0

// Event is the kind of an execution point.
type Event uint8

const (
	EventInvalid Event = iota
	EventCall
	EventReturn
	EventStepLine
	EventInstructionLimit
)

// String returns the wire name of the event.
func (e Event) String() string {
	switch e {
	case EventCall:
		return "call"
	case EventReturn:
		return "return"
	case EventStepLine:
		return "step_line"
	case EventInstructionLimit:
		return "instruction_limit_reached"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

// ParseEvent converts a wire event name to an Event.
func ParseEvent(s string) (Event, bool) {
	switch s {
	case "call":
		return EventCall, true
	case "return":
		return EventReturn, true
	case "step_line":
		return EventStepLine, true
	case "instruction_limit_reached":
		return EventInstructionLimit, true
	default:
		return EventInvalid, false
	}
}

// Frame is one level of the call stack at a point.
type Frame struct {
	OrderedVarNames []string
	// Locals is nil when the frame carried no locals mapping at all.
	Locals map[string]Value
}

// Lookup returns the local named name.
func (f *Frame) Lookup(name string) (Value, bool) {
	if f == nil || f.Locals == nil {
		return Value{}, false
	}
	v, ok := f.Locals[name]
	return v, ok
}

// Names returns the names of the frame's locals in display order: the
// ordered variable names that have a local, followed by any remaining locals
// sorted by name.
func (f *Frame) Names() []string {
	if f == nil || len(f.Locals) == 0 {
		return nil
	}
	names := make([]string, 0, len(f.Locals))
	seen := make(map[string]struct{}, len(f.Locals))
	for _, name := range f.OrderedVarNames {
		if _, ok := f.Locals[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	var rest []string
	for name := range f.Locals {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	out := Frame{OrderedVarNames: slices.Clone(f.OrderedVarNames)}
	if f.Locals != nil {
		out.Locals = make(map[string]Value, len(f.Locals))
		for k, v := range f.Locals {
			out.Locals[k] = v
		}
	}
	return out
}

// ExecutionPoint is one recorded step of a program run.
type ExecutionPoint struct {
	Event Event
	Line  int
	// CallStack lists frames innermost first; it may be empty.
	CallStack []Frame
	// FuncName is set on call events.
	FuncName string
	// ExceptionMessage is set on instruction limit events.
	ExceptionMessage string
}

// Top returns the innermost (active) frame.
func (p *ExecutionPoint) Top() (*Frame, bool) {
	if p == nil || len(p.CallStack) == 0 {
		return nil, false
	}
	return &p.CallStack[0], true
}

// Clone returns a deep copy of the point.
func (p ExecutionPoint) Clone() ExecutionPoint {
	out := p
	if p.CallStack != nil {
		out.CallStack = make([]Frame, len(p.CallStack))
		for i, f := range p.CallStack {
			out.CallStack[i] = f.Clone()
		}
	}
	return out
}

// Trace is the ordered, immutable sequence of execution points of one run.
type Trace []ExecutionPoint

// Len returns the number of points.
func (t Trace) Len() int { return len(t) }
