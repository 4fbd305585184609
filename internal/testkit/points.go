// Package testkit provides trace builders and invariant checks shared by the
// package tests.
package testkit

import (
	"fmt"

	"tracescope/internal/notify"
	"tracescope/internal/point"
)

// Local is one name/value pair for the point builders.
type Local struct {
	Name  string
	Value point.Value
}

// L builds a Local from a Go value: ints, floats, strings, bools and nil.
func L(name string, v any) Local {
	return Local{Name: name, Value: V(v)}
}

// V converts a Go value to a point.Value.
func V(v any) point.Value {
	switch x := v.(type) {
	case nil:
		return point.NullValue()
	case bool:
		return point.BoolValue(x)
	case int:
		return point.IntValue(int64(x))
	case int64:
		return point.IntValue(x)
	case float64:
		return point.FloatValue(x)
	case string:
		return point.StringValue(x)
	case point.Value:
		return x
	default:
		panic(fmt.Sprintf("testkit: unsupported value %T", v))
	}
}

// Frame builds a frame whose ordered names follow the locals order.
func Frame(locals ...Local) point.Frame {
	f := point.Frame{
		OrderedVarNames: make([]string, 0, len(locals)),
		Locals:          make(map[string]point.Value, len(locals)),
	}
	for _, l := range locals {
		f.OrderedVarNames = append(f.OrderedVarNames, l.Name)
		f.Locals[l.Name] = l.Value
	}
	return f
}

// Call builds a call point whose only frame holds args.
func Call(line int, fn string, args ...Local) point.ExecutionPoint {
	return point.ExecutionPoint{
		Event:     point.EventCall,
		Line:      line,
		FuncName:  fn,
		CallStack: []point.Frame{Frame(args...)},
	}
}

// Return builds a return point carrying ret in __return__ after locals.
func Return(line int, ret any, locals ...Local) point.ExecutionPoint {
	locals = append(locals, L(point.ReturnKey, ret))
	return point.ExecutionPoint{
		Event:     point.EventReturn,
		Line:      line,
		CallStack: []point.Frame{Frame(locals...)},
	}
}

// Step builds a step_line point. With no locals the call stack is empty.
func Step(line int, locals ...Local) point.ExecutionPoint {
	p := point.ExecutionPoint{Event: point.EventStepLine, Line: line}
	if len(locals) > 0 {
		p.CallStack = []point.Frame{Frame(locals...)}
	}
	return p
}

// Limit builds an instruction limit point.
func Limit(line int, msg string) point.ExecutionPoint {
	return point.ExecutionPoint{Event: point.EventInstructionLimit, Line: line, ExceptionMessage: msg}
}

// Trace collects points into a trace.
func Trace(points ...point.ExecutionPoint) point.Trace {
	return point.Trace(points)
}

// Recorder captures every outbound notification and command toggle.
type Recorder struct {
	Lines   []int
	Advice  []point.ExecutionPoint
	Alerts  []notify.Alert
	Enabled map[notify.Command]bool
	Toggles int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{Enabled: make(map[notify.Command]bool)}
}

func (r *Recorder) SetTracePoint(line int) { r.Lines = append(r.Lines, line) }

func (r *Recorder) GetAdvice(p point.ExecutionPoint) { r.Advice = append(r.Advice, p) }

func (r *Recorder) Alert(a notify.Alert) { r.Alerts = append(r.Alerts, a) }

func (r *Recorder) EnableCommands(cmds ...notify.Command) {
	r.Toggles++
	for _, c := range cmds {
		r.Enabled[c] = true
	}
}

func (r *Recorder) DisableCommands(cmds ...notify.Command) {
	r.Toggles++
	for _, c := range cmds {
		r.Enabled[c] = false
	}
}
