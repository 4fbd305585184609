// Package notify defines the seams between the trace core and the
// collaborators observing it: the source highlighter that follows the
// current line, the advice engine, the alert view and the control surface
// holding the step commands.
package notify

import "tracescope/internal/point"

// Command names a control surface command driven by the core.
type Command string

const (
	StepBackward Command = "step-backward"
	StepForward  Command = "step-forward"
)

// Surface is a control surface whose commands can be toggled.
type Surface interface {
	EnableCommands(cmds ...Command)
	DisableCommands(cmds ...Command)
}

// Severity classifies an alert.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityFatal
)

// String returns the string representation of Severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// AlertDetails carries the optional body of an alert.
type AlertDetails struct {
	Large bool   // render as a large, blocking alert
	Code  string // preformatted text shown verbatim
}

// Alert is a user-facing notification.
type Alert struct {
	Severity Severity
	Message  string
	Details  AlertDetails
}

// Alerter receives alerts.
type Alerter interface {
	Alert(a Alert)
}

// Observer receives the controller's outbound events.
type Observer interface {
	// SetTracePoint is emitted on every successful navigation with the
	// resolved source line.
	SetTracePoint(line int)
	// GetAdvice is emitted when the user requests suggestions; modified is
	// a private copy owned by the observer.
	GetAdvice(modified point.ExecutionPoint)
}

// Funcs adapts plain functions to Observer and Alerter. Nil fields are
// skipped.
type Funcs struct {
	OnSetTracePoint func(line int)
	OnGetAdvice     func(modified point.ExecutionPoint)
	OnAlert         func(a Alert)
}

func (f Funcs) SetTracePoint(line int) {
	if f.OnSetTracePoint != nil {
		f.OnSetTracePoint(line)
	}
}

func (f Funcs) GetAdvice(modified point.ExecutionPoint) {
	if f.OnGetAdvice != nil {
		f.OnGetAdvice(modified)
	}
}

func (f Funcs) Alert(a Alert) {
	if f.OnAlert != nil {
		f.OnAlert(a)
	}
}

// Nop ignores every event.
var Nop = Funcs{}
