package notify

import (
	"testing"

	"tracescope/internal/point"
)

func TestMulti_FansOut(t *testing.T) {
	var lines []int
	var alerts []Alert
	var advice []point.ExecutionPoint

	first := Funcs{
		OnSetTracePoint: func(line int) { lines = append(lines, line) },
		OnGetAdvice:     func(p point.ExecutionPoint) { advice = append(advice, p) },
	}
	second := Funcs{
		OnSetTracePoint: func(line int) { lines = append(lines, -line) },
		OnGetAdvice:     func(p point.ExecutionPoint) { advice = append(advice, p) },
		OnAlert:         func(a Alert) { alerts = append(alerts, a) },
	}
	m := NewMulti(first, second)

	m.SetTracePoint(3)
	m.Alert(Alert{Severity: SeverityFatal, Message: "boom"})
	m.GetAdvice(point.ExecutionPoint{
		Event:     point.EventStepLine,
		CallStack: []point.Frame{{OrderedVarNames: []string{"a"}}},
	})

	if len(lines) != 2 || lines[0] != 3 || lines[1] != -3 {
		t.Errorf("lines = %v, want [3 -3]", lines)
	}
	// Funcs implements Alerter as well, so both targets receive alerts.
	if len(alerts) != 1 {
		t.Errorf("alerts = %d, want 1 (first has no OnAlert)", len(alerts))
	}
	if len(advice) != 2 {
		t.Fatalf("advice = %d, want 2", len(advice))
	}
	advice[0].CallStack[0].OrderedVarNames[0] = "changed"
	if advice[1].CallStack[0].OrderedVarNames[0] != "a" {
		t.Error("observers share the advice payload")
	}
}

func TestCommands(t *testing.T) {
	c := NewCommands()
	if c.Enabled(StepForward) {
		t.Fatal("commands should start disabled")
	}
	c.EnableCommands(StepBackward, StepForward)
	if !c.Enabled(StepBackward) || !c.Enabled(StepForward) {
		t.Fatal("expected both commands enabled")
	}
	c.DisableCommands(StepForward)
	if c.Enabled(StepForward) || !c.Enabled(StepBackward) {
		t.Fatal("only step-forward should be disabled")
	}
	var nilCommands *Commands
	if nilCommands.Enabled(StepBackward) {
		t.Fatal("nil surface has nothing enabled")
	}
}

func TestSeverity_String(t *testing.T) {
	if SeverityFatal.String() != "fatal" {
		t.Errorf("SeverityFatal = %q", SeverityFatal.String())
	}
}
