package nav_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"tracescope/internal/goals"
	"tracescope/internal/nav"
	"tracescope/internal/notify"
	"tracescope/internal/optrace"
	"tracescope/internal/point"
	"tracescope/internal/testkit"
	"tracescope/internal/traceerr"
)

var (
	L      = testkit.L
	Call   = testkit.Call
	Return = testkit.Return
	Step   = testkit.Step
	Limit  = testkit.Limit
)

func sample() point.Trace {
	return testkit.Trace(
		Call(1, "f", L("x", 1)),
		Step(2, L("x", 1), L("y", 2)),
		Return(3, 5),
	)
}

func newController(t *testing.T) (*nav.Controller, *testkit.Recorder) {
	t.Helper()
	rec := testkit.NewRecorder()
	c := nav.New(nav.Options{Observer: rec, Alerter: rec, Surface: rec})
	return c, rec
}

func TestLoad(t *testing.T) {
	c, rec := newController(t)
	if err := c.Load(sample()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.Rendered() || c.Index() != 0 || c.Len() != 3 {
		t.Fatalf("state = rendered %v index %d len %d", c.Rendered(), c.Index(), c.Len())
	}
	if len(rec.Lines) != 1 || rec.Lines[0] != 1 {
		t.Errorf("set-trace-point = %v, want [1]", rec.Lines)
	}
	if !rec.Enabled[notify.StepForward] || !rec.Enabled[notify.StepBackward] {
		t.Errorf("commands = %v, want both enabled", rec.Enabled)
	}
	n, ok := c.Node()
	if !ok || n.ReturnValue != "5" {
		t.Errorf("selected node = %+v", n)
	}
	if v, ok := c.Visible().Lookup("x"); !ok || v.Display != "1" {
		t.Errorf("visible x = %+v", v)
	}
}

func TestLoad_RejectsAndKeepsState(t *testing.T) {
	c, rec := newController(t)
	if err := c.Load(sample()); err != nil {
		t.Fatal(err)
	}
	if err := c.StepForward(); err != nil {
		t.Fatal(err)
	}

	corrupted := sample()
	corrupted[0].Line = 0

	tests := []struct {
		name string
		tr   point.Trace
		want error
	}{
		{"nil", nil, traceerr.ErrInvalidInput},
		{"empty", point.Trace{}, traceerr.ErrInvalidInput},
		{"lone call", testkit.Trace(Call(1, "f", L("x", 1))), traceerr.ErrMissingReturnValue},
		{"corrupted first line", corrupted, traceerr.ErrCorruptedLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Load(tt.tr)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load error = %v, want %v", err, tt.want)
			}
			if c.Index() != 1 || c.Len() != 3 || !c.Rendered() {
				t.Errorf("failed load changed state: index %d len %d", c.Index(), c.Len())
			}
		})
	}
	if len(rec.Lines) != 2 {
		t.Errorf("failed loads emitted set-trace-point: %v", rec.Lines)
	}
}

func TestLoad_LoneCallIndex(t *testing.T) {
	c, _ := newController(t)
	err := c.Load(testkit.Trace(Call(1, "f", L("x", 1))))
	if got := traceerr.IndexOf(err); got != 0 {
		t.Errorf("IndexOf = %d, want 0", got)
	}
}

func TestLoad_CopiesInput(t *testing.T) {
	c, _ := newController(t)
	tr := sample()
	if err := c.Load(tr); err != nil {
		t.Fatal(err)
	}
	tr[1].Line = -4
	tr[1].CallStack[0].Locals["x"] = point.IntValue(100)
	if err := c.SetVisiblePoint(1); err != nil {
		t.Fatalf("caller mutation leaked into the controller: %v", err)
	}
	if v, _ := c.Visible().Lookup("x"); v.Display != "1" {
		t.Errorf("x = %q", v.Display)
	}
}

func TestLoad_AlertsAfterCommit(t *testing.T) {
	c, rec := newController(t)
	tr := testkit.Trace(Step(1), Step(2), Limit(2, "(stopped)"))
	if err := c.Load(tr); err != nil {
		t.Fatal(err)
	}
	if len(rec.Alerts) != 1 || rec.Alerts[0].Details.Code != "(stopped)" || rec.Alerts[0].Severity != notify.SeverityFatal {
		t.Fatalf("alerts = %+v", rec.Alerts)
	}

	rec.Alerts = nil
	bad := testkit.Trace(Call(1, "f"), Limit(2, "(stopped)"))
	if err := c.Load(bad); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.Alerts) != 0 {
		t.Errorf("failed load delivered alerts: %+v", rec.Alerts)
	}
}

func TestLoad_LimitPointWithoutLine(t *testing.T) {
	tr, err := point.Decode(strings.NewReader(`[
		{"event": "step_line", "line": 1, "stack_to_render": []},
		{"event": "instruction_limit_reached", "exception_msg": "(stopped after 1000 steps)"}
	]`), point.FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	c, rec := newController(t)
	if err := c.Load(tr); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rec.Alerts) != 1 || rec.Alerts[0].Details.Code != "(stopped after 1000 steps)" {
		t.Fatalf("alerts = %+v", rec.Alerts)
	}

	err = c.SetVisiblePoint(1)
	if !errors.Is(err, traceerr.ErrCorruptedLine) || traceerr.IndexOf(err) != 1 {
		t.Fatalf("SetVisiblePoint(1) = %v", err)
	}
	if c.Index() != 0 {
		t.Errorf("index = %d after rejected jump", c.Index())
	}
}

func TestStepping(t *testing.T) {
	c, rec := newController(t)
	if err := c.Load(sample()); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		forward bool
		want    int
	}{
		{false, 0}, // boundary: silent
		{true, 1},
		{true, 2},
		{true, 2}, // boundary: silent
		{false, 1},
	}
	for i, s := range steps {
		var err error
		if s.forward {
			err = c.StepForward()
		} else {
			err = c.StepBackward()
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if c.Index() != s.want {
			t.Fatalf("step %d: index %d, want %d", i, c.Index(), s.want)
		}
	}
	want := []int{1, 2, 3, 2}
	if len(rec.Lines) != len(want) {
		t.Fatalf("lines = %v, want %v", rec.Lines, want)
	}
	for i := range want {
		if rec.Lines[i] != want[i] {
			t.Errorf("lines = %v, want %v", rec.Lines, want)
			break
		}
	}
}

func TestSetVisiblePoint(t *testing.T) {
	c, rec := newController(t)
	if err := c.Load(sample()); err != nil {
		t.Fatal(err)
	}
	for _, idx := range []int{-1, 3, 100} {
		err := c.SetVisiblePoint(idx)
		if !errors.Is(err, traceerr.ErrIndexOutOfRange) {
			t.Errorf("SetVisiblePoint(%d) = %v", idx, err)
		}
		if traceerr.IndexOf(err) != idx {
			t.Errorf("IndexOf = %d, want %d", traceerr.IndexOf(err), idx)
		}
	}
	if c.Index() != 0 || len(rec.Lines) != 1 {
		t.Errorf("rejected jumps changed state: index %d lines %v", c.Index(), rec.Lines)
	}

	if err := c.SetVisiblePoint(2); err != nil {
		t.Fatal(err)
	}
	snap := c.Visible()
	if snap.Index != 2 || snap.Line != 3 || snap.Event != point.EventReturn {
		t.Errorf("snapshot = %+v", snap)
	}
	if v, ok := snap.Lookup(point.ReturnKey); !ok || v.Display != "5" {
		t.Errorf("return slot = %+v", v)
	}
}

func TestSetVisiblePoint_CorruptedLine(t *testing.T) {
	c, rec := newController(t)
	tr := sample()
	tr[2].Line = 0
	if err := c.Load(tr); err != nil {
		t.Fatal(err)
	}
	if err := c.StepForward(); err != nil {
		t.Fatal(err)
	}
	err := c.StepForward()
	if !errors.Is(err, traceerr.ErrCorruptedLine) || traceerr.IndexOf(err) != 2 {
		t.Fatalf("StepForward = %v", err)
	}
	if c.Index() != 1 || len(rec.Lines) != 2 {
		t.Errorf("failed step committed: index %d lines %v", c.Index(), rec.Lines)
	}
}

func TestEmptyFrameSnapshot(t *testing.T) {
	c, _ := newController(t)
	if err := c.Load(testkit.Trace(Step(7))); err != nil {
		t.Fatal(err)
	}
	if snap := c.Visible(); snap.Line != 7 || len(snap.Vars) != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestClear(t *testing.T) {
	c, rec := newController(t)
	if err := c.Load(sample()); err != nil {
		t.Fatal(err)
	}
	if err := c.SetVisiblePoint(2); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if c.Rendered() || c.Index() != 0 || c.Len() != 0 || c.Tree() != nil {
		t.Fatalf("Clear left state behind")
	}
	if rec.Enabled[notify.StepForward] || rec.Enabled[notify.StepBackward] {
		t.Errorf("commands still enabled: %v", rec.Enabled)
	}

	lines := len(rec.Lines)
	if err := c.StepForward(); err != nil {
		t.Error(err)
	}
	if err := c.StepBackward(); err != nil {
		t.Error(err)
	}
	if err := c.SetVisiblePoint(99); err != nil {
		t.Errorf("SetVisiblePoint on cleared controller = %v", err)
	}
	if _, ok := c.RequestAdvice([]goals.Edit{{Name: "x", Text: "1"}}); ok {
		t.Error("RequestAdvice on cleared controller sent advice")
	}
	if len(rec.Lines) != lines || len(rec.Advice) != 0 {
		t.Errorf("cleared controller emitted notifications")
	}
	if _, ok := c.Point(); ok {
		t.Error("Point() on cleared controller")
	}
}

func TestRequestAdvice(t *testing.T) {
	c, rec := newController(t)
	tr := testkit.Trace(Step(1, L("a", 3), L("b", 7)))
	if err := c.Load(tr); err != nil {
		t.Fatal(err)
	}
	modified, ok := c.RequestAdvice([]goals.Edit{{Name: "a", Text: "5"}, {Name: "b", Text: ""}})
	if !ok {
		t.Fatal("RequestAdvice sent nothing")
	}
	if len(rec.Advice) != 1 {
		t.Fatalf("advice = %d payloads", len(rec.Advice))
	}
	top := rec.Advice[0].CallStack[0]
	if len(top.OrderedVarNames) != 1 || top.OrderedVarNames[0] != "a" || len(top.Locals) != 1 {
		t.Errorf("advice frame = %+v", top)
	}
	if v, _ := top.Locals["a"].Int(); v != 5 {
		t.Errorf("a = %v", top.Locals["a"])
	}
	if len(modified.CallStack[0].OrderedVarNames) != 1 {
		t.Errorf("returned point = %+v", modified)
	}

	p, _ := c.Point()
	if len(p.CallStack[0].Locals) != 2 {
		t.Error("RequestAdvice modified the loaded trace")
	}

	if _, ok := c.RequestAdvice([]goals.Edit{{Name: "a", Text: ""}}); ok || len(rec.Advice) != 1 {
		t.Error("empty goal set sent advice")
	}
}

func TestRequestAdvice_NothingDisplayed(t *testing.T) {
	c, rec := newController(t)
	if err := c.Load(testkit.Trace(Step(1), Step(2, L("a", 1)))); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.RequestAdvice([]goals.Edit{{Name: "x", Text: "5"}}); ok || len(rec.Advice) != 0 {
		t.Fatalf("advice sent for a point without variables: %+v", rec.Advice)
	}
	if err := c.StepForward(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.RequestAdvice([]goals.Edit{{Name: "x", Text: "5"}}); ok || len(rec.Advice) != 0 {
		t.Error("advice sent for a variable that is not displayed")
	}
}

func TestTracing(t *testing.T) {
	var buf bytes.Buffer
	tracer := optrace.NewStreamTracer(&buf, optrace.LevelDebug, optrace.FormatText)
	c := nav.New(nav.Options{Tracer: tracer})
	if err := c.Load(testkit.Trace(Step(1), Limit(1, "stop"))); err != nil {
		t.Fatal(err)
	}
	_ = c.SetVisiblePoint(5)
	out := buf.String()
	for _, want := range []string{"→ load", "• alert", "← jump @5 (out of range) {from=0}"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %q:\n%s", want, out)
		}
	}
}
