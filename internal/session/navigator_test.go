package session_test

import (
	"bytes"
	"strings"
	"testing"

	"tracescope/internal/nav"
	"tracescope/internal/session"
	"tracescope/internal/testkit"
)

func loaded(t *testing.T) (*nav.Controller, *testkit.Recorder) {
	t.Helper()
	rec := testkit.NewRecorder()
	ctrl := nav.New(nav.Options{Observer: rec, Alerter: rec, Surface: rec})
	err := ctrl.Load(testkit.Trace(
		testkit.Call(1, "f", testkit.L("x", 1)),
		testkit.Step(2, testkit.L("x", 1), testkit.L("y", 2)),
		testkit.Return(3, 5),
	))
	if err != nil {
		t.Fatal(err)
	}
	return ctrl, rec
}

func TestNavigator_Transcript(t *testing.T) {
	ctrl, rec := loaded(t)
	script := `
# walk into the call
where
forward
locals
set y 10
set x
locals
advice
back
back
goto 9
tree
clear
where
quit
forward
`
	var out bytes.Buffer
	res, err := session.New(ctrl, strings.NewReader(script), &out, session.Options{}).Run()
	if err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"point 0/2  line 1  call f",
		"point 1/2  line 2  step_line",
		"locals:",
		"  x = 1",
		"  y = 2",
		"error: set expects <name> <value>",
		"locals:",
		"  x = 1",
		"  y = 2 -> 10",
		"goal: y 2 -> 10",
		"point 0/2  line 1  call f",
		"stay: point 0",
		"error: TS1006: index 9 is out of range [0, 3) (point 9)",
		"▶ 0  L1  f(x: 1) ⇒ 5",
		"  1  L2    step",
		"  2  L3    return",
		"trace cleared",
		"no trace loaded",
		"",
	}, "\n")
	if got := out.String(); got != want {
		t.Errorf("transcript:\n%s\nwant:\n%s", got, want)
	}

	if res.Commands != 14 || res.Errors != 2 || res.Advice != 1 || !res.Quit {
		t.Errorf("result = %+v", res)
	}
	if len(rec.Advice) != 1 {
		t.Fatalf("advice payloads = %d", len(rec.Advice))
	}
	top := rec.Advice[0].CallStack[0]
	if v, _ := top.Locals["y"].Int(); v != 10 || len(top.OrderedVarNames) != 1 {
		t.Errorf("advice frame = %+v", top)
	}
}

func TestNavigator_EditsFollowSelection(t *testing.T) {
	ctrl, rec := loaded(t)
	script := "forward\nset y 4\nforward\nadvice\nunset y\n"
	var out bytes.Buffer
	res, err := session.New(ctrl, strings.NewReader(script), &out, session.Options{}).Run()
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Advice) != 0 {
		t.Error("edit made on point 1 was sent for point 2")
	}
	if !strings.Contains(out.String(), "advice: nothing to send") || !strings.Contains(out.String(), `error: no edit for "y"`) {
		t.Errorf("output:\n%s", out.String())
	}
	if res.Errors != 1 || res.Quit {
		t.Errorf("result = %+v", res)
	}
}

func TestNavigator_AdviceOnlyForShownVariables(t *testing.T) {
	ctrl, rec := loaded(t)
	script := "forward\nset ghost 5\nadvice\nset y 3\nadvice\n"
	var out bytes.Buffer
	if _, err := session.New(ctrl, strings.NewReader(script), &out, session.Options{}).Run(); err != nil {
		t.Fatal(err)
	}
	want := "point 1/2  line 2  step_line\nadvice: nothing to send\ngoal: y 2 -> 3\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
	if len(rec.Advice) != 1 {
		t.Fatalf("advice payloads = %d", len(rec.Advice))
	}
	if names := rec.Advice[0].CallStack[0].OrderedVarNames; len(names) != 1 || names[0] != "y" {
		t.Errorf("advice names = %v", names)
	}
}

func TestNavigator_InteractivePrompt(t *testing.T) {
	ctrl, _ := loaded(t)
	var out bytes.Buffer
	if _, err := session.New(ctrl, strings.NewReader("bogus\n"), &out, session.Options{Interactive: true}).Run(); err != nil {
		t.Fatal(err)
	}
	want := "(tsdb) error: unknown command \"bogus\"\n(tsdb) "
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestEdits_Ordered(t *testing.T) {
	e := session.NewEdits()
	e.Set("ghost", "1")
	e.Set("b", "2")
	e.Set("a", "3")
	e.Set("b", "4")
	snap := nav.Snapshot{Vars: []nav.Var{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	got := e.Ordered(snap)
	want := []string{"a=3", "b=4"}
	if len(got) != len(want) {
		t.Fatalf("Ordered = %+v", got)
	}
	for i, g := range got {
		if g.Name+"="+g.Text != want[i] {
			t.Errorf("edit %d = %+v, want %s", i, g, want[i])
		}
	}
	if !e.Unset("ghost") || e.Unset("ghost") || e.Len() != 2 {
		t.Error("Unset bookkeeping is off")
	}
}
