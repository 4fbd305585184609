package point

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"tracescope/internal/traceerr"
)

func TestDecodeFile_Fixture(t *testing.T) {
	tr, err := DecodeFile("testdata/fib.json")
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if tr.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", tr.Len())
	}

	wantEvents := []Event{EventStepLine, EventCall, EventStepLine, EventReturn, EventStepLine, EventInstructionLimit}
	for i, want := range wantEvents {
		if tr[i].Event != want {
			t.Errorf("point %d: event = %v, want %v", i, tr[i].Event, want)
		}
	}

	if tr[2].Line != 2 {
		t.Errorf("string line: got %d, want 2", tr[2].Line)
	}
	if tr[1].FuncName != "fib" {
		t.Errorf("FuncName = %q, want %q", tr[1].FuncName, "fib")
	}
	if tr[5].ExceptionMessage != "(stopped after 1000 steps)" || tr[5].Line != NoLine {
		t.Errorf("limit point = %q line %d", tr[5].ExceptionMessage, tr[5].Line)
	}

	top, ok := tr[3].Top()
	if !ok {
		t.Fatal("return point has no frame")
	}
	ret, ok := top.Lookup(ReturnKey)
	if !ok || ret.String() != "1" {
		t.Errorf("__return__ = %v (%v), want 1", ret, ok)
	}

	frame, _ := tr[4].Top()
	pair, _ := frame.Lookup("pair")
	if pair.Kind() != KindRaw || pair.String() != `["TUPLE",1,2.5]` {
		t.Errorf("pair = %s %q", pair.Kind(), pair.String())
	}
	if _, ok := tr[0].Top(); ok {
		t.Error("empty call stack should have no top frame")
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   error
		wantIndex int
	}{
		{"object at top level", `{"trace": []}`, traceerr.ErrInvalidInput, traceerr.NoIndex},
		{"not json", `[{"event": `, traceerr.ErrInvalidInput, traceerr.NoIndex},
		{"point not object", `[1]`, traceerr.ErrMalformedTrace, 0},
		{"unknown event", `[{"event": "step_line", "line": 1}, {"event": "exception", "line": 2}]`, traceerr.ErrUnknownEvent, 1},
		{"missing event", `[{"line": 1}]`, traceerr.ErrMalformedTrace, 0},
		{"stack not array", `[{"event": "step_line", "line": 1, "stack_to_render": {}}]`, traceerr.ErrMalformedTrace, 0},
		{"locals not object", `[{"event": "step_line", "line": 1, "stack_to_render": [{"encoded_locals": []}]}]`, traceerr.ErrMalformedTrace, 0},
		{"varname not string", `[{"event": "step_line", "line": 1, "stack_to_render": [{"ordered_varnames": [1]}]}]`, traceerr.ErrMalformedTrace, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), FormatJSON)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode error = %v, want %v", err, tt.wantErr)
			}
			if got := traceerr.IndexOf(err); got != tt.wantIndex {
				t.Errorf("IndexOf = %d, want %d", got, tt.wantIndex)
			}
		})
	}
}

func TestDecode_UnusableLines(t *testing.T) {
	input := `[
		{"event": "step_line", "line": 1, "stack_to_render": []},
		{"event": "step_line", "line": 1.5},
		{"event": "step_line", "line": "abc"},
		{"event": "step_line", "line": null},
		{"event": "step_line", "line": -3},
		{"event": "instruction_limit_reached", "exception_msg": "(stopped after 1000 steps)"}
	]`
	tr, err := Decode(strings.NewReader(input), FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tr.Len() != 6 || tr[0].Line != 1 {
		t.Fatalf("decoded %d points, first line %d", tr.Len(), tr[0].Line)
	}
	for i := 1; i < tr.Len(); i++ {
		if tr[i].Line != NoLine {
			t.Errorf("point %d: line = %d, want NoLine", i, tr[i].Line)
		}
	}
	if tr[5].ExceptionMessage != "(stopped after 1000 steps)" {
		t.Errorf("ExceptionMessage = %q", tr[5].ExceptionMessage)
	}

	var buf bytes.Buffer
	if err := EncodePoint(&buf, FormatJSON, tr[5]); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"line"`) {
		t.Errorf("point without a line encoded one: %s", buf.String())
	}
}

func TestEncodeDecode_Msgpack(t *testing.T) {
	want, err := DecodeFile("testdata/fib.json")
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeTrace(&buf, FormatMsgpack, want); err != nil {
		t.Fatalf("EncodeTrace: %v", err)
	}
	got, err := Decode(&buf, FormatMsgpack)
	if err != nil {
		t.Fatalf("Decode msgpack: %v", err)
	}
	assertSameTrace(t, got, want)
}

func TestEncodeDecode_JSON(t *testing.T) {
	want, err := DecodeFile("testdata/fib.json")
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeTrace(&buf, FormatJSON, want); err != nil {
		t.Fatalf("EncodeTrace: %v", err)
	}
	got, err := Decode(&buf, FormatJSON)
	if err != nil {
		t.Fatalf("Decode json: %v", err)
	}
	assertSameTrace(t, got, want)
}

func assertSameTrace(t *testing.T, got, want Trace) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Event != w.Event || g.Line != w.Line || g.FuncName != w.FuncName || g.ExceptionMessage != w.ExceptionMessage {
			t.Errorf("point %d header mismatch: got %+v, want %+v", i, g, w)
		}
		if len(g.CallStack) != len(w.CallStack) {
			t.Fatalf("point %d: %d frames, want %d", i, len(g.CallStack), len(w.CallStack))
		}
		for d := range w.CallStack {
			gf, wf := g.CallStack[d], w.CallStack[d]
			if !reflect.DeepEqual(gf.OrderedVarNames, wf.OrderedVarNames) {
				t.Errorf("point %d frame %d names = %v, want %v", i, d, gf.OrderedVarNames, wf.OrderedVarNames)
			}
			if len(gf.Locals) != len(wf.Locals) {
				t.Errorf("point %d frame %d locals = %d, want %d", i, d, len(gf.Locals), len(wf.Locals))
			}
			for k, wv := range wf.Locals {
				if gv, ok := gf.Locals[k]; !ok || !gv.Equal(wv) {
					t.Errorf("point %d frame %d local %s = %v, want %v", i, d, k, gv, wv)
				}
			}
		}
	}
}

func TestExecutionPoint_MarshalJSON(t *testing.T) {
	p := ExecutionPoint{
		Event:    EventCall,
		Line:     4,
		FuncName: "f",
		CallStack: []Frame{{
			OrderedVarNames: []string{"a"},
			Locals:          map[string]Value{"a": IntValue(5), "b": NullValue()},
		}},
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"event":"call","line":4,"func_name":"f","stack_to_render":[{"ordered_varnames":["a"],"encoded_locals":{"a":5,"b":null}}]}`
	if string(data) != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", data, want)
	}
}

func TestFrame_Names(t *testing.T) {
	f := &Frame{
		OrderedVarNames: []string{"z", "missing", "a", "z"},
		Locals: map[string]Value{
			"a": IntValue(1),
			"z": IntValue(2),
			"m": IntValue(3),
			"b": IntValue(4),
		},
	}
	got := f.Names()
	want := []string{"z", "a", "b", "m"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	var nilFrame *Frame
	if nilFrame.Names() != nil {
		t.Error("nil frame should have no names")
	}
}

func TestExecutionPoint_CloneIsDeep(t *testing.T) {
	orig := ExecutionPoint{
		Event: EventStepLine,
		Line:  1,
		CallStack: []Frame{{
			OrderedVarNames: []string{"x"},
			Locals:          map[string]Value{"x": IntValue(1)},
		}},
	}
	clone := orig.Clone()
	clone.CallStack[0].OrderedVarNames[0] = "y"
	clone.CallStack[0].Locals["x"] = IntValue(9)

	if orig.CallStack[0].OrderedVarNames[0] != "x" {
		t.Error("clone shares ordered names with original")
	}
	if v := orig.CallStack[0].Locals["x"]; !v.Equal(IntValue(1)) {
		t.Error("clone shares locals with original")
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NullValue(), "null"},
		{BoolValue(true), "true"},
		{IntValue(-3), "-3"},
		{FloatValue(2.5), "2.5"},
		{FloatValue(5), "5"},
		{StringValue("hi"), "hi"},
		{RawValue(`["REF",1]`), `["REF",1]`},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%s String() = %q, want %q", tt.v.Kind(), got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a\nb", `a\nb`},
		{"tab\there", `tab\there`},
		{"\x1b[31mred", `\x1b[31mred`},
		{"é", "é"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("MsgPack"); err != nil || f != FormatMsgpack {
		t.Errorf("ParseFormat(MsgPack) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
	if f := FormatFromPath("run.mp"); f != FormatMsgpack {
		t.Errorf("FormatFromPath(run.mp) = %v", f)
	}
	if f := FormatFromPath("run.json"); f != FormatJSON {
		t.Errorf("FormatFromPath(run.json) = %v", f)
	}
}
