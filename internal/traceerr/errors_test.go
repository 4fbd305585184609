package traceerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode_String(t *testing.T) {
	if got := CodeMissingReturnValue.String(); got != "TS1003" {
		t.Errorf("String() = %q, want %q", got, "TS1003")
	}
	if got := CodeCorruptedLine.Name(); got != "CorruptedLineError" {
		t.Errorf("Name() = %q, want %q", got, "CorruptedLineError")
	}
	if got := Code(42).Name(); got != "UnknownError" {
		t.Errorf("Name() = %q, want %q", got, "UnknownError")
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{MissingReturnValue(0), "TS1003: call with no return value (point 0)"},
		{UnknownEvent(4, "exception"), `TS1005: cannot handle event "exception" (point 4)`},
		{InvalidInput("trace must be an array, received %s", "object"), "TS1001: trace must be an array, received object"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestError_IsMatchesSentinelThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load: %w", MalformedTrace(7, "cannot get local variables"))

	if !errors.Is(err, ErrMalformedTrace) {
		t.Fatal("expected wrapped error to match ErrMalformedTrace")
	}
	if errors.Is(err, ErrUnknownEvent) {
		t.Fatal("did not expect wrapped error to match ErrUnknownEvent")
	}
	if got := IndexOf(err); got != 7 {
		t.Errorf("IndexOf() = %d, want 7", got)
	}
	code, ok := CodeOf(err)
	if !ok || code != CodeMalformedTrace {
		t.Errorf("CodeOf() = %v, %v; want %v, true", code, ok, CodeMalformedTrace)
	}
}

func TestIndexOf_NonTraceError(t *testing.T) {
	if got := IndexOf(errors.New("boom")); got != NoIndex {
		t.Errorf("IndexOf() = %d, want NoIndex", got)
	}
	if _, ok := CodeOf(nil); ok {
		t.Error("CodeOf(nil) should report false")
	}
}
