// Package traceerr defines the coded errors reported while ingesting,
// reconstructing and navigating an execution trace.
package traceerr

import (
	"errors"
	"fmt"
)

// Code identifies the kind of trace error.
type Code int

// Stable error codes - do not change values.
const (
	CodeInvalidInput       Code = 1001 // TS1001: malformed top-level input
	CodeMalformedTrace     Code = 1002 // TS1002: point lacks the expected frame/locals shape
	CodeMissingReturnValue Code = 1003 // TS1003: call with no matching return
	CodeMissingReturnField Code = 1004 // TS1004: return without __return__
	CodeUnknownEvent       Code = 1005 // TS1005: unrecognized event kind
	CodeIndexOutOfRange    Code = 1006 // TS1006: explicit jump outside the trace
	CodeCorruptedLine      Code = 1007 // TS1007: stored line number is not usable
)

// String returns the code as "TS1001" format.
func (c Code) String() string {
	return fmt.Sprintf("TS%d", c)
}

// Name returns the error kind name for c.
func (c Code) Name() string {
	switch c {
	case CodeInvalidInput:
		return "InvalidInputError"
	case CodeMalformedTrace:
		return "MalformedTraceError"
	case CodeMissingReturnValue:
		return "MissingReturnValueError"
	case CodeMissingReturnField:
		return "MissingReturnFieldError"
	case CodeUnknownEvent:
		return "UnknownEventError"
	case CodeIndexOutOfRange:
		return "IndexOutOfRangeError"
	case CodeCorruptedLine:
		return "CorruptedLineError"
	default:
		return "UnknownError"
	}
}

// NoIndex marks an error that is not tied to a trace position.
const NoIndex = -1

// Error is a trace error tied to an optional point index.
type Error struct {
	Code    Code
	Index   int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Index == NoIndex {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (point %d)", e.Code, e.Message, e.Index)
}

// Is reports whether target is an *Error with the same code. Index and
// message are ignored so sentinels match any occurrence of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidInput       = &Error{Code: CodeInvalidInput, Index: NoIndex, Message: "invalid input"}
	ErrMalformedTrace     = &Error{Code: CodeMalformedTrace, Index: NoIndex, Message: "malformed trace"}
	ErrMissingReturnValue = &Error{Code: CodeMissingReturnValue, Index: NoIndex, Message: "missing return value"}
	ErrMissingReturnField = &Error{Code: CodeMissingReturnField, Index: NoIndex, Message: "missing return field"}
	ErrUnknownEvent       = &Error{Code: CodeUnknownEvent, Index: NoIndex, Message: "unknown event"}
	ErrIndexOutOfRange    = &Error{Code: CodeIndexOutOfRange, Index: NoIndex, Message: "index out of range"}
	ErrCorruptedLine      = &Error{Code: CodeCorruptedLine, Index: NoIndex, Message: "corrupted line"}
)

func newf(code Code, index int, format string, args ...any) *Error {
	return &Error{Code: code, Index: index, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput reports malformed top-level input.
func InvalidInput(format string, args ...any) *Error {
	return newf(CodeInvalidInput, NoIndex, format, args...)
}

// MalformedTrace reports a point at index without the expected shape.
func MalformedTrace(index int, format string, args ...any) *Error {
	return newf(CodeMalformedTrace, index, format, args...)
}

// MissingReturnValue reports a call at index with no pending return value.
func MissingReturnValue(index int) *Error {
	return newf(CodeMissingReturnValue, index, "call with no return value")
}

// MissingReturnField reports a return at index without a __return__ local.
func MissingReturnField(index int) *Error {
	return newf(CodeMissingReturnField, index, "cannot get %q field", "__return__")
}

// UnknownEvent reports an unrecognized event name at index.
func UnknownEvent(index int, event string) *Error {
	return newf(CodeUnknownEvent, index, "cannot handle event %q", event)
}

// IndexOutOfRange reports an explicit jump to index in a trace of length n.
func IndexOutOfRange(index, n int) *Error {
	return newf(CodeIndexOutOfRange, index, "index %d is out of range [0, %d)", index, n)
}

// CorruptedLine reports an unusable line number at index.
func CorruptedLine(index int, format string, args ...any) *Error {
	return newf(CodeCorruptedLine, index, format, args...)
}

// IndexOf returns the point index carried by err, or NoIndex.
func IndexOf(err error) int {
	var te *Error
	if !errors.As(err, &te) {
		return NoIndex
	}
	return te.Index
}

// CodeOf returns the code carried by err and whether err is a trace error.
func CodeOf(err error) (Code, bool) {
	var te *Error
	if !errors.As(err, &te) {
		return 0, false
	}
	return te.Code, true
}
