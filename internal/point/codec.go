package point

import (
	"bufio"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"

	"tracescope/internal/traceerr"
)

// Format is a trace wire encoding.
type Format uint8

const (
	FormatJSON Format = iota + 1
	FormatMsgpack
)

// String returns the string representation of Format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// ParseFormat converts a format name to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return 0, errors.Newf("invalid trace format: %q (expected: json|msgpack)", s)
	}
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// DecodeFile reads and decodes the trace stored at path.
func DecodeFile(path string) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open trace")
	}
	defer f.Close()
	tr, err := Decode(bufio.NewReader(f), FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return tr, nil
}

// Decode reads one trace from r. The top-level value must be an array of
// point objects; each point is validated as it is converted.
func Decode(r io.Reader, format Format) (Trace, error) {
	var raw any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, traceerr.InvalidInput("cannot decode json trace: %v", err)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		dec.UseLooseInterfaceDecoding(true)
		v, err := dec.DecodeInterface()
		if err != nil {
			return nil, traceerr.InvalidInput("cannot decode msgpack trace: %v", err)
		}
		raw = v
	default:
		return nil, errors.Newf("unknown trace format: %v", format)
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, errors.WithHint(
			traceerr.InvalidInput("trace must be an array, received %s", typeName(raw)),
			"a trace is the array of points emitted by the interpreter, not the object wrapping it",
		)
	}
	tr := make(Trace, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, traceerr.MalformedTrace(i, "point must be an object, received %s", typeName(item))
		}
		p, err := pointFromMap(i, m)
		if err != nil {
			return nil, err
		}
		tr = append(tr, p)
	}
	return tr, nil
}

func pointFromMap(index int, m map[string]any) (ExecutionPoint, error) {
	var p ExecutionPoint

	name, ok := m["event"].(string)
	if !ok {
		return p, traceerr.MalformedTrace(index, "event must be a string, received %s", typeName(m["event"]))
	}
	ev, ok := ParseEvent(name)
	if !ok {
		return p, traceerr.UnknownEvent(index, name)
	}
	p.Event = ev

	// An unusable line is stored as NoLine; selecting the point reports it.
	p.Line = NoLine
	if line, err := lineOf(m["line"]); err == nil && line > 0 {
		p.Line = line
	}

	var err error
	if p.FuncName, err = optionalString(m, "func_name"); err != nil {
		return p, traceerr.MalformedTrace(index, "%v", err)
	}
	if p.ExceptionMessage, err = optionalString(m, "exception_msg"); err != nil {
		return p, traceerr.MalformedTrace(index, "%v", err)
	}

	switch stack := m["stack_to_render"].(type) {
	case nil:
	case []any:
		p.CallStack = make([]Frame, 0, len(stack))
		for depth, rawFrame := range stack {
			frame, err := frameOf(rawFrame)
			if err != nil {
				return p, traceerr.MalformedTrace(index, "frame %d: %v", depth, err)
			}
			p.CallStack = append(p.CallStack, frame)
		}
	default:
		return p, traceerr.MalformedTrace(index, "stack_to_render must be an array, received %s", typeName(stack))
	}
	return p, nil
}

func frameOf(raw any) (Frame, error) {
	var f Frame
	m, ok := raw.(map[string]any)
	if !ok {
		return f, errors.Newf("frame must be an object, received %s", typeName(raw))
	}

	switch names := m["ordered_varnames"].(type) {
	case nil:
	case []any:
		f.OrderedVarNames = make([]string, 0, len(names))
		for _, n := range names {
			s, ok := n.(string)
			if !ok {
				return f, errors.Newf("ordered_varnames must hold strings, received %s", typeName(n))
			}
			f.OrderedVarNames = append(f.OrderedVarNames, s)
		}
	default:
		return f, errors.Newf("ordered_varnames must be an array, received %s", typeName(names))
	}

	switch locals := m["encoded_locals"].(type) {
	case nil:
	case map[string]any:
		f.Locals = make(map[string]Value, len(locals))
		for k, rawVal := range locals {
			v, err := valueOf(rawVal)
			if err != nil {
				return f, errors.Wrapf(err, "local %q", k)
			}
			f.Locals[k] = v
		}
	default:
		return f, errors.Newf("encoded_locals must be an object, received %s", typeName(locals))
	}
	return f, nil
}

func optionalString(m map[string]any, key string) (string, error) {
	switch v := m[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", errors.Newf("%s must be a string, received %s", key, typeName(v))
	}
}

// lineOf accepts an integer or a decimal string.
func lineOf(raw any) (int, error) {
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return safecast.Conv[int](i)
		}
		f, err := v.Float64()
		if err != nil {
			return 0, errors.Newf("line %q is not an integer", v.String())
		}
		return lineFromFloat(f)
	case int64:
		return safecast.Conv[int](v)
	case uint64:
		return safecast.Conv[int](v)
	case float64:
		return lineFromFloat(v)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, errors.Newf("line %q is not an integer", v)
		}
		return safecast.Conv[int](i)
	default:
		return 0, errors.Newf("line must be an integer, received %s", typeName(raw))
	}
}

func lineFromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errors.Newf("line %v is not an integer", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errors.Newf("line %v is out of range", f)
	}
	return safecast.Conv[int](int64(f))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, int64, uint64, float64, float32, int:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

type wireFrame struct {
	OrderedVarNames []string         `json:"ordered_varnames" msgpack:"ordered_varnames"`
	EncodedLocals   map[string]Value `json:"encoded_locals,omitempty" msgpack:"encoded_locals,omitempty"`
}

type wirePoint struct {
	Event         string      `json:"event" msgpack:"event"`
	Line          int         `json:"line,omitempty" msgpack:"line,omitempty"`
	FuncName      string      `json:"func_name,omitempty" msgpack:"func_name,omitempty"`
	StackToRender []wireFrame `json:"stack_to_render" msgpack:"stack_to_render"`
	ExceptionMsg  string      `json:"exception_msg,omitempty" msgpack:"exception_msg,omitempty"`
}

func toWire(p ExecutionPoint) wirePoint {
	w := wirePoint{
		Event:         p.Event.String(),
		Line:          p.Line,
		FuncName:      p.FuncName,
		ExceptionMsg:  p.ExceptionMessage,
		StackToRender: make([]wireFrame, len(p.CallStack)),
	}
	for i, f := range p.CallStack {
		names := f.OrderedVarNames
		if names == nil {
			names = []string{}
		}
		w.StackToRender[i] = wireFrame{OrderedVarNames: names, EncodedLocals: f.Locals}
	}
	return w
}

// MarshalJSON encodes the point in its wire form.
func (p ExecutionPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(p))
}

// EncodePoint writes one point to w in the given format.
func EncodePoint(w io.Writer, format Format, p ExecutionPoint) error {
	return encodeWire(w, format, toWire(p))
}

// EncodeTrace writes a whole trace to w in the given format.
func EncodeTrace(w io.Writer, format Format, tr Trace) error {
	out := make([]wirePoint, len(tr))
	for i, p := range tr {
		out[i] = toWire(p)
	}
	return encodeWire(w, format, out)
}

func encodeWire(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(v)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		return enc.Encode(v)
	default:
		return errors.Newf("unknown trace format: %v", format)
	}
}
