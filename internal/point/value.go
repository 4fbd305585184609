package point

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// ValueKind tags the representation held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindRaw // composite value kept as compact JSON text
)

// String returns the string representation of ValueKind.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Value is one pre-serialized local variable value.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
}

func NullValue() Value { return Value{kind: KindNull} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func RawValue(text string) Value { return Value{kind: KindRaw, s: text} }
func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }
func (v Value) Text() (string, bool) { return v.s, v.kind == KindString }

// String renders the value the way it is displayed next to a variable name.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString, KindRaw:
		return v.s
	default:
		return "null"
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Equal reports whether v and o hold the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	default:
		return v.s == o.s
	}
}

// MarshalJSON encodes the value back into its wire form. Non-finite floats
// have no JSON form and are written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindRaw:
		return []byte(v.s), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON value into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	val, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

var _ msgpack.CustomEncoder = Value{}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindBool:
		return enc.EncodeBool(v.b)
	case KindInt:
		return enc.EncodeInt(v.i)
	case KindFloat:
		return enc.EncodeFloat64(v.f)
	case KindString:
		return enc.EncodeString(v.s)
	case KindRaw:
		var composite any
		if err := json.Unmarshal([]byte(v.s), &composite); err != nil {
			return fmt.Errorf("raw value is not valid JSON: %w", err)
		}
		return enc.Encode(composite)
	default:
		return enc.EncodeNil()
	}
}

// valueOf converts a generically decoded JSON or MessagePack value.
func valueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(x), nil
	case string:
		return StringValue(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return IntValue(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", x.String(), err)
		}
		return FloatValue(f), nil
	case int64:
		return IntValue(x), nil
	case uint64:
		i, err := safecast.Conv[int64](x)
		if err != nil {
			return FloatValue(float64(x)), nil
		}
		return IntValue(i), nil
	case int:
		return IntValue(int64(x)), nil
	case float64:
		return FloatValue(x), nil
	case float32:
		return FloatValue(float64(x)), nil
	case []any, map[string]any:
		text, err := json.Marshal(x)
		if err != nil {
			return Value{}, fmt.Errorf("cannot encode composite value: %w", err)
		}
		return RawValue(string(text)), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}
