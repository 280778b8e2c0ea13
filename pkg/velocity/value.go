package velocity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the closed set of types a Context may hold: String, Number,
// Bool, Array or Object. Numbers remember whether they are integers.
// The zero Value is the empty string.
type Value struct {
	kind  Kind
	str   string
	num   float64
	i     int64
	isInt bool
	b     bool
	arr   []Value
	obj   map[string]Value
}

// StringValue creates a String value
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// IntValue creates an integer Number value
func IntValue(i int64) Value {
	return Value{kind: KindNumber, i: i, isInt: true}
}

// FloatValue creates a floating-point Number value
func FloatValue(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// BoolValue creates a Bool value
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// ArrayValue creates an Array value
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// ObjectValue creates an Object value
func ObjectValue(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindObject, obj: fields}
}

func (v Value) Kind() Kind { return v.kind }

// IsInt reports whether v is a Number holding an integer.
func (v Value) IsInt() bool { return v.kind == KindNumber && v.isInt }

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.isInt {
		return v.i, true
	}
	return floatToInt(v.num)
}

// floatToInt converts f when it is integral and inside the int64 range.
func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

func (v Value) AsFloat() (float64, bool) {
	if v.isInt {
		return float64(v.i), v.kind == KindNumber
	}
	return v.num, v.kind == KindNumber
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

func (v Value) AsObject() (map[string]Value, bool) {
	return v.obj, v.kind == KindObject
}

// Len returns the element count of an Array or entry count of an Object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Keys returns an Object's keys in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the canonical textual form used when a value is
// substituted into output.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.formatNumber()
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindArray, KindObject:
		data, err := v.MarshalJSON()
		if err != nil {
			return fmt.Sprintf("<%s: %v>", v.kind, err)
		}
		return string(data)
	default:
		return ""
	}
}

// GoString renders v in constructor form, e.g. IntValue(5).
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("StringValue(%q)", v.str)
	case KindNumber:
		if v.isInt {
			return fmt.Sprintf("IntValue(%d)", v.i)
		}
		return fmt.Sprintf("FloatValue(%s)", v.formatNumber())
	case KindBool:
		return fmt.Sprintf("BoolValue(%t)", v.b)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.GoString()
		}
		return "ArrayValue(" + strings.Join(parts, ", ") + ")"
	case KindObject:
		keys := v.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%q: %s", k, v.obj[k].GoString())
		}
		return "ObjectValue({" + strings.Join(parts, ", ") + "})"
	default:
		return "Value(?)"
	}
}

// Equal reports whether two values have the same kind and content.
// Integer and float numbers with the same magnitude are equal; integers
// compare exactly.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.numberEqual(other)
	case KindBool:
		return v.b == other.b
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, a := range v.obj {
			b, ok := other.obj[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MarshalJSON encodes v without HTML escaping; object keys are sorted.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindString:
		return writeJSONString(buf, v.str)
	case KindNumber:
		if !v.isInt && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
			return fmt.Errorf("unsupported number %v", v.num)
		}
		buf.WriteString(v.formatNumber())
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := v.obj[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON decodes any JSON document into v. JSON null becomes the
// empty string since Value has no null variant.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ValueFromJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) formatNumber() string {
	if v.isInt {
		return strconv.FormatInt(v.i, 10)
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

func (v Value) numberEqual(other Value) bool {
	switch {
	case v.isInt && other.isInt:
		return v.i == other.i
	case v.isInt:
		i, ok := floatToInt(other.num)
		return ok && i == v.i
	case other.isInt:
		i, ok := floatToInt(v.num)
		return ok && i == other.i
	default:
		return v.num == other.num
	}
}
