package expr

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindArray
	KindObject
	KindDate
	KindNamespace
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindDate:
		return "date"
	case KindNamespace:
		return "namespace"
	default:
		return "unknown"
	}
}

// Value is a runtime value of the expression language. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string // string contents, or the namespace name
	b    bool
	arr  []Value
	keys []string // object keys in insertion order
	obj  map[string]Value
	t    time.Time
}

func Null() Value { return Value{} }

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Array(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// Object builds an object value. Keys absent from fields are ignored; fields
// not listed in keys are appended in sorted order.
func Object(keys []string, fields map[string]Value) Value {
	ordered := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, k := range keys {
		if _, ok := fields[k]; ok && !seen[k] {
			ordered = append(ordered, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range fields {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	ordered = append(ordered, rest...)
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindObject, keys: ordered, obj: fields}
}

func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

func namespace(name string) Value { return Value{kind: KindNamespace, str: name} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Num() float64 { return v.num }

func (v Value) Str() string { return v.str }

func (v Value) Bool() bool { return v.b }

func (v Value) Items() []Value { return v.arr }

func (v Value) Keys() []string { return v.keys }

func (v Value) Time() time.Time { return v.t }

// Field returns the named object field.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Null(), false
	}
	f, ok := v.obj[name]
	return f, ok
}

// Truthy applies JavaScript truthiness: null, false, 0, NaN and "" are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindString:
		return v.str != ""
	default:
		return true
	}
}

// String renders the value the way string concatenation sees it.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			if !item.IsNull() {
				parts[i] = item.String()
			}
		}
		return strings.Join(parts, ",")
	case KindObject:
		return "[object Object]"
	case KindDate:
		return v.t.Format(time.RFC3339Nano)
	case KindNamespace:
		return "[object " + v.str + "]"
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toNumber converts numbers, booleans and numeric strings.
func (v Value) toNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case KindDate:
		return float64(v.t.UnixMilli()), true
	}
	return 0, false
}

// Native converts the value into plain Go data: nil, float64, string, bool,
// []any and map[string]any. Dates become RFC 3339 strings.
func (v Value) Native() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Native()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, f := range v.obj {
			out[k] = f.Native()
		}
		return out
	case KindDate:
		return v.t.Format(time.RFC3339Nano)
	case KindNamespace:
		return v.String()
	default:
		return nil
	}
}

// FromNative converts decoded Go data into a Value. Map keys are sorted since
// Go maps carry no order; use FromJSON to keep document order.
func FromNative(x any) Value {
	switch n := x.(type) {
	case nil:
		return Null()
	case Value:
		return n
	case bool:
		return Bool(n)
	case string:
		return String(n)
	case float64:
		return Number(n)
	case float32:
		return Number(float64(n))
	case int:
		return Number(float64(n))
	case int64:
		return Number(float64(n))
	case int32:
		return Number(float64(n))
	case uint64:
		return Number(float64(n))
	case time.Time:
		return Date(n)
	case []any:
		items := make([]Value, len(n))
		for i, item := range n {
			items[i] = FromNative(item)
		}
		return Array(items)
	case []string:
		items := make([]Value, len(n))
		for i, item := range n {
			items[i] = String(item)
		}
		return Array(items)
	case map[string]any:
		fields := make(map[string]Value, len(n))
		for k, f := range n {
			fields[k] = FromNative(f)
		}
		return Object(nil, fields)
	case map[string]string:
		fields := make(map[string]Value, len(n))
		for k, f := range n {
			fields[k] = String(f)
		}
		return Object(nil, fields)
	default:
		return Null()
	}
}

// FromJSON decodes a JSON document keeping object key order. It reports false
// when data is not valid JSON.
func FromJSON(data []byte) (Value, bool) {
	if !gjson.ValidBytes(data) {
		return Null(), false
	}
	return fromResult(gjson.ParseBytes(data)), true
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(r.Num)
	case gjson.String:
		return String(r.Str)
	}
	if r.IsArray() {
		var items []Value
		r.ForEach(func(_, item gjson.Result) bool {
			items = append(items, fromResult(item))
			return true
		})
		return Array(items)
	}
	if r.IsObject() {
		var keys []string
		fields := make(map[string]Value)
		r.ForEach(func(key, item gjson.Result) bool {
			if _, dup := fields[key.Str]; !dup {
				keys = append(keys, key.Str)
			}
			fields[key.Str] = fromResult(item)
			return true
		})
		return Object(keys, fields)
	}
	return Null()
}
