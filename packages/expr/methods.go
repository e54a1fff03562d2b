package expr

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

type method func(recv Value, args []Value) (Value, error)

// Methods callable on each kind of value. The Object namespace has its own table.
var methods = map[Kind]map[string]method{
	KindString: {
		"includes":    stringIncludes,
		"startsWith":  stringStartsWith,
		"endsWith":    stringEndsWith,
		"indexOf":     stringIndexOf,
		"substring":   stringSubstring,
		"toLowerCase": func(v Value, _ []Value) (Value, error) { return String(strings.ToLower(v.str)), nil },
		"toUpperCase": func(v Value, _ []Value) (Value, error) { return String(strings.ToUpper(v.str)), nil },
		"trim":        func(v Value, _ []Value) (Value, error) { return String(strings.TrimSpace(v.str)), nil },
		"toString":    toString,
	},
	KindArray: {
		"includes": arrayIncludes,
		"indexOf":  arrayIndexOf,
		"join":     arrayJoin,
		"toString": toString,
	},
	KindNumber: {
		"toString": toString,
		"toFixed":  numberToFixed,
	},
	KindBool: {
		"toString": toString,
	},
	KindDate: {
		"getTime":     func(v Value, _ []Value) (Value, error) { return Number(float64(v.t.UnixMilli())), nil },
		"toISOString": func(v Value, _ []Value) (Value, error) { return String(v.t.UTC().Format(isoLayout)), nil },
		"toString":    toString,
	},
}

var namespaces = map[string]map[string]method{
	"Object": {
		"values": objectValues,
		"keys":   objectKeys,
	},
}

const isoLayout = "2006-01-02T15:04:05.000Z"

func callMethod(recv Value, name string, args []Value) (Value, error) {
	table := methods[recv.kind]
	if recv.kind == KindNamespace {
		table = namespaces[recv.str]
	}
	if recv.kind == KindNull {
		return Null(), evalErrorf("cannot call %s on null", name)
	}
	m, ok := table[name]
	if !ok {
		return Null(), evalErrorf("%s has no method %q", recv.kind, name)
	}
	return m(recv, args)
}

// property reads name from v. Missing object fields and unknown properties
// read as null.
func property(v Value, name string) (Value, error) {
	switch v.kind {
	case KindNull:
		return Null(), evalErrorf("cannot read property %q of null", name)
	case KindObject:
		f, _ := v.Field(name)
		return f, nil
	case KindString:
		if name == "length" {
			return Number(float64(utf8.RuneCountInString(v.str))), nil
		}
	case KindArray:
		if name == "length" {
			return Number(float64(len(v.arr))), nil
		}
	}
	return Null(), nil
}

func index(target, idx Value) (Value, error) {
	switch target.kind {
	case KindArray:
		i, err := position(idx, len(target.arr))
		if err != nil {
			return Null(), err
		}
		return target.arr[i], nil
	case KindString:
		runes := []rune(target.str)
		i, err := position(idx, len(runes))
		if err != nil {
			return Null(), err
		}
		return String(string(runes[i])), nil
	case KindObject:
		f, _ := target.Field(idx.String())
		return f, nil
	case KindNull:
		return Null(), evalErrorf("cannot index null")
	}
	return Null(), evalErrorf("cannot index %s", describe(target))
}

func position(idx Value, length int) (int, error) {
	f, ok := idx.toNumber()
	if !ok || idx.kind == KindBool || f != math.Trunc(f) {
		return 0, evalErrorf("invalid index %s", describe(idx))
	}
	if f < 0 || f >= float64(length) {
		return 0, evalErrorf("index %s out of range [0,%d)", formatNumber(f), length)
	}
	return int(f), nil
}

func toString(v Value, _ []Value) (Value, error) {
	return String(v.String()), nil
}

func argument(name string, args []Value, i int) (Value, error) {
	if i >= len(args) {
		return Null(), evalErrorf("%s expects at least %d argument(s), got %d", name, i+1, len(args))
	}
	return args[i], nil
}

func intArgument(name string, v Value) (int, error) {
	f, ok := v.toNumber()
	if !ok {
		return 0, evalErrorf("%s expects a number, got %s", name, describe(v))
	}
	if math.IsNaN(f) {
		return 0, nil
	}
	return int(math.Trunc(f)), nil
}

func stringIncludes(v Value, args []Value) (Value, error) {
	sub, err := argument("includes", args, 0)
	if err != nil {
		return Null(), err
	}
	return Bool(strings.Contains(v.str, sub.String())), nil
}

func stringStartsWith(v Value, args []Value) (Value, error) {
	prefix, err := argument("startsWith", args, 0)
	if err != nil {
		return Null(), err
	}
	return Bool(strings.HasPrefix(v.str, prefix.String())), nil
}

func stringEndsWith(v Value, args []Value) (Value, error) {
	suffix, err := argument("endsWith", args, 0)
	if err != nil {
		return Null(), err
	}
	return Bool(strings.HasSuffix(v.str, suffix.String())), nil
}

func stringIndexOf(v Value, args []Value) (Value, error) {
	sub, err := argument("indexOf", args, 0)
	if err != nil {
		return Null(), err
	}
	i := strings.Index(v.str, sub.String())
	if i < 0 {
		return Number(-1), nil
	}
	return Number(float64(utf8.RuneCountInString(v.str[:i]))), nil
}

// stringSubstring clamps both bounds to the string and swaps them when start
// is past end.
func stringSubstring(v Value, args []Value) (Value, error) {
	runes := []rune(v.str)
	start, end := 0, len(runes)
	if len(args) > 0 {
		n, err := intArgument("substring", args[0])
		if err != nil {
			return Null(), err
		}
		start = clamp(n, len(runes))
	}
	if len(args) > 1 && !args[1].IsNull() {
		n, err := intArgument("substring", args[1])
		if err != nil {
			return Null(), err
		}
		end = clamp(n, len(runes))
	}
	if start > end {
		start, end = end, start
	}
	return String(string(runes[start:end])), nil
}

func clamp(n, length int) int {
	return max(0, min(n, length))
}

func arrayIncludes(v Value, args []Value) (Value, error) {
	needle, err := argument("includes", args, 0)
	if err != nil {
		return Null(), err
	}
	for _, item := range v.arr {
		if strictEqual(item, needle) {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func arrayIndexOf(v Value, args []Value) (Value, error) {
	needle, err := argument("indexOf", args, 0)
	if err != nil {
		return Null(), err
	}
	for i, item := range v.arr {
		if strictEqual(item, needle) {
			return Number(float64(i)), nil
		}
	}
	return Number(-1), nil
}

func arrayJoin(v Value, args []Value) (Value, error) {
	sep := ","
	if len(args) > 0 && !args[0].IsNull() {
		sep = args[0].String()
	}
	parts := make([]string, len(v.arr))
	for i, item := range v.arr {
		if !item.IsNull() {
			parts[i] = item.String()
		}
	}
	return String(strings.Join(parts, sep)), nil
}

func numberToFixed(v Value, args []Value) (Value, error) {
	digits := 0
	if len(args) > 0 {
		n, err := intArgument("toFixed", args[0])
		if err != nil {
			return Null(), err
		}
		if n < 0 || n > 100 {
			return Null(), evalErrorf("toFixed digits must be between 0 and 100")
		}
		digits = n
	}
	return String(strconv.FormatFloat(v.num, 'f', digits, 64)), nil
}

func objectValues(_ Value, args []Value) (Value, error) {
	target, err := argument("Object.values", args, 0)
	if err != nil {
		return Null(), err
	}
	switch target.kind {
	case KindObject:
		items := make([]Value, len(target.keys))
		for i, k := range target.keys {
			items[i] = target.obj[k]
		}
		return Array(items), nil
	case KindArray:
		return Array(append([]Value(nil), target.arr...)), nil
	case KindString:
		var items []Value
		for _, r := range target.str {
			items = append(items, String(string(r)))
		}
		return Array(items), nil
	case KindNull:
		return Null(), evalErrorf("Object.values called on null")
	}
	return Array(nil), nil
}

func objectKeys(_ Value, args []Value) (Value, error) {
	target, err := argument("Object.keys", args, 0)
	if err != nil {
		return Null(), err
	}
	switch target.kind {
	case KindObject:
		items := make([]Value, len(target.keys))
		for i, k := range target.keys {
			items[i] = String(k)
		}
		return Array(items), nil
	case KindArray:
		items := make([]Value, len(target.arr))
		for i := range target.arr {
			items[i] = String(strconv.Itoa(i))
		}
		return Array(items), nil
	case KindNull:
		return Null(), evalErrorf("Object.keys called on null")
	}
	return Array(nil), nil
}
