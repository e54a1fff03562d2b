package expr

import (
	"math"
	"strings"
)

// looseEqual implements == and !=. Numbers, booleans and numeric strings
// compare numerically, dates by timestamp, null only equals null, arrays and
// objects structurally. Remaining primitive pairs compare their display strings.
func looseEqual(a, b Value) bool {
	if a.kind == KindNull || b.kind == KindNull {
		return a.kind == b.kind
	}
	if a.kind == b.kind {
		return sameKindEqual(a, b, looseEqual)
	}
	if isComposite(a) || isComposite(b) {
		return false
	}
	if an, ok := a.toNumber(); ok {
		if bn, ok := b.toNumber(); ok {
			return an == bn
		}
	}
	if a.kind == KindDate || b.kind == KindDate {
		return false
	}
	return a.String() == b.String()
}

// strictEqual implements === and !==.
func strictEqual(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	return sameKindEqual(a, b, strictEqual)
}

func sameKindEqual(a, b Value, elem func(x, y Value) bool) bool {
	switch a.kind {
	case KindNull:
		return true
	case KindNumber:
		return a.num == b.num
	case KindString, KindNamespace:
		return a.str == b.str
	case KindBool:
		return a.b == b.b
	case KindDate:
		return a.t.Equal(b.t)
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !elem(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !elem(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

func isComposite(v Value) bool {
	return v.kind == KindArray || v.kind == KindObject || v.kind == KindNamespace
}

// order compares a and b for <, <=, > and >=. ok is false when either side is
// NaN, in which case every ordering is false.
func order(a, b Value) (cmp int, ok bool, err error) {
	switch {
	case a.kind == KindString && b.kind == KindString:
		return strings.Compare(a.str, b.str), true, nil
	case a.kind == KindDate && b.kind == KindDate:
		return a.t.Compare(b.t), true, nil
	}
	if orderable(a) && orderable(b) {
		an, aok := a.toNumber()
		bn, bok := b.toNumber()
		if aok && bok {
			if math.IsNaN(an) || math.IsNaN(bn) {
				return 0, false, nil
			}
			switch {
			case an < bn:
				return -1, true, nil
			case an > bn:
				return 1, true, nil
			default:
				return 0, true, nil
			}
		}
	}
	return 0, false, evalErrorf("cannot compare %s with %s", describe(a), describe(b))
}

// orderable reports whether v may take part in a numeric ordering: numbers,
// dates and strings that parse as numbers.
func orderable(v Value) bool {
	switch v.kind {
	case KindNumber, KindDate:
		return true
	case KindString:
		_, ok := v.toNumber()
		return ok
	}
	return false
}

func describe(v Value) string {
	switch v.kind {
	case KindString:
		return "string '" + v.str + "'"
	case KindNumber, KindBool:
		return v.kind.String() + " " + v.String()
	default:
		return v.kind.String()
	}
}
