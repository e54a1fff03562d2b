package expr

import (
	"math"
	"time"
)

// functions are the host functions visible to every expression.
var functions = map[string]Func{
	"Date": newDate,
}

// now is replaced in tests.
var now = time.Now

// Layouts accepted by Date, tried in order. Layouts without an offset are
// read in local time, except the date-only form which is UTC.
var dateLayouts = []struct {
	layout string
	loc    *time.Location
}{
	{time.RFC3339Nano, time.UTC},
	{"2006-01-02T15:04:05Z0700", time.UTC},
	{"2006-01-02T15:04:05", time.Local},
	{"2006-01-02 15:04:05", time.Local},
	{"2006-01-02T15:04", time.Local},
	{"2006-01-02", time.UTC},
}

// newDate implements both Date(x) and new Date(x). Without an argument it
// returns the current time; numbers are epoch milliseconds.
func newDate(args []Value) (Value, error) {
	if len(args) == 0 {
		return Date(now()), nil
	}
	switch arg := args[0]; arg.kind {
	case KindDate:
		return arg, nil
	case KindNumber:
		if math.IsNaN(arg.num) || math.IsInf(arg.num, 0) {
			return Null(), evalErrorf("invalid date %s", arg)
		}
		return Date(time.UnixMilli(int64(arg.num)).UTC()), nil
	case KindString:
		if t, ok := parseDate(arg.str); ok {
			return Date(t), nil
		}
		return Null(), evalErrorf("invalid date %q", arg.str)
	}
	return Null(), evalErrorf("cannot build a date from %s", describe(args[0]))
}

func parseDate(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if t, err := time.ParseInLocation(l.layout, s, l.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
