package builtin

import (
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the format of generated dates: local time without an offset.
const DateLayout = "2006-01-02T15:04:05"

type Func func(args []string) any

type Registry struct {
	funcs map[string]Func
	now   func() time.Time
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
		now:   time.Now,
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["guid"] = funcGUID
	r.funcs["uuid"] = funcGUID
	r.funcs["date"] = r.funcDate
	r.funcs["date.addMinutes"] = r.dateAdder(time.Minute)
	r.funcs["date.addHours"] = r.dateAdder(time.Hour)
	r.funcs["date.addDays"] = r.dateAdder(24 * time.Hour)
	r.funcs["timestamp"] = r.funcTimestamp
	r.funcs["timestampMs"] = r.funcTimestampMs
	r.funcs["random"] = funcRandom
	r.funcs["randomString"] = funcRandomString
	r.funcs["randomEmail"] = funcRandomEmail
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// SetClock replaces the time source used by the date functions.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

var funcCallPattern = regexp.MustCompile(`^([\w.]+?)(?:\((.*)\))?$`)

// Call runs a dynamic expression such as "guid" or "date.addMinutes(5)".
func (r *Registry) Call(expr string) (any, bool) {
	matches := funcCallPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if matches == nil {
		return nil, false
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return nil, false
	}

	var args []string
	if matches[2] != "" {
		args = parseArgs(matches[2])
	}
	return fn(args), true
}

// Has reports whether expr names a registered function.
func (r *Registry) Has(expr string) bool {
	matches := funcCallPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if matches == nil {
		return false
	}
	_, ok := r.funcs[matches[1]]
	return ok
}

// Dynamic evaluates value when it is exactly one $(...) expression naming a
// registered function, as in "$(guid)".
func (r *Registry) Dynamic(value string) (string, bool) {
	if !strings.HasPrefix(value, "$(") || !strings.HasSuffix(value, ")") {
		return "", false
	}
	result, ok := r.Call(value[2 : len(value)-1])
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", result), true
}

func parseArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !inQuote && (ch == '"' || ch == '\'') {
			inQuote = true
			quoteChar = ch
		} else if inQuote && ch == quoteChar {
			inQuote = false
			quoteChar = 0
		} else if !inQuote && ch == ',' {
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		} else {
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}

	return args
}

func funcGUID(_ []string) any {
	return uuid.New().String()
}

func (r *Registry) funcDate(_ []string) any {
	return r.now().Format(DateLayout)
}

func (r *Registry) dateAdder(unit time.Duration) Func {
	return func(args []string) any {
		n := 0.0
		if len(args) >= 1 {
			if v, err := strconv.ParseFloat(args[0], 64); err == nil {
				n = v
			} else {
				fmt.Fprintf(os.Stderr, "warning: date offset %q is not a number\n", args[0])
			}
		}
		return r.now().Add(time.Duration(n * float64(unit))).Format(DateLayout)
	}
}

func (r *Registry) funcTimestamp(_ []string) any {
	return r.now().Unix()
}

func (r *Registry) funcTimestampMs(_ []string) any {
	return r.now().UnixMilli()
}

func funcRandom(args []string) any {
	min, max := 0, 100
	if len(args) >= 2 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			min = v
		} else {
			fmt.Fprintf(os.Stderr, "warning: random() min argument %q is not a valid integer\n", args[0])
		}
		if v, err := strconv.Atoi(args[1]); err == nil {
			max = v
		} else {
			fmt.Fprintf(os.Stderr, "warning: random() max argument %q is not a valid integer\n", args[1])
		}
	}
	if max < min {
		min, max = max, min
	}
	return rand.Intn(max-min+1) + min
}

func funcRandomString(args []string) any {
	length := 16
	if len(args) >= 1 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			length = v
		} else {
			fmt.Fprintf(os.Stderr, "warning: randomString() length argument %q is not a valid integer\n", args[0])
		}
	}
	return randomString(length, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
}

func funcRandomEmail(_ []string) any {
	user := randomString(8, "abcdefghijklmnopqrstuvwxyz")
	domain := randomString(6, "abcdefghijklmnopqrstuvwxyz")
	return fmt.Sprintf("%s@%s.com", user, domain)
}

func randomString(length int, charset string) string {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
