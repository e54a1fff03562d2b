package env

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/harpi/packages/builtin"
)

// variablePattern matches $(name) and single-level calls like $(date.addMinutes(5)).
var variablePattern = regexp.MustCompile(`\$\(([^()]*(?:\([^()]*\))?)\)`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver substitutes $(name) references with variable values. It is safe
// for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	funcs     *builtin.Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		funcs:     builtin.NewRegistry(),
	}
}

// SetWarnFunc sets a function to be called when warnings occur (e.g., unresolved variables)
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) GetVariable(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

// Resolve replaces every $(name) with the value of the variable. Dynamic
// expressions such as $(guid) are left for session setup; other unknown
// names are left untouched and reported through the warn function.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-1])

		if val, ok := r.GetVariable(name); ok {
			return Format(val)
		}
		if r.funcs.Has(name) {
			return match
		}

		r.warn("unresolved variable: %s", name)
		return match
	})
}

// Format renders a variable value the way it is substituted into a file.
func Format(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
