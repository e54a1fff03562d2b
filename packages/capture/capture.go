package capture

import (
	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
	"github.com/abdul-hamid-achik/harpi/packages/expr"
	"github.com/abdul-hamid-achik/harpi/packages/http"
)

// Assignment is a value extracted from a response for a session variable.
type Assignment struct {
	Key   string
	Value any
}

// WarnFunc receives assignments that could not be evaluated.
type WarnFunc func(format string, args ...any)

type Extractor struct {
	response expr.Value
	warnFunc WarnFunc
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{}
	if !resp.Failed() {
		e.response = resp.Decoded()
	}
	return e
}

// SetWarnFunc sets the function told about failed assignments.
func (e *Extractor) SetWarnFunc(fn WarnFunc) {
	e.warnFunc = fn
}

// Extract evaluates one assignment. A null result is stored as "".
func (e *Extractor) Extract(va *parser.VariableAssignment) (Assignment, error) {
	v, err := expr.Eval(va.Code, e.response)
	if err != nil {
		return Assignment{}, err
	}
	value := v.Native()
	if value == nil {
		value = ""
	}
	return Assignment{Key: va.VariableName, Value: value}, nil
}

// ExtractAll evaluates assignments in order. Failing ones are reported
// through the warn function and skipped.
func (e *Extractor) ExtractAll(assignments []*parser.VariableAssignment) []Assignment {
	var results []Assignment
	for _, va := range assignments {
		a, err := e.Extract(va)
		if err != nil {
			if e.warnFunc != nil {
				e.warnFunc("variable assignment %s failed: %v", va.VariableName, err)
			}
			continue
		}
		results = append(results, a)
	}
	return results
}

// ToMap returns the assignments keyed by variable name; later ones win.
func ToMap(assignments []Assignment) map[string]any {
	m := make(map[string]any, len(assignments))
	for _, a := range assignments {
		m[a.Key] = a.Value
	}
	return m
}
