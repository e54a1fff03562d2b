package parser

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// RequiredValue marks a variable that must be supplied on the command line.
const RequiredValue = "required"

type File struct {
	Path      string     `yaml:"-"`
	Variables Variables  `yaml:"variables"`
	Headers   Headers    `yaml:"headers"`
	Requests  []*Request `yaml:"requests"`
}

type Variable struct {
	Name  string
	Value any
	Line  int
}

// Variables keeps the document order of the variables mapping.
type Variables []*Variable

type Header struct {
	Key   string
	Value string
	Line  int
}

// Headers keeps the document order of the headers mapping.
type Headers []*Header

type Request struct {
	Name                  string                `yaml:"name"`
	URL                   string                `yaml:"url"`
	Method                string                `yaml:"method"`
	JSONBody              any                   `yaml:"jsonBody"`
	FormURLEncodedBody    map[string]any        `yaml:"formUrlEncodedBody"`
	Asserts               Asserts               `yaml:"asserts"`
	VariableAssignments   []*VariableAssignment `yaml:"variableAssignments"`
	WaitBeforeNextRequest *Wait                 `yaml:"waitBeforeNextRequest"`
	Line                  int                   `yaml:"-"`
}

// Assert is one entry of a request's asserts mapping. Expected holds the raw
// value for every method except code asserts, which are decoded into CodeAsserts.
type Assert struct {
	Method      string
	Expected    any
	CodeAsserts []*CodeAssert
	Line        int
}

// Asserts keeps the document order of the asserts mapping.
type Asserts []*Assert

type CodeAssert struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
	Line int    `yaml:"-"`
}

type VariableAssignment struct {
	VariableName string `yaml:"variableName"`
	Code         string `yaml:"code"`
	Line         int    `yaml:"-"`
}

type Wait struct {
	Name         string  `yaml:"name"`
	Milliseconds float64 `yaml:"milliseconds"`
	Seconds      float64 `yaml:"seconds"`
	Minutes      float64 `yaml:"minutes"`
}

// Assert method names understood by the assertions package.
const (
	MethodStatusCodeEquals  = "statusCodeEquals"
	MethodCodeAsserts       = "codeAsserts"
	MethodJavascriptAsserts = "javascriptAsserts"
	MethodJSONSchema        = "jsonSchema"
)

func (w *Wait) Duration() time.Duration {
	ms := w.Milliseconds + w.Seconds*1000 + w.Minutes*60*1000
	return time.Duration(ms * float64(time.Millisecond))
}

// Lookup returns the variable with the given name.
func (v Variables) Lookup(name string) (*Variable, bool) {
	for _, variable := range v {
		if variable.Name == name {
			return variable, true
		}
	}
	return nil, false
}

// Map returns the variables as a plain map.
func (v Variables) Map() map[string]any {
	m := make(map[string]any, len(v))
	for _, variable := range v {
		m[variable.Name] = variable.Value
	}
	return m
}

// Map returns the headers as a plain map.
func (h Headers) Map() map[string]string {
	m := make(map[string]string, len(h))
	for _, header := range h {
		m[header.Key] = header.Value
	}
	return m
}

func (v *Variables) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: variables must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var decoded any
		if err := value.Decode(&decoded); err != nil {
			return fmt.Errorf("line %d: variable %s: %w", key.Line, key.Value, err)
		}
		*v = append(*v, &Variable{Name: key.Value, Value: decoded, Line: key.Line})
	}
	return nil
}

func (h *Headers) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: headers must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: header %s must be a scalar", key.Line, key.Value)
		}
		*h = append(*h, &Header{Key: key.Value, Value: value.Value, Line: key.Line})
	}
	return nil
}

func (a *Asserts) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: asserts must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		entry := &Assert{Method: key.Value, Line: key.Line}
		switch key.Value {
		case MethodCodeAsserts, MethodJavascriptAsserts:
			if err := value.Decode(&entry.CodeAsserts); err != nil {
				return fmt.Errorf("line %d: %s: %w", key.Line, key.Value, err)
			}
		default:
			if err := value.Decode(&entry.Expected); err != nil {
				return fmt.Errorf("line %d: %s: %w", key.Line, key.Value, err)
			}
		}
		*a = append(*a, entry)
	}
	return nil
}

func (r *Request) UnmarshalYAML(node *yaml.Node) error {
	type plain Request
	if err := node.Decode((*plain)(r)); err != nil {
		return err
	}
	r.Line = node.Line
	return nil
}

func (c *CodeAssert) UnmarshalYAML(node *yaml.Node) error {
	type plain CodeAssert
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Line = node.Line
	return nil
}

func (v *VariableAssignment) UnmarshalYAML(node *yaml.Node) error {
	type plain VariableAssignment
	if err := node.Decode((*plain)(v)); err != nil {
		return err
	}
	v.Line = node.Line
	return nil
}

type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	case e.File != "":
		return e.File + ": " + e.Message
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	default:
		return e.Message
	}
}
