package parser

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/harpi/packages/expr"
	"gopkg.in/yaml.v3"
)

func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(content, path)
}

// Parse decodes a request file. Templates are not resolved here; callers run
// the raw content through the variable resolver first.
func Parse(content []byte, filename string) (*File, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, &ParseError{File: filename, Message: "empty request file"}
	}

	file := &File{}
	if err := yaml.Unmarshal(content, file); err != nil {
		return nil, &ParseError{File: filename, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
	}
	file.Path = filename
	return file, nil
}

// ParseVariables decodes only the variables section. It is used before
// templating, when the rest of the document may not decode yet.
func ParseVariables(content []byte, filename string) (Variables, error) {
	var doc struct {
		Variables Variables `yaml:"variables"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &ParseError{File: filename, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
	}
	return doc.Variables, nil
}

// Validate checks what the runner relies on: every request has a method and
// every assignment names its variable. Expressions are not parsed here; a
// broken expression fails its own assert when the request runs.
func Validate(file *File) error {
	for i, req := range file.Requests {
		id := i + 1
		if strings.TrimSpace(req.Method) == "" {
			return &ParseError{File: file.Path, Line: req.Line, Message: fmt.Sprintf("request %d must have defined method", id)}
		}
		for _, va := range req.VariableAssignments {
			if strings.TrimSpace(va.VariableName) == "" {
				return &ParseError{File: file.Path, Line: va.Line, Message: fmt.Sprintf("request %d: variable assignment must have variableName", id)}
			}
		}
	}
	return nil
}

// ValidateExpressions runs Validate and then parses every code assert and
// variable assignment expression.
func ValidateExpressions(file *File) error {
	if err := Validate(file); err != nil {
		return err
	}
	for i, req := range file.Requests {
		id := i + 1
		for _, a := range req.Asserts {
			for _, ca := range a.CodeAsserts {
				if _, err := expr.Parse(ca.Code); err != nil {
					return &ParseError{
						File:    file.Path,
						Line:    ca.Line,
						Message: fmt.Sprintf("request %d: code assert %q: %v", id, ca.Name, err),
					}
				}
			}
		}
		for _, va := range req.VariableAssignments {
			if _, err := expr.Parse(va.Code); err != nil {
				return &ParseError{
					File:    file.Path,
					Line:    va.Line,
					Message: fmt.Sprintf("request %d: assignment %s: %v", id, va.VariableName, err),
				}
			}
		}
	}
	return nil
}
