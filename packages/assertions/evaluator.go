package assertions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
	"github.com/abdul-hamid-achik/harpi/packages/expr"
	"github.com/abdul-hamid-achik/harpi/packages/http"
	"github.com/xeipuuv/gojsonschema"
)

// Result is the outcome of one assert. Code asserts produce one result per
// entry, named after the entry; other methods are named after the method.
type Result struct {
	Name     string
	Passed   bool
	Message  string
	Expected any
	Actual   any
}

type method func(e *Evaluator, a *parser.Assert) []*Result

var methods = map[string]method{
	parser.MethodStatusCodeEquals:  (*Evaluator).statusCodeEquals,
	parser.MethodCodeAsserts:       (*Evaluator).codeAsserts,
	parser.MethodJavascriptAsserts: (*Evaluator).codeAsserts,
	parser.MethodJSONSchema:        (*Evaluator).jsonSchema,
}

type Evaluator struct {
	response *http.Response
	baseDir  string // Base directory for resolving schema file paths
}

// EvaluatorOption is a functional option for configuring an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithBaseDir sets the directory schema paths are resolved against.
func WithBaseDir(dir string) EvaluatorOption {
	return func(e *Evaluator) {
		e.baseDir = dir
	}
}

func NewEvaluator(resp *http.Response, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{response: resp}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs one assert method. Unknown methods fail instead of erroring.
func (e *Evaluator) Evaluate(a *parser.Assert) []*Result {
	fn, ok := methods[a.Method]
	if !ok {
		return []*Result{{Name: a.Method, Message: "assert method not found"}}
	}
	return fn(e, a)
}

// EvaluateAll runs every assert of a request in document order.
func (e *Evaluator) EvaluateAll(asserts parser.Asserts) []*Result {
	var results []*Result
	for _, a := range asserts {
		results = append(results, e.Evaluate(a)...)
	}
	return results
}

// Failed reports whether any result failed.
func Failed(results []*Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

func (e *Evaluator) statusCodeEquals(a *parser.Assert) []*Result {
	exp := fmt.Sprintf("%v", a.Expected)
	act := strconv.Itoa(e.response.StatusCode)
	result := &Result{Name: a.Method, Expected: exp, Actual: act}
	if exp != act {
		result.Message = "exp: " + exp + " act: " + act
		return []*Result{result}
	}
	result.Passed = true
	result.Message = "status code was " + exp
	return []*Result{result}
}

func (e *Evaluator) codeAsserts(a *parser.Assert) []*Result {
	if e.response.Failed() {
		return []*Result{{Name: a.Method, Message: "response body is undefined"}}
	}

	response := e.response.Decoded()
	results := make([]*Result, 0, len(a.CodeAsserts))
	for _, ca := range a.CodeAsserts {
		result := &Result{Name: ca.Name, Expected: ca.Code}
		passed, err := expr.EvalBool(ca.Code, response)
		switch {
		case err != nil:
			result.Message = "code assert failed while evaluating: " + err.Error()
		case passed:
			result.Passed = true
			result.Message = "passed"
		default:
			result.Message = "code assert failed: " + ca.Code
		}
		results = append(results, result)
	}
	return results
}

// jsonSchema validates the body against a schema given as a file path or
// inline as a mapping.
func (e *Evaluator) jsonSchema(a *parser.Assert) []*Result {
	result := &Result{Name: a.Method, Expected: a.Expected}
	passed, msg := e.schema(a.Expected)
	result.Passed = passed
	result.Message = msg
	return []*Result{result}
}

func (e *Evaluator) schema(expected any) (bool, string) {
	var schemaLoader gojsonschema.JSONLoader
	switch s := expected.(type) {
	case string:
		schemaPath := s
		if !filepath.IsAbs(schemaPath) && e.baseDir != "" {
			schemaPath = filepath.Join(e.baseDir, schemaPath)
		}
		if err := validatePathWithinBase(schemaPath, e.baseDir); err != nil {
			return false, err.Error()
		}
		schemaData, err := os.ReadFile(schemaPath)
		if err != nil {
			return false, fmt.Sprintf("failed to read schema file: %v", err)
		}
		schemaLoader = gojsonschema.NewBytesLoader(schemaData)
	case map[string]any:
		schemaData, err := json.Marshal(s)
		if err != nil {
			return false, fmt.Sprintf("failed to encode inline schema: %v", err)
		}
		schemaLoader = gojsonschema.NewBytesLoader(schemaData)
	default:
		return false, fmt.Sprintf("jsonSchema expects a file path or a mapping, got %T", expected)
	}

	if e.response.Failed() {
		return false, "response body is undefined"
	}
	if !json.Valid(e.response.Body) {
		return false, "response body is not JSON"
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(e.response.Body))
	if err != nil {
		return false, fmt.Sprintf("schema validation error: %v", err)
	}

	if result.Valid() {
		return true, "body matches schema"
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return false, fmt.Sprintf("schema validation failed: %s", strings.Join(errors, "; "))
}

// validatePathWithinBase checks that the resolved path stays within the base directory
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %v", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %v", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}

	return nil
}
