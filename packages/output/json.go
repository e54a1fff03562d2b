package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/harpi/packages/core/runner"
	"github.com/tidwall/gjson"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Requests []JSONTest  `json:"requests"`
	Errors   []string    `json:"errors,omitempty"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary represents the run summary
type JSONSummary struct {
	Total         int `json:"total"`
	Passed        int `json:"passed"`
	Failed        int `json:"failed"`
	AssertsPassed int `json:"assertsPassed"`
	AssertsFailed int `json:"assertsFailed"`
}

// JSONTest represents a single request result
type JSONTest struct {
	ID          int             `json:"id"`
	Name        string          `json:"name,omitempty"`
	File        string          `json:"file"`
	Passed      bool            `json:"passed"`
	Duration    float64         `json:"duration"`
	Request     *JSONRequest    `json:"request,omitempty"`
	Response    *JSONResponse   `json:"response,omitempty"`
	Assertions  []JSONAssertion `json:"assertions,omitempty"`
	Assignments map[string]any  `json:"assignments,omitempty"`
}

// JSONRequest represents request details
type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// JSONResponse represents response details. Body holds the decoded document
// for JSON bodies and the text otherwise.
type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       any               `json:"body,omitempty"`
	Duration   float64           `json:"duration"`
	Error      string            `json:"error,omitempty"`
}

// JSONAssertion represents an assert result
type JSONAssertion struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
}

// JSONFormatter accumulates results and writes them as one JSON document
// on Flush.
type JSONFormatter struct {
	writer  io.Writer
	results []JSONTest
	errors  []string
	now     func() time.Time
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONTest, 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		test := JSONTest{
			ID:       r.ID,
			Name:     r.Name,
			File:     result.File,
			Passed:   r.Passed,
			Duration: float64(r.Duration.Milliseconds()),
		}

		if r.Request != nil {
			test.Request = &JSONRequest{
				Method:  r.Request.Method,
				URL:     r.Request.URL,
				Headers: r.Request.Headers,
			}
		}

		if resp := r.Response; resp != nil {
			test.Response = &JSONResponse{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Headers:    resp.Headers,
				Duration:   float64(resp.Duration.Milliseconds()),
				Error:      resp.Error,
			}
			if len(resp.Body) > 0 {
				if gjson.ValidBytes(resp.Body) {
					test.Response.Body = json.RawMessage(resp.Body)
				} else {
					test.Response.Body = resp.BodyString()
				}
			}
		}

		if len(r.Assertions) > 0 {
			test.Assertions = make([]JSONAssertion, len(r.Assertions))
			for i, a := range r.Assertions {
				test.Assertions[i] = JSONAssertion{
					Name:     a.Name,
					Passed:   a.Passed,
					Message:  a.Message,
					Expected: a.Expected,
					Actual:   a.Actual,
				}
			}
		}

		if len(r.Assignments) > 0 {
			test.Assignments = make(map[string]any, len(r.Assignments))
			for _, a := range r.Assignments {
				test.Assignments[a.Key] = a.Value
			}
		}

		f.results = append(f.results, test)
	}
}

// FormatError records a file level error, such as a parse failure.
func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	summary := JSONSummary{Total: len(f.results)}
	for _, t := range f.results {
		if t.Passed {
			summary.Passed++
		} else {
			summary.Failed++
		}
		for _, a := range t.Assertions {
			if a.Passed {
				summary.AssertsPassed++
			} else {
				summary.AssertsFailed++
			}
		}
	}

	output := JSONOutput{
		Summary:  summary,
		Requests: f.results,
		Errors:   f.errors,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     f.now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
