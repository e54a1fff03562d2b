package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/harpi/packages/core/env"
	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
	"github.com/abdul-hamid-achik/harpi/packages/core/runner"
	"github.com/abdul-hamid-achik/harpi/packages/http"
	"github.com/fatih/color"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// shortJSONLength is the number of characters of a body shown without --verbose.
const shortJSONLength = 100

const longJSONIndent = 10

// ConsoleFormatter prints a run as it happens. It implements runner.Reporter.
type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	bold   *color.Color
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		bold:   color.New(color.Bold),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		for _, c := range []*color.Color{f.green, f.red, f.yellow, f.bold} {
			c.DisableColor()
		}
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) RunStarted(file string, at time.Time) {
	fmt.Fprintf(f.writer, "\nstarted new run for %s at %s\n", file, at.Format("1/2/2006, 3:04:05 PM"))
}

func (f *ConsoleFormatter) RequestStarted(id int, req *parser.Request) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n- request \n  - id: %d", id)
	if req.Name != "" {
		fmt.Fprintf(&b, "\n  - name: '%s'", req.Name)
	}
	fmt.Fprintf(&b, "\n  - url: %s\n  - method: %s", req.URL, req.Method)

	if req.JSONBody != nil {
		body, err := http.EncodeJSON(req.JSONBody)
		if err == nil {
			b.WriteString("\n  - body: ")
			b.WriteString(f.body(body))
		}
	}
	fmt.Fprintln(f.writer, b.String())
}

func (f *ConsoleFormatter) RequestFinished(result *runner.RequestResult) {
	resp := result.Response
	var b strings.Builder
	b.WriteString("- response\n")

	if resp.Failed() {
		fmt.Fprintf(&b, "  - %s", f.red.Sprintf("failed reading response, with error: %s", resp.Error))
		fmt.Fprintln(f.writer, b.String())
		return
	}

	fmt.Fprintf(&b, "  - statusCode: %s\n", f.statusColor(resp).Sprint(resp.StatusCode))
	fmt.Fprintf(&b, "  - responseTime: %d ms\n", resp.DurationMs())
	fmt.Fprintf(&b, "  - body: %s\n", f.body(resp.Body))

	for i, a := range result.Assertions {
		if i == 0 {
			b.WriteString("  - asserts\n")
		}
		c := f.green
		if !a.Passed {
			c = f.red
		}
		fmt.Fprintf(&b, "    - %s: %s\n", a.Name, c.Sprint(a.Message))
	}

	for i, a := range result.Assignments {
		if i == 0 {
			b.WriteString("- resulting variable assignments\n")
		}
		fmt.Fprintf(&b, "  - %s: %s\n", a.Key, env.Format(a.Value))
	}

	fmt.Fprintln(f.writer, strings.TrimSuffix(b.String(), "\n"))
}

func (f *ConsoleFormatter) Waiting(w *parser.Wait) {
	var b strings.Builder
	if w.Name != "" {
		b.WriteString("\n" + w.Name)
	}
	b.WriteString("\n now waiting ")
	if w.Milliseconds != 0 {
		fmt.Fprintf(&b, "%v milliseconds ", w.Milliseconds)
	}
	if w.Seconds != 0 {
		fmt.Fprintf(&b, "%v seconds ", w.Seconds)
	}
	if w.Minutes != 0 {
		fmt.Fprintf(&b, "%v minutes ", w.Minutes)
	}
	fmt.Fprintln(f.writer, b.String())
}

func (f *ConsoleFormatter) Message(msg string) {
	fmt.Fprintln(f.writer, msg)
}

// Warn prints a warning such as an unresolved variable.
func (f *ConsoleFormatter) Warn(format string, args ...any) {
	fmt.Fprintf(f.writer, "%s %s\n", f.yellow.Sprint("warning:"), fmt.Sprintf(format, args...))
}

// FormatResult prints the summary of a finished run.
func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	passed, failed := result.AssertCounts()

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Requests: ")
	f.counts(result.Passed, result.Failed)
	fmt.Fprintf(f.writer, "Asserts:  ")
	f.counts(passed, failed)
	fmt.Fprintf(f.writer, "Time:     %dms\n", result.Duration.Milliseconds())
	if result.Bailed {
		fmt.Fprintf(f.writer, "%s\n", f.yellow.Sprint("stopped after the first failed assert"))
	}
}

func (f *ConsoleFormatter) counts(passed, failed int) {
	if passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", f.green.Sprintf("%d passed", passed))
	}
	if failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", f.red.Sprintf("%d failed", failed))
	}
	fmt.Fprintf(f.writer, "%d total\n", passed+failed)
}

func (f *ConsoleFormatter) FormatError(err error) {
	fmt.Fprintf(f.writer, "%s %v\n", f.red.Sprint("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	fmt.Fprintf(f.writer, "%s %s\n", f.bold.Sprint("harpi"), version)
}

// statusColor is green for 2xx, red from 500 up and yellow otherwise.
func (f *ConsoleFormatter) statusColor(resp *http.Response) *color.Color {
	switch {
	case resp.IsSuccess():
		return f.green
	case resp.IsServerError():
		return f.red
	default:
		return f.yellow
	}
}

func (f *ConsoleFormatter) body(body []byte) string {
	if f.verbose {
		return LongJSON(body)
	}
	return ShortJSON(body)
}

// ShortJSON compacts a JSON body to one line and truncates it. Other bodies
// are only truncated.
func ShortJSON(body []byte) string {
	s := string(body)
	if gjson.ValidBytes(body) {
		s = string(pretty.Ugly(body))
	}
	if len(s) > shortJSONLength {
		s = s[:shortJSONLength] + "..."
	}
	return s
}

// LongJSON indents a JSON body. Other bodies are returned unchanged.
func LongJSON(body []byte) string {
	if !gjson.ValidBytes(body) {
		return string(body)
	}
	out := pretty.PrettyOptions(body, &pretty.Options{
		Width:  80,
		Indent: strings.Repeat(" ", longJSONIndent),
	})
	return strings.TrimSuffix(string(out), "\n")
}
