package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/harpi/packages/assertions"
	"github.com/abdul-hamid-achik/harpi/packages/builtin"
	"github.com/abdul-hamid-achik/harpi/packages/capture"
	"github.com/abdul-hamid-achik/harpi/packages/core/env"
	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
	"github.com/abdul-hamid-achik/harpi/packages/http"
	"github.com/abdul-hamid-achik/harpi/packages/session"
)

type Runner struct {
	client   *http.Client
	funcs    *builtin.Registry
	store    *session.Store
	reporter Reporter
	warnFunc env.WarnFunc
	now      func() time.Time
	config   *Config
	warned   map[string]bool
}

type Config struct {
	Verbose        bool
	Timeout        time.Duration
	FollowRedirect bool
	MaxRedirects   int
	ValidateSSL    bool
	Proxy          string
	Bail           bool
	DefaultHeaders map[string]string
	// Variables override the variables of every file. A variable declared
	// as "required" must be present here.
	Variables map[string]string
}

type Option func(*Runner)

// WithReporter sets the receiver of progress events.
func WithReporter(rep Reporter) Option {
	return func(r *Runner) {
		r.reporter = rep
	}
}

// WithWarnFunc sets the function told about unresolved variables and
// failed variable assignments.
func WithWarnFunc(fn env.WarnFunc) Option {
	return func(r *Runner) {
		r.warnFunc = fn
	}
}

// WithFunctions replaces the registry generating dynamic variable values.
func WithFunctions(funcs *builtin.Registry) Option {
	return func(r *Runner) {
		r.funcs = funcs
	}
}

// WithClock replaces the time source of run start events.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func NewRunner(cfg *Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = &Config{FollowRedirect: true, ValidateSSL: true}
	}

	r := &Runner{
		funcs:    builtin.NewRegistry(),
		store:    session.NewStore(),
		reporter: nopReporter{},
		now:      time.Now,
		config:   cfg,
	}
	for _, opt := range opts {
		opt(r)
	}

	clientOpts := []http.ClientOption{
		http.WithFollowRedirects(cfg.FollowRedirect),
		http.WithValidateSSL(cfg.ValidateSSL),
		http.WithDefaultHeaders(cfg.DefaultHeaders),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(cfg.Timeout))
	}
	if cfg.MaxRedirects > 0 {
		clientOpts = append(clientOpts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}
	r.client = http.NewClient(clientOpts...)

	r.store.SetLogFunc(func(format string, args ...any) {
		r.reporter.Message(fmt.Sprintf(format, args...))
	})

	return r
}

type RunResult struct {
	File     string
	Results  []*RequestResult
	Duration time.Duration
	Passed   int
	Failed   int
	// Bailed is set when the run stopped early on a failed assert.
	Bailed bool
}

// AssertCounts returns the number of passed and failed asserts.
func (r *RunResult) AssertCounts() (passed, failed int) {
	for _, res := range r.Results {
		for _, a := range res.Assertions {
			if a.Passed {
				passed++
			} else {
				failed++
			}
		}
	}
	return passed, failed
}

type RequestResult struct {
	ID          int
	Name        string
	Passed      bool
	Duration    time.Duration
	Request     *http.Request
	Response    *http.Response
	Assertions  []*assertions.Result
	Assignments []capture.Assignment
}

// RunFile executes the requests of a request file in order. When requestID
// is positive only that request (1-based) runs and the previous session is
// reused; otherwise a new session starts.
func (r *Runner) RunFile(ctx context.Context, path string, requestID int) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{File: path}
	defer func() { result.Duration = time.Since(start) }()
	r.warned = make(map[string]bool)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	r.reporter.RunStarted(filepath.Base(path), r.now())

	newSession := requestID <= 1
	file, err := r.load(path, raw, newSession)
	if err != nil {
		return nil, err
	}

	single := requestID > 0
	if requestID > len(file.Requests) {
		return nil, fmt.Errorf("request %d not found, %s has %d requests", requestID, filepath.Base(path), len(file.Requests))
	}
	baseDir := filepath.Dir(path)

	for i := 0; i < len(file.Requests); i++ {
		id := i + 1
		if single && id != requestID {
			continue
		}

		req := file.Requests[i]
		r.reporter.RequestStarted(id, req)

		if strings.TrimSpace(req.URL) == "" {
			return result, fmt.Errorf("url is not specified for request %d", id)
		}

		reqResult, err := r.runRequest(ctx, id, req, file.Headers, baseDir)
		if err != nil {
			return result, err
		}
		result.Results = append(result.Results, reqResult)
		if reqResult.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		r.reporter.RequestFinished(reqResult)

		if r.config.Bail && !reqResult.Passed {
			r.reporter.Message("Detected failed assert - stopping since bail")
			result.Bailed = true
			break
		}

		if len(reqResult.Assignments) > 0 {
			if _, err := r.store.Merge(path, capture.ToMap(reqResult.Assignments)); err != nil {
				return result, err
			}
			file, err = r.load(path, raw, false)
			if err != nil {
				return result, err
			}
		}

		if w := req.WaitBeforeNextRequest; w != nil && !single {
			r.reporter.Waiting(w)
			if err := wait(ctx, w.Duration()); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

func (r *Runner) runRequest(ctx context.Context, id int, req *parser.Request, headers parser.Headers, baseDir string) (*RequestResult, error) {
	start := time.Now()

	httpReq, err := http.BuildRequest(req, headers)
	if err != nil {
		return nil, fmt.Errorf("request %d: %w", id, err)
	}

	resp := r.client.Send(ctx, httpReq)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	results := assertions.NewEvaluator(resp, assertions.WithBaseDir(baseDir)).EvaluateAll(req.Asserts)

	extractor := capture.NewExtractor(resp)
	extractor.SetWarnFunc(r.warn)
	assigned := extractor.ExtractAll(req.VariableAssignments)

	return &RequestResult{
		ID:          id,
		Name:        req.Name,
		Passed:      !assertions.Failed(results),
		Duration:    time.Since(start),
		Request:     httpReq,
		Response:    resp,
		Assertions:  results,
		Assignments: assigned,
	}, nil
}

// load computes the variable values for this run, substitutes them into the
// raw file and parses the result.
func (r *Runner) load(path string, raw []byte, newSession bool) (*parser.File, error) {
	vars, err := parser.ParseVariables(raw, path)
	if err != nil {
		return nil, err
	}

	values := vars.Map()

	var stored map[string]any
	if !newSession {
		var ok bool
		stored, ok, err = r.store.Load(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			newSession = true
		}
	}
	if newSession {
		stored = env.GenerateDynamics(vars, r.funcs)
		if err := r.store.Save(path, stored); err != nil {
			return nil, err
		}
	}
	for k, v := range stored {
		values[k] = v
	}

	if err := env.ApplyOverrides(values, r.config.Variables); err != nil {
		return nil, err
	}

	return r.render(path, raw, values)
}

// Load parses a request file substituting only the values written in its
// variables block. Sessions and overrides are not consulted.
func (r *Runner) Load(path string) (*parser.File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vars, err := parser.ParseVariables(raw, path)
	if err != nil {
		return nil, err
	}
	return r.render(path, raw, vars.Map())
}

func (r *Runner) render(path string, raw []byte, values map[string]any) (*parser.File, error) {
	resolver := env.NewResolver()
	resolver.SetWarnFunc(r.warn)
	resolver.SetVariables(values)

	file, err := parser.Parse([]byte(resolver.Resolve(string(raw))), path)
	if err != nil {
		return nil, err
	}
	if err := parser.Validate(file); err != nil {
		return nil, err
	}
	return file, nil
}

// warn reports each distinct warning once per run; the file is templated
// again after every assignment.
func (r *Runner) warn(format string, args ...any) {
	if r.warnFunc == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if r.warned != nil {
		if r.warned[msg] {
			return
		}
		r.warned[msg] = true
	}
	r.warnFunc("%s", msg)
}
