package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/harpi/packages/core/env"
	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
	"github.com/abdul-hamid-achik/harpi/packages/expr"
)

// Exit codes for harpi CLI
const (
	// ExitSuccess indicates all asserts passed
	ExitSuccess = 0

	// ExitTestFailure indicates a failed assert or a failed run
	ExitTestFailure = 1

	// ExitParseError indicates a request file or expression that does not parse
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

var errAssertsFailed = errors.New("one or more asserts failed")

// exitError carries the exit code of a command. reported is set when the
// error was already printed by a formatter.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func reported(err error) error {
	return &exitError{code: exitCode(err), err: err, reported: true}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) && exitErr.code != 0 {
		return exitErr.code
	}

	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return ExitParseError
	}
	var exprErr *expr.Error
	if errors.As(err, &exprErr) && exprErr.Kind == expr.ParseError {
		return ExitParseError
	}
	var requiredErr *env.RequiredVariableError
	if errors.As(err, &requiredErr) {
		return ExitUsageError
	}
	return ExitTestFailure
}
