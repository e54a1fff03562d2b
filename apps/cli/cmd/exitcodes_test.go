package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/abdul-hamid-achik/harpi/packages/core/env"
	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
	"github.com/abdul-hamid-achik/harpi/packages/expr"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	_, parseExprErr := expr.Parse("a ==")
	_, evalErr := expr.Eval("missing", expr.Null())

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitTestFailure},
		{"explicit code", withCode(ExitConfigError, errors.New("bad config")), ExitConfigError},
		{"parse error", fmt.Errorf("load: %w", &parser.ParseError{Message: "bad"}), ExitParseError},
		{"expression parse error", parseExprErr, ExitParseError},
		{"expression eval error", evalErr, ExitTestFailure},
		{"required variable", &env.RequiredVariableError{Name: "token"}, ExitUsageError},
		{"reported keeps cause", reported(&parser.ParseError{Message: "bad"}), ExitParseError},
		{"asserts failed", reported(errAssertsFailed), ExitTestFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("cause")
	err := reported(cause)
	assert.Equal(t, "cause", err.Error())
	assert.ErrorIs(t, err, cause)

	var exitErr *exitError
	assert.ErrorAs(t, err, &exitErr)
	assert.True(t, exitErr.reported)
}
