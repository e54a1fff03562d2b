package expr

import (
	"errors"
	"fmt"
)

// ErrorKind classifies expression failures.
type ErrorKind int

const (
	// ParseError is raised for malformed source.
	ParseError ErrorKind = iota
	// EvalError is raised while walking a well-formed tree.
	EvalError
	// ParamError is raised when the caller passes no code at all.
	ParamError
)

func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case EvalError:
		return "eval error"
	case ParamError:
		return "param error"
	default:
		return "unknown error"
	}
}

// Error is the single error type returned by Parse and Eval.
type Error struct {
	Kind     ErrorKind
	Message  string
	Position int // byte offset into the source, -1 when unknown
}

func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Kind, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func parseErrorf(pos int, format string, args ...any) *Error {
	return &Error{Kind: ParseError, Message: fmt.Sprintf(format, args...), Position: pos}
}

func evalErrorf(format string, args ...any) *Error {
	return &Error{Kind: EvalError, Message: fmt.Sprintf(format, args...), Position: -1}
}

// KindOf reports the kind of err when it is an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}
