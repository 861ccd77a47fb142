package compiler

import (
	"errors"
	"fmt"
)

// Error kinds. Code generation wraps these with the offending name, so
// callers should match with errors.Is.
var (
	ErrSyntax               = errors.New("syntax error")
	ErrUnknownVariable      = errors.New("unknown variable name")
	ErrUnknownFunction      = errors.New("unknown function referenced")
	ErrArityMismatch        = errors.New("incorrect # arguments passed")
	ErrUnsupportedOperator  = errors.New("invalid binary operator")
	ErrFunctionRedefinition = errors.New("function already defined")
	ErrInvalidFunction      = errors.New("function failed verification")
)

// SyntaxError is returned by the parser. It matches ErrSyntax.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// ErrorList collects the diagnostics of a whole run.
type ErrorList struct {
	errs []error
}

func (e *ErrorList) Add(err error) {
	e.errs = append(e.errs, err)
}

func (e *ErrorList) Errors() []error {
	return e.errs
}

// Err joins every collected error, or returns nil if there are none.
func (e *ErrorList) Err() error {
	return errors.Join(e.errs...)
}
