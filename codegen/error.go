package codegen

import "github.com/pkg/errors"

// CompileError is one semantic error reported against a source line. The
// compiler accumulates these rather than aborting on the first one (see
// Generate, which returns them all).
type CompileError struct {
	Line int
	Kind string
	Msg  string
}

func (e *CompileError) Error() string {
	return errors.Errorf("error in line %d: %s", e.Line, e.Msg).Error()
}

func newError(line int, kind, format string, args ...interface{}) *CompileError {
	return &CompileError{Line: line, Kind: kind, Msg: errors.Errorf(format, args...).Error()}
}
