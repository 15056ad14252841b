package jit

import (
	"errors"
	"fmt"
)

var (
	// ErrStackUnderflow is returned by Apply when the stack holds fewer
	// values than the routine consumes.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrSignatureMismatch is returned by Call when a routine's signature or
	// memory footprint disagrees with its counters.
	ErrSignatureMismatch = errors.New("routine does not match its descriptor")

	ErrClosed = errors.New("jit closed")
)

// Stage is the step of a compilation handled by the backend
type Stage int

const (
	StageDeclare Stage = iota
	StageDefine
	StageFinalize
	StageLookup
)

func (s Stage) String() string {
	switch s {
	case StageDeclare:
		return "declare"
	case StageDefine:
		return "define"
	case StageFinalize:
		return "finalize"
	case StageLookup:
		return "lookup"
	default:
		return "unknown"
	}
}

// CompileError reports a backend failure while compiling a program. No
// routine is returned alongside it.
type CompileError struct {
	Stage   Stage
	Program string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %q: %s: %v", e.Program, e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
