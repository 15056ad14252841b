// Package jit compiles programs of the postfix stack language into routines
// that operate on a caller-owned stack of float64 values.
//
// A program is a string of single-rune instructions:
//
//	0-9 a-f   push the constant 0 to 15
//	+ - * /   pop x (top) and y, push x OP y
//	~         drop the top value
//	:         duplicate the top value
//	$         swap the two top values
//	@         rotate the three top values: [a, b, c] -> [b, c, a]
//
// Any other rune is ignored. Instructions needing more values than the
// program has pushed read them from the caller's stack.
package jit

import (
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/xyproto/stackjit/internal/codegen"
	"github.com/xyproto/stackjit/internal/ir"
	"github.com/xyproto/stackjit/internal/panicerr"
)

// Jit compiles programs into routines owned by its backend module. The IR
// function and builder state are reused from one compilation to the next;
// Compile calls are serialized.
type Jit struct {
	mu     sync.Mutex
	cfg    Config
	module codegen.Module
	fn     *ir.Func
	ctx    *ir.BuilderContext
	stack  deque
	closed bool
}

// New creates a Jit with its configuration taken from the environment and
// then from opts.
func New(opts ...Option) (*Jit, error) {
	return newJit(newConfig(opts...))
}

func newJit(cfg Config) (*Jit, error) {
	var trace = cfg.trace
	if !cfg.TraceCode {
		trace = nil
	}
	module, err := OpenBackend(cfg.Backend, trace)
	if err != nil {
		return nil, err
	}
	return &Jit{
		cfg:    cfg,
		module: module,
		fn:     ir.NewFunc(),
		ctx:    ir.NewBuilderContext(),
	}, nil
}

// Backend returns the name of the backend module
func (j *Jit) Backend() string {
	return j.module.Name()
}

// Compile translates program into a routine. On error no routine is
// returned. The routine is valid until j is closed.
func (j *Jit) Compile(program string) (*Routine, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil, ErrClosed
	}

	var r *Routine
	err := panicerr.Recover("jit", func() error {
		var err error
		r, err = j.compile(program)
		return err
	})
	j.fn.Reset()
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (j *Jit) compile(program string) (*Routine, error) {
	base, consumed, returned := translate(j.fn, j.ctx, &j.stack, program)
	r := &Routine{
		ID:        ulid.Make(),
		Consumed:  consumed,
		Returned:  returned,
		sig:       j.fn.Sig,
		footprint: j.fn.Footprint(base),
		program:   program,
	}
	if j.cfg.Verbose {
		j.cfg.logf("compiling %q: consumed=%d returned=%d\n%s", program, r.Consumed, r.Returned, j.fn)
	}

	id, err := j.module.DeclareAnonymousFunction(j.fn.Sig)
	if err != nil {
		return nil, &CompileError{Stage: StageDeclare, Program: program, Err: err}
	}
	if err := j.module.DefineFunction(id, j.fn); err != nil {
		return nil, &CompileError{Stage: StageDefine, Program: program, Err: err}
	}
	if err := j.module.FinalizeDefinitions(); err != nil {
		return nil, &CompileError{Stage: StageFinalize, Program: program, Err: err}
	}
	code, err := j.module.FinalizedFunction(id)
	if err != nil {
		return nil, &CompileError{Stage: StageLookup, Program: program, Err: err}
	}
	r.code = code
	r.backend = j.module.Name()
	if j.cfg.Verbose {
		j.cfg.logf("compiled %q as %v: %s code of size %d", program, r.ID, r.backend, code.Size())
	}
	return r, nil
}

// Close releases every routine compiled by j
func (j *Jit) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.module.Close()
}
