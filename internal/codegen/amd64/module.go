package amd64

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"unsafe"

	"github.com/xyproto/stackjit/internal/codegen"
	"github.com/xyproto/stackjit/internal/engine"
	"github.com/xyproto/stackjit/internal/execmem"
	"github.com/xyproto/stackjit/internal/ir"
)

// Module lowers functions to x86-64 and keeps their code pages mapped until
// Close.
type Module struct {
	decls  codegen.Declarations[*routine]
	trace  io.Writer
	closed bool
}

type routine struct {
	prog *Program
	page *execmem.Page
	fv   *funcval
}

// NewModule creates a native module for the host. trace, when not nil,
// receives a listing of every lowered instruction.
func NewModule(trace io.Writer) (*Module, error) {
	if host := engine.Host(); !host.SupportsNative() {
		return nil, fmt.Errorf("%w: no native backend for %v", execmem.ErrUnsupported, host)
	}
	return &Module{trace: trace}, nil
}

func (m *Module) Name() string {
	return "native"
}

func (m *Module) DeclareAnonymousFunction(sig ir.Signature) (codegen.FuncID, error) {
	if m.closed {
		return 0, codegen.ErrClosed
	}
	return m.decls.Declare(sig)
}

func (m *Module) DefineFunction(id codegen.FuncID, fn *ir.Func) error {
	if m.closed {
		return codegen.ErrClosed
	}
	return m.decls.Define(id, fn, func(fn *ir.Func) (*routine, error) {
		prog, err := Lower(fn, m.trace)
		if err != nil {
			return nil, err
		}
		return &routine{prog: prog}, nil
	})
}

func (m *Module) FinalizeDefinitions() error {
	if m.closed {
		return codegen.ErrClosed
	}
	return m.decls.Pending(func(id codegen.FuncID, r **routine) error {
		page, err := execmem.Load((*r).prog.Code)
		if err != nil {
			return fmt.Errorf("loading function %d: %w", id, err)
		}
		(*r).page = page
		(*r).fv = &funcval{pc: page.Addr()}
		return nil
	})
}

func (m *Module) FinalizedFunction(id codegen.FuncID) (codegen.Code, error) {
	if m.closed {
		return nil, codegen.ErrClosed
	}
	r, err := m.decls.Finalized(id)
	if err != nil {
		return nil, err
	}
	return &nativeCode{r: r}, nil
}

// Close unmaps every code page. Code obtained from the module fails with
// codegen.ErrClosed afterwards.
func (m *Module) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	var errs []error
	m.decls.Each(func(r **routine) {
		if (*r).page != nil {
			errs = append(errs, (*r).page.Free())
		}
	})
	m.decls.Reset()
	return errors.Join(errs...)
}

type nativeCode struct {
	r *routine
}

// Size returns the length of the mapped code, 0 once the module is closed
func (c *nativeCode) Size() int {
	return c.r.page.Len()
}

func (c *nativeCode) FrameSlots() int {
	return c.r.prog.FrameSlots
}

func (c *nativeCode) Spills() int {
	return c.r.prog.Spills
}

func (c *nativeCode) Call(stack unsafe.Pointer) error {
	if c.r.page.Addr() == 0 {
		return codegen.ErrClosed
	}
	if n := c.r.prog.FrameSlots; n > 0 {
		frame := make([]float64, n)
		callNative(c.r.fv, stack, unsafe.Pointer(&frame[0]))
		runtime.KeepAlive(frame)
		return nil
	}
	callNative(c.r.fv, stack, nil)
	return nil
}
