// Package interp runs IR functions without generating machine code. It is
// the backend for hosts without a native one, and the reference the native
// backend is checked against.
package interp

import (
	"errors"
	"unsafe"

	"github.com/xyproto/stackjit/internal/codegen"
	"github.com/xyproto/stackjit/internal/ir"
)

// Module keeps a private copy of every defined function
type Module struct {
	decls  codegen.Declarations[*ir.Func]
	closed bool
}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "interp"
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
	return m.decls.Define(id, fn, func(fn *ir.Func) (*ir.Func, error) {
		return fn.Clone(), nil
	})
}

func (m *Module) FinalizeDefinitions() error {
	if m.closed {
		return codegen.ErrClosed
	}
	return m.decls.Pending(func(codegen.FuncID, **ir.Func) error { return nil })
}

func (m *Module) FinalizedFunction(id codegen.FuncID) (codegen.Code, error) {
	if m.closed {
		return nil, codegen.ErrClosed
	}
	fn, err := m.decls.Finalized(id)
	if err != nil {
		return nil, err
	}
	return &Code{fn: fn, m: m}, nil
}

// Close drops every function. Code obtained from the module fails with
// codegen.ErrClosed afterwards.
func (m *Module) Close() error {
	m.closed = true
	m.decls.Reset()
	return nil
}

// Code evaluates one function
type Code struct {
	fn *ir.Func
	m  *Module
}

// Size returns the number of instructions
func (c *Code) Size() int {
	return len(c.fn.Insts)
}

// Call evaluates the function with stack bound to its parameter
func (c *Code) Call(stack unsafe.Pointer) error {
	if c.m.closed {
		return codegen.ErrClosed
	}
	return Run(c.fn, stack)
}

var errBadOperand = errors.New("interp: operand is not a float")

// Run evaluates fn with base as its pointer parameter
func Run(fn *ir.Func, base unsafe.Pointer) error {
	if err := codegen.CheckSignature(fn.Sig); err != nil {
		return err
	}
	vals := make([]float64, fn.NumValues())
	for i := range fn.Insts {
		in := &fn.Insts[i]
		switch in.Op {
		case ir.OpF64Const:
			vals[in.Result] = in.Imm
		case ir.OpLoad:
			if in.Args[0] != fn.Params[0] {
				return errBadOperand
			}
			vals[in.Result] = *(*float64)(unsafe.Add(base, in.Offset))
		case ir.OpStore:
			if in.Args[1] != fn.Params[0] {
				return errBadOperand
			}
			*(*float64)(unsafe.Add(base, in.Offset)) = vals[in.Args[0]]
		case ir.OpFAdd:
			vals[in.Result] = vals[in.Args[0]] + vals[in.Args[1]]
		case ir.OpFSub:
			vals[in.Result] = vals[in.Args[0]] - vals[in.Args[1]]
		case ir.OpFMul:
			vals[in.Result] = vals[in.Args[0]] * vals[in.Args[1]]
		case ir.OpFDiv:
			vals[in.Result] = vals[in.Args[0]] / vals[in.Args[1]]
		case ir.OpReturn:
			return nil
		}
	}
	return nil
}
