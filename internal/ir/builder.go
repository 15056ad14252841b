package ir

import "fmt"

// Var is a local variable handle. Variables are resolved to SSA values by the
// builder: a use yields the value most recently defined for the variable and
// emits no instruction.
type Var uint32

// BuilderContext holds the builder state that can be reused from one
// function to the next.
type BuilderContext struct {
	vars     []Value
	varTypes []Type
}

// NewBuilderContext returns an empty context
func NewBuilderContext() *BuilderContext {
	return &BuilderContext{}
}

func (c *BuilderContext) reset() {
	c.vars = c.vars[:0]
	c.varTypes = c.varTypes[:0]
}

// Builder appends instructions to a Func.
// Misuse (wrong operand types, use of an undefined variable, appending after
// Finalize) is a programming error and panics.
type Builder struct {
	fn        *Func
	ctx       *BuilderContext
	returned  bool
	finalized bool
}

// NewBuilder starts building into fn, which should be empty apart from its
// signature.
func NewBuilder(fn *Func, ctx *BuilderContext) *Builder {
	ctx.reset()
	return &Builder{fn: fn, ctx: ctx}
}

// Func returns the function being built
func (b *Builder) Func() *Func {
	return b.fn
}

// AppendParams creates one value per signature parameter
func (b *Builder) AppendParams() []Value {
	b.mustBeOpen()
	if len(b.fn.Params) != 0 {
		panic("ir: parameters already appended")
	}
	for _, p := range b.fn.Sig.Params {
		b.fn.Params = append(b.fn.Params, b.fn.newValue(p.Type, -1))
	}
	return b.fn.Params
}

// F64Const materializes a float constant
func (b *Builder) F64Const(x float64) Value {
	return b.append(Inst{Op: OpF64Const, Imm: x, Args: [2]Value{ValueInvalid, ValueInvalid}}, F64)
}

// Load reads a value of type t from base+offset
func (b *Builder) Load(t Type, base Value, offset int32) Value {
	b.mustHaveType(base, I64)
	return b.append(Inst{Op: OpLoad, Args: [2]Value{base, ValueInvalid}, Offset: offset}, t)
}

// Store writes v to base+offset
func (b *Builder) Store(v, base Value, offset int32) {
	b.mustHaveType(v, F64)
	b.mustHaveType(base, I64)
	b.append(Inst{Op: OpStore, Args: [2]Value{v, base}, Offset: offset}, TypeInvalid)
}

func (b *Builder) FAdd(x, y Value) Value { return b.binary(OpFAdd, x, y) }
func (b *Builder) FSub(x, y Value) Value { return b.binary(OpFSub, x, y) }
func (b *Builder) FMul(x, y Value) Value { return b.binary(OpFMul, x, y) }
func (b *Builder) FDiv(x, y Value) Value { return b.binary(OpFDiv, x, y) }

func (b *Builder) binary(op Opcode, x, y Value) Value {
	b.mustHaveType(x, F64)
	b.mustHaveType(y, F64)
	return b.append(Inst{Op: op, Args: [2]Value{x, y}}, F64)
}

// DeclareVar introduces a variable of type t
func (b *Builder) DeclareVar(t Type) Var {
	b.ctx.vars = append(b.ctx.vars, ValueInvalid)
	b.ctx.varTypes = append(b.ctx.varTypes, t)
	return Var(len(b.ctx.vars) - 1)
}

// DefVar binds val to v
func (b *Builder) DefVar(v Var, val Value) {
	if int(v) >= len(b.ctx.vars) {
		panic(fmt.Sprintf("ir: variable %d not declared", v))
	}
	b.mustHaveType(val, b.ctx.varTypes[v])
	b.ctx.vars[v] = val
}

// UseVar returns the value currently bound to v
func (b *Builder) UseVar(v Var) Value {
	if int(v) >= len(b.ctx.vars) {
		panic(fmt.Sprintf("ir: variable %d not declared", v))
	}
	val := b.ctx.vars[v]
	if val == ValueInvalid {
		panic(fmt.Sprintf("ir: variable %d used before definition", v))
	}
	return val
}

// Return terminates the block
func (b *Builder) Return() {
	b.append(Inst{Op: OpReturn, Args: [2]Value{ValueInvalid, ValueInvalid}}, TypeInvalid)
	b.returned = true
}

// Finalize closes the builder. The function must have been terminated.
func (b *Builder) Finalize() {
	if !b.returned {
		panic("ir: finalizing a block without a return")
	}
	b.finalized = true
}

func (b *Builder) append(in Inst, result Type) Value {
	b.mustBeOpen()
	in.Result = ValueInvalid
	if result != TypeInvalid {
		in.Result = b.fn.newValue(result, len(b.fn.Insts))
	}
	b.fn.Insts = append(b.fn.Insts, in)
	return in.Result
}

func (b *Builder) mustBeOpen() {
	if b.finalized {
		panic("ir: builder already finalized")
	}
	if b.returned {
		panic("ir: block already terminated")
	}
}

func (b *Builder) mustHaveType(v Value, t Type) {
	if got := b.fn.ValueType(v); got != t {
		panic(fmt.Sprintf("ir: %v has type %v, want %v", v, got, t))
	}
}
