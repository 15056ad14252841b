// Package ir is the intermediate form handed to code generation backends: a
// single straight-line block of float arithmetic, constants and memory
// accesses relative to pointer parameters.
package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every verification failure
var ErrInvalid = errors.New("invalid function")

// Type is the type of an IR value
type Type uint8

const (
	TypeInvalid Type = iota
	I64
	F64
)

func (t Type) String() string {
	switch t {
	case I64:
		return "i64"
	case F64:
		return "f64"
	default:
		return "invalid"
	}
}

// Bytes returns the in-memory width of the type
func (t Type) Bytes() int {
	switch t {
	case I64, F64:
		return 8
	default:
		return 0
	}
}

// Value is an SSA value handle, unique within one Func
type Value uint32

// ValueInvalid marks an unused operand or result slot
const ValueInvalid = ^Value(0)

func (v Value) String() string {
	if v == ValueInvalid {
		return "v?"
	}
	return fmt.Sprintf("v%d", uint32(v))
}

// Opcode identifies an instruction
type Opcode uint8

const (
	OpF64Const Opcode = iota
	OpLoad
	OpStore
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpReturn
)

func (op Opcode) String() string {
	switch op {
	case OpF64Const:
		return "f64const"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpFAdd:
		return "fadd"
	case OpFSub:
		return "fsub"
	case OpFMul:
		return "fmul"
	case OpFDiv:
		return "fdiv"
	case OpReturn:
		return "return"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// IsBinary reports whether op takes two float operands and produces one
func (op Opcode) IsBinary() bool {
	switch op {
	case OpFAdd, OpFSub, OpFMul, OpFDiv:
		return true
	}
	return false
}

// Inst is one instruction.
//
// Operand layout by opcode:
//   - OpF64Const: Imm
//   - OpLoad: Args[0] base pointer, Offset
//   - OpStore: Args[0] stored value, Args[1] base pointer, Offset
//   - binary: Args[0] left, Args[1] right
//   - OpReturn: nothing
type Inst struct {
	Op     Opcode
	Result Value
	Args   [2]Value
	Imm    float64
	Offset int32
}

// Operands returns the values read by the instruction
func (in *Inst) Operands() []Value {
	switch {
	case in.Op == OpLoad:
		return in.Args[:1]
	case in.Op == OpStore, in.Op.IsBinary():
		return in.Args[:2]
	}
	return nil
}

// AbiParam is one parameter or return slot of a signature
type AbiParam struct {
	Type Type
}

// Signature declares the parameters and returns of a function
type Signature struct {
	Params  []AbiParam
	Returns []AbiParam
}

// PointerSignature is the signature of every compiled stack routine: a single
// pointer to the caller's stack window and no return values.
func PointerSignature() Signature {
	return Signature{Params: []AbiParam{{Type: I64}}}
}

// Equal reports whether both signatures declare the same slots
func (s Signature) Equal(o Signature) bool {
	if len(s.Params) != len(o.Params) || len(s.Returns) != len(o.Returns) {
		return false
	}
	for i := range s.Params {
		if s.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range s.Returns {
		if s.Returns[i] != o.Returns[i] {
			return false
		}
	}
	return true
}

func (s Signature) String() string {
	join := func(ps []AbiParam) string {
		names := make([]string, len(ps))
		for i, p := range ps {
			names[i] = p.Type.String()
		}
		return strings.Join(names, ", ")
	}
	return "(" + join(s.Params) + ") -> (" + join(s.Returns) + ")"
}

// Func is a function body under construction or ready for a backend.
// A Func is reusable: Reset clears it while keeping allocated capacity.
type Func struct {
	Sig    Signature
	Params []Value
	Insts  []Inst

	types []Type
	defs  []int
}

// NewFunc returns an empty function with no signature
func NewFunc() *Func {
	return &Func{}
}

// Reset clears the function for reuse
func (f *Func) Reset() {
	f.Sig = Signature{}
	f.Params = f.Params[:0]
	f.Insts = f.Insts[:0]
	f.types = f.types[:0]
	f.defs = f.defs[:0]
}

// NumValues returns the number of values defined so far
func (f *Func) NumValues() int {
	return len(f.types)
}

// ValueType returns the type of v, or TypeInvalid if v is not defined
func (f *Func) ValueType(v Value) Type {
	if int(v) >= len(f.types) {
		return TypeInvalid
	}
	return f.types[v]
}

// Def returns the index of the instruction defining v, -1 for a parameter,
// and -2 if v is not defined in f.
func (f *Func) Def(v Value) int {
	if int(v) >= len(f.defs) {
		return -2
	}
	return f.defs[v]
}

func (f *Func) newValue(t Type, def int) Value {
	v := Value(len(f.types))
	f.types = append(f.types, t)
	f.defs = append(f.defs, def)
	return v
}

// Clone returns a deep copy that shares no memory with f
func (f *Func) Clone() *Func {
	return &Func{
		Sig: Signature{
			Params:  append([]AbiParam(nil), f.Sig.Params...),
			Returns: append([]AbiParam(nil), f.Sig.Returns...),
		},
		Params: append([]Value(nil), f.Params...),
		Insts:  append([]Inst(nil), f.Insts...),
		types:  append([]Type(nil), f.types...),
		defs:   append([]int(nil), f.defs...),
	}
}

// Footprint summarizes the memory accesses a function makes through one
// pointer parameter, in byte offsets.
type Footprint struct {
	Loads    int
	Stores   int
	MinLoad  int32
	MaxLoad  int32
	MinStore int32
	MaxStore int32
}

// Footprint computes the accesses made through base
func (f *Func) Footprint(base Value) Footprint {
	var fp Footprint
	for i := range f.Insts {
		in := &f.Insts[i]
		switch in.Op {
		case OpLoad:
			if in.Args[0] != base {
				continue
			}
			if fp.Loads == 0 || in.Offset < fp.MinLoad {
				fp.MinLoad = in.Offset
			}
			if fp.Loads == 0 || in.Offset > fp.MaxLoad {
				fp.MaxLoad = in.Offset
			}
			fp.Loads++
		case OpStore:
			if in.Args[1] != base {
				continue
			}
			if fp.Stores == 0 || in.Offset < fp.MinStore {
				fp.MinStore = in.Offset
			}
			if fp.Stores == 0 || in.Offset > fp.MaxStore {
				fp.MaxStore = in.Offset
			}
			fp.Stores++
		}
	}
	return fp
}
