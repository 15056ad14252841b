package ir

import "fmt"

// Verify checks that f is a well formed single block: parameters match the
// signature, every operand is defined before use and has the right type, and
// the block ends with its only return.
func (f *Func) Verify() error {
	if len(f.Params) != len(f.Sig.Params) {
		return fmt.Errorf("%w: %d parameters for signature %v", ErrInvalid, len(f.Params), f.Sig)
	}
	for i, p := range f.Params {
		if f.Def(p) != -1 || f.ValueType(p) != f.Sig.Params[i].Type {
			return fmt.Errorf("%w: parameter %d (%v) does not match signature %v", ErrInvalid, i, p, f.Sig)
		}
	}
	if len(f.Insts) == 0 || f.Insts[len(f.Insts)-1].Op != OpReturn {
		return fmt.Errorf("%w: block is not terminated by return", ErrInvalid)
	}
	if len(f.Sig.Returns) != 0 {
		return fmt.Errorf("%w: return values are not supported", ErrInvalid)
	}

	for i := range f.Insts {
		in := &f.Insts[i]
		if in.Op == OpReturn && i != len(f.Insts)-1 {
			return fmt.Errorf("%w: return at %d before end of block", ErrInvalid, i)
		}
		want := [2]Type{}
		switch {
		case in.Op == OpLoad:
			want[0] = I64
		case in.Op == OpStore:
			want = [2]Type{F64, I64}
		case in.Op.IsBinary():
			want = [2]Type{F64, F64}
		case in.Op == OpF64Const, in.Op == OpReturn:
		default:
			return fmt.Errorf("%w: unknown opcode %v at %d", ErrInvalid, in.Op, i)
		}
		for j, arg := range in.Operands() {
			def := f.Def(arg)
			if def == -2 || def >= i {
				return fmt.Errorf("%w: %v used at %d before definition", ErrInvalid, arg, i)
			}
			if got := f.ValueType(arg); got != want[j] {
				return fmt.Errorf("%w: %v operand %d is %v, want %v", ErrInvalid, in.Op, j, got, want[j])
			}
		}
		hasResult := in.Op != OpStore && in.Op != OpReturn
		if hasResult != (in.Result != ValueInvalid) {
			return fmt.Errorf("%w: %v at %d has result %v", ErrInvalid, in.Op, i, in.Result)
		}
		if hasResult && f.Def(in.Result) != i {
			return fmt.Errorf("%w: %v is not defined by instruction %d", ErrInvalid, in.Result, i)
		}
	}
	return nil
}
