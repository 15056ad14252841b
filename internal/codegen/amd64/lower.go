package amd64

import (
	"fmt"
	"io"

	"github.com/xyproto/stackjit/internal/codegen"
	"github.com/xyproto/stackjit/internal/ir"
)

// Registers fixed by the calling convention. Lowered routines follow Go's
// register ABI on amd64: the first two pointer arguments arrive in rax and
// rbx, r11 is free to clobber, and r14, r15, rsp, rbp and xmm15 are preserved
// by never being written.
const (
	stackBase  = "rax"
	frameBase  = "rbx"
	scratchGP  = "r11"
	scratchXMM = "xmm14"
)

// Program is a lowered routine
type Program struct {
	Code       []byte
	FrameSlots int // 8-byte spill slots the caller must provide in rbx
	Spills     int
}

// Lower translates fn, which must have passed ir.Func.Verify, into machine
// code. trace, when not nil, receives a listing of the emitted instructions.
func Lower(fn *ir.Func, trace io.Writer) (*Program, error) {
	if err := codegen.CheckSignature(fn.Sig); err != nil {
		return nil, err
	}
	base := fn.Params[0]

	out := NewOut(trace)
	live, lastUse := liveness(fn)
	ra := NewRegisterAllocator(out, lastUse)

	for i := range fn.Insts {
		if !live[i] {
			continue
		}
		in := &fn.Insts[i]
		switch {
		case in.Op == ir.OpF64Const:
			r := ra.Alloc()
			out.MovConstToXmm(xmmName(r), scratchGP, in.Imm)
			ra.Assign(in.Result, r)

		case in.Op == ir.OpLoad:
			if in.Args[0] != base {
				return nil, fmt.Errorf("%w: load through %v", ir.ErrInvalid, in.Args[0])
			}
			r := ra.Alloc()
			out.MovMemToXmm(xmmName(r), stackBase, in.Offset)
			ra.Assign(in.Result, r)

		case in.Op.IsBinary():
			lowerBinary(out, ra, in, i)

		case in.Op == ir.OpStore:
			if in.Args[1] != base {
				return nil, fmt.Errorf("%w: store through %v", ir.ErrInvalid, in.Args[1])
			}
			v := in.Args[0]
			if reg, slot := ra.Location(v); reg >= 0 {
				out.MovXmmToMem(xmmName(reg), stackBase, in.Offset)
			} else {
				out.MovMemToXmm(scratchXMM, frameBase, slotOffset(slot))
				out.MovXmmToMem(scratchXMM, stackBase, in.Offset)
			}
			ra.Release(v, i)

		case in.Op == ir.OpReturn:
			out.Ret()
		}
	}

	return &Program{
		Code:       append([]byte(nil), out.Bytes()...),
		FrameSlots: ra.FrameSlots(),
		Spills:     ra.Spills(),
	}, nil
}

var scalarOps = map[ir.Opcode]uint8{
	ir.OpFAdd: opAddsd,
	ir.OpFSub: opSubsd,
	ir.OpFMul: opMulsd,
	ir.OpFDiv: opDivsd,
}

// lowerBinary computes x OP y into a register: x's own register when x dies
// here, a fresh copy of x otherwise.
func lowerBinary(out *Out, ra *RegisterAllocator, in *ir.Inst, i int) {
	x, y := in.Args[0], in.Args[1]
	op := scalarOps[in.Op]

	xreg, xslot := ra.Location(x)
	dst := xreg
	if xreg < 0 || ra.lastUse[x] != i {
		dst = ra.Alloc(x, y)
		if xreg >= 0 {
			out.MovXmmToXmm(xmmName(dst), xmmName(xreg))
		} else {
			out.MovMemToXmm(xmmName(dst), frameBase, slotOffset(xslot))
		}
	}

	if yreg, yslot := ra.Location(y); yreg >= 0 {
		out.scalarXmm(op, xmmName(dst), xmmName(yreg))
	} else {
		out.scalarMem(op, xmmName(dst), frameBase, slotOffset(yslot))
	}

	if dst != xreg {
		ra.Release(x, i)
	}
	if y != x {
		ra.Release(y, i)
	}
	ra.Assign(in.Result, dst)
}
