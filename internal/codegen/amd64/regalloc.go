package amd64

import (
	"github.com/xyproto/stackjit/internal/ir"
)

// Register allocation for a single straight-line block.
//
// Values live in xmm0..xmm13. xmm14 is the scratch register for spilled
// values and xmm15 is never touched (Go's ABI keeps it zero). When every
// register is taken, the value whose last use is farthest away is spilled to
// an 8-byte slot of the spill frame addressed through frameBase.

const numAllocatable = 14

type location struct {
	reg  int // -1 when not in a register
	slot int // -1 when not spilled
}

var nowhere = location{reg: -1, slot: -1}

// RegisterAllocator assigns registers and spill slots while the block is
// emitted in order.
type RegisterAllocator struct {
	out        *Out
	lastUse    []int
	loc        []location
	regs       [numAllocatable]ir.Value
	freeSlots  []int
	frameSlots int
	spills     int
}

// NewRegisterAllocator prepares allocation for a block whose values have the
// given last uses.
func NewRegisterAllocator(out *Out, lastUse []int) *RegisterAllocator {
	ra := &RegisterAllocator{
		out:     out,
		lastUse: lastUse,
		loc:     make([]location, len(lastUse)),
	}
	for i := range ra.loc {
		ra.loc[i] = nowhere
	}
	for i := range ra.regs {
		ra.regs[i] = ir.ValueInvalid
	}
	return ra
}

// Location returns where v currently lives
func (ra *RegisterAllocator) Location(v ir.Value) (reg, slot int) {
	l := ra.loc[v]
	return l.reg, l.slot
}

// Alloc returns a free register, spilling a value if needed. Values in
// pinned are never chosen for spilling.
func (ra *RegisterAllocator) Alloc(pinned ...ir.Value) int {
	for r, v := range ra.regs {
		if v == ir.ValueInvalid {
			return r
		}
	}

	victim := -1
	for r, v := range ra.regs {
		if isPinned(v, pinned) {
			continue
		}
		if victim < 0 || ra.lastUse[v] > ra.lastUse[ra.regs[victim]] {
			victim = r
		}
	}
	if victim < 0 {
		panic("amd64: every register is pinned")
	}
	ra.spill(victim)
	return victim
}

func isPinned(v ir.Value, pinned []ir.Value) bool {
	for _, p := range pinned {
		if p == v {
			return true
		}
	}
	return false
}

func (ra *RegisterAllocator) spill(r int) {
	v := ra.regs[r]
	slot := ra.takeSlot()
	ra.out.MovXmmToMem(xmmName(r), frameBase, slotOffset(slot))
	ra.loc[v] = location{reg: -1, slot: slot}
	ra.regs[r] = ir.ValueInvalid
	ra.spills++
}

func (ra *RegisterAllocator) takeSlot() int {
	if n := len(ra.freeSlots); n > 0 {
		slot := ra.freeSlots[n-1]
		ra.freeSlots = ra.freeSlots[:n-1]
		return slot
	}
	ra.frameSlots++
	return ra.frameSlots - 1
}

// Assign records that v now lives in register r
func (ra *RegisterAllocator) Assign(v ir.Value, r int) {
	if old := ra.regs[r]; old != ir.ValueInvalid && old != v {
		ra.loc[old] = nowhere
	}
	ra.regs[r] = v
	ra.loc[v] = location{reg: r, slot: -1}
}

// Release frees the register or slot of v if position is its last use
func (ra *RegisterAllocator) Release(v ir.Value, position int) {
	if ra.lastUse[v] != position {
		return
	}
	l := ra.loc[v]
	if l.reg >= 0 && ra.regs[l.reg] == v {
		ra.regs[l.reg] = ir.ValueInvalid
	}
	if l.slot >= 0 {
		ra.freeSlots = append(ra.freeSlots, l.slot)
	}
	ra.loc[v] = nowhere
}

// FrameSlots returns the number of spill slots the block needs
func (ra *RegisterAllocator) FrameSlots() int {
	return ra.frameSlots
}

// Spills returns the number of spill stores emitted
func (ra *RegisterAllocator) Spills() int {
	return ra.spills
}

func slotOffset(slot int) int32 {
	return int32(slot * 8)
}

// liveness marks the instructions whose effects reach a store or the return
// and computes every value's last use among them.
func liveness(fn *ir.Func) (live []bool, lastUse []int) {
	live = make([]bool, len(fn.Insts))
	needed := make([]bool, fn.NumValues())
	for i := len(fn.Insts) - 1; i >= 0; i-- {
		in := &fn.Insts[i]
		switch {
		case in.Op == ir.OpStore, in.Op == ir.OpReturn:
			live[i] = true
		case in.Result != ir.ValueInvalid:
			live[i] = needed[in.Result]
		}
		if live[i] {
			for _, arg := range in.Operands() {
				needed[arg] = true
			}
		}
	}

	lastUse = make([]int, fn.NumValues())
	for v := range lastUse {
		lastUse[v] = fn.Def(ir.Value(v))
	}
	for i := range fn.Insts {
		if !live[i] {
			continue
		}
		for _, arg := range fn.Insts[i].Operands() {
			lastUse[arg] = i
		}
	}
	return live, lastUse
}
