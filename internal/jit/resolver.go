package jit

import "github.com/xyproto/stackjit/internal/ir"

// ensureDepth loads values from below the caller's stack pointer until the
// abstract stack holds at least n of them. Each load reads one slot further
// down and becomes the new bottom.
func (e *evaluator) ensureDepth(n int) {
	for e.stack.len() < n {
		v := e.b.Load(ir.F64, e.base, int32(-ElementSize*e.consumed))
		e.consumed++
		e.stack.pushFront(v)
	}
}

// flush stores the abstract stack back into caller memory and terminates the
// function. The bottom value lands on the lowest slot consumed; values past
// the consumed ones are written above the original pointer. It returns the
// number of values stored.
func (e *evaluator) flush() int {
	for i, v := range e.stack.values() {
		e.b.Store(v, e.base, int32(-ElementSize*(e.consumed-i-1)))
	}
	e.b.Return()
	return e.stack.len()
}
