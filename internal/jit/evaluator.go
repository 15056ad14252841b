package jit

import "github.com/xyproto/stackjit/internal/ir"

// ElementSize is the width in bytes of one stack slot
const ElementSize = 8

// evaluator runs a program symbolically: the abstract stack holds IR values
// instead of numbers, and every operation is appended to the builder.
type evaluator struct {
	b        *ir.Builder
	base     ir.Value // pointer to the caller's top of stack
	stack    *deque
	consumed int
}

func newEvaluator(b *ir.Builder, base ir.Value, stack *deque) *evaluator {
	stack.reset()
	return &evaluator{b: b, base: base, stack: stack}
}

var binaryOps = map[rune]func(b *ir.Builder, x, y ir.Value) ir.Value{
	'+': (*ir.Builder).FAdd,
	'-': (*ir.Builder).FSub,
	'*': (*ir.Builder).FMul,
	'/': (*ir.Builder).FDiv,
}

// literal returns the value of a hex digit instruction
func literal(r rune) (float64, bool) {
	switch {
	case r >= '0' && r <= '9':
		return float64(r - '0'), true
	case r >= 'a' && r <= 'f':
		return float64(r - 'a' + 10), true
	}
	return 0, false
}

// translate builds the body of program into fn, reusing ctx and stack
func translate(fn *ir.Func, ctx *ir.BuilderContext, stack *deque, program string) (base ir.Value, consumed, returned int) {
	fn.Reset()
	fn.Sig = ir.PointerSignature()
	b := ir.NewBuilder(fn, ctx)
	base = b.AppendParams()[0]
	e := newEvaluator(b, base, stack)
	e.run(program)
	returned = e.flush()
	b.Finalize()
	return base, e.consumed, returned
}

// IR returns the textual IR that program compiles to
func IR(program string) string {
	fn := ir.NewFunc()
	translate(fn, ir.NewBuilderContext(), &deque{}, program)
	return fn.String()
}

func (e *evaluator) run(program string) {
	for _, r := range program {
		e.step(r)
	}
}

func (e *evaluator) step(r rune) {
	if x, ok := literal(r); ok {
		e.stack.pushBack(e.b.F64Const(x))
		return
	}
	if op, ok := binaryOps[r]; ok {
		e.ensureDepth(2)
		x := e.stack.popBack()
		y := e.stack.popBack()
		e.stack.pushBack(op(e.b, x, y))
		return
	}

	switch r {
	case '~':
		e.ensureDepth(1)
		e.stack.popBack()
	case ':':
		e.ensureDepth(1)
		v := e.b.DeclareVar(ir.F64)
		e.b.DefVar(v, e.stack.popBack())
		e.stack.pushBack(e.b.UseVar(v))
		e.stack.pushBack(e.b.UseVar(v))
	case '$':
		e.ensureDepth(2)
		n := e.stack.len()
		x, y := e.stack.at(n-1), e.stack.at(n-2)
		e.stack.set(n-1, y)
		e.stack.set(n-2, x)
	case '@':
		e.ensureDepth(3)
		n := e.stack.len()
		a, b, c := e.stack.at(n-3), e.stack.at(n-2), e.stack.at(n-1)
		e.stack.set(n-3, b)
		e.stack.set(n-2, c)
		e.stack.set(n-1, a)
	}
}
