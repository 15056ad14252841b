package jit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xyproto/stackjit/internal/ir"
)

// lower runs program through the evaluator and returns the resulting IR with
// the counters.
func lower(program string) (fn *ir.Func, consumed, returned int) {
	fn = ir.NewFunc()
	_, consumed, returned = translate(fn, ir.NewBuilderContext(), &deque{}, program)
	return fn, consumed, returned
}

func TestEvaluatorUnderflow(t *testing.T) {
	fn, consumed, returned := lower("+")
	assert.Equal(t, 2, consumed)
	assert.Equal(t, 1, returned)
	assert.Equal(t, `function(i64) -> () {
block0(v0: i64):
    v1 = load.f64 v0+0
    v2 = load.f64 v0-8
    v3 = fadd v1, v2
    store v3, v0-8
    return
}
`, fn.String())
}

func TestIR(t *testing.T) {
	fn, _, _ := lower("12$~")
	assert.Equal(t, fn.String(), IR("12$~"))
}

func TestEvaluatorTopIsLeftOperand(t *testing.T) {
	fn, consumed, returned := lower("52-")
	assert.Zero(t, consumed)
	assert.Equal(t, 1, returned)
	assert.Equal(t, `function(i64) -> () {
block0(v0: i64):
    v1 = f64const 5
    v2 = f64const 2
    v3 = fsub v2, v1
    store v3, v0+8
    return
}
`, fn.String())
}

func TestEvaluatorDuplicateSharesValue(t *testing.T) {
	fn, consumed, returned := lower("a:")
	assert.Zero(t, consumed)
	assert.Equal(t, 2, returned)
	assert.Equal(t, `function(i64) -> () {
block0(v0: i64):
    v1 = f64const 10
    store v1, v0+8
    store v1, v0+16
    return
}
`, fn.String())
}

func TestEvaluatorStoresAbovePointer(t *testing.T) {
	fn, consumed, returned := lower("1@")
	assert.Equal(t, 2, consumed)
	assert.Equal(t, 3, returned)
	assert.Equal(t, `function(i64) -> () {
block0(v0: i64):
    v1 = f64const 1
    v2 = load.f64 v0+0
    v3 = load.f64 v0-8
    store v2, v0-8
    store v1, v0+0
    store v3, v0+8
    return
}
`, fn.String())
}

func TestEvaluatorCounters(t *testing.T) {
	for _, tc := range []struct {
		program            string
		consumed, returned int
	}{
		{"", 0, 0},
		{"xyz, wq!", 0, 0},
		{"ABCDEF", 0, 0},
		{"0123456789abcdef", 0, 16},
		{"~", 1, 0},
		{"~~~", 3, 0},
		{":", 1, 2},
		{"$", 2, 2},
		{"@", 3, 3},
		{"1@", 2, 3},
		{"12+", 0, 1},
		{"1+", 1, 1},
		{"++", 3, 1},
		{"*2", 2, 2},
		{"312*32*+::**:$~", 0, 2},
	} {
		t.Run(tc.program, func(t *testing.T) {
			fn, consumed, returned := lower(tc.program)
			assert.Equal(t, tc.consumed, consumed, "consumed")
			assert.Equal(t, tc.returned, returned, "returned")
			assert.NoError(t, fn.Verify())
		})
	}
}
