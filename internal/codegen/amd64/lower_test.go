package amd64

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyproto/stackjit/internal/codegen"
	"github.com/xyproto/stackjit/internal/ir"
)

// build creates a pointer-signature function whose body is written by f
func build(f func(b *ir.Builder, base ir.Value)) *ir.Func {
	fn := ir.NewFunc()
	fn.Sig = ir.PointerSignature()
	b := ir.NewBuilder(fn, ir.NewBuilderContext())
	base := b.AppendParams()[0]
	f(b, base)
	b.Return()
	b.Finalize()
	return fn
}

// wideChain defines sixteen constants before using any of them, which is
// more than the allocatable registers.
func wideChain(b *ir.Builder, base ir.Value) {
	var cs [16]ir.Value
	for i := range cs {
		cs[i] = b.F64Const(float64(i + 1))
	}
	acc := b.FMul(cs[15], cs[14])
	for i := 13; i >= 0; i-- {
		acc = b.FDiv(cs[i], acc)
	}
	b.Store(acc, base, 0)
}

func wideChainResult() float64 {
	acc := 16.0 * 15.0
	for i := 13; i >= 0; i-- {
		acc = float64(i+1) / acc
	}
	return acc
}

func TestLowerStoreConstant(t *testing.T) {
	fn := build(func(b *ir.Builder, base ir.Value) {
		b.Store(b.F64Const(2), base, 0)
	})
	prog, err := Lower(fn, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x49, 0xBB, 0, 0, 0, 0, 0, 0, 0, 0x40, // mov r11, bits(2.0)
		0x66, 0x49, 0x0F, 0x6E, 0xC3, // movq xmm0, r11
		0xF2, 0x0F, 0x11, 0x00, // movsd [rax], xmm0
		0xC3,
	}, prog.Code)
	assert.Zero(t, prog.FrameSlots)
	assert.Zero(t, prog.Spills)
}

func TestLowerReusesDyingOperand(t *testing.T) {
	fn := build(func(b *ir.Builder, base ir.Value) {
		below := b.Load(ir.F64, base, -8)
		b.Store(b.FAdd(below, b.F64Const(1)), base, -8)
	})
	prog, err := Lower(fn, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0xF2, 0x0F, 0x10, 0x40, 0xF8, // movsd xmm0, [rax-8]
		0x49, 0xBB, 0, 0, 0, 0, 0, 0, 0xF0, 0x3F, // mov r11, bits(1.0)
		0x66, 0x49, 0x0F, 0x6E, 0xCB, // movq xmm1, r11
		0xF2, 0x0F, 0x58, 0xC1, // addsd xmm0, xmm1
		0xF2, 0x0F, 0x11, 0x40, 0xF8, // movsd [rax-8], xmm0
		0xC3,
	}, prog.Code)
}

func TestLowerSkipsDeadValues(t *testing.T) {
	fn := build(func(b *ir.Builder, base ir.Value) {
		x := b.F64Const(3)
		y := b.Load(ir.F64, base, -16)
		b.FMul(x, y)
	})
	prog, err := Lower(fn, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC3}, prog.Code)
	live, _ := liveness(fn)
	assert.Equal(t, []bool{false, false, false, true}, live)
}

func TestLowerSpills(t *testing.T) {
	fn := build(wideChain)
	prog, err := Lower(fn, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, prog.Spills)
	assert.Equal(t, 2, prog.FrameSlots)
}

func TestLowerTrace(t *testing.T) {
	var trace bytes.Buffer
	fn := build(func(b *ir.Builder, base ir.Value) {
		b.Store(b.Load(ir.F64, base, -8), base, 0)
	})
	_, err := Lower(fn, &trace)
	require.NoError(t, err)
	assert.Equal(t, "movsd xmm0, [rax-8]: f2 0f 10 40 f8\n"+
		"movsd [rax+0], xmm0: f2 0f 11 00\n"+
		"ret: c3\n", trace.String())
}

func TestLowerRejectsSignature(t *testing.T) {
	fn := ir.NewFunc()
	b := ir.NewBuilder(fn, ir.NewBuilderContext())
	b.F64Const(1)
	b.Return()
	_, err := Lower(fn, nil)
	assert.ErrorIs(t, err, codegen.ErrUnsupportedSignature)
}

func TestLiveness(t *testing.T) {
	fn := build(func(b *ir.Builder, base ir.Value) {
		below := b.Load(ir.F64, base, -8) // 0
		one := b.F64Const(1)              // 1
		b.F64Const(7)                     // 2, dead
		sum := b.FAdd(below, one)         // 3
		b.Store(sum, base, 0)             // 4
		b.Store(below, base, 8)           // 5
	})
	live, lastUse := liveness(fn)
	assert.Equal(t, []bool{true, true, false, true, true, true, true}, live)
	assert.Equal(t, []int{5, 5, 3, 2, 4}, lastUse, "an unread value ends where it starts")
}

func TestRegisterAllocatorReusesSlots(t *testing.T) {
	out := NewOut(nil)
	lastUse := []int{20, 30, 40}
	ra := NewRegisterAllocator(out, lastUse)
	for r := 0; r < numAllocatable; r++ {
		ra.regs[r] = 0
	}
	ra.Assign(ir.Value(1), 0)
	ra.Assign(ir.Value(2), 1)

	r := ra.Alloc(ir.Value(2))
	assert.Equal(t, 0, r, "value 1 is the farthest unpinned use")
	reg, slot := ra.Location(ir.Value(1))
	assert.Equal(t, -1, reg)
	assert.Equal(t, 0, slot)

	ra.Release(ir.Value(1), 30)
	assert.Equal(t, 1, ra.FrameSlots())
	ra.regs[0] = ir.Value(0)
	ra.Alloc(ir.Value(0))
	_, slot = ra.Location(ir.Value(2))
	assert.Equal(t, 0, slot, "released slot is reused")
	assert.Equal(t, 1, ra.FrameSlots())
	assert.Equal(t, 2, ra.Spills())
}
