package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample(t *testing.T) *Func {
	t.Helper()
	fn := NewFunc()
	fn.Sig = PointerSignature()
	b := NewBuilder(fn, NewBuilderContext())
	base := b.AppendParams()[0]
	two := b.F64Const(2)
	below := b.Load(F64, base, -8)
	sum := b.FAdd(two, below)
	v := b.DeclareVar(F64)
	b.DefVar(v, sum)
	b.Store(b.UseVar(v), base, 0)
	b.Store(b.UseVar(v), base, 8)
	b.Return()
	b.Finalize()
	return fn
}

func TestBuilderProducesVerifiedFunc(t *testing.T) {
	fn := buildSample(t)
	require.NoError(t, fn.Verify())
	assert.Equal(t, 4, fn.NumValues(), "param, const, load, fadd")
	assert.Len(t, fn.Insts, 6)
	assert.Equal(t, -1, fn.Def(fn.Params[0]))
	assert.Equal(t, 2, fn.Def(Value(3)))
	assert.Equal(t, -2, fn.Def(Value(99)))
}

func TestPrint(t *testing.T) {
	fn := buildSample(t)
	assert.Equal(t, `function(i64) -> () {
block0(v0: i64):
    v1 = f64const 2
    v2 = load.f64 v0-8
    v3 = fadd v1, v2
    store v3, v0+0
    store v3, v0+8
    return
}
`, fn.String())
}

func TestFootprint(t *testing.T) {
	fn := buildSample(t)
	fp := fn.Footprint(fn.Params[0])
	assert.Equal(t, Footprint{
		Loads: 1, MinLoad: -8, MaxLoad: -8,
		Stores: 2, MinStore: 0, MaxStore: 8,
	}, fp)
}

func TestCloneIsIndependent(t *testing.T) {
	fn := buildSample(t)
	cp := fn.Clone()
	fn.Reset()
	assert.Empty(t, fn.Insts)
	assert.Equal(t, 0, fn.NumValues())
	require.NoError(t, cp.Verify())
	assert.Len(t, cp.Insts, 6)
}

func TestVerifyRejects(t *testing.T) {
	t.Run("missing return", func(t *testing.T) {
		fn := NewFunc()
		fn.Sig = PointerSignature()
		b := NewBuilder(fn, NewBuilderContext())
		b.AppendParams()
		b.F64Const(1)
		assert.ErrorIs(t, fn.Verify(), ErrInvalid)
	})

	t.Run("use before definition", func(t *testing.T) {
		fn := buildSample(t)
		fn.Insts[2].Args[1] = Value(3)
		assert.ErrorIs(t, fn.Verify(), ErrInvalid)
	})

	t.Run("return values", func(t *testing.T) {
		fn := buildSample(t)
		fn.Sig.Returns = []AbiParam{{Type: F64}}
		assert.ErrorIs(t, fn.Verify(), ErrInvalid)
	})

	t.Run("parameter mismatch", func(t *testing.T) {
		fn := buildSample(t)
		fn.Sig.Params = append(fn.Sig.Params, AbiParam{Type: I64})
		assert.ErrorIs(t, fn.Verify(), ErrInvalid)
	})
}

func TestBuilderMisusePanics(t *testing.T) {
	fn := NewFunc()
	fn.Sig = PointerSignature()
	b := NewBuilder(fn, NewBuilderContext())
	base := b.AppendParams()[0]

	assert.Panics(t, func() { b.FAdd(base, base) }, "pointer operands")
	assert.Panics(t, func() { b.UseVar(b.DeclareVar(F64)) }, "undefined variable")
	assert.Panics(t, func() { b.Finalize() }, "no return")

	b.Return()
	assert.Panics(t, func() { b.F64Const(1) }, "after return")
}

func TestSignature(t *testing.T) {
	sig := PointerSignature()
	assert.True(t, sig.Equal(PointerSignature()))
	assert.False(t, sig.Equal(Signature{}))
	assert.Equal(t, "(i64) -> ()", sig.String())
}
