package interp

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyproto/stackjit/internal/codegen"
	"github.com/xyproto/stackjit/internal/ir"
)

func TestModuleRunsFunction(t *testing.T) {
	m := NewModule()
	defer m.Close()
	assert.Equal(t, "interp", m.Name())

	fn := ir.NewFunc()
	fn.Sig = ir.PointerSignature()
	b := ir.NewBuilder(fn, ir.NewBuilderContext())
	base := b.AppendParams()[0]
	x := b.Load(ir.F64, base, 0)
	y := b.Load(ir.F64, base, -8)
	b.Store(b.FSub(x, y), base, -8)
	b.Store(b.FDiv(x, b.F64Const(4)), base, 0)
	b.Return()
	b.Finalize()

	id, err := m.DeclareAnonymousFunction(ir.PointerSignature())
	require.NoError(t, err)
	require.NoError(t, m.DefineFunction(id, fn))
	fn.Reset()

	_, err = m.FinalizedFunction(id)
	assert.ErrorIs(t, err, codegen.ErrNotFinalized)
	require.NoError(t, m.FinalizeDefinitions())
	code, err := m.FinalizedFunction(id)
	require.NoError(t, err)
	assert.Equal(t, 8, code.Size())

	mem := []float64{3, 10}
	require.NoError(t, code.Call(unsafe.Pointer(&mem[1])))
	assert.Equal(t, []float64{7, 2.5}, mem)

	require.NoError(t, m.Close())
	assert.ErrorIs(t, code.Call(unsafe.Pointer(&mem[1])), codegen.ErrClosed)
	assert.Equal(t, []float64{7, 2.5}, mem)
}

func TestModuleClosed(t *testing.T) {
	m := NewModule()
	require.NoError(t, m.Close())
	_, err := m.DeclareAnonymousFunction(ir.PointerSignature())
	assert.ErrorIs(t, err, codegen.ErrClosed)
	assert.ErrorIs(t, m.FinalizeDefinitions(), codegen.ErrClosed)
}

func TestRunRejectsSignature(t *testing.T) {
	assert.ErrorIs(t, Run(ir.NewFunc(), nil), codegen.ErrUnsupportedSignature)
}
