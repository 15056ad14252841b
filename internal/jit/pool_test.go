package jit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolCompileAll(t *testing.T) {
	programs := []string{"12+", "23$", "123@", "+", "312*32*+::**:$~", "~", ":*", "@@@"}
	stack := []float64{4, 5, 6}

	for _, backend := range testBackends() {
		t.Run(backend, func(t *testing.T) {
			p, err := NewPool(WithBackend(backend), WithPoolSize(3), WithVerbose(false), WithTraceCode(false))
			require.NoError(t, err)
			defer p.Close()
			assert.Equal(t, 3, p.Size())

			routines, err := p.CompileAll(context.Background(), programs)
			require.NoError(t, err)
			require.Len(t, routines, len(programs))
			for i, r := range routines {
				assert.Equal(t, programs[i], r.Program())
				got, err := r.Apply(stack)
				require.NoError(t, err, programs[i])
				assert.Equal(t, reference(programs[i], stack), got, programs[i])
			}
		})
	}
}

func TestPoolCanceled(t *testing.T) {
	p, err := NewPool(WithBackend(BackendInterp), WithPoolSize(2))
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	routines, err := p.CompileAll(ctx, []string{"1", "2", "3"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, routines)
}

func TestPoolClosed(t *testing.T) {
	p, err := NewPool(WithBackend(BackendInterp), WithPoolSize(1))
	require.NoError(t, err)
	require.NoError(t, p.Close())
	_, err = p.Compile(context.Background(), "1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPoolRejectsUnknownBackend(t *testing.T) {
	_, err := NewPool(WithBackend("gpu"), WithPoolSize(2))
	assert.Error(t, err)
}
