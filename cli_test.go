package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyproto/stackjit/internal/jit"
)

func TestParseStack(t *testing.T) {
	stack, err := parseStack("1 2.5,-3\t1e2")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3, 100}, stack)

	stack, err = parseStack("")
	require.NoError(t, err)
	assert.Empty(t, stack)

	_, err = parseStack("1 two")
	assert.Error(t, err)
}

func TestFormatStack(t *testing.T) {
	assert.Equal(t, "(empty)", formatStack(nil))
	assert.Equal(t, "3 0.5 -2", formatStack([]float64{3, 0.5, -2}))
}

func testContext(args ...string) (*CommandContext, *bytes.Buffer) {
	var out bytes.Buffer
	return &CommandContext{
		Args:    args,
		Out:     &out,
		Options: []jit.Option{jit.WithBackend(jit.BackendInterp), jit.WithVerbose(false), jit.WithTraceCode(false)},
	}, &out
}

func TestRunCLI(t *testing.T) {
	ctx, out := testContext("312*32*+::**:$~")
	ctx.Stack = []float64{1}
	require.NoError(t, RunCLI(ctx))
	assert.Equal(t, "1 3 512\n", out.String())

	ctx, out = testContext("run", "+")
	ctx.Stack = []float64{5, 7}
	require.NoError(t, RunCLI(ctx))
	assert.Equal(t, "12\n", out.String())

	ctx, _ = testContext("run", "+")
	assert.ErrorIs(t, RunCLI(ctx), jit.ErrStackUnderflow)
}

func TestRunCLIDump(t *testing.T) {
	ctx, out := testContext("23$")
	ctx.Dump = true
	require.NoError(t, RunCLI(ctx))
	assert.Contains(t, out.String(), `Program: (string) (len=3) "23$"`)
	assert.Contains(t, out.String(), "Returned: (int) 2")
	assert.Contains(t, out.String(), "FrameSlots: (int) 0")
	assert.Contains(t, out.String(), "3 2\n")
}

func TestIRCommand(t *testing.T) {
	ctx, out := testContext("ir", "1")
	require.NoError(t, RunCLI(ctx))
	assert.Equal(t, `function(i64) -> () {
block0(v0: i64):
    v1 = f64const 1
    store v1, v0+8
    return
}
`, out.String())
}

func TestSession(t *testing.T) {
	j, err := jit.New(jit.WithBackend(jit.BackendInterp), jit.WithVerbose(false))
	require.NoError(t, err)
	defer j.Close()

	var out bytes.Buffer
	s := &session{j: j, out: &out}
	for _, line := range []string{"12", "+", ":push 4 5", "@", "", ":stack", "~~~", ":clear", ":stack", ":help"} {
		assert.True(t, s.eval(line), line)
	}
	assert.Equal(t, "1 2\n"+
		"3\n"+
		"3 4 5\n"+
		"4 5 3\n"+
		"4 5 3\n"+
		"(empty)\n"+
		"(empty)\n"+
		"Commands: :stack :clear :push :ir :quit. Anything else is run as a program.\n", out.String())

	out.Reset()
	for _, line := range []string{":push 3", ":*", ":+", "2:$/"} {
		assert.True(t, s.eval(line), line)
	}
	assert.Equal(t, "3\n9\n18\n18 1\n", out.String())

	out.Reset()
	assert.True(t, s.eval(":clear"))
	assert.True(t, s.eval("+"))
	assert.Contains(t, out.String(), "stack underflow")
	assert.False(t, s.eval(":quit"))
}
