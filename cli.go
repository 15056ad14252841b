package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/xyproto/stackjit/internal/jit"
)

// cli.go - subcommands of the stackjit command
//
// - stackjit <program>          (shorthand for run)
// - stackjit run <program>      (compile, run against -stack, print the stack)
// - stackjit ir <program>       (print the IR the program compiles to)
// - stackjit asm <program>      (print the native machine code listing)
// - stackjit repl / stackjit    (interactive session with a persistent stack)

// CommandContext holds the execution context for a CLI command
type CommandContext struct {
	Args    []string
	Stack   []float64
	Dump    bool
	Out     io.Writer
	Options []jit.Option
}

type command struct {
	name string
	help string
	run  func(ctx *CommandContext, program string) error
}

var commands = []command{
	{"run", "compile a program and run it against -stack", cmdRun},
	{"ir", "print the IR of a program", cmdIR},
	{"asm", "print the machine code of a program", cmdAsm},
	{"repl", "start an interactive session", func(ctx *CommandContext, _ string) error { return cmdRepl(ctx) }},
}

func printCommands(w io.Writer) {
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-6s %s\n", c.name, c.help)
	}
}

// RunCLI dispatches ctx.Args to a command. Without arguments it starts the
// REPL; a single argument that is not a command is a program to run.
func RunCLI(ctx *CommandContext) error {
	if len(ctx.Args) == 0 {
		return cmdRepl(ctx)
	}
	for _, c := range commands {
		if ctx.Args[0] == c.name {
			return c.run(ctx, strings.Join(ctx.Args[1:], " "))
		}
	}
	return cmdRun(ctx, strings.Join(ctx.Args, " "))
}

func cmdRun(ctx *CommandContext, program string) error {
	j, err := jit.New(ctx.Options...)
	if err != nil {
		return err
	}
	defer j.Close()

	r, err := j.Compile(program)
	if err != nil {
		return err
	}
	if ctx.Dump {
		spew.Fdump(ctx.Out, r.Descriptor())
	}
	stack, err := r.Apply(ctx.Stack)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, formatStack(stack))
	return nil
}

func cmdIR(ctx *CommandContext, program string) error {
	fmt.Fprint(ctx.Out, jit.IR(program))
	return nil
}

func cmdAsm(ctx *CommandContext, program string) error {
	opts := append(append([]jit.Option(nil), ctx.Options...),
		jit.WithBackend(jit.BackendNative),
		jit.WithTraceCode(true),
		jit.WithTrace(ctx.Out))
	j, err := jit.New(opts...)
	if err != nil {
		return err
	}
	defer j.Close()
	_, err = j.Compile(program)
	return err
}
