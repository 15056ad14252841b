package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/xyproto/stackjit/internal/jit"
)

// A JIT compiler for a tiny postfix stack language

const versionString = "stackjit 1.0.0"

func main() {
	// Flags default to the environment so that they override it
	cfg := jit.ConfigFromEnv()

	var stackFlag = flag.String("stack", "", "initial stack, bottom first (e.g. \"1 2.5 3\")")
	var backendFlag = flag.String("backend", cfg.Backend, "code generation backend ("+strings.Join(jit.Backends, ", ")+")")
	var verbose = flag.Bool("v", cfg.Verbose, "verbose mode (log every compiled program and its IR)")
	var verboseLong = flag.Bool("verbose", cfg.Verbose, "verbose mode (log every compiled program and its IR)")
	var traceFlag = flag.Bool("trace", cfg.TraceCode, "print the machine code emitted by the native backend")
	var dumpFlag = flag.Bool("dump", false, "dump the compiled routine descriptor")
	var versionShort = flag.Bool("V", false, "print version information and exit")
	var version = flag.Bool("version", false, "print version information and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: stackjit [flags] [command] [program]\n\n")
		printCommands(flag.CommandLine.Output())
		fmt.Fprintf(flag.CommandLine.Output(), "\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version || *versionShort {
		fmt.Println(versionString)
		os.Exit(0)
	}

	stack, err := parseStack(*stackFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -stack: %v\n", err)
		os.Exit(2)
	}

	ctx := &CommandContext{
		Args:  flag.Args(),
		Stack: stack,
		Dump:  *dumpFlag,
		Out:   os.Stdout,
		Options: []jit.Option{
			jit.WithBackend(*backendFlag),
			jit.WithVerbose(*verbose || *verboseLong),
			jit.WithTraceCode(*traceFlag),
		},
	}
	if err := RunCLI(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
