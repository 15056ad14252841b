package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/xyproto/stackjit/internal/jit"
)

const (
	historyFile = ".stackjit_history"
	prompt      = "stackjit> "
)

// session is the state of a REPL: one Jit and the stack it runs against
type session struct {
	j     *jit.Jit
	stack []float64
	out   io.Writer
	dump  bool
}

// eval handles one line of input. It returns false when the session is over.
func (s *session) eval(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return false
	case ":help":
		fmt.Fprintln(s.out, "Commands: :stack :clear :push :ir :quit. Anything else is run as a program.")
	case ":stack":
		fmt.Fprintln(s.out, formatStack(s.stack))
	case ":clear":
		s.stack = s.stack[:0]
	case ":push":
		values, err := parseStack(strings.Join(fields[1:], " "))
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			break
		}
		s.stack = append(s.stack, values...)
		fmt.Fprintln(s.out, formatStack(s.stack))
	case ":ir":
		fmt.Fprint(s.out, jit.IR(strings.TrimSpace(strings.TrimPrefix(line, ":ir"))))
	default:
		s.run(line)
	}
	return true
}

// run compiles line and applies it to the session's stack. Lines starting
// with ':' that are not commands are programs too, as ':' duplicates.
func (s *session) run(line string) {
	r, err := s.j.Compile(line)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	if s.dump {
		fmt.Fprintln(s.out, r)
	}
	stack, err := r.Apply(s.stack)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	s.stack = stack
	fmt.Fprintln(s.out, formatStack(s.stack))
}

func cmdRepl(ctx *CommandContext) error {
	j, err := jit.New(ctx.Options...)
	if err != nil {
		return err
	}
	defer j.Close()
	s := &session{j: j, stack: append([]float64(nil), ctx.Stack...), out: ctx.Out, dump: ctx.Dump}

	fmt.Fprintf(ctx.Out, "%s (%s backend). Type :quit to exit.\n", versionString, j.Backend())

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(ctx.Out)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if !s.eval(line) {
			return nil
		}
	}
}
