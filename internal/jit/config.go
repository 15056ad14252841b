package jit

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/xyproto/env/v2"
)

// Config controls how a Jit compiles
type Config struct {
	Backend   string // auto, native or interp
	Verbose   bool   // log every compiled program with its IR
	TraceCode bool   // print every emitted machine instruction
	PoolSize  int    // number of Jit instances in a Pool

	logf  func(mess string, args ...interface{})
	trace io.Writer
}

// ConfigFromEnv returns the configuration given by STACKJIT_BACKEND,
// STACKJIT_VERBOSE, STACKJIT_TRACE and STACKJIT_POOL. The environment is
// read again on every call.
func ConfigFromEnv() Config {
	env.Load()
	return Config{
		Backend:   env.Str("STACKJIT_BACKEND", BackendAuto),
		Verbose:   env.Bool("STACKJIT_VERBOSE"),
		TraceCode: env.Bool("STACKJIT_TRACE"),
		PoolSize:  env.Int("STACKJIT_POOL", runtime.NumCPU()),
	}
}

func stderrLogf(mess string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, mess+"\n", args...)
}

// Option changes a Config
type Option interface{ apply(cfg *Config) }

func (cfg *Config) apply(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(cfg)
		}
	}
	if cfg.logf == nil {
		cfg.logf = stderrLogf
	}
	if cfg.trace == nil {
		cfg.trace = os.Stderr
	}
	if cfg.PoolSize < 1 {
		cfg.PoolSize = 1
	}
}

func newConfig(opts ...Option) Config {
	cfg := ConfigFromEnv()
	cfg.apply(opts...)
	return cfg
}

func WithBackend(name string) Option                               { return withBackend(name) }
func WithVerbose(on bool) Option                                   { return withVerbose(on) }
func WithTraceCode(on bool) Option                                 { return withTraceCode(on) }
func WithTrace(w io.Writer) Option                                 { return traceOption{w} }
func WithPoolSize(n int) Option                                    { return withPoolSize(n) }
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

type withBackend string
type withVerbose bool
type withTraceCode bool
type withPoolSize int
type withLogfn func(mess string, args ...interface{})
type traceOption struct{ io.Writer }

func (name withBackend) apply(cfg *Config) { cfg.Backend = string(name) }
func (on withVerbose) apply(cfg *Config)   { cfg.Verbose = bool(on) }
func (on withTraceCode) apply(cfg *Config) { cfg.TraceCode = bool(on) }
func (n withPoolSize) apply(cfg *Config)   { cfg.PoolSize = int(n) }
func (logfn withLogfn) apply(cfg *Config)  { cfg.logf = logfn }
func (t traceOption) apply(cfg *Config)    { cfg.trace = t.Writer }
