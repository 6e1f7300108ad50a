// Package golisp is the public embedding API: it wires the lexer/builder,
// tree-walking evaluator, and bytecode VM behind a single Interpreter type,
// the way a host program (the REPL, the `run`/`compile` CLI commands, or an
// external embedder) drives golisp without reaching into internal/*.
package golisp

import (
	"time"

	"go.uber.org/zap"

	"github.com/dphaener/golisp/internal/bytecode"
	"github.com/dphaener/golisp/internal/cache"
	"github.com/dphaener/golisp/internal/compiler/ast"
	"github.com/dphaener/golisp/internal/environment"
	"github.com/dphaener/golisp/internal/obs"
	"github.com/dphaener/golisp/internal/value"
)

// Interpreter holds the state shared across a sequence of source
// evaluations: the top-level environment (with its scoping mode), a parse
// cache, and a logger. A single Interpreter is not safe for concurrent use;
// see spec §5 — golisp never re-enters a Frame/Env from another goroutine.
type Interpreter struct {
	Env      *environment.Env
	cache    *cache.ParseCache
	logger   *zap.SugaredLogger
	optimize bool
}

// Option configures a new Interpreter.
type Option func(*Interpreter)

// WithScoping selects lexical or dynamic ufunc scoping for the lifetime of
// the Interpreter.
func WithScoping(mode environment.Scoping) Option {
	return func(in *Interpreter) {
		in.Env = in.Env.WithMode(mode)
	}
}

// WithPrecision sets the number of significant digits Number values round
// to. It must be called before any source is evaluated, since it mutates
// the package-level value.Precision.
func WithPrecision(precision int32) Option {
	return func(in *Interpreter) {
		if precision > 0 {
			value.Precision = precision
		}
	}
}

// WithLogger attaches a zap SugaredLogger for Debug-level eval/VM tracing.
// Pass obs.New(false) (the default no-op logger) to stay silent.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithCache attaches a parse cache, letting a REPL or watch-mode loop skip
// re-tokenizing source it has already seen.
func WithCache(c *cache.ParseCache) Option {
	return func(in *Interpreter) { in.cache = c }
}

// WithStdinFunc binds "--stdin" in the top-level environment to a builtin
// callable, the convention Read.Eval and readInst.Exec check before
// falling back to the real terminal. Host programs (and scripted REPL
// tests) use this to inject canned input lines.
func WithStdinFunc(fn value.BuiltinFunc) Option {
	return func(in *Interpreter) {
		in.Env.Set("--stdin", &value.Builtin{Name: "--stdin", Fn: fn})
	}
}

// WithOptimize enables ast.ConstantFold and ast.IdentifyTailCalls before
// RunVM/Compile lower a parsed Node. Tree-walking Eval is unaffected (the
// optimizers only change bytecode shape and frame-depth behavior).
func WithOptimize(enabled bool) Option {
	return func(in *Interpreter) { in.optimize = enabled }
}

// New builds an Interpreter with a fresh top-level environment under
// lexical scoping and an 11-significant-digit default precision, as
// modified by opts.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		Env:    environment.New(),
		logger: obs.New(false),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// parse builds (or fetches from cache) the AST for src.
func (in *Interpreter) parse(src string) (ast.Node, error) {
	if in.cache != nil {
		return in.cache.Parse(src)
	}
	return ast.ParseSource(src)
}

// Eval tree-walks src against the Interpreter's environment, returning its
// final value. Repeated calls share state: a `set` in one call is visible
// to the next.
func (in *Interpreter) Eval(src string) (value.Value, error) {
	start := time.Now()
	node, err := in.parse(src)
	if err != nil {
		return nil, err
	}
	in.logger.Debugw("eval start", "mode", "tree-walk", "len", len(src))
	v, err := node.Eval(in.Env)
	in.logger.Debugw("eval done", "mode", "tree-walk", "elapsed", time.Since(start), "err", err)
	return v, err
}

// Compile parses and lowers src to a bytecode instruction sequence, applying
// the AST- and bytecode-level optimizers when WithOptimize(true) was set.
// It does not run the result; see RunVM and the `compile` CLI command.
func (in *Interpreter) Compile(src string) ([]bytecode.Inst, error) {
	node, err := in.parse(src)
	if err != nil {
		return nil, err
	}
	if in.optimize {
		node = ast.ConstantFold(node)
		node = ast.IdentifyTailCalls(node)
	}
	lw := bytecode.NewLowerer()
	insts := node.Lower(lw)
	if in.optimize {
		insts = bytecode.RemoveRedundantStackOps(insts)
	}
	return insts, nil
}

// RunVM lowers src to bytecode and runs it on a fresh VM sharing the
// Interpreter's environment and scoping mode, returning the run's final
// value and Stats.
func (in *Interpreter) RunVM(src string) (value.Value, *bytecode.Stats, error) {
	start := time.Now()
	insts, err := in.Compile(src)
	if err != nil {
		return nil, nil, err
	}
	vm := bytecode.New(insts, in.Env, in.Env.Mode)
	in.logger.Debugw("vm run start", "mode", "bytecode", "insts", len(insts))
	v, err := vm.Run()
	in.logger.Debugw("vm run done", "mode", "bytecode", "elapsed", time.Since(start), "stats", vm.Stats, "err", err)
	return v, vm.Stats, err
}
