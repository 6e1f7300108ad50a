// Package obs provides the structured logger shared across golisp.
// `pkg/golisp.Interpreter` logs a Debug line at the start and at the end of
// each `Eval`/`RunVM` call (source length or instruction count at the start;
// elapsed time, VM Stats and error at the end); it does not trace individual AST node
// evaluations or VM instruction steps, since doing so would mean widening
// every `Node.Eval`/`Inst.Exec` signature to carry a logger purely for
// tracing.
package obs

import (
	"go.uber.org/zap"
)

// New builds a SugaredLogger. When verbose is false it is a no-op logger, so
// normal runs pay no logging cost; when true it matches zap's development
// preset (console encoding, debug level, caller info).
func New(verbose bool) *zap.SugaredLogger {
	if !verbose {
		return zap.NewNop().Sugar()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
