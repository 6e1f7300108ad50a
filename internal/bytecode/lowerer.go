package bytecode

import "github.com/google/uuid"

// Lowerer carries the state needed while translating an AST into bytecode:
// currently just fresh label-id generation, so nested if/while/lambda sites
// never collide.
type Lowerer struct{}

// NewLowerer returns a ready-to-use Lowerer.
func NewLowerer() *Lowerer {
	return &Lowerer{}
}

// FreshLabel returns a label name unique to this call, prefixed with prefix
// for readability in dumps (e.g. "else-3f9c1a2b").
func (lw *Lowerer) FreshLabel(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// Concat flattens a sequence of instruction slices into one, the common
// pattern every Lower method uses to splice child emissions together.
func Concat(parts ...[]Inst) []Inst {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]Inst, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
