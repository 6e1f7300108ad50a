// Package ast defines the golisp AST node types and the two operations
// every node supports: tree-walking Eval against an Environment, and Lower
// into a bytecode.Inst sequence for the VM. It also owns the few pieces
// that would otherwise create an ast<->bytecode import cycle: the quoted
// AST value type, the tree-walk closure value type, and the handful of
// custom bytecode.Inst implementations (Parse/Eval/Read) that need
// environment access beyond the plain CallPyFunc convention.
package ast

import (
	"github.com/dphaener/golisp/internal/bytecode"
	"github.com/dphaener/golisp/internal/environment"
	"github.com/dphaener/golisp/internal/value"
)

// Node is any AST node: literal, reference, operator, control flow, or
// definition. Every node can be evaluated directly against an Environment
// or lowered to a bytecode instruction sequence.
type Node interface {
	Eval(env *environment.Env) (value.Value, error)
	Lower(lw *bytecode.Lowerer) []bytecode.Inst
}

// Atom is a literal value leaf.
type Atom struct {
	V value.Value
}

// NilLit, TrueLit, FalseLit are the reserved-word singletons.
type NilLit struct{}
type TrueLit struct{}
type FalseLit struct{}

// Var is a variable read.
type Var struct {
	Name string
}

// Get is an explicit read, identical in behavior to Var.
type Get struct {
	Name string
}

// Suite executes children in order; its value is that of the last child,
// or Nil if it has none.
type Suite struct {
	Children []Node
}

// Set writes Expr's value to the innermost environment scope.
type Set struct {
	Name string
	Expr Node
}

// Setg writes Expr's value to the outermost environment scope.
type Setg struct {
	Name string
	Expr Node
}

// Setc writes Expr's value to the second-from-outermost environment scope.
type Setc struct {
	Name string
	Expr Node
}

// UnOp is any of the unary operators (pos, neg, not), table-dispatched on Op.
type UnOp struct {
	Op string
	X  Node
}

// BinOp is any of the binary operators (arithmetic, comparison, logical),
// table-dispatched on Op. Per the lowering convention the right operand is
// emitted before the left.
type BinOp struct {
	Op string
	L  Node
	R  Node
}

// Cons builds a Cell from A (car) and B (cdr).
type Cons struct {
	A Node
	B Node
}

// Car extracts the car of a Cell.
type Car struct {
	X Node
}

// Cdr extracts the cdr of a Cell.
type Cdr struct {
	X Node
}

// List builds a proper cons list terminated by Nil from Items, in order.
type List struct {
	Items []Node
}

// IfElse evaluates Cond, then Then or Else (Else may be nil).
type IfElse struct {
	Cond Node
	Then Node
	Else Node
}

// While repeatedly evaluates Cond then Body while Cond is truthy.
type While struct {
	Cond Node
	Body Node
}

// Assert signals a ProgramError carrying Msg's value if Cond is falsy.
type Assert struct {
	Cond Node
	Msg  Node
}

// Call invokes the ufunc bound to Name with Args evaluated left-to-right.
type Call struct {
	Name string
	Args []Node
}

// TailCall is the marker IdentifyTailCalls rewrites a tail-position Call
// into; it lowers to PushTailFunc instead of PushFunc.
type TailCall struct {
	Name string
	Args []Node
}

// Lambda produces a Function value capturing the defining environment's
// closure scopes.
type Lambda struct {
	Params []string
	Body   Node
}

// HostCall invokes a fixed host builtin (print, printf, printfs, format)
// with Args evaluated left-to-right, table-dispatched on Name.
type HostCall struct {
	Name string
	Args []Node
}

// Parse evaluates Expr to a String, tokenizes and builds it, and returns the
// result as a Quoted value.
type Parse struct {
	Expr Node
}

// Eval evaluates Expr expecting a Quoted value, then evaluates the wrapped
// Node against the current environment.
type Eval struct {
	Expr Node
}

// Read reads one line from the host input source, or from the env binding
// named "--stdin" when present (a host-supplied injection hook for tests).
type Read struct{}

// Unimplemented is what the builder emits for a form it does not recognize.
// Per spec, such forms are accepted at build time and fail at evaluation.
type Unimplemented struct {
	Form string
}

// Quoted wraps an AST Node as a first-class guest value.
type Quoted struct {
	Node Node
}

func (Quoted) Kind() value.Kind { return value.KindQuoted }
func (Quoted) String() string   { return "<quoted>" }

// Ufunc is the tree-walk representation of a user-defined function value.
type Ufunc struct {
	Params        []string
	Body          Node
	Closures      []environment.Scope
	DefinerGlobal environment.Scope
}

func (u *Ufunc) Kind() value.Kind { return value.KindFunction }
func (u *Ufunc) String() string   { return "<ufunc>" }

// Call invokes u against args under callerEnv's scoping mode, tree-walking
// its body. This is what ast.Call.Eval and the Eval reflective operator use
// to invoke a ufunc value outside of VM bytecode.
func (u *Ufunc) Call(callerEnv *environment.Env, args []value.Value) (value.Value, error) {
	argsScope := environment.NewScope()
	for i, p := range u.Params {
		if i < len(args) {
			argsScope[p] = args[i]
		}
	}
	callee := environment.NewCallEnv(callerEnv.Mode, argsScope, u.Closures, callerEnv, u.DefinerGlobal)
	return u.Body.Eval(callee)
}
