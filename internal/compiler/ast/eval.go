package ast

import (
	"bufio"
	"os"

	"github.com/dphaener/golisp/internal/builtins"
	"github.com/dphaener/golisp/internal/compiler/errors"
	"github.com/dphaener/golisp/internal/environment"
	"github.com/dphaener/golisp/internal/value"
)

func (a Atom) Eval(env *environment.Env) (value.Value, error) { return a.V, nil }

func (NilLit) Eval(env *environment.Env) (value.Value, error)   { return value.Nil, nil }
func (TrueLit) Eval(env *environment.Env) (value.Value, error)  { return value.NewBool(true), nil }
func (FalseLit) Eval(env *environment.Env) (value.Value, error) { return value.NewBool(false), nil }

func (v Var) Eval(env *environment.Env) (value.Value, error) {
	val, ok := env.Get(v.Name)
	if !ok {
		return nil, errors.UnknownName(v.Name)
	}
	return val, nil
}

func (g Get) Eval(env *environment.Env) (value.Value, error) {
	val, ok := env.Get(g.Name)
	if !ok {
		return nil, errors.UnknownName(g.Name)
	}
	return val, nil
}

func (s Suite) Eval(env *environment.Env) (value.Value, error) {
	var result value.Value = value.Nil
	for _, child := range s.Children {
		v, err := child.Eval(env)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func (s Set) Eval(env *environment.Env) (value.Value, error) {
	v, err := s.Expr.Eval(env)
	if err != nil {
		return nil, err
	}
	env.Set(s.Name, v)
	return v, nil
}

func (s Setg) Eval(env *environment.Env) (value.Value, error) {
	v, err := s.Expr.Eval(env)
	if err != nil {
		return nil, err
	}
	env.Setg(s.Name, v)
	return v, nil
}

func (s Setc) Eval(env *environment.Env) (value.Value, error) {
	v, err := s.Expr.Eval(env)
	if err != nil {
		return nil, err
	}
	env.Setc(s.Name, v)
	return v, nil
}

// unaryFns and binaryFns table-dispatch operator evaluation, shared with
// Lower so CallPyFunc bakes in the identical Go function the tree-walker
// calls directly.
var unaryFns = map[string]value.BuiltinFunc{
	"pos": builtins.Pos,
	"neg": builtins.Neg,
	"not": builtins.Not,
}

var binaryFns = map[string]value.BuiltinFunc{
	"+":   builtins.Add,
	"-":   builtins.Sub,
	"*":   builtins.Mul,
	"/":   builtins.Div,
	"%":   builtins.Mod,
	"**":  builtins.Pow,
	"==":  builtins.Eq,
	"<>":  builtins.Ne,
	"<":   builtins.Lt,
	">":   builtins.Gt,
	"<=":  builtins.Le,
	">=":  builtins.Ge,
	"and": builtins.And,
	"or":  builtins.Or,
	"xor": builtins.Xor,
	"is":  builtins.Is,
}

func (u UnOp) Eval(env *environment.Env) (value.Value, error) {
	x, err := u.X.Eval(env)
	if err != nil {
		return nil, err
	}
	fn, ok := unaryFns[u.Op]
	if !ok {
		return nil, errors.NotImplemented("unary " + u.Op)
	}
	return fn([]value.Value{x})
}

func (b BinOp) Eval(env *environment.Env) (value.Value, error) {
	l, err := b.L.Eval(env)
	if err != nil {
		return nil, err
	}
	r, err := b.R.Eval(env)
	if err != nil {
		return nil, err
	}
	fn, ok := binaryFns[b.Op]
	if !ok {
		return nil, errors.NotImplemented("binary " + b.Op)
	}
	return fn([]value.Value{l, r})
}

func (c Cons) Eval(env *environment.Env) (value.Value, error) {
	a, err := c.A.Eval(env)
	if err != nil {
		return nil, err
	}
	b, err := c.B.Eval(env)
	if err != nil {
		return nil, err
	}
	return builtins.Cons([]value.Value{a, b})
}

func (c Car) Eval(env *environment.Env) (value.Value, error) {
	x, err := c.X.Eval(env)
	if err != nil {
		return nil, err
	}
	return builtins.Car([]value.Value{x})
}

func (c Cdr) Eval(env *environment.Env) (value.Value, error) {
	x, err := c.X.Eval(env)
	if err != nil {
		return nil, err
	}
	return builtins.Cdr([]value.Value{x})
}

func (l List) Eval(env *environment.Env) (value.Value, error) {
	args := make([]value.Value, len(l.Items))
	for i, item := range l.Items {
		v, err := item.Eval(env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return builtins.List(args)
}

func (i IfElse) Eval(env *environment.Env) (value.Value, error) {
	cond, err := i.Cond.Eval(env)
	if err != nil {
		return nil, err
	}
	if value.IsTruthy(cond) {
		return i.Then.Eval(env)
	}
	if i.Else == nil {
		return value.Nil, nil
	}
	return i.Else.Eval(env)
}

func (w While) Eval(env *environment.Env) (value.Value, error) {
	var result value.Value = value.Nil
	for {
		cond, err := w.Cond.Eval(env)
		if err != nil {
			return nil, err
		}
		if !value.IsTruthy(cond) {
			return result, nil
		}
		result, err = w.Body.Eval(env)
		if err != nil {
			return nil, err
		}
	}
}

func (a Assert) Eval(env *environment.Env) (value.Value, error) {
	cond, err := a.Cond.Eval(env)
	if err != nil {
		return nil, err
	}
	var msg value.Value = value.NewString("assertion failed")
	if a.Msg != nil {
		msg, err = a.Msg.Eval(env)
		if err != nil {
			return nil, err
		}
	}
	return builtins.Assert([]value.Value{cond, msg})
}

func (c Call) Eval(env *environment.Env) (value.Value, error) {
	fv, ok := env.Get(c.Name)
	if !ok {
		return nil, errors.UnknownName(c.Name)
	}
	uf, ok := fv.(*Ufunc)
	if !ok {
		return nil, errors.TypeMismatch("%s is not callable", c.Name)
	}
	args := make([]value.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := a.Eval(env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return uf.Call(env, args)
}

// TailCall tree-walks identically to Call; frame reuse is a VM/bytecode
// concept with no analogue in a recursive tree-walk.
func (t TailCall) Eval(env *environment.Env) (value.Value, error) {
	return Call(t).Eval(env)
}

func (l Lambda) Eval(env *environment.Env) (value.Value, error) {
	return &Ufunc{
		Params:        l.Params,
		Body:          l.Body,
		Closures:      env.ClosureScopes(),
		DefinerGlobal: env.Global(),
	}, nil
}

var hostFns = map[string]value.BuiltinFunc{
	"print":   builtins.Print,
	"printf":  builtins.Printf,
	"printfs": builtins.Printfs,
	"format":  builtins.Format,
}

func (h HostCall) Eval(env *environment.Env) (value.Value, error) {
	fn, ok := hostFns[h.Name]
	if !ok {
		return nil, errors.NotImplemented("host call " + h.Name)
	}
	args := make([]value.Value, len(h.Args))
	for i, a := range h.Args {
		v, err := a.Eval(env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn(args)
}

func (p Parse) Eval(env *environment.Env) (value.Value, error) {
	v, err := p.Expr.Eval(env)
	if err != nil {
		return nil, err
	}
	s, ok := v.(value.String)
	if !ok {
		return nil, errors.TypeMismatch("parse: expected a string, got %s", v.Kind())
	}
	node, err := ParseSource(s.S)
	if err != nil {
		return nil, err
	}
	return Quoted{Node: node}, nil
}

func (e Eval) Eval(env *environment.Env) (value.Value, error) {
	v, err := e.Expr.Eval(env)
	if err != nil {
		return nil, err
	}
	q, ok := v.(Quoted)
	if !ok {
		return nil, errors.TypeMismatch("eval: expected a quoted ast, got %s", v.Kind())
	}
	return q.Node.Eval(env)
}

// stdinScanner is swappable for tests that want to inject canned lines
// without a real host stdin; see Read.Eval and readInst.Exec.
var stdinScanner = bufio.NewScanner(os.Stdin)

func (u Unimplemented) Eval(env *environment.Env) (value.Value, error) {
	return nil, errors.NotImplemented(u.Form)
}

func (Read) Eval(env *environment.Env) (value.Value, error) {
	if fv, ok := env.Get("--stdin"); ok {
		b, ok := fv.(*value.Builtin)
		if !ok {
			return nil, errors.TypeMismatch("--stdin must be a builtin callable")
		}
		return b.Fn(nil)
	}
	if !stdinScanner.Scan() {
		return value.NewString(""), nil
	}
	return value.NewString(stdinScanner.Text()), nil
}
