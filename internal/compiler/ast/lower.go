package ast

import (
	"github.com/dphaener/golisp/internal/builtins"
	"github.com/dphaener/golisp/internal/bytecode"
	"github.com/dphaener/golisp/internal/compiler/errors"
	"github.com/dphaener/golisp/internal/value"
)

func (a Atom) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return []bytecode.Inst{bytecode.PushImm{V: a.V}}
}

func (NilLit) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return []bytecode.Inst{bytecode.PushImm{V: value.Nil}}
}
func (TrueLit) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return []bytecode.Inst{bytecode.PushImm{V: value.NewBool(true)}}
}
func (FalseLit) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return []bytecode.Inst{bytecode.PushImm{V: value.NewBool(false)}}
}

func (v Var) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return []bytecode.Inst{bytecode.PushVar{Name: v.Name}}
}

func (g Get) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return []bytecode.Inst{bytecode.PushVar{Name: g.Name}}
}

func (s Suite) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	parts := make([][]bytecode.Inst, len(s.Children))
	for i, c := range s.Children {
		parts[i] = c.Lower(lw)
	}
	return bytecode.Concat(parts...)
}

func (s Set) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return bytecode.Concat(s.Expr.Lower(lw), []bytecode.Inst{
		bytecode.PopVar{Name: s.Name},
		bytecode.PushVar{Name: s.Name},
	})
}

func (s Setg) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return bytecode.Concat(s.Expr.Lower(lw), []bytecode.Inst{
		bytecode.PopVarg{Name: s.Name},
		bytecode.PushVar{Name: s.Name},
	})
}

func (s Setc) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return bytecode.Concat(s.Expr.Lower(lw), []bytecode.Inst{
		bytecode.PopVarc{Name: s.Name},
		bytecode.PushVar{Name: s.Name},
	})
}

func (u UnOp) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	fn := unaryFns[u.Op]
	return bytecode.Concat(u.X.Lower(lw), []bytecode.Inst{
		bytecode.CallPyFunc{Name: u.Op, Arity: 1, Fn: fn},
	})
}

func (b BinOp) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	fn := binaryFns[b.Op]
	return bytecode.Concat(b.R.Lower(lw), b.L.Lower(lw), []bytecode.Inst{
		bytecode.CallPyFunc{Name: b.Op, Arity: 2, Fn: fn},
	})
}

func (c Cons) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return bytecode.Concat(c.B.Lower(lw), c.A.Lower(lw), []bytecode.Inst{
		bytecode.CallPyFunc{Name: "cons", Arity: 2, Fn: builtins.Cons},
	})
}

func (c Car) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return bytecode.Concat(c.X.Lower(lw), []bytecode.Inst{
		bytecode.CallPyFunc{Name: "car", Arity: 1, Fn: builtins.Car},
	})
}

func (c Cdr) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return bytecode.Concat(c.X.Lower(lw), []bytecode.Inst{
		bytecode.CallPyFunc{Name: "cdr", Arity: 1, Fn: builtins.Cdr},
	})
}

func (l List) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	parts := make([][]bytecode.Inst, 0, len(l.Items)+1)
	for i := len(l.Items) - 1; i >= 0; i-- {
		parts = append(parts, l.Items[i].Lower(lw))
	}
	parts = append(parts, []bytecode.Inst{
		bytecode.CallPyFunc{Name: "list", Arity: len(l.Items), Fn: builtins.List},
	})
	return bytecode.Concat(parts...)
}

func (i IfElse) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	lElse := lw.FreshLabel("else")
	lEnd := lw.FreshLabel("end")
	var elseInsts []bytecode.Inst
	if i.Else != nil {
		elseInsts = i.Else.Lower(lw)
	}
	return bytecode.Concat(
		i.Cond.Lower(lw),
		[]bytecode.Inst{bytecode.JumpIfFalse{Target: lElse}},
		i.Then.Lower(lw),
		[]bytecode.Inst{bytecode.JumpAlways{Target: lEnd}, bytecode.Label{Name: lElse}},
		elseInsts,
		[]bytecode.Inst{bytecode.Label{Name: lEnd}},
	)
}

func (w While) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	lStart := lw.FreshLabel("while")
	lEnd := lw.FreshLabel("endwhile")
	return bytecode.Concat(
		[]bytecode.Inst{bytecode.Label{Name: lStart}},
		w.Cond.Lower(lw),
		[]bytecode.Inst{bytecode.JumpIfFalse{Target: lEnd}},
		w.Body.Lower(lw),
		[]bytecode.Inst{bytecode.JumpAlways{Target: lStart}, bytecode.Label{Name: lEnd}},
	)
}

func (a Assert) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	var msgInsts []bytecode.Inst
	if a.Msg != nil {
		msgInsts = a.Msg.Lower(lw)
	} else {
		msgInsts = []bytecode.Inst{bytecode.PushImm{V: value.NewString("assertion failed")}}
	}
	return bytecode.Concat(
		msgInsts,
		a.Cond.Lower(lw),
		[]bytecode.Inst{bytecode.CallPyFunc{Name: "assert", Arity: 2, Fn: builtins.Assert}},
	)
}

func lowerArgsReversed(lw *bytecode.Lowerer, args []Node) []bytecode.Inst {
	parts := make([][]bytecode.Inst, len(args))
	for i := len(args) - 1; i >= 0; i-- {
		parts[len(args)-1-i] = args[i].Lower(lw)
	}
	return bytecode.Concat(parts...)
}

func (c Call) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return bytecode.Concat(lowerArgsReversed(lw, c.Args), []bytecode.Inst{
		bytecode.PushFunc{Name: c.Name},
	})
}

func (t TailCall) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return bytecode.Concat(lowerArgsReversed(lw, t.Args), []bytecode.Inst{
		bytecode.PushTailFunc{Name: t.Name},
	})
}

func (l Lambda) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	body := bytecode.Concat(l.Body.Lower(lw), []bytecode.Inst{bytecode.PopFunc{}})
	return []bytecode.Inst{bytecode.CreateFunc{Params: l.Params, Body: body}}
}

func (h HostCall) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	fn := hostFns[h.Name]
	return bytecode.Concat(lowerArgsReversed(lw, h.Args), []bytecode.Inst{
		bytecode.CallPyFunc{Name: h.Name, Arity: len(h.Args), Fn: fn},
	})
}

// parseInst and evalInst need environment access beyond the plain
// CallPyFunc(fn, arity) convention (building an AST, or tree-walking one
// against the live frame environment), so they live here as custom
// bytecode.Inst implementations rather than in package bytecode itself.
type parseInst struct{}

func (parseInst) Exec(vm *bytecode.VM) error {
	f := vm.Top()
	v, err := f.Pop()
	if err != nil {
		return err
	}
	s, ok := v.(value.String)
	if !ok {
		return errors.TypeMismatch("parse: expected a string, got %s", v.Kind())
	}
	node, err := ParseSource(s.S)
	if err != nil {
		return err
	}
	f.Push(Quoted{Node: node})
	return nil
}
func (parseInst) String() string { return "Parse" }

func (p Parse) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return bytecode.Concat(p.Expr.Lower(lw), []bytecode.Inst{parseInst{}})
}

type evalInst struct{}

func (evalInst) Exec(vm *bytecode.VM) error {
	f := vm.Top()
	v, err := f.Pop()
	if err != nil {
		return err
	}
	q, ok := v.(Quoted)
	if !ok {
		return errors.TypeMismatch("eval: expected a quoted ast, got %s", v.Kind())
	}
	result, err := q.Node.Eval(f.Env)
	if err != nil {
		return err
	}
	f.Push(result)
	return nil
}
func (evalInst) String() string { return "Eval" }

func (e Eval) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return bytecode.Concat(e.Expr.Lower(lw), []bytecode.Inst{evalInst{}})
}

type readInst struct{}

func (readInst) Exec(vm *bytecode.VM) error {
	f := vm.Top()
	if fv, ok := f.Env.Get("--stdin"); ok {
		b, ok := fv.(*value.Builtin)
		if !ok {
			return errors.TypeMismatch("--stdin must be a builtin callable")
		}
		v, err := b.Fn(nil)
		if err != nil {
			return err
		}
		f.Push(v)
		return nil
	}
	if !stdinScanner.Scan() {
		f.Push(value.NewString(""))
		return nil
	}
	f.Push(value.NewString(stdinScanner.Text()))
	return nil
}
func (readInst) String() string { return "Read" }

func (Read) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return []bytecode.Inst{readInst{}}
}

type unimplementedInst struct{ Form string }

func (i unimplementedInst) Exec(vm *bytecode.VM) error {
	return errors.NotImplemented(i.Form)
}
func (i unimplementedInst) String() string { return "Unimplemented(" + i.Form + ")" }

func (u Unimplemented) Lower(lw *bytecode.Lowerer) []bytecode.Inst {
	return []bytecode.Inst{unimplementedInst{Form: u.Form}}
}
