package ast

import "github.com/dphaener/golisp/internal/environment"

// ConstantFold iterates to a fixed point: any UnOp whose operand is not a
// Var, or any BinOp whose operands are both not Var, is evaluated against an
// empty env and replaced with the resulting Atom. It returns a rewritten
// copy; the input tree is left untouched.
func ConstantFold(n Node) Node {
	for {
		rewritten, changed := foldOnce(n)
		n = rewritten
		if !changed {
			return n
		}
	}
}

func isVar(n Node) bool {
	_, ok := n.(Var)
	return ok
}

func foldOnce(n Node) (Node, bool) {
	switch t := n.(type) {
	case UnOp:
		x, xChanged := foldOnce(t.X)
		folded := UnOp{Op: t.Op, X: x}
		if !isVar(x) {
			if v, err := folded.Eval(environment.New()); err == nil {
				return Atom{V: v}, true
			}
		}
		return folded, xChanged

	case BinOp:
		l, lChanged := foldOnce(t.L)
		r, rChanged := foldOnce(t.R)
		folded := BinOp{Op: t.Op, L: l, R: r}
		if !isVar(l) && !isVar(r) {
			if v, err := folded.Eval(environment.New()); err == nil {
				return Atom{V: v}, true
			}
		}
		return folded, lChanged || rChanged

	case Suite:
		children := make([]Node, len(t.Children))
		changed := false
		for i, c := range t.Children {
			nc, ch := foldOnce(c)
			children[i] = nc
			changed = changed || ch
		}
		return Suite{Children: children}, changed

	case Set:
		e, ch := foldOnce(t.Expr)
		return Set{Name: t.Name, Expr: e}, ch
	case Setg:
		e, ch := foldOnce(t.Expr)
		return Setg{Name: t.Name, Expr: e}, ch
	case Setc:
		e, ch := foldOnce(t.Expr)
		return Setc{Name: t.Name, Expr: e}, ch

	case Cons:
		a, ac := foldOnce(t.A)
		b, bc := foldOnce(t.B)
		return Cons{A: a, B: b}, ac || bc
	case Car:
		x, ch := foldOnce(t.X)
		return Car{X: x}, ch
	case Cdr:
		x, ch := foldOnce(t.X)
		return Cdr{X: x}, ch
	case List:
		items := make([]Node, len(t.Items))
		changed := false
		for i, it := range t.Items {
			ni, ch := foldOnce(it)
			items[i] = ni
			changed = changed || ch
		}
		return List{Items: items}, changed

	case IfElse:
		cond, cc := foldOnce(t.Cond)
		then, tc := foldOnce(t.Then)
		var els Node
		var ec bool
		if t.Else != nil {
			els, ec = foldOnce(t.Else)
		}
		return IfElse{Cond: cond, Then: then, Else: els}, cc || tc || ec

	case While:
		cond, cc := foldOnce(t.Cond)
		body, bc := foldOnce(t.Body)
		return While{Cond: cond, Body: body}, cc || bc

	case Assert:
		cond, cc := foldOnce(t.Cond)
		var msg Node
		var mc bool
		if t.Msg != nil {
			msg, mc = foldOnce(t.Msg)
		}
		return Assert{Cond: cond, Msg: msg}, cc || mc

	case Call:
		args := make([]Node, len(t.Args))
		changed := false
		for i, a := range t.Args {
			na, ch := foldOnce(a)
			args[i] = na
			changed = changed || ch
		}
		return Call{Name: t.Name, Args: args}, changed

	case TailCall:
		args := make([]Node, len(t.Args))
		changed := false
		for i, a := range t.Args {
			na, ch := foldOnce(a)
			args[i] = na
			changed = changed || ch
		}
		return TailCall{Name: t.Name, Args: args}, changed

	case Lambda:
		body, ch := foldOnce(t.Body)
		return Lambda{Params: t.Params, Body: body}, ch

	case HostCall:
		args := make([]Node, len(t.Args))
		changed := false
		for i, a := range t.Args {
			na, ch := foldOnce(a)
			args[i] = na
			changed = changed || ch
		}
		return HostCall{Name: t.Name, Args: args}, changed

	case Parse:
		e, ch := foldOnce(t.Expr)
		return Parse{Expr: e}, ch
	case Eval:
		e, ch := foldOnce(t.Expr)
		return Eval{Expr: e}, ch

	default:
		return n, false
	}
}

// IdentifyTailCalls rewrites Call nodes found in tail position inside the
// body of a Set(name, Lambda(...)) into TailCall when the called name
// matches the enclosing definition, so the VM can reuse the frame (§4.6).
// It returns a rewritten copy.
func IdentifyTailCalls(n Node) Node {
	switch t := n.(type) {
	case Suite:
		children := make([]Node, len(t.Children))
		for i, c := range t.Children {
			children[i] = IdentifyTailCalls(c)
		}
		return Suite{Children: children}

	case Set:
		expr := IdentifyTailCalls(t.Expr)
		if lam, ok := expr.(Lambda); ok {
			return Set{Name: t.Name, Expr: Lambda{
				Params: lam.Params,
				Body:   markTail(lam.Body, t.Name),
			}}
		}
		return Set{Name: t.Name, Expr: expr}

	case Setg:
		return Setg{Name: t.Name, Expr: IdentifyTailCalls(t.Expr)}
	case Setc:
		return Setc{Name: t.Name, Expr: IdentifyTailCalls(t.Expr)}

	case Lambda:
		return Lambda{Params: t.Params, Body: IdentifyTailCalls(t.Body)}

	case IfElse:
		var els Node
		if t.Else != nil {
			els = IdentifyTailCalls(t.Else)
		}
		return IfElse{Cond: t.Cond, Then: IdentifyTailCalls(t.Then), Else: els}

	case While:
		return While{Cond: t.Cond, Body: IdentifyTailCalls(t.Body)}

	default:
		return n
	}
}

// markTail rewrites the tail-position Call(s) inside body into TailCall when
// the callee name matches fnName, without descending into nested Lambdas
// (whose own tail positions belong to their own enclosing name).
func markTail(body Node, fnName string) Node {
	switch t := body.(type) {
	case Suite:
		if len(t.Children) == 0 {
			return t
		}
		children := append([]Node(nil), t.Children...)
		children[len(children)-1] = markTail(children[len(children)-1], fnName)
		return Suite{Children: children}

	case IfElse:
		var els Node
		if t.Else != nil {
			els = markTail(t.Else, fnName)
		}
		return IfElse{Cond: t.Cond, Then: markTail(t.Then, fnName), Else: els}

	case Call:
		if t.Name == fnName {
			return TailCall{Name: t.Name, Args: t.Args}
		}
		return t

	default:
		return body
	}
}
