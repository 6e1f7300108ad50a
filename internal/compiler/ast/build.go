package ast

import (
	"fmt"
	"strings"

	"github.com/dphaener/golisp/internal/compiler/errors"
	"github.com/dphaener/golisp/internal/value"
)

// form is a node of the paren-tree the tokenizer produces: either a leaf
// token (string) or a nested list ([]form). It has no notion of AST
// semantics; Build assigns that.
type form struct {
	leaf     string
	isLeaf   bool
	children []form
}

// reader tokenizes golisp source directly into a tree of forms, per §6.1:
// whitespace/parens separate tokens, '( is quote shorthand for (quoted ...),
// "..." is a string literal with \" and \\ escapes, and /* ... */ is a
// nestable block comment.
type reader struct {
	src []rune
	pos int
}

func (r *reader) peek() (rune, bool) {
	if r.pos >= len(r.src) {
		return 0, false
	}
	return r.src[r.pos], true
}

func (r *reader) advance() rune {
	c := r.src[r.pos]
	r.pos++
	return c
}

func (r *reader) skipAtmosphere() error {
	for {
		c, ok := r.peek()
		if !ok {
			return nil
		}
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			r.advance()
		case c == '/' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '*':
			if err := r.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (r *reader) skipBlockComment() error {
	r.advance() // '/'
	r.advance() // '*'
	depth := 1
	for depth > 0 {
		c, ok := r.peek()
		if !ok {
			return fmt.Errorf("unterminated block comment")
		}
		if c == '/' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '*' {
			r.advance()
			r.advance()
			depth++
			continue
		}
		if c == '*' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '/' {
			r.advance()
			r.advance()
			depth--
			continue
		}
		r.advance()
	}
	return nil
}

// readForm reads the next top-level form, or returns ok=false at EOF.
func (r *reader) readForm() (form, bool, error) {
	if err := r.skipAtmosphere(); err != nil {
		return form{}, false, err
	}
	c, ok := r.peek()
	if !ok {
		return form{}, false, nil
	}
	if c == '\'' {
		r.advance()
		if err := r.skipAtmosphere(); err != nil {
			return form{}, false, err
		}
		next, ok := r.peek()
		if !ok || next != '(' {
			return form{}, false, fmt.Errorf("expected '(' after quote shorthand at position %d", r.pos)
		}
		wrapped, _, err := r.readForm()
		if err != nil {
			return form{}, false, err
		}
		return form{children: []form{{leaf: "quoted", isLeaf: true}, wrapped}}, true, nil
	}
	if c == '(' {
		r.advance()
		var children []form
		for {
			if err := r.skipAtmosphere(); err != nil {
				return form{}, false, err
			}
			nc, ok := r.peek()
			if !ok {
				return form{}, false, fmt.Errorf("unterminated list")
			}
			if nc == ')' {
				r.advance()
				break
			}
			child, _, err := r.readForm()
			if err != nil {
				return form{}, false, err
			}
			children = append(children, child)
		}
		return form{children: children}, true, nil
	}
	if c == ')' {
		return form{}, false, fmt.Errorf("unexpected ')' at position %d", r.pos)
	}
	if c == '"' {
		tok, err := r.readStringToken()
		if err != nil {
			return form{}, false, err
		}
		return form{leaf: tok, isLeaf: true}, true, nil
	}
	tok := r.readAtomToken()
	return form{leaf: tok, isLeaf: true}, true, nil
}

func (r *reader) readStringToken() (string, error) {
	var b strings.Builder
	b.WriteByte('"')
	r.advance() // opening quote
	for {
		c, ok := r.peek()
		if !ok {
			return "", fmt.Errorf("unterminated string literal")
		}
		if c == '\\' {
			r.advance()
			esc, ok := r.peek()
			if !ok {
				return "", fmt.Errorf("unterminated escape in string literal")
			}
			switch esc {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte('\\')
				b.WriteRune(esc)
			}
			r.advance()
			continue
		}
		if c == '"' {
			r.advance()
			b.WriteByte('"')
			break
		}
		b.WriteRune(r.advance())
	}
	return b.String(), nil
}

func isDelimiter(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')'
}

func (r *reader) readAtomToken() string {
	start := r.pos
	for {
		c, ok := r.peek()
		if !ok || isDelimiter(c) {
			break
		}
		r.advance()
	}
	return string(r.src[start:r.pos])
}

// readTopLevel reads every form until EOF.
func readTopLevel(src string) ([]form, error) {
	r := &reader{src: []rune(src)}
	var forms []form
	for {
		f, ok, err := r.readForm()
		if err != nil {
			return nil, err
		}
		if !ok {
			return forms, nil
		}
		forms = append(forms, f)
	}
}

var unaryOpTokens = map[string]string{"+": "pos", "-": "neg", "not": "not"}

var binaryOpTokens = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"==": true, "<>": true, "<": true, ">": true, "<=": true, ">=": true,
	"and": true, "or": true, "xor": true, "is": true,
}

var specialForms = map[string]bool{
	"set": true, "setg": true, "setc": true, "get": true, "lambda": true,
	"if": true, "while": true, "assert": true, "list": true, "cons": true,
	"car": true, "cdr": true, "parse": true, "eval": true, "read": true,
	"quoted": true, "print": true, "printf": true, "printfs": true, "format": true,
}

var reservedLeaves = map[string]Node{
	"nil":   NilLit{},
	"true":  TrueLit{},
	"false": FalseLit{},
}

var numberPattern = func(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	sawDigit := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		sawDigit = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			sawDigit = true
		}
	}
	return sawDigit && i == len(s)
}

// Build turns a single paren-tree form into an AST Node, per §4.1's rules.
func Build(f form) (Node, error) {
	if f.isLeaf {
		return buildLeaf(f.leaf)
	}
	return buildList(f.children)
}

func buildLeaf(leaf string) (Node, error) {
	if numberPattern(leaf) {
		n, err := value.NumberFromString(leaf)
		if err != nil {
			return nil, errors.ProgramError("invalid number literal: " + leaf)
		}
		return Atom{V: n}, nil
	}
	if len(leaf) >= 2 && strings.HasPrefix(leaf, "\"") && strings.HasSuffix(leaf, "\"") {
		return Atom{V: value.NewString(leaf[1 : len(leaf)-1])}, nil
	}
	if lit, ok := reservedLeaves[leaf]; ok {
		return lit, nil
	}
	return Var{Name: leaf}, nil
}

func buildChildren(children []form) ([]Node, error) {
	out := make([]Node, len(children))
	for i, c := range children {
		n, err := Build(c)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// bodyOf combines zero or more trailing forms into a single Node, wrapping
// more than one in a Suite.
func bodyOf(rest []form) (Node, error) {
	if len(rest) == 0 {
		return NilLit{}, nil
	}
	if len(rest) == 1 {
		return Build(rest[0])
	}
	children, err := buildChildren(rest)
	if err != nil {
		return nil, err
	}
	return Suite{Children: children}, nil
}

func leafName(f form) (string, bool) {
	if !f.isLeaf {
		return "", false
	}
	return f.leaf, true
}

func buildList(children []form) (Node, error) {
	if len(children) == 0 {
		return Suite{}, nil
	}

	head, headIsLeaf := leafName(children[0])
	rest := children[1:]

	if headIsLeaf {
		if fn, ok := unaryOpTokens[head]; ok && len(rest) == 1 {
			x, err := Build(rest[0])
			if err != nil {
				return nil, err
			}
			return UnOp{Op: fn, X: x}, nil
		}
		if binaryOpTokens[head] && len(rest) == 2 {
			l, err := Build(rest[0])
			if err != nil {
				return nil, err
			}
			r, err := Build(rest[1])
			if err != nil {
				return nil, err
			}
			return BinOp{Op: head, L: l, R: r}, nil
		}
		if specialForms[head] {
			return buildSpecialForm(head, rest)
		}
		if len(rest) >= 1 {
			args, err := buildChildren(rest)
			if err != nil {
				return nil, err
			}
			return Call{Name: head, Args: args}, nil
		}
	}

	allLists := true
	for _, c := range children {
		if c.isLeaf {
			allLists = false
			break
		}
	}
	if allLists {
		built, err := buildChildren(children)
		if err != nil {
			return nil, err
		}
		return Suite{Children: built}, nil
	}

	return Unimplemented{Form: describeForm(children)}, nil
}

func buildSpecialForm(head string, rest []form) (Node, error) {
	switch head {
	case "set", "setg", "setc":
		if len(rest) != 2 {
			return nil, errors.ArityMismatch(head, 2, len(rest))
		}
		name, ok := leafName(rest[0])
		if !ok {
			return nil, errors.TypeMismatch("%s: expected a name, got a list", head)
		}
		expr, err := Build(rest[1])
		if err != nil {
			return nil, err
		}
		switch head {
		case "set":
			return Set{Name: name, Expr: expr}, nil
		case "setg":
			return Setg{Name: name, Expr: expr}, nil
		default:
			return Setc{Name: name, Expr: expr}, nil
		}

	case "get":
		if len(rest) != 1 {
			return nil, errors.ArityMismatch("get", 1, len(rest))
		}
		name, ok := leafName(rest[0])
		if !ok {
			return nil, errors.TypeMismatch("get: expected a name, got a list")
		}
		return Get{Name: name}, nil

	case "lambda":
		if len(rest) < 1 {
			return nil, errors.ArityMismatch("lambda", 2, len(rest))
		}
		if rest[0].isLeaf {
			return nil, errors.TypeMismatch("lambda: expected a parameter list")
		}
		params := make([]string, len(rest[0].children))
		for i, p := range rest[0].children {
			name, ok := leafName(p)
			if !ok {
				return nil, errors.TypeMismatch("lambda: parameter %d is not a name", i)
			}
			params[i] = name
		}
		body, err := bodyOf(rest[1:])
		if err != nil {
			return nil, err
		}
		return Lambda{Params: params, Body: body}, nil

	case "if":
		if len(rest) < 2 || len(rest) > 3 {
			return nil, errors.ArityMismatch("if", 2, len(rest))
		}
		cond, err := Build(rest[0])
		if err != nil {
			return nil, err
		}
		then, err := Build(rest[1])
		if err != nil {
			return nil, err
		}
		var elseNode Node
		if len(rest) == 3 {
			elseNode, err = Build(rest[2])
			if err != nil {
				return nil, err
			}
		}
		return IfElse{Cond: cond, Then: then, Else: elseNode}, nil

	case "while":
		if len(rest) < 2 {
			return nil, errors.ArityMismatch("while", 2, len(rest))
		}
		cond, err := Build(rest[0])
		if err != nil {
			return nil, err
		}
		body, err := bodyOf(rest[1:])
		if err != nil {
			return nil, err
		}
		return While{Cond: cond, Body: body}, nil

	case "assert":
		if len(rest) < 1 || len(rest) > 2 {
			return nil, errors.ArityMismatch("assert", 1, len(rest))
		}
		cond, err := Build(rest[0])
		if err != nil {
			return nil, err
		}
		var msg Node
		if len(rest) == 2 {
			msg, err = Build(rest[1])
			if err != nil {
				return nil, err
			}
		}
		return Assert{Cond: cond, Msg: msg}, nil

	case "list":
		items, err := buildChildren(rest)
		if err != nil {
			return nil, err
		}
		return List{Items: items}, nil

	case "cons":
		if len(rest) != 2 {
			return nil, errors.ArityMismatch("cons", 2, len(rest))
		}
		a, err := Build(rest[0])
		if err != nil {
			return nil, err
		}
		b, err := Build(rest[1])
		if err != nil {
			return nil, err
		}
		return Cons{A: a, B: b}, nil

	case "car":
		if len(rest) != 1 {
			return nil, errors.ArityMismatch("car", 1, len(rest))
		}
		x, err := Build(rest[0])
		if err != nil {
			return nil, err
		}
		return Car{X: x}, nil

	case "cdr":
		if len(rest) != 1 {
			return nil, errors.ArityMismatch("cdr", 1, len(rest))
		}
		x, err := Build(rest[0])
		if err != nil {
			return nil, err
		}
		return Cdr{X: x}, nil

	case "parse":
		if len(rest) != 1 {
			return nil, errors.ArityMismatch("parse", 1, len(rest))
		}
		expr, err := Build(rest[0])
		if err != nil {
			return nil, err
		}
		return Parse{Expr: expr}, nil

	case "eval":
		if len(rest) != 1 {
			return nil, errors.ArityMismatch("eval", 1, len(rest))
		}
		expr, err := Build(rest[0])
		if err != nil {
			return nil, err
		}
		return Eval{Expr: expr}, nil

	case "read":
		if len(rest) != 0 {
			return nil, errors.ArityMismatch("read", 0, len(rest))
		}
		return Read{}, nil

	case "quoted":
		if len(rest) != 1 {
			return nil, errors.ArityMismatch("quoted", 1, len(rest))
		}
		inner, err := Build(rest[0])
		if err != nil {
			return nil, err
		}
		return Atom{V: Quoted{Node: inner}}, nil

	case "print", "printf", "printfs", "format":
		args, err := buildChildren(rest)
		if err != nil {
			return nil, err
		}
		return HostCall{Name: head, Args: args}, nil
	}
	return Unimplemented{Form: head}, nil
}

func describeForm(children []form) string {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		if c.isLeaf {
			parts = append(parts, c.leaf)
		} else {
			parts = append(parts, "(...)")
		}
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// ParseSource tokenizes and builds src, per §6.1: zero or more top-level
// parenthesized forms, an implicit Suite when there is more than one.
func ParseSource(src string) (Node, error) {
	forms, err := readTopLevel(src)
	if err != nil {
		return nil, errors.ProgramError(err.Error())
	}
	if len(forms) == 0 {
		return Suite{}, nil
	}
	if len(forms) == 1 {
		return Build(forms[0])
	}
	children, err := buildChildren(forms)
	if err != nil {
		return nil, err
	}
	return Suite{Children: children}, nil
}
