// Package builtins implements the host-supplied operators and I/O
// primitives the guest language calls through CallPyFunc, shared verbatim
// between the tree-walking evaluator and the bytecode VM so the two
// execution paths can never drift apart on operator semantics.
package builtins

import (
	"fmt"
	"os"
	"strings"

	"github.com/dphaener/golisp/internal/compiler/errors"
	"github.com/dphaener/golisp/internal/value"
)

func asNumber(v value.Value, op string) (value.Number, error) {
	n, ok := v.(value.Number)
	if !ok {
		return value.Number{}, errors.TypeMismatch("%s expects a number, got %s", op, v.Kind())
	}
	return n, nil
}

// Maps to: +(a, b) -> number
func Add(args []value.Value) (value.Value, error) {
	a, err := asNumber(args[0], "+")
	if err != nil {
		return nil, err
	}
	b, err := asNumber(args[1], "+")
	if err != nil {
		return nil, err
	}
	return value.NewNumber(a.D.Add(b.D)), nil
}

// Maps to: -(a, b) -> number
func Sub(args []value.Value) (value.Value, error) {
	a, err := asNumber(args[0], "-")
	if err != nil {
		return nil, err
	}
	b, err := asNumber(args[1], "-")
	if err != nil {
		return nil, err
	}
	return value.NewNumber(a.D.Sub(b.D)), nil
}

// Maps to: *(a, b) -> number
func Mul(args []value.Value) (value.Value, error) {
	a, err := asNumber(args[0], "*")
	if err != nil {
		return nil, err
	}
	b, err := asNumber(args[1], "*")
	if err != nil {
		return nil, err
	}
	return value.NewNumber(a.D.Mul(b.D)), nil
}

// Maps to: /(a, b) -> number. True decimal division, not integer division.
func Div(args []value.Value) (value.Value, error) {
	a, err := asNumber(args[0], "/")
	if err != nil {
		return nil, err
	}
	b, err := asNumber(args[1], "/")
	if err != nil {
		return nil, err
	}
	if b.D.IsZero() {
		return nil, errors.ProgramError("division by zero")
	}
	return value.NewNumber(a.D.DivRound(b.D, value.Precision+2)), nil
}

// Maps to: %(a, b) -> number
func Mod(args []value.Value) (value.Value, error) {
	a, err := asNumber(args[0], "%")
	if err != nil {
		return nil, err
	}
	b, err := asNumber(args[1], "%")
	if err != nil {
		return nil, err
	}
	return value.NewNumber(a.D.Mod(b.D)), nil
}

// Maps to: **(a, b) -> number
func Pow(args []value.Value) (value.Value, error) {
	a, err := asNumber(args[0], "**")
	if err != nil {
		return nil, err
	}
	b, err := asNumber(args[1], "**")
	if err != nil {
		return nil, err
	}
	return value.NewNumber(a.D.Pow(b.D)), nil
}

// Maps to: pos(a) -> number
func Pos(args []value.Value) (value.Value, error) {
	a, err := asNumber(args[0], "pos")
	if err != nil {
		return nil, err
	}
	return value.NewNumber(a.D), nil
}

// Maps to: neg(a) -> number
func Neg(args []value.Value) (value.Value, error) {
	a, err := asNumber(args[0], "neg")
	if err != nil {
		return nil, err
	}
	return value.NewNumber(a.D.Neg()), nil
}

// Maps to: not(a) -> bool
func Not(args []value.Value) (value.Value, error) {
	return value.NewBool(!value.IsTruthy(args[0])), nil
}

// compareOrdering falls back to the decimal/string host ordering per spec
// 4.2: numbers compare numerically, strings lexicographically, anything
// else only supports equality.
func compareOrdering(a, b value.Value) (int, error) {
	switch av := a.(type) {
	case value.Number:
		bv, ok := b.(value.Number)
		if !ok {
			return 0, errors.TypeMismatch("cannot compare number with %s", b.Kind())
		}
		return av.D.Cmp(bv.D), nil
	case value.String:
		bv, ok := b.(value.String)
		if !ok {
			return 0, errors.TypeMismatch("cannot compare string with %s", b.Kind())
		}
		return strings.Compare(av.S, bv.S), nil
	default:
		return 0, errors.TypeMismatch("%s is not ordered", a.Kind())
	}
}

// Maps to: ==(a, b) -> bool
func Eq(args []value.Value) (value.Value, error) {
	return value.NewBool(value.Equal(args[0], args[1])), nil
}

// Maps to: <>(a, b) -> bool
func Ne(args []value.Value) (value.Value, error) {
	return value.NewBool(!value.Equal(args[0], args[1])), nil
}

// Maps to: <(a, b) -> bool
func Lt(args []value.Value) (value.Value, error) {
	c, err := compareOrdering(args[0], args[1])
	if err != nil {
		return nil, err
	}
	return value.NewBool(c < 0), nil
}

// Maps to: >(a, b) -> bool
func Gt(args []value.Value) (value.Value, error) {
	c, err := compareOrdering(args[0], args[1])
	if err != nil {
		return nil, err
	}
	return value.NewBool(c > 0), nil
}

// Maps to: <=(a, b) -> bool
func Le(args []value.Value) (value.Value, error) {
	c, err := compareOrdering(args[0], args[1])
	if err != nil {
		return nil, err
	}
	return value.NewBool(c <= 0), nil
}

// Maps to: >=(a, b) -> bool
func Ge(args []value.Value) (value.Value, error) {
	c, err := compareOrdering(args[0], args[1])
	if err != nil {
		return nil, err
	}
	return value.NewBool(c >= 0), nil
}

// Maps to: and(a, b) -> bool
func And(args []value.Value) (value.Value, error) {
	return value.NewBool(value.IsTruthy(args[0]) && value.IsTruthy(args[1])), nil
}

// Maps to: or(a, b) -> bool
func Or(args []value.Value) (value.Value, error) {
	return value.NewBool(value.IsTruthy(args[0]) || value.IsTruthy(args[1])), nil
}

// Maps to: xor(a, b) -> bool
func Xor(args []value.Value) (value.Value, error) {
	return value.NewBool(value.IsTruthy(args[0]) != value.IsTruthy(args[1])), nil
}

// Maps to: is(a, b) -> bool. Identity rather than structural equality.
func Is(args []value.Value) (value.Value, error) {
	return value.NewBool(args[0] == args[1]), nil
}

// Maps to: cons(car, cdr) -> cell
func Cons(args []value.Value) (value.Value, error) {
	return value.NewCell(args[0], args[1]), nil
}

// Maps to: car(cell) -> value
func Car(args []value.Value) (value.Value, error) {
	c, ok := args[0].(value.Cell)
	if !ok {
		return nil, errors.TypeMismatch("car: not a cell")
	}
	return c.Car, nil
}

// Maps to: cdr(cell) -> value
func Cdr(args []value.Value) (value.Value, error) {
	c, ok := args[0].(value.Cell)
	if !ok {
		return nil, errors.TypeMismatch("cdr: not a cell")
	}
	return c.Cdr, nil
}

// List builds a proper cons list terminated by Nil from items, in order.
// Maps to: list(items...) -> cell|nil
func List(args []value.Value) (value.Value, error) {
	var result value.Value = value.Nil
	for i := len(args) - 1; i >= 0; i-- {
		result = value.NewCell(args[i], result)
	}
	return result, nil
}

// Maps to: print(args...) -> nil. Space-separated, newline-terminated.
func Print(args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Fprintln(os.Stdout, strings.Join(parts, " "))
	return value.Nil, nil
}

// Maps to: printf(fmt, args...) -> nil. "{}" placeholders, no trailing newline.
func Printf(args []value.Value) (value.Value, error) {
	return printfImpl(args, "")
}

// Maps to: printfs(fmt, sep, args...) -> nil. Like Printf with a custom
// placeholder-to-placeholder separator written between consumed arguments.
func Printfs(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, errors.ArityMismatch("printfs", 2, len(args))
	}
	sep, ok := args[1].(value.String)
	if !ok {
		return nil, errors.TypeMismatch("printfs: sep must be a string")
	}
	rest := append([]value.Value{args[0]}, args[2:]...)
	return printfImpl(rest, sep.S)
}

func printfImpl(args []value.Value, sep string) (value.Value, error) {
	if len(args) < 1 {
		return nil, errors.ArityMismatch("printf", 1, len(args))
	}
	format, ok := args[0].(value.String)
	if !ok {
		return nil, errors.TypeMismatch("printf: format must be a string")
	}
	rest := args[1:]
	var b strings.Builder
	idx := 0
	s := format.S
	for i := 0; i < len(s); i++ {
		if s[i] == '{' && i+1 < len(s) && s[i+1] == '}' {
			if idx < len(rest) {
				if idx > 0 {
					b.WriteString(sep)
				}
				b.WriteString(rest[idx].String())
				idx++
			}
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	fmt.Fprint(os.Stdout, b.String())
	return value.Nil, nil
}

// Maps to: format(value) -> string
func Format(args []value.Value) (value.Value, error) {
	return value.NewString(args[0].String()), nil
}

// Maps to: assert(cond, msg) -> nil. Raises a ProgramError if cond is falsy.
func Assert(args []value.Value) (value.Value, error) {
	if !value.IsTruthy(args[0]) {
		msg := "assertion failed"
		if len(args) > 1 {
			msg = args[1].String()
		}
		return nil, errors.ProgramError(msg)
	}
	return value.Nil, nil
}
