// Package value defines the guest-language runtime value representation
// shared by the tree-walking evaluator and the bytecode VM.
package value

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Precision is the number of significant digits carried by Number values,
// 11 by default. It is a package variable rather than a constant so a host
// program can widen it, but widening it must be done before any Number is
// constructed.
var Precision int32 = 11

// Kind tags the dynamic type of a Value.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindNil
	KindCell
	KindFunction
	KindQuoted
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNil:
		return "nil"
	case KindCell:
		return "cell"
	case KindFunction:
		return "function"
	case KindQuoted:
		return "quoted"
	default:
		return "unknown"
	}
}

// Value is any guest-language runtime value.
type Value interface {
	Kind() Kind
	String() string
}

// Number is an arbitrary-precision decimal rounded to Precision significant
// digits on construction.
type Number struct {
	D decimal.Decimal
}

// NewNumber rounds d to Precision significant digits and wraps it.
func NewNumber(d decimal.Decimal) Number {
	return Number{D: roundSignificant(d, Precision)}
}

// NumberFromString parses s as a decimal and rounds it.
func NumberFromString(s string) (Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, err
	}
	return NewNumber(d), nil
}

// NumberFromInt wraps an int64 as a Number (no rounding needed).
func NumberFromInt(n int64) Number {
	return Number{D: decimal.NewFromInt(n)}
}

// roundSignificant rounds d to sig significant digits. It never rounds left
// of the decimal point: a value with more than sig integer digits is rounded
// to a whole number and keeps all of its integer digits. The magnitude is
// estimated via the float64 approximation, which is adequate for the
// decimal-places rounding shopspring/decimal performs; sig-digit precision
// is a convention carried from the host's 11-significant-digit default, not
// a requirement for bit-exact arbitrary precision.
func roundSignificant(d decimal.Decimal, sig int32) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	magnitude := int32(math.Floor(math.Log10(math.Abs(d.InexactFloat64())))) + 1
	places := sig - magnitude
	if places < 0 {
		places = 0
	}
	return d.Round(places)
}

func (n Number) Kind() Kind   { return KindNumber }
func (n Number) String() string {
	return n.D.String()
}

// String is immutable guest text.
type String struct {
	S string
}

func NewString(s string) String  { return String{S: s} }
func (s String) Kind() Kind      { return KindString }
func (s String) String() string  { return s.S }

// Bool is true/false.
type Bool struct {
	B bool
}

func NewBool(b bool) Bool   { return Bool{B: b} }
func (b Bool) Kind() Kind   { return KindBool }
func (b Bool) String() string {
	if b.B {
		return "true"
	}
	return "false"
}

// NilValue is the singleton unit value and cons-list terminator.
type nilValue struct{}

func (nilValue) Kind() Kind     { return KindNil }
func (nilValue) String() string { return "nil" }

// Nil is the single instance of the unit value.
var Nil Value = nilValue{}

// Cell is an immutable pair (car, cdr).
type Cell struct {
	Car Value
	Cdr Value
}

func NewCell(car, cdr Value) Cell { return Cell{Car: car, Cdr: cdr} }
func (c Cell) Kind() Kind         { return KindCell }
func (c Cell) String() string {
	var b strings.Builder
	b.WriteByte('(')
	cur := Value(c)
	first := true
	for {
		cell, ok := cur.(Cell)
		if !ok {
			if _, isNil := cur.(nilValue); !isNil {
				b.WriteString(" . ")
				b.WriteString(cur.String())
			}
			break
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(cell.Car.String())
		cur = cell.Cdr
	}
	b.WriteByte(')')
	return b.String()
}

// BuiltinFunc is a host-supplied arity-checked operator.
type BuiltinFunc func(args []Value) (Value, error)

// Builtin is a host-defined callable Function value.
type Builtin struct {
	Name  string
	Arity int // -1 means variadic
	Fn    BuiltinFunc
}

func (b *Builtin) Kind() Kind     { return KindFunction }
func (b *Builtin) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }

// Equal reports structural equality per spec: Numbers by numeric value,
// Strings by content, Cells component-wise, Functions by identity.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Number:
		bv := b.(Number)
		return av.D.Equal(bv.D)
	case String:
		bv := b.(String)
		return av.S == bv.S
	case Bool:
		bv := b.(Bool)
		return av.B == bv.B
	case nilValue:
		return true
	case Cell:
		bv := b.(Cell)
		return Equal(av.Car, bv.Car) && Equal(av.Cdr, bv.Cdr)
	default:
		return a == b
	}
}

// IsTruthy follows guest-language truthiness: only Bool{false} and Nil are
// falsy; everything else, including the number zero, is truthy.
func IsTruthy(v Value) bool {
	switch t := v.(type) {
	case Bool:
		return t.B
	case nilValue:
		return false
	default:
		return true
	}
}
