package bytecode

import (
	"testing"

	"github.com/dphaener/golisp/internal/environment"
	"github.com/dphaener/golisp/internal/value"
)

func addFn(args []value.Value) (value.Value, error) {
	a := args[0].(value.Number)
	b := args[1].(value.Number)
	return value.NewNumber(a.D.Add(b.D)), nil
}

func ltFn(args []value.Value) (value.Value, error) {
	a := args[0].(value.Number)
	b := args[1].(value.Number)
	return value.NewBool(a.D.LessThan(b.D)), nil
}

func subFn(args []value.Value) (value.Value, error) {
	a := args[0].(value.Number)
	b := args[1].(value.Number)
	return value.NewNumber(a.D.Sub(b.D)), nil
}

func TestVMBasicArithmetic(t *testing.T) {
	// (+ 3 4) lowered per spec 4.3: emit(right); emit(left); CallPyFunc(add,2)
	insts := []Inst{
		PushImm{V: value.NumberFromInt(4)}, // right
		PushImm{V: value.NumberFromInt(3)}, // left
		CallPyFunc{Name: "+", Arity: 2, Fn: addFn},
	}
	vm := New(insts, environment.New(), environment.Lexical)
	got, err := vm.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := value.NumberFromInt(7)
	if !value.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestVMIfElseJump(t *testing.T) {
	// if false then 1 else 2
	insts := []Inst{
		PushImm{V: value.NewBool(false)},
		JumpIfFalse{Target: "else"},
		PushImm{V: value.NumberFromInt(1)},
		JumpAlways{Target: "end"},
		Label{Name: "else"},
		PushImm{V: value.NumberFromInt(2)},
		Label{Name: "end"},
	}
	vm := New(insts, environment.New(), environment.Lexical)
	got, err := vm.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(got, value.NumberFromInt(2)) {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestVMStoreVarLeavesValueOnStack(t *testing.T) {
	insts := []Inst{
		PushImm{V: value.NumberFromInt(5)},
		StoreVar{Name: "x"},
	}
	vm := New(insts, environment.New(), environment.Lexical)
	got, err := vm.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(got, value.NumberFromInt(5)) {
		t.Fatalf("expected StoreVar to leave the value on the stack, got %v", got)
	}
}

func TestVMMissingLabelIsHostError(t *testing.T) {
	insts := []Inst{JumpAlways{Target: "nope"}}
	vm := New(insts, environment.New(), environment.Lexical)
	_, err := vm.Run()
	if err == nil {
		t.Fatalf("expected a missing-label error")
	}
}

// TestVMTailCallBoundsFrameDepth builds a manual tail-recursive countdown
// using PushTailFunc directly (mirroring the ^fac-tr style raw-bytecode
// fixture in the original test suite) and asserts the frame stack never
// grows past the single reused frame.
func TestVMTailCallBoundsFrameDepth(t *testing.T) {
	// countdown(n) = if n <= 0 then n else countdown(n-1)   [tail position]
	body := []Inst{
		PushImm{V: value.NumberFromInt(0)},
		PushVar{Name: "n"},
		CallPyFunc{Name: "<=", Arity: 2, Fn: func(args []value.Value) (value.Value, error) {
			a := args[0].(value.Number)
			b := args[1].(value.Number)
			return value.NewBool(a.D.LessThanOrEqual(b.D)), nil
		}},
		JumpIfFalse{Target: "recurse"},
		PushVar{Name: "n"},
		PopFunc{},
		Label{Name: "recurse"},
		PushImm{V: value.NumberFromInt(1)},
		PushVar{Name: "n"},
		CallPyFunc{Name: "-", Arity: 2, Fn: subFn},
		PushTailFunc{Name: "countdown"},
	}
	uf := &Ufunc{Params: []string{"n"}, Body: body}

	env := environment.New()
	env.Set("countdown", uf)
	uf.DefinerGlobal = env.Global()

	insts := []Inst{
		PushImm{V: value.NumberFromInt(1000)},
		PushFunc{Name: "countdown"},
	}
	vm := New(insts, env, environment.Lexical)
	got, err := vm.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(got, value.NumberFromInt(0)) {
		t.Fatalf("got %v, want 0", got)
	}
	if vm.Stats.MaxFrameDepth > 3 {
		t.Fatalf("expected bounded frame depth via tail-call reuse, got max depth %d", vm.Stats.MaxFrameDepth)
	}
}

func TestVMClosureChainDistinctBindings(t *testing.T) {
	// f = lambda(x) { lambda(y) { + x y } }
	// (f 1) 2 and (f 10) 20 must capture distinct x values.
	inner := &Ufunc{
		Params: []string{"y"},
		Body: []Inst{
			PushVar{Name: "y"},
			PushVar{Name: "x"},
			CallPyFunc{Name: "+", Arity: 2, Fn: addFn},
			PopFunc{},
		},
	}
	outerBody := []Inst{
		CreateFunc{Params: inner.Params, Body: inner.Body},
		PopFunc{},
	}
	outer := &Ufunc{Params: []string{"x"}, Body: outerBody}

	env := environment.New()
	env.Set("f", outer)
	outer.DefinerGlobal = env.Global()

	run := func(xv, yv int64) value.Value {
		insts := []Inst{
			PushImm{V: value.NumberFromInt(xv)},
			PushFunc{Name: "f"},
			StoreVar{Name: "g"},
			PushImm{V: value.NumberFromInt(yv)},
			PushFunc{Name: "g"},
		}
		vm := New(insts, env, environment.Lexical)
		got, err := vm.Run()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return got
	}

	g1 := run(1, 2)
	g2 := run(10, 20)
	if !value.Equal(g1, value.NumberFromInt(3)) {
		t.Fatalf("closure 1: got %v, want 3", g1)
	}
	if !value.Equal(g2, value.NumberFromInt(30)) {
		t.Fatalf("closure 2: got %v, want 30", g2)
	}
}
