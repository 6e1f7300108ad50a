// Package bytecode implements the linear instruction set emitted by lowering
// and the stack-based VM that executes it.
package bytecode

import (
	"github.com/dphaener/golisp/internal/environment"
	"github.com/dphaener/golisp/internal/value"
)

// Inst is a single bytecode instruction. Exec runs it against the VM's
// current frame, which is always vm.Frames[len(vm.Frames)-1] at the point
// Exec is called.
type Inst interface {
	Exec(vm *VM) error
	String() string
}

// Noop does nothing.
type Noop struct{}

func (Noop) Exec(vm *VM) error { return nil }
func (Noop) String() string    { return "Noop" }

// PushImm pushes a literal value.
type PushImm struct {
	V value.Value
}

func (i PushImm) Exec(vm *VM) error {
	vm.top().Push(i.V)
	return nil
}
func (i PushImm) String() string { return "PushImm(" + i.V.String() + ")" }

// PushVar looks up Name in the current frame's environment and pushes it.
type PushVar struct {
	Name string
}

func (i PushVar) Exec(vm *VM) error {
	f := vm.top()
	v, ok := f.Env.Get(i.Name)
	if !ok {
		return unknownName(i.Name)
	}
	f.Push(v)
	return nil
}
func (i PushVar) String() string { return "PushVar(" + i.Name + ")" }

// PopVar pops the top of stack and stores it into the innermost env scope.
type PopVar struct {
	Name string
}

func (i PopVar) Exec(vm *VM) error {
	f := vm.top()
	v, err := f.Pop()
	if err != nil {
		return err
	}
	f.Env.Set(i.Name, v)
	return nil
}
func (i PopVar) String() string { return "PopVar(" + i.Name + ")" }

// PopVarg behaves like PopVar but stores into the outermost env scope,
// giving Setg a bytecode lowering analogous to Set's. The base instruction
// set (spec §4.4) names only PopVar/StoreVar explicitly; PopVarg/PopVarc
// extend the same pattern to the Setg/Setc frame targets rather than
// collapsing all three assignment forms onto one instruction.
type PopVarg struct {
	Name string
}

func (i PopVarg) Exec(vm *VM) error {
	f := vm.top()
	v, err := f.Pop()
	if err != nil {
		return err
	}
	f.Env.Setg(i.Name, v)
	return nil
}
func (i PopVarg) String() string { return "PopVarg(" + i.Name + ")" }

// PopVarc behaves like PopVar but stores into the second-from-outermost env
// scope, giving Setc a bytecode lowering analogous to Set's.
type PopVarc struct {
	Name string
}

func (i PopVarc) Exec(vm *VM) error {
	f := vm.top()
	v, err := f.Pop()
	if err != nil {
		return err
	}
	f.Env.Setc(i.Name, v)
	return nil
}
func (i PopVarc) String() string { return "PopVarc(" + i.Name + ")" }

// StoreVar behaves like PopVar but leaves the value on the stack. It is
// introduced by the peephole optimizer fusing PopVar+PushVar pairs.
type StoreVar struct {
	Name string
}

func (i StoreVar) Exec(vm *VM) error {
	f := vm.top()
	v, err := f.Peek()
	if err != nil {
		return err
	}
	f.Env.Set(i.Name, v)
	return nil
}
func (i StoreVar) String() string { return "StoreVar(" + i.Name + ")" }

// CallPyFunc pops Arity values (in left-to-right argument order, per the
// lowering convention that reverses push order) and calls Fn, pushing its
// result.
type CallPyFunc struct {
	Name  string
	Arity int
	Fn    value.BuiltinFunc
}

func (i CallPyFunc) Exec(vm *VM) error {
	f := vm.top()
	args := make([]value.Value, i.Arity)
	for k := 0; k < i.Arity; k++ {
		v, err := f.Pop()
		if err != nil {
			return err
		}
		args[k] = v
	}
	result, err := i.Fn(args)
	if err != nil {
		return err
	}
	f.Push(result)
	return nil
}
func (i CallPyFunc) String() string { return "CallPyFunc(" + i.Name + ")" }

// Label is a zero-runtime-cost jump target marker.
type Label struct {
	Name string
}

func (Label) Exec(vm *VM) error { return nil }
func (i Label) String() string  { return "Label(" + i.Name + ")" }

// JumpAlways sets pc to the index of Target, relative to the current
// frame's label table.
type JumpAlways struct {
	Target string
}

func (i JumpAlways) Exec(vm *VM) error {
	f := vm.top()
	idx, ok := f.Labels[i.Target]
	if !ok {
		return missingLabel(i.Target)
	}
	f.PC = idx
	return nil
}
func (i JumpAlways) String() string { return "JumpAlways(" + i.Target + ")" }

// JumpIfTrue pops a value and jumps to Target if it is truthy.
type JumpIfTrue struct {
	Target string
}

func (i JumpIfTrue) Exec(vm *VM) error {
	f := vm.top()
	v, err := f.Pop()
	if err != nil {
		return err
	}
	if value.IsTruthy(v) {
		idx, ok := f.Labels[i.Target]
		if !ok {
			return missingLabel(i.Target)
		}
		f.PC = idx
	}
	return nil
}
func (i JumpIfTrue) String() string { return "JumpIfTrue(" + i.Target + ")" }

// JumpIfFalse pops a value and jumps to Target if it is falsy.
type JumpIfFalse struct {
	Target string
}

func (i JumpIfFalse) Exec(vm *VM) error {
	f := vm.top()
	v, err := f.Pop()
	if err != nil {
		return err
	}
	if !value.IsTruthy(v) {
		idx, ok := f.Labels[i.Target]
		if !ok {
			return missingLabel(i.Target)
		}
		f.PC = idx
	}
	return nil
}
func (i JumpIfFalse) String() string { return "JumpIfFalse(" + i.Target + ")" }

// CreateFunc builds a Ufunc value capturing the current frame's closure
// scopes (every scope but the outermost) and the outermost scope as its
// definer global, then pushes it.
type CreateFunc struct {
	Params []string
	Body   []Inst
}

func (i CreateFunc) Exec(vm *VM) error {
	f := vm.top()
	uf := &Ufunc{
		Params:        i.Params,
		Body:          i.Body,
		Closures:      f.Env.ClosureScopes(),
		DefinerGlobal: f.Env.Global(),
	}
	f.Push(uf)
	return nil
}
func (i CreateFunc) String() string { return "CreateFunc" }

// PushFunc looks up a Ufunc bound to Name, pops len(params) argument values,
// and pushes a new call Frame onto the VM's frame stack.
type PushFunc struct {
	Name string
}

func (i PushFunc) Exec(vm *VM) error {
	return vm.pushCall(i.Name, false)
}
func (i PushFunc) String() string { return "PushFunc(" + i.Name + ")" }

// PushTailFunc behaves like PushFunc but reuses the current frame in place
// (tail-call optimization) instead of growing the frame stack.
type PushTailFunc struct {
	Name string
}

func (i PushTailFunc) Exec(vm *VM) error {
	return vm.pushCall(i.Name, true)
}
func (i PushTailFunc) String() string { return "PushTailFunc(" + i.Name + ")" }

// PushRawFunc is a low-level frame push used for host-constructed bytecode
// blocks (e.g. test harnesses), bypassing the named-lookup/arity convention.
type PushRawFunc struct {
	Insts      []Inst
	ReturnName string
	PC         int
	Stack      []value.Value
	Env        *environment.Env
}

func (i PushRawFunc) Exec(vm *VM) error {
	f := &Frame{
		Insts:      i.Insts,
		Labels:     precomputeLabels(i.Insts),
		PC:         i.PC,
		Stack:      append([]value.Value(nil), i.Stack...),
		Env:        i.Env,
		ReturnName: i.ReturnName,
	}
	vm.Frames = append(vm.Frames, f)
	vm.Stats.NumFrames++
	if len(vm.Frames) > vm.Stats.MaxFrameDepth {
		vm.Stats.MaxFrameDepth = len(vm.Frames)
	}
	return nil
}
func (i PushRawFunc) String() string { return "PushRawFunc" }

// PopFunc discards the current frame, returning either the Value bound to
// Name (if Name is non-empty) or the top of stack (Nil if empty). The
// return value is pushed onto the surviving caller frame's stack, if any.
type PopFunc struct {
	Name string
}

func (i PopFunc) Exec(vm *VM) error {
	f := vm.top()
	var ret value.Value
	if i.Name != "" {
		v, ok := f.Env.Get(i.Name)
		if !ok {
			return unknownName(i.Name)
		}
		ret = v
	} else if len(f.Stack) > 0 {
		v, err := f.Pop()
		if err != nil {
			return err
		}
		ret = v
	} else {
		ret = value.Nil
	}

	vm.Frames = vm.Frames[:len(vm.Frames)-1]
	if len(vm.Frames) > 0 {
		vm.top().Push(ret)
	}
	return nil
}
func (i PopFunc) String() string { return "PopFunc(" + i.Name + ")" }

// Halt clears the frame stack, ending execution immediately.
type Halt struct {
	CatchFire bool
}

func (i Halt) Exec(vm *VM) error {
	vm.Frames = nil
	return nil
}
func (i Halt) String() string { return "Halt" }
