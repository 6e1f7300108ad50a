package bytecode

import (
	"github.com/dphaener/golisp/internal/environment"
	"github.com/dphaener/golisp/internal/compiler/errors"
	"github.com/dphaener/golisp/internal/value"
)

// VM is a single-threaded, deterministic stack-of-frames interpreter over a
// bytecode sequence.
type VM struct {
	Frames []*Frame
	Mode   environment.Scoping
	Stats  *Stats
}

// New builds a VM ready to run insts against the top-level env.
func New(insts []Inst, env *environment.Env, mode environment.Scoping) *VM {
	vm := &VM{
		Mode:  mode,
		Stats: &Stats{},
	}
	f := NewFrame(insts, env)
	vm.Frames = append(vm.Frames, f)
	vm.Stats.NumFrames = 1
	vm.Stats.MaxFrameDepth = 1
	return vm
}

func (vm *VM) top() *Frame {
	return vm.Frames[len(vm.Frames)-1]
}

// Top exposes the current frame to custom Inst implementations defined
// outside this package (e.g. the ast package's Parse/Eval/Read instructions).
func (vm *VM) Top() *Frame {
	return vm.top()
}

// Run executes until the frame stack empties, returning the top-level
// frame's final stack top (or Nil) and any execution error.
func (vm *VM) Run() (value.Value, error) {
	var last value.Value = value.Nil
	for len(vm.Frames) > 0 {
		f := vm.top()
		if f.PC >= len(f.Insts) {
			if len(f.Stack) > 0 {
				last = f.Stack[len(f.Stack)-1]
			}
			vm.Frames = vm.Frames[:len(vm.Frames)-1]
			continue
		}
		inst := f.Insts[f.PC]
		f.PC++
		vm.Stats.NumInsts++
		if err := inst.Exec(vm); err != nil {
			return nil, err
		}
	}
	return last, nil
}

// pushCall implements both PushFunc and PushTailFunc: look up name, pop its
// arguments, build the callee environment, and either push a new frame or
// (tail=true) reuse the current one in place.
func (vm *VM) pushCall(name string, tail bool) error {
	f := vm.top()
	v, ok := f.Env.Get(name)
	if !ok {
		return unknownName(name)
	}
	uf, ok := v.(*Ufunc)
	if !ok {
		return errors.TypeMismatch("%s is not callable", name)
	}

	args := environment.NewScope()
	for _, p := range uf.Params {
		val, err := f.Pop()
		if err != nil {
			return err
		}
		args[p] = val
	}

	callee := environment.NewCallEnv(vm.Mode, args, uf.Closures, f.Env, uf.DefinerGlobal)
	vm.Stats.FuncCalls++

	if tail {
		f.Insts = uf.Body
		f.Labels = precomputeLabels(uf.Body)
		f.PC = 0
		f.Env = callee
		return nil
	}

	newFrame := NewFrame(uf.Body, callee)
	vm.Frames = append(vm.Frames, newFrame)
	vm.Stats.NumFrames++
	if len(vm.Frames) > vm.Stats.MaxFrameDepth {
		vm.Stats.MaxFrameDepth = len(vm.Frames)
	}
	return nil
}

func unknownName(name string) error  { return errors.UnknownName(name) }
func missingLabel(l string) error    { return errors.MissingLabel(l) }
func stackUnderflow(op string) error { return errors.StackUnderflow(op) }
