package bytecode

// RemoveRedundantStackOps iterates to a fixed point over adjacent
// instruction pairs: any PopVar(x) immediately followed by PushVar(x) is
// replaced by a single StoreVar(x). Matches are applied from the rightmost
// occurrence inward within each pass so replacing one pair never shifts the
// index of a pair still to be checked earlier in the slice.
func RemoveRedundantStackOps(insts []Inst) []Inst {
	cur := append([]Inst(nil), insts...)
	for {
		next, changed := onePass(cur)
		cur = next
		if !changed {
			return cur
		}
	}
}

func onePass(insts []Inst) ([]Inst, bool) {
	changed := false
	out := append([]Inst(nil), insts...)
	for i := len(out) - 2; i >= 0; i-- {
		pop, ok := out[i].(PopVar)
		if !ok {
			continue
		}
		push, ok := out[i+1].(PushVar)
		if !ok || push.Name != pop.Name {
			continue
		}
		out = append(out[:i], append([]Inst{StoreVar{Name: pop.Name}}, out[i+2:]...)...)
		changed = true
	}
	return out, changed
}
