package bytecode

import "testing"

func TestRemoveRedundantStackOpsFusesAdjacentPair(t *testing.T) {
	insts := []Inst{
		PushImm{V: nil},
		PopVar{Name: "x"},
		PushVar{Name: "x"},
		Noop{},
	}
	got := RemoveRedundantStackOps(insts)
	if len(got) != 3 {
		t.Fatalf("expected 3 instructions after fusion, got %d: %v", len(got), got)
	}
	sv, ok := got[1].(StoreVar)
	if !ok || sv.Name != "x" {
		t.Fatalf("expected StoreVar(x) at index 1, got %v", got[1])
	}
}

func TestRemoveRedundantStackOpsIgnoresMismatchedNames(t *testing.T) {
	insts := []Inst{
		PopVar{Name: "x"},
		PushVar{Name: "y"},
	}
	got := RemoveRedundantStackOps(insts)
	if len(got) != 2 {
		t.Fatalf("expected no fusion across mismatched names, got %v", got)
	}
}

func TestRemoveRedundantStackOpsFixedPointOnChain(t *testing.T) {
	insts := []Inst{
		PopVar{Name: "a"},
		PushVar{Name: "a"},
		PopVar{Name: "b"},
		PushVar{Name: "b"},
	}
	got := RemoveRedundantStackOps(insts)
	if len(got) != 2 {
		t.Fatalf("expected both pairs fused, got %d: %v", len(got), got)
	}
}
