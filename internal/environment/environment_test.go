package environment

import (
	"testing"

	"github.com/dphaener/golisp/internal/value"
)

func TestSetWritesInnermost(t *testing.T) {
	e := NewWithScopes(NewScope(), NewScope())
	e.Set("x", value.NumberFromInt(1))
	if _, ok := e.scopes[1]["x"]; ok {
		t.Fatalf("Set must not write the outer scope")
	}
	if v, ok := e.scopes[0]["x"]; !ok || !value.Equal(v, value.NumberFromInt(1)) {
		t.Fatalf("Set must write the inner scope")
	}
}

func TestSetgWritesOutermost(t *testing.T) {
	e := NewWithScopes(NewScope(), NewScope(), NewScope())
	e.Setg("x", value.NumberFromInt(9))
	if _, ok := e.scopes[0]["x"]; ok {
		t.Fatalf("Setg must not write the inner scope")
	}
	if v, ok := e.scopes[2]["x"]; !ok || !value.Equal(v, value.NumberFromInt(9)) {
		t.Fatalf("Setg must write the outermost scope")
	}
}

func TestSetcWritesSecondFromOutermost(t *testing.T) {
	e := NewWithScopes(NewScope(), NewScope(), NewScope())
	e.Setc("x", value.NumberFromInt(4))
	if _, ok := e.scopes[1]["x"]; !ok {
		t.Fatalf("Setc must write the second-from-outermost scope")
	}
}

func TestSingleScopeSetcDegradesToSet(t *testing.T) {
	e := New()
	e.Setc("x", value.NumberFromInt(1))
	e.Setg("y", value.NumberFromInt(2))
	e.Set("z", value.NumberFromInt(3))
	for _, name := range []string{"x", "y", "z"} {
		if _, ok := e.scopes[0][name]; !ok {
			t.Fatalf("expected %s in the single scope", name)
		}
	}
}

func TestGetWalksInnermostToOutermost(t *testing.T) {
	outer := NewScope()
	outer["x"] = value.NumberFromInt(1)
	inner := NewScope()
	inner["x"] = value.NumberFromInt(2)
	e := NewWithScopes(inner, outer)
	v, ok := e.Get("x")
	if !ok || !value.Equal(v, value.NumberFromInt(2)) {
		t.Fatalf("expected innermost binding to win")
	}
}

func TestClosureScopesExcludesOutermost(t *testing.T) {
	e := NewWithScopes(NewScope(), NewScope(), NewScope())
	closures := e.ClosureScopes()
	if len(closures) != 2 {
		t.Fatalf("expected 2 closure scopes, got %d", len(closures))
	}
}

func TestNewCallEnvLexicalUsesDefinerGlobal(t *testing.T) {
	definerGlobal := NewScope()
	definerGlobal["g"] = value.NumberFromInt(100)
	callerEnv := New()
	callerEnv.Set("local-only", value.NumberFromInt(7))

	args := NewScope()
	args["n"] = value.NumberFromInt(1)

	callee := NewCallEnv(Lexical, args, nil, callerEnv, definerGlobal)
	if _, ok := callee.Get("local-only"); ok {
		t.Fatalf("lexical scoping must not see the caller's local bindings")
	}
	if v, ok := callee.Get("g"); !ok || !value.Equal(v, value.NumberFromInt(100)) {
		t.Fatalf("lexical scoping must see the definer's global bindings")
	}
}

func TestNewCallEnvDynamicSeesCallerEnv(t *testing.T) {
	definerGlobal := NewScope()
	callerEnv := New()
	callerEnv.Set("local-only", value.NumberFromInt(7))

	args := NewScope()
	callee := NewCallEnv(Dynamic, args, nil, callerEnv, definerGlobal)
	if v, ok := callee.Get("local-only"); !ok || !value.Equal(v, value.NumberFromInt(7)) {
		t.Fatalf("dynamic scoping must see the caller's bindings")
	}
}
