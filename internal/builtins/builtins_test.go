package builtins

import (
	"io"
	"os"
	"testing"

	"github.com/dphaener/golisp/internal/value"
)

func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	f()
	w.Close()
	os.Stdout = orig
	out, _ := io.ReadAll(r)
	return string(out)
}

func n(i int64) value.Value { return value.NumberFromInt(i) }

func TestArithmetic(t *testing.T) {
	cases := []struct {
		name string
		fn   func([]value.Value) (value.Value, error)
		args []value.Value
		want value.Value
	}{
		{"add", Add, []value.Value{n(3), n(4)}, n(7)},
		{"sub", Sub, []value.Value{n(10), n(3)}, n(7)},
		{"mul", Mul, []value.Value{n(6), n(7)}, n(42)},
	}
	for _, c := range cases {
		got, err := c.fn(c.args)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if !value.Equal(got, c.want) {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestDivisionByZeroIsProgramError(t *testing.T) {
	_, err := Div([]value.Value{n(1), n(0)})
	if err == nil {
		t.Fatalf("expected an error dividing by zero")
	}
}

func TestConsCarCdr(t *testing.T) {
	cell, err := Cons([]value.Value{n(1), n(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	car, _ := Car([]value.Value{cell})
	cdr, _ := Cdr([]value.Value{cell})
	if !value.Equal(car, n(1)) || !value.Equal(cdr, n(2)) {
		t.Fatalf("car/cdr mismatch: car=%v cdr=%v", car, cdr)
	}
}

func TestListBuildsConsChainEqualToNestedCons(t *testing.T) {
	viaList, _ := List([]value.Value{n(1), n(2), n(3)})
	nested := value.NewCell(n(1), value.NewCell(n(2), value.NewCell(n(3), value.Nil)))
	if !value.Equal(viaList, nested) {
		t.Fatalf("list(1,2,3) must equal nested cons chain")
	}
}

func TestAssertRaisesOnFalse(t *testing.T) {
	_, err := Assert([]value.Value{value.NewBool(false), value.NewString("boom")})
	if err == nil {
		t.Fatalf("expected assert(false, ...) to error")
	}
}

func TestAssertReturnsNilOnSuccess(t *testing.T) {
	got, err := Assert([]value.Value{value.NewBool(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(got, value.Nil) {
		t.Fatalf("assert(true) = %v, want nil", got)
	}

	got, err = Assert([]value.Value{n(1), value.NewString("unused")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(got, value.Nil) {
		t.Fatalf("assert(<truthy>, msg) = %v, want nil, not the cond value", got)
	}
}

func TestPrintfsInsertsSeparatorBetweenPlaceholders(t *testing.T) {
	out := captureStdout(t, func() {
		_, err := Printfs([]value.Value{
			value.NewString("{}-{}-{}"),
			value.NewString(", "),
			n(1), n(2), n(3),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if out != "1-, 2-, 3" {
		t.Fatalf("got %q, want %q", out, "1-, 2-, 3")
	}
}

func TestComparisonOperators(t *testing.T) {
	lt, _ := Lt([]value.Value{n(1), n(2)})
	if !value.IsTruthy(lt) {
		t.Fatalf("expected 1 < 2")
	}
	ge, _ := Ge([]value.Value{n(2), n(2)})
	if !value.IsTruthy(ge) {
		t.Fatalf("expected 2 >= 2")
	}
}
