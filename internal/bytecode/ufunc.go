package bytecode

import (
	"strings"

	"github.com/dphaener/golisp/internal/environment"
	"github.com/dphaener/golisp/internal/value"
)

// Ufunc is the VM-side representation of a user-defined function value: its
// parameter names, its lowered body, and the closure scopes and definer
// global it captured when the enclosing Lambda was evaluated.
type Ufunc struct {
	Params        []string
	Body          []Inst
	Closures      []environment.Scope
	DefinerGlobal environment.Scope
}

func (u *Ufunc) Kind() value.Kind { return value.KindFunction }

func (u *Ufunc) String() string {
	return "<ufunc (" + strings.Join(u.Params, " ") + ")>"
}
