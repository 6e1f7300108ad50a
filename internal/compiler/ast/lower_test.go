package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dphaener/golisp/internal/bytecode"
	"github.com/dphaener/golisp/internal/environment"
	"github.com/dphaener/golisp/internal/value"
)

// runBoth evaluates src both by tree-walking and by lowering+running on the
// VM, returning both results. Used to check the two execution modes agree,
// per the AST<->bytecode equivalence invariant.
func runBoth(t *testing.T, src string) (value.Value, value.Value) {
	t.Helper()
	n := mustParse(t, src)

	treeResult, err := n.Eval(environment.New())
	require.NoError(t, err)

	lw := bytecode.NewLowerer()
	insts := n.Lower(lw)
	vm := bytecode.New(insts, environment.New(), environment.Lexical)
	vmResult, err := vm.Run()
	require.NoError(t, err)

	return treeResult, vmResult
}

func TestEvalAndVMAgreeOnArithmetic(t *testing.T) {
	tree, vm := runBoth(t, "(+ (* 2 3) (- 10 4))")
	assert.True(t, value.Equal(tree, vm))
	assert.True(t, value.Equal(value.NumberFromInt(12), tree))
}

func TestEvalAndVMAgreeOnIfElse(t *testing.T) {
	tree, vm := runBoth(t, "(if (< 1 2) 10 20)")
	assert.True(t, value.Equal(tree, vm))
}

func TestEvalAndVMAgreeOnSetAndWhile(t *testing.T) {
	src := "(set i 0) (set acc 1) (while (< i 5) (set acc (* acc 2)) (set i (+ i 1))) (get acc)"
	tree, vm := runBoth(t, src)
	assert.True(t, value.Equal(tree, vm))
	assert.True(t, value.Equal(value.NumberFromInt(32), tree))
}

func TestEvalAndVMAgreeOnConsListCarCdr(t *testing.T) {
	tree, vm := runBoth(t, "(car (cdr (list 1 2 3)))")
	assert.True(t, value.Equal(tree, vm))
	assert.True(t, value.Equal(value.NumberFromInt(2), tree))
}

func TestEvalAndVMAgreeOnLambdaCall(t *testing.T) {
	src := "(set add (lambda (a b) (+ a b))) (add 3 4)"
	tree, vm := runBoth(t, src)
	assert.True(t, value.Equal(tree, vm))
	assert.True(t, value.Equal(value.NumberFromInt(7), tree))
}

func TestEvalAndVMAgreeOnTailRecursiveFactorial(t *testing.T) {
	src := `
		(set fact (lambda (n acc)
			(if (== n 0)
				acc
				(fact (- n 1) (* n acc)))))
		(fact 10 1)
	`
	n := mustParse(t, src)
	optimized := IdentifyTailCalls(n)

	treeResult, err := optimized.Eval(environment.New())
	require.NoError(t, err)

	lw := bytecode.NewLowerer()
	insts := optimized.Lower(lw)
	vm := bytecode.New(insts, environment.New(), environment.Lexical)
	vmResult, err := vm.Run()
	require.NoError(t, err)

	assert.True(t, value.Equal(treeResult, vmResult))
	assert.True(t, value.Equal(value.NumberFromInt(3628800), treeResult))
	assert.LessOrEqual(t, vm.Stats.MaxFrameDepth, 3)
}

func TestEvalAndVMAgreeOnClosures(t *testing.T) {
	src := `
		(set make_adder (lambda (x) (lambda (y) (+ x y))))
		(set add5 (make_adder 5))
		(add5 10)
	`
	tree, vm := runBoth(t, src)
	assert.True(t, value.Equal(tree, vm))
	assert.True(t, value.Equal(value.NumberFromInt(15), tree))
}

func TestEvalAndVMAgreeOnFizzbuzz(t *testing.T) {
	src := `
		(set fizzbuzz (lambda (n)
			(if (== (% n 15) 0) "fizzbuzz"
			(if (== (% n 3) 0) "fizz"
			(if (== (% n 5) 0) "buzz"
			n)))))
		(list (fizzbuzz 3) (fizzbuzz 5) (fizzbuzz 15) (fizzbuzz 7))
	`
	tree, vm := runBoth(t, src)
	assert.True(t, value.Equal(tree, vm))
	assert.Equal(t, `(fizz buzz fizzbuzz 7)`, tree.String())
}

func TestEvalAndVMAgreeOnFizzbuzzTwenty(t *testing.T) {
	src := `
		(set fizzbuzz (lambda (n)
			(if (== (% n 15) 0) "fizzbuzz"
			(if (== (% n 3) 0) "fizz"
			(if (== (% n 5) 0) "buzz"
			n)))))
		(set loop (lambda (i acc)
			(if (> i 20) acc
			(loop (+ i 1) (cons (fizzbuzz i) acc)))))
		(loop 1 nil)
	`
	tree, vm := runBoth(t, src)
	assert.True(t, value.Equal(tree, vm))
	want := `(buzz 19 fizz 17 16 fizzbuzz 14 13 fizz 11 buzz fizz 8 7 fizz buzz 4 fizz 2 1)`
	assert.Equal(t, want, tree.String())
}

func TestEvalAndVMAgreeOnFibonacciOfTen(t *testing.T) {
	src := `
		(set fib (lambda (n)
			(if (< n 2) 1
			(+ (fib (- n 1)) (fib (- n 2))))))
		(fib 10)
	`
	tree, vm := runBoth(t, src)
	assert.True(t, value.Equal(tree, vm))
	assert.True(t, value.Equal(value.NumberFromInt(89), tree))
}

// TestEvalAndVMAgreeOnThreeLevelClosureChain reproduces the closure-chain
// scenario f = λx.λy.λz.(list x y z), (((f 1) 2) 10) ⇒ (1,2,10). Call's
// callee is a name (Call.Name is a string looked up via env.Get), not an
// arbitrary expression, so the nested-application surface syntax
// "(((f 1) 2) 10)" isn't itself parseable; each application is bound to a
// name first, which exercises the identical three-level capture chain.
func TestEvalAndVMAgreeOnThreeLevelClosureChain(t *testing.T) {
	src := `
		(set f (lambda (x) (lambda (y) (lambda (z) (list x y z)))))
		(set f1 (f 1))
		(set f2 (f1 2))
		(f2 10)
	`
	tree, vm := runBoth(t, src)
	assert.True(t, value.Equal(tree, vm))
	assert.Equal(t, `(1 2 10)`, tree.String())
}

func TestEvalAndVMAgreeOnParseEval(t *testing.T) {
	tree, vm := runBoth(t, `(eval (parse "(+ 1 2)"))`)
	assert.True(t, value.Equal(tree, vm))
	assert.True(t, value.Equal(value.NumberFromInt(3), tree))
}

func TestConstantFoldedLowersToPushImm(t *testing.T) {
	n := mustParse(t, "(+ 2 3)")
	folded := ConstantFold(n)
	lw := bytecode.NewLowerer()
	insts := folded.Lower(lw)
	require.Len(t, insts, 1)
	assert.IsType(t, bytecode.PushImm{}, insts[0])
}
