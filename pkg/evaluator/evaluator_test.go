package evaluator_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rinha-lang/rinha-go/pkg/ast"
	"github.com/rinha-lang/rinha-go/pkg/capabilities"
	"github.com/rinha-lang/rinha-go/pkg/evaluator"
)

// --- helpers ---

// Builders for terms. Tests construct trees directly since programs arrive
// pre-parsed; locations are synthesized so error positions stay assertable.

var nextPos int

func span() ast.Location {
	nextPos++
	return ast.Location{Start: nextPos, End: nextPos + 1, Filename: "test.rinha"}
}

func intT(v int64) *ast.Int       { return &ast.Int{Value: v, Location: span()} }
func strT(s string) *ast.Str      { return &ast.Str{Value: s, Location: span()} }
func boolT(b bool) *ast.Bool      { return &ast.Bool{Value: b, Location: span()} }
func varT(name string) *ast.Var   { return &ast.Var{Text: name, Location: span()} }
func printT(v ast.Term) *ast.Print { return &ast.Print{Value: v, Location: span()} }

func letT(name string, value, next ast.Term) *ast.Let {
	return &ast.Let{Name: ast.Var{Text: name, Location: span()}, Value: value, Next: next, Location: span()}
}

func ifT(cond, then, otherwise ast.Term) *ast.If {
	return &ast.If{Condition: cond, Then: then, Otherwise: otherwise, Location: span()}
}

func binT(lhs ast.Term, op ast.BinaryOp, rhs ast.Term) *ast.Binary {
	return &ast.Binary{LHS: lhs, Op: op, RHS: rhs, Location: span()}
}

func fnT(body ast.Term, params ...string) *ast.Function {
	vars := make([]ast.Var, 0, len(params))
	for _, p := range params {
		vars = append(vars, ast.Var{Text: p, Location: span()})
	}
	return &ast.Function{Parameters: vars, Body: body, Location: span()}
}

func callT(callee ast.Term, args ...ast.Term) *ast.Call {
	return &ast.Call{Callee: callee, Arguments: args, Location: span()}
}

func tupleT(first, second ast.Term) *ast.Tuple {
	return &ast.Tuple{First: first, Second: second, Location: span()}
}

func firstT(v ast.Term) *ast.First   { return &ast.First{Value: v, Location: span()} }
func secondT(v ast.Term) *ast.Second { return &ast.Second{Value: v, Location: span()} }

// run evaluates a term with a fresh environment and cache, recording prints.
func run(t *testing.T, term ast.Term) (evaluator.Value, *capabilities.Recorder, error) {
	t.Helper()
	rec := &capabilities.Recorder{}
	val, err := evaluator.Eval(term, evaluator.NewEnv(), evaluator.NewCache(), rec)
	return val, rec, err
}

// mustEval is like run but fails the test on any runtime error.
func mustEval(t *testing.T, term ast.Term) (evaluator.Value, *capabilities.Recorder) {
	t.Helper()
	val, rec, err := run(t, term)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	return val, rec
}

func expectInt(t *testing.T, val evaluator.Value, want int64) {
	t.Helper()
	n, ok := val.(evaluator.Int)
	if !ok {
		t.Fatalf("expected Int, got %T (%v)", val, val)
	}
	if n.Value != want {
		t.Errorf("got %d, want %d", n.Value, want)
	}
}

func expectStr(t *testing.T, val evaluator.Value, want string) {
	t.Helper()
	s, ok := val.(evaluator.Str)
	if !ok {
		t.Fatalf("expected Str, got %T (%v)", val, val)
	}
	if s.Value != want {
		t.Errorf("got %q, want %q", s.Value, want)
	}
}

func expectBool(t *testing.T, val evaluator.Value, want bool) {
	t.Helper()
	b, ok := val.(evaluator.Bool)
	if !ok {
		t.Fatalf("expected Bool, got %T (%v)", val, val)
	}
	if b.Value != want {
		t.Errorf("got %v, want %v", b.Value, want)
	}
}

// expectError asserts a *RuntimeError with the given code and returns it for
// further inspection.
func expectError(t *testing.T, err error, code string) *evaluator.RuntimeError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected runtime error with code %s, got nil", code)
	}
	var rtErr *evaluator.RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	if rtErr.Code != code {
		t.Errorf("error code = %q, want %q (message: %s)", rtErr.Code, code, rtErr.Message)
	}
	return rtErr
}

func expectOutput(t *testing.T, rec *capabilities.Recorder, want ...string) {
	t.Helper()
	got := rec.Lines()
	if got == nil {
		got = []string{}
	}
	if want == nil {
		want = []string{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("printed output mismatch (-want +got):\n%s", diff)
	}
}

// --- 1. Literals ---

func TestLiteral_Int(t *testing.T) {
	val, _ := mustEval(t, intT(42))
	expectInt(t, val, 42)
}

func TestLiteral_NegativeInt(t *testing.T) {
	val, _ := mustEval(t, intT(-7))
	expectInt(t, val, -7)
}

func TestLiteral_Str(t *testing.T) {
	val, _ := mustEval(t, strT("hello"))
	expectStr(t, val, "hello")
}

func TestLiteral_Bool(t *testing.T) {
	val, _ := mustEval(t, boolT(true))
	expectBool(t, val, true)
}

// --- 2. Variables and let ---

func TestLet_BindsAndEvaluatesNext(t *testing.T) {
	val, _ := mustEval(t, letT("x", intT(10), varT("x")))
	expectInt(t, val, 10)
}

func TestLet_Shadowing(t *testing.T) {
	// let x = 1; let x = 2; x  => 2
	val, _ := mustEval(t, letT("x", intT(1), letT("x", intT(2), varT("x"))))
	expectInt(t, val, 2)
}

func TestVar_Unbound(t *testing.T) {
	v := varT("ghost")
	_, _, err := run(t, v)
	rtErr := expectError(t, err, "E_UNBOUND_VARIABLE")
	if rtErr.Location != v.Location {
		t.Errorf("error location = %+v, want the variable's own location %+v", rtErr.Location, v.Location)
	}
}

func TestLet_ValueErrorPropagates(t *testing.T) {
	_, _, err := run(t, letT("x", varT("missing"), intT(1)))
	expectError(t, err, "E_UNBOUND_VARIABLE")
}

// --- 3. If ---

func TestIf_TrueTakesThen(t *testing.T) {
	val, _ := mustEval(t, ifT(boolT(true), intT(1), intT(2)))
	expectInt(t, val, 1)
}

func TestIf_FalseTakesOtherwise(t *testing.T) {
	val, _ := mustEval(t, ifT(boolT(false), intT(1), intT(2)))
	expectInt(t, val, 2)
}

func TestIf_UntakenBranchHasNoEffects(t *testing.T) {
	_, rec := mustEval(t, ifT(boolT(true), intT(1), printT(intT(99))))
	expectOutput(t, rec)
}

func TestIf_NonBoolCondition(t *testing.T) {
	cond := intT(1)
	_, _, err := run(t, ifT(cond, intT(1), intT(2)))
	rtErr := expectError(t, err, "E_INVALID_CONDITION")
	if rtErr.Location != cond.Location {
		t.Errorf("error location = %+v, want the condition's location %+v", rtErr.Location, cond.Location)
	}
}

func TestIf_ConditionErrorSkipsBranches(t *testing.T) {
	_, rec, err := run(t, ifT(varT("missing"), printT(intT(1)), printT(intT(2))))
	expectError(t, err, "E_UNBOUND_VARIABLE")
	expectOutput(t, rec)
}

// --- 4. Arithmetic ---

func TestBinary_Add(t *testing.T) {
	val, _ := mustEval(t, binT(intT(3), ast.OpAdd, intT(4)))
	expectInt(t, val, 7)
}

func TestBinary_Sub(t *testing.T) {
	val, _ := mustEval(t, binT(intT(10), ast.OpSub, intT(3)))
	expectInt(t, val, 7)
}

func TestBinary_Mul(t *testing.T) {
	val, _ := mustEval(t, binT(intT(6), ast.OpMul, intT(7)))
	expectInt(t, val, 42)
}

func TestBinary_DivTruncates(t *testing.T) {
	val, _ := mustEval(t, binT(intT(7), ast.OpDiv, intT(2)))
	expectInt(t, val, 3)
}

func TestBinary_Rem(t *testing.T) {
	val, _ := mustEval(t, binT(intT(10), ast.OpRem, intT(3)))
	expectInt(t, val, 1)
}

func TestBinary_DivisionByZero(t *testing.T) {
	_, _, err := run(t, binT(intT(4), ast.OpDiv, intT(0)))
	expectError(t, err, "E_DIVISION_BY_ZERO")
}

func TestBinary_RemByZero(t *testing.T) {
	_, _, err := run(t, binT(intT(4), ast.OpRem, intT(0)))
	expectError(t, err, "E_DIVISION_BY_ZERO")
}

func TestBinary_SubOnStrings(t *testing.T) {
	_, _, err := run(t, binT(strT("a"), ast.OpSub, strT("b")))
	expectError(t, err, "E_INVALID_OPERAND")
}

// --- 5. Concatenation ---

func TestAdd_StrStr(t *testing.T) {
	val, _ := mustEval(t, binT(strT("foo"), ast.OpAdd, strT("bar")))
	expectStr(t, val, "foobar")
}

func TestAdd_StrInt(t *testing.T) {
	val, _ := mustEval(t, binT(strT("n = "), ast.OpAdd, intT(5)))
	expectStr(t, val, "n = 5")
}

func TestAdd_IntStr(t *testing.T) {
	val, _ := mustEval(t, binT(intT(5), ast.OpAdd, strT(" apples")))
	expectStr(t, val, "5 apples")
}

func TestAdd_StrBool(t *testing.T) {
	val, _ := mustEval(t, binT(strT("ok: "), ast.OpAdd, boolT(true)))
	expectStr(t, val, "ok: true")
}

func TestAdd_StrTuple(t *testing.T) {
	val, _ := mustEval(t, binT(strT("pair "), ast.OpAdd, tupleT(intT(1), intT(2))))
	expectStr(t, val, "pair (1, 2)")
}

func TestAdd_BoolBoolIsError(t *testing.T) {
	_, _, err := run(t, binT(boolT(true), ast.OpAdd, boolT(false)))
	expectError(t, err, "E_INVALID_OPERAND")
}

// --- 6. Equality ---

func TestEq_Ints(t *testing.T) {
	val, _ := mustEval(t, binT(intT(1), ast.OpEq, intT(1)))
	expectBool(t, val, true)
}

func TestNeq_Ints(t *testing.T) {
	val, _ := mustEval(t, binT(intT(1), ast.OpNeq, intT(2)))
	expectBool(t, val, true)
}

func TestEq_Strings(t *testing.T) {
	val, _ := mustEval(t, binT(strT("a"), ast.OpEq, strT("a")))
	expectBool(t, val, true)
}

func TestEq_Tuples(t *testing.T) {
	val, _ := mustEval(t, binT(tupleT(intT(1), strT("x")), ast.OpEq, tupleT(intT(1), strT("x"))))
	expectBool(t, val, true)
}

func TestEq_MixedKindsIsError(t *testing.T) {
	_, _, err := run(t, binT(intT(1), ast.OpEq, strT("1")))
	expectError(t, err, "E_INVALID_OPERAND")
}

func TestEq_ClosuresNeverEqual(t *testing.T) {
	// Two evaluations of the same function literal still compare unequal.
	body := fnT(varT("x"), "x")
	val, _ := mustEval(t, letT("f", body, binT(varT("f"), ast.OpEq, varT("f"))))
	expectBool(t, val, false)
}

// --- 7. Ordering ---

func TestLt_Ints(t *testing.T) {
	val, _ := mustEval(t, binT(intT(3), ast.OpLt, intT(5)))
	expectBool(t, val, true)
}

func TestGte_Ints(t *testing.T) {
	val, _ := mustEval(t, binT(intT(5), ast.OpGte, intT(5)))
	expectBool(t, val, true)
}

func TestLt_StringsLexicographic(t *testing.T) {
	val, _ := mustEval(t, binT(strT("abc"), ast.OpLt, strT("abd")))
	expectBool(t, val, true)
}

func TestLt_BoolsFalseBeforeTrue(t *testing.T) {
	val, _ := mustEval(t, binT(boolT(false), ast.OpLt, boolT(true)))
	expectBool(t, val, true)
}

func TestLt_TuplesLexicographic(t *testing.T) {
	val, _ := mustEval(t, binT(tupleT(intT(1), intT(9)), ast.OpLt, tupleT(intT(2), intT(0))))
	expectBool(t, val, true)
}

func TestLt_MixedKindsIsError(t *testing.T) {
	_, _, err := run(t, binT(intT(1), ast.OpLt, strT("2")))
	expectError(t, err, "E_INVALID_OPERAND")
}

func TestLt_ClosuresAreUnordered(t *testing.T) {
	_, _, err := run(t, letT("f", fnT(intT(1)), binT(varT("f"), ast.OpLt, varT("f"))))
	expectError(t, err, "E_INVALID_OPERAND")
}

// --- 8. Logic ---

func TestAnd(t *testing.T) {
	val, _ := mustEval(t, binT(boolT(true), ast.OpAnd, boolT(false)))
	expectBool(t, val, false)
}

func TestOr(t *testing.T) {
	val, _ := mustEval(t, binT(boolT(false), ast.OpOr, boolT(true)))
	expectBool(t, val, true)
}

func TestAnd_NonBoolIsError(t *testing.T) {
	_, _, err := run(t, binT(intT(1), ast.OpAnd, boolT(true)))
	expectError(t, err, "E_INVALID_OPERAND")
}

func TestAnd_NoShortCircuit(t *testing.T) {
	// Both sides always evaluate; a false left side does not skip the right.
	_, rec := mustEval(t, binT(boolT(false), ast.OpAnd, ifT(printT(boolT(true)), boolT(true), boolT(false))))
	expectOutput(t, rec, "true")
}

// --- 9. Evaluation order ---

func TestBinary_OperandsLeftToRight(t *testing.T) {
	val, rec := mustEval(t, binT(printT(intT(1)), ast.OpAdd, printT(intT(2))))
	expectInt(t, val, 3)
	expectOutput(t, rec, "1", "2")
}

func TestPrint_NestedBeforeOuter(t *testing.T) {
	// print(print(1) + print(2)) prints 1, 2, then the sum.
	_, rec := mustEval(t, printT(binT(printT(intT(1)), ast.OpAdd, printT(intT(2)))))
	expectOutput(t, rec, "1", "2", "3")
}

func TestBinary_RHSNotEvaluatedAfterLHSError(t *testing.T) {
	_, rec, err := run(t, binT(varT("missing"), ast.OpAdd, printT(intT(2))))
	expectError(t, err, "E_UNBOUND_VARIABLE")
	expectOutput(t, rec)
}

func TestTuple_FirstBeforeSecond(t *testing.T) {
	_, rec := mustEval(t, tupleT(printT(intT(1)), printT(intT(2))))
	expectOutput(t, rec, "1", "2")
}

// --- 10. Print ---

func TestPrint_ReturnsItsValue(t *testing.T) {
	val, rec := mustEval(t, printT(intT(7)))
	expectInt(t, val, 7)
	expectOutput(t, rec, "7")
}

func TestPrint_Tuple(t *testing.T) {
	_, rec := mustEval(t, printT(tupleT(intT(1), tupleT(strT("a"), boolT(false)))))
	expectOutput(t, rec, "(1, (a, false))")
}

func TestPrint_Closure(t *testing.T) {
	_, rec := mustEval(t, printT(fnT(intT(1))))
	expectOutput(t, rec, "[closure]")
}

// --- 11. Functions and calls ---

func TestCall_Identity(t *testing.T) {
	val, _ := mustEval(t, callT(fnT(varT("x"), "x"), intT(42)))
	expectInt(t, val, 42)
}

func TestCall_CapturesDefinitionScope(t *testing.T) {
	// let y = 10; let f = fn(x) => x + y; f(1)  => 11
	prog := letT("y", intT(10),
		letT("f", fnT(binT(varT("x"), ast.OpAdd, varT("y")), "x"),
			callT(varT("f"), intT(1))))
	val, _ := mustEval(t, prog)
	expectInt(t, val, 11)
}

func TestCall_CaptureIsSnapshot(t *testing.T) {
	// Rebinding y after the closure is built does not change what it sees.
	prog := letT("y", intT(10),
		letT("f", fnT(varT("y")),
			letT("y", intT(99),
				callT(varT("f")))))
	val, _ := mustEval(t, prog)
	expectInt(t, val, 10)
}

func TestCall_NonClosureCallee(t *testing.T) {
	call := callT(intT(3), intT(1))
	_, _, err := run(t, call)
	rtErr := expectError(t, err, "E_INVALID_CALL")
	if rtErr.Location != call.Location {
		t.Errorf("error location = %+v, want the call's location %+v", rtErr.Location, call.Location)
	}
}

func TestCall_SurplusArgsNotEvaluated(t *testing.T) {
	// fn() => 1 called with print(9): the argument expression never runs.
	val, rec := mustEval(t, callT(fnT(intT(1)), printT(intT(9))))
	expectInt(t, val, 1)
	expectOutput(t, rec)
}

func TestCall_MissingArgsLeaveParamsUnbound(t *testing.T) {
	// fn(a, b) => a called with one argument succeeds; b is simply unbound.
	val, _ := mustEval(t, callT(fnT(varT("a"), "a", "b"), intT(5)))
	expectInt(t, val, 5)
}

func TestCall_UnboundSurplusParamErrorsOnUse(t *testing.T) {
	_, _, err := run(t, callT(fnT(varT("b"), "a", "b"), intT(5)))
	expectError(t, err, "E_UNBOUND_VARIABLE")
}

func TestCall_ParamDoesNotLeak(t *testing.T) {
	// A parameter binding lives in the call frame, not the caller's scope.
	prog := letT("f", fnT(varT("x"), "x"),
		letT("_", callT(varT("f"), intT(1)),
			varT("x")))
	_, _, err := run(t, prog)
	expectError(t, err, "E_UNBOUND_VARIABLE")
}

func TestCall_Recursion(t *testing.T) {
	// let fib = fn(n) => if n < 2 then n else fib(n-1) + fib(n-2); fib(10)
	fib := fnT(
		ifT(binT(varT("n"), ast.OpLt, intT(2)),
			varT("n"),
			binT(
				callT(varT("fib"), binT(varT("n"), ast.OpSub, intT(1))),
				ast.OpAdd,
				callT(varT("fib"), binT(varT("n"), ast.OpSub, intT(2))))),
		"n")
	val, _ := mustEval(t, letT("fib", fib, callT(varT("fib"), intT(10))))
	expectInt(t, val, 55)
}

func TestCall_HigherOrder(t *testing.T) {
	// let twice = fn(f, x) => f(f(x)); twice(fn(n) => n + 1, 3)  => 5
	twice := fnT(callT(varT("f"), callT(varT("f"), varT("x"))), "f", "x")
	inc := fnT(binT(varT("n"), ast.OpAdd, intT(1)), "n")
	val, _ := mustEval(t, letT("twice", twice, callT(varT("twice"), inc, intT(3))))
	expectInt(t, val, 5)
}

// --- 12. Memoization ---

func TestMemo_PureBodyEvaluatedOnce(t *testing.T) {
	// The body is a Let, classified pure even though it hides a print. The
	// second identical call hits the cache and the print does not repeat.
	f := fnT(letT("_", printT(varT("x")), varT("x")), "x")
	prog := letT("f", f,
		letT("a", callT(varT("f"), intT(7)),
			letT("b", callT(varT("f"), intT(7)),
				binT(varT("a"), ast.OpAdd, varT("b")))))
	val, rec := mustEval(t, prog)
	expectInt(t, val, 14)
	expectOutput(t, rec, "7")
}

func TestMemo_DistinctArgsMiss(t *testing.T) {
	f := fnT(letT("_", printT(varT("x")), varT("x")), "x")
	prog := letT("f", f,
		letT("a", callT(varT("f"), intT(1)),
			callT(varT("f"), intT(2))))
	val, rec := mustEval(t, prog)
	expectInt(t, val, 2)
	expectOutput(t, rec, "1", "2")
}

func TestMemo_PrintBodyNeverCached(t *testing.T) {
	f := fnT(printT(varT("x")), "x")
	prog := letT("f", f,
		letT("a", callT(varT("f"), intT(3)),
			callT(varT("f"), intT(3))))
	_, rec := mustEval(t, prog)
	expectOutput(t, rec, "3", "3")
}

func TestMemo_ClosureArgBypassesCache(t *testing.T) {
	// A closure argument is unhashable, so the call skips the cache and the
	// hidden print runs on every invocation.
	f := fnT(letT("_", printT(intT(5)), intT(0)), "g")
	prog := letT("f", f,
		letT("id", fnT(varT("x"), "x"),
			letT("a", callT(varT("f"), varT("id")),
				callT(varT("f"), varT("id")))))
	_, rec := mustEval(t, prog)
	expectOutput(t, rec, "5", "5")
}

func TestMemo_TupleWithClosureArgBypassesCache(t *testing.T) {
	f := fnT(letT("_", printT(intT(5)), intT(0)), "g")
	prog := letT("f", f,
		letT("id", fnT(varT("x"), "x"),
			letT("a", callT(varT("f"), tupleT(intT(1), varT("id"))),
				callT(varT("f"), tupleT(intT(1), varT("id"))))))
	_, rec := mustEval(t, prog)
	expectOutput(t, rec, "5", "5")
}

func TestMemo_SharedCacheAcrossTopLevelEvals(t *testing.T) {
	cache := evaluator.NewCache()
	rec := &capabilities.Recorder{}
	f := fnT(letT("_", printT(varT("x")), varT("x")), "x")
	prog := letT("f", f, callT(varT("f"), intT(7)))

	for i := 0; i < 2; i++ {
		if _, err := evaluator.Eval(prog, evaluator.NewEnv(), cache, rec); err != nil {
			t.Fatalf("eval %d: %v", i, err)
		}
	}
	expectOutput(t, rec, "7")
}

// --- 13. Tuples and projections ---

func TestTuple_First(t *testing.T) {
	val, _ := mustEval(t, firstT(tupleT(intT(1), intT(2))))
	expectInt(t, val, 1)
}

func TestTuple_Second(t *testing.T) {
	val, _ := mustEval(t, secondT(tupleT(intT(1), intT(2))))
	expectInt(t, val, 2)
}

func TestTuple_Nested(t *testing.T) {
	val, _ := mustEval(t, firstT(secondT(tupleT(intT(1), tupleT(strT("a"), strT("b"))))))
	expectStr(t, val, "a")
}

func TestFirst_NonTuple(t *testing.T) {
	proj := firstT(intT(1))
	_, _, err := run(t, proj)
	rtErr := expectError(t, err, "E_INVALID_PROJECTION")
	if rtErr.Location != proj.Location {
		t.Errorf("error location = %+v, want the projection's location %+v", rtErr.Location, proj.Location)
	}
}

func TestSecond_NonTuple(t *testing.T) {
	_, _, err := run(t, secondT(strT("nope")))
	expectError(t, err, "E_INVALID_PROJECTION")
}
