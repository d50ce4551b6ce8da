package evaluator

import (
	"fmt"

	"github.com/rinha-lang/rinha-go/pkg/ast"
	"github.com/rinha-lang/rinha-go/pkg/diagnostics"
)

// RuntimeError is the single error type produced by evaluation. It carries a
// machine-checkable code, a short message, a longer explanation, and the
// location of the offending node. The first failure unwinds the whole
// evaluation; there is no recovery or partial result.
type RuntimeError struct {
	Code     string
	Message  string
	FullText string
	Location ast.Location
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Printer is the capability performing the observable effect of a Print
// node. Print returns its input unchanged; implementations decide where the
// value's display form goes, and a test double may simply record it.
type Printer interface {
	Print(v Value) Value
}

// Eval evaluates a term to a value. The environment and cache are mutated in
// place; the printer receives every printed value in evaluation order.
// Evaluation is synchronous and strictly left-to-right, which is observable
// through Print side effects.
func Eval(term ast.Term, env *Env, cache Cache, printer Printer) (Value, error) {
	in := &interp{cache: cache, printer: printer}
	return in.eval(term, env)
}

type interp struct {
	cache   Cache
	printer Printer
}

func (in *interp) eval(t ast.Term, env *Env) (Value, error) {
	switch n := t.(type) {
	case *ast.Int:
		return Int{Value: n.Value}, nil

	case *ast.Str:
		return Str{Value: n.Value}, nil

	case *ast.Bool:
		return Bool{Value: n.Value}, nil

	case *ast.Var:
		return in.evalVar(n, env)

	case *ast.Let:
		return in.evalLet(n, env)

	case *ast.If:
		return in.evalIf(n, env)

	case *ast.Binary:
		return in.evalBinary(n, env)

	case *ast.Function:
		// Snapshot the current bindings into a fresh environment shared by
		// the closure and its copies. The body is not evaluated here.
		return Closure{Parameters: n.Parameters, Body: n.Body, Env: env.Clone()}, nil

	case *ast.Call:
		return in.evalCall(n, env)

	case *ast.Print:
		return in.evalPrint(n, env)

	case *ast.Tuple:
		return in.evalTuple(n, env)

	case *ast.First:
		return in.evalFirst(n, env)

	case *ast.Second:
		return in.evalSecond(n, env)

	default:
		return nil, &RuntimeError{
			Code:     diagnostics.EInvalidOperand,
			Message:  fmt.Sprintf("unsupported term kind %q", t.Kind()),
			Location: t.TermLocation(),
		}
	}
}

func (in *interp) evalVar(n *ast.Var, env *Env) (Value, error) {
	val, ok := env.Get(n.Text)
	if !ok {
		return nil, &RuntimeError{
			Code:     diagnostics.EUnboundVariable,
			Message:  fmt.Sprintf("unbound variable %q", n.Text),
			FullText: fmt.Sprintf("variable %q was not defined in the current scope", n.Text),
			Location: n.Location,
		}
	}
	return val, nil
}

func (in *interp) evalLet(n *ast.Let, env *Env) (Value, error) {
	val, err := in.eval(n.Value, env)
	if err != nil {
		return nil, err
	}

	if clos, ok := val.(Closure); ok {
		// Self-reference patch: the bound name is inserted into the
		// closure's own captured environment as well as the enclosing one,
		// so the function can call itself from within its body.
		clos.Env.Set(n.Name.Text, clos)
		env.Set(n.Name.Text, clos)
	} else {
		env.Set(n.Name.Text, val)
	}

	return in.eval(n.Next, env)
}

func (in *interp) evalIf(n *ast.If, env *Env) (Value, error) {
	cond, err := in.eval(n.Condition, env)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(Bool)
	if !ok {
		return nil, &RuntimeError{
			Code:     diagnostics.EInvalidCondition,
			Message:  "invalid if condition",
			FullText: fmt.Sprintf("%s can't be used as an if condition, use a boolean instead", Display(cond)),
			Location: n.Condition.TermLocation(),
		}
	}
	if b.Value {
		return in.eval(n.Then, env)
	}
	return in.eval(n.Otherwise, env)
}

func (in *interp) evalBinary(n *ast.Binary, env *Env) (Value, error) {
	lhs, err := in.eval(n.LHS, env)
	if err != nil {
		return nil, err
	}
	rhs, err := in.eval(n.RHS, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(n, lhs, rhs)
}

func (in *interp) evalCall(n *ast.Call, env *Env) (Value, error) {
	callee, err := in.eval(n.Callee, env)
	if err != nil {
		return nil, err
	}
	clos, ok := callee.(Closure)
	if !ok {
		return nil, &RuntimeError{
			Code:     diagnostics.EInvalidCall,
			Message:  "invalid function call",
			FullText: fmt.Sprintf("%s cannot be called as a function", Display(callee)),
			Location: n.Location,
		}
	}

	// Only the zipped parameter/argument prefix is evaluated and bound.
	// Surplus parameters stay unbound and surplus argument expressions are
	// never evaluated; an arity mismatch is not an error.
	pairs := len(clos.Parameters)
	if len(n.Arguments) < pairs {
		pairs = len(n.Arguments)
	}

	frame := clos.Env.Clone()
	arguments := make([]Value, 0, pairs)
	for i := 0; i < pairs; i++ {
		arg, err := in.eval(n.Arguments[i], env)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, arg)
		frame.Set(clos.Parameters[i].Text, arg)
	}

	if ast.IsPure(clos.Body) {
		return in.evalMemoized(clos.Body, arguments, frame)
	}
	return in.eval(clos.Body, frame)
}

// evalMemoized evaluates a call body through the cache. An unhashable
// argument disables the cache for this call; a hit returns the stored value
// without evaluating the body, so side effects hidden beneath a body that
// was classified pure do not repeat.
func (in *interp) evalMemoized(body ast.Term, arguments []Value, env *Env) (Value, error) {
	key, ok := cacheKey(body, arguments)
	if !ok {
		return in.eval(body, env)
	}
	if cached, hit := in.cache[key]; hit {
		return cached, nil
	}
	val, err := in.eval(body, env)
	if err != nil {
		return nil, err
	}
	in.cache[key] = val
	return val, nil
}

func (in *interp) evalPrint(n *ast.Print, env *Env) (Value, error) {
	val, err := in.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	return in.printer.Print(val), nil
}

func (in *interp) evalTuple(n *ast.Tuple, env *Env) (Value, error) {
	first, err := in.eval(n.First, env)
	if err != nil {
		return nil, err
	}
	second, err := in.eval(n.Second, env)
	if err != nil {
		return nil, err
	}
	return Tuple{First: first, Second: second}, nil
}

func (in *interp) evalFirst(n *ast.First, env *Env) (Value, error) {
	val, err := in.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	tup, ok := val.(Tuple)
	if !ok {
		return nil, projectionError(n.Location, "first", val)
	}
	return tup.First, nil
}

func (in *interp) evalSecond(n *ast.Second, env *Env) (Value, error) {
	val, err := in.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	tup, ok := val.(Tuple)
	if !ok {
		return nil, projectionError(n.Location, "second", val)
	}
	return tup.Second, nil
}

func projectionError(loc ast.Location, op string, val Value) *RuntimeError {
	return &RuntimeError{
		Code:     diagnostics.EInvalidProjection,
		Message:  fmt.Sprintf("invalid %s projection", op),
		FullText: fmt.Sprintf("cannot take %s of a %s, only of a tuple", op, valueKind(val)),
		Location: loc,
	}
}
