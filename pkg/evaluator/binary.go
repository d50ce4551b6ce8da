package evaluator

import (
	"fmt"

	"github.com/rinha-lang/rinha-go/pkg/ast"
	"github.com/rinha-lang/rinha-go/pkg/diagnostics"
)

// applyBinary applies a binary operator to two already-evaluated operands.
// Both sides have been evaluated by the caller, so And/Or do not
// short-circuit.
func applyBinary(n *ast.Binary, lhs, rhs Value) (Value, error) {
	switch n.Op {
	case ast.OpAdd:
		if l, ok := lhs.(Int); ok {
			if r, ok := rhs.(Int); ok {
				return Int{Value: l.Value + r.Value}, nil
			}
		}
		// A string on either side concatenates with the other operand's
		// display form.
		if _, ok := lhs.(Str); ok {
			return Str{Value: Display(lhs) + Display(rhs)}, nil
		}
		if _, ok := rhs.(Str); ok {
			return Str{Value: Display(lhs) + Display(rhs)}, nil
		}
		return nil, operandError(n, lhs, rhs)

	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpRem:
		l, lok := lhs.(Int)
		r, rok := rhs.(Int)
		if !lok || !rok {
			return nil, operandError(n, lhs, rhs)
		}
		switch n.Op {
		case ast.OpSub:
			return Int{Value: l.Value - r.Value}, nil
		case ast.OpMul:
			return Int{Value: l.Value * r.Value}, nil
		case ast.OpDiv:
			if r.Value == 0 {
				return nil, divisionByZero(n)
			}
			return Int{Value: l.Value / r.Value}, nil
		case ast.OpRem:
			if r.Value == 0 {
				return nil, divisionByZero(n)
			}
			return Int{Value: l.Value % r.Value}, nil
		}

	case ast.OpEq, ast.OpNeq:
		if valueKind(lhs) != valueKind(rhs) {
			return nil, operandError(n, lhs, rhs)
		}
		eq := valuesEqual(lhs, rhs)
		if n.Op == ast.OpNeq {
			eq = !eq
		}
		return Bool{Value: eq}, nil

	case ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte:
		order, err := compareValues(n, lhs, rhs)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case ast.OpLt:
			return Bool{Value: order < 0}, nil
		case ast.OpGt:
			return Bool{Value: order > 0}, nil
		case ast.OpLte:
			return Bool{Value: order <= 0}, nil
		case ast.OpGte:
			return Bool{Value: order >= 0}, nil
		}

	case ast.OpAnd, ast.OpOr:
		l, lok := lhs.(Bool)
		r, rok := rhs.(Bool)
		if !lok || !rok {
			return nil, operandError(n, lhs, rhs)
		}
		if n.Op == ast.OpAnd {
			return Bool{Value: l.Value && r.Value}, nil
		}
		return Bool{Value: l.Value || r.Value}, nil
	}

	return nil, &RuntimeError{
		Code:     diagnostics.EInvalidOperand,
		Message:  fmt.Sprintf("unknown operator %q", string(n.Op)),
		FullText: fmt.Sprintf("operator %q is not part of the language", string(n.Op)),
		Location: n.Location,
	}
}

// compareValues orders two values of the same non-closure kind: integers
// numerically, strings lexicographically, false before true, and tuples
// element-wise with the first component dominating.
func compareValues(n *ast.Binary, lhs, rhs Value) (int, error) {
	switch l := lhs.(type) {
	case Int:
		if r, ok := rhs.(Int); ok {
			return compareOrdered(l.Value, r.Value), nil
		}
	case Str:
		if r, ok := rhs.(Str); ok {
			return compareOrdered(l.Value, r.Value), nil
		}
	case Bool:
		if r, ok := rhs.(Bool); ok {
			return compareOrdered(boolRank(l.Value), boolRank(r.Value)), nil
		}
	case Tuple:
		if r, ok := rhs.(Tuple); ok {
			order, err := compareValues(n, l.First, r.First)
			if err != nil || order != 0 {
				return order, err
			}
			return compareValues(n, l.Second, r.Second)
		}
	}
	return 0, operandError(n, lhs, rhs)
}

func compareOrdered[T int64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolRank(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func operandError(n *ast.Binary, lhs, rhs Value) *RuntimeError {
	return &RuntimeError{
		Code:     diagnostics.EInvalidOperand,
		Message:  fmt.Sprintf("invalid operands for %q", string(n.Op)),
		FullText: fmt.Sprintf("operator %q does not accept a %s and a %s", string(n.Op), valueKind(lhs), valueKind(rhs)),
		Location: n.Location,
	}
}

func divisionByZero(n *ast.Binary) *RuntimeError {
	return &RuntimeError{
		Code:     diagnostics.EDivisionByZero,
		Message:  "division by zero",
		FullText: fmt.Sprintf("the right-hand side of %q is zero", string(n.Op)),
		Location: n.Location,
	}
}
