// Package evaluator implements the rinha runtime: values, environments, the
// recursive evaluator, and the call memoization cache.
package evaluator

import (
	"errors"
	"hash/fnv"
	"io"
	"strconv"

	"github.com/rinha-lang/rinha-go/pkg/ast"
)

// Value is the interface for all runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	value() // sealed marker
}

// Int represents an integer value.
type Int struct {
	Value int64
}

func (Int) value() {}

// Str represents a string value.
type Str struct {
	Value string
}

func (Str) value() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) value() {}

// Tuple represents a pair of values.
type Tuple struct {
	First  Value
	Second Value
}

func (Tuple) value() {}

// Closure pairs a function's parameters and body with the environment
// captured when the function expression was evaluated. Copies of a Closure
// share the captured environment, so the self-reference patch performed by
// Let is visible through every copy.
type Closure struct {
	Parameters []ast.Var
	Body       ast.Term
	Env        *Env
}

func (Closure) value() {}

// Display renders a value in its observable output form: decimal integers,
// true/false booleans, strings verbatim, tuples as "(first, second)", and an
// opaque placeholder for closures.
func Display(v Value) string {
	switch val := v.(type) {
	case Int:
		return strconv.FormatInt(val.Value, 10)
	case Str:
		return val.Value
	case Bool:
		return strconv.FormatBool(val.Value)
	case Tuple:
		return "(" + Display(val.First) + ", " + Display(val.Second) + ")"
	case Closure:
		return "[closure]"
	default:
		return "<unknown>"
	}
}

// valueKind returns the kind name used in operand error messages.
func valueKind(v Value) string {
	switch v.(type) {
	case Int:
		return "integer"
	case Str:
		return "string"
	case Bool:
		return "boolean"
	case Tuple:
		return "tuple"
	case Closure:
		return "closure"
	default:
		return "unknown"
	}
}

// valuesEqual is structural equality. Values of different kinds are unequal,
// tuples compare element-wise, and closures are never equal to anything,
// themselves included.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		return ok && av.Value == bv.Value
	case Str:
		bv, ok := b.(Str)
		return ok && av.Value == bv.Value
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Tuple:
		bv, ok := b.(Tuple)
		return ok && valuesEqual(av.First, bv.First) && valuesEqual(av.Second, bv.Second)
	default:
		return false
	}
}

// ErrUnhashable reports an attempt to hash a closure. The memoization cache
// consumes it by skipping the cache for that call; it never reaches callers.
var ErrUnhashable = errors.New("closures are not hashable")

// HashValue returns a deterministic structural digest of a value. Hashing is
// defined for every kind except Closure; a closure anywhere in the value,
// including inside a tuple, yields ErrUnhashable.
func HashValue(v Value) (uint64, error) {
	h := fnv.New64a()
	if err := writeValue(h, v); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func writeValue(w io.Writer, v Value) error {
	switch val := v.(type) {
	case Int:
		io.WriteString(w, "Int(")
		io.WriteString(w, strconv.FormatInt(val.Value, 10))
		io.WriteString(w, ")")
	case Str:
		io.WriteString(w, "Str(")
		io.WriteString(w, strconv.Itoa(len(val.Value)))
		io.WriteString(w, ":")
		io.WriteString(w, val.Value)
		io.WriteString(w, ")")
	case Bool:
		io.WriteString(w, "Bool(")
		io.WriteString(w, strconv.FormatBool(val.Value))
		io.WriteString(w, ")")
	case Tuple:
		io.WriteString(w, "Tuple(")
		if err := writeValue(w, val.First); err != nil {
			return err
		}
		io.WriteString(w, ", ")
		if err := writeValue(w, val.Second); err != nil {
			return err
		}
		io.WriteString(w, ")")
	case Closure:
		return ErrUnhashable
	}
	return nil
}
