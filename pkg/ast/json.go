package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeFile decodes one serialized program unit. The expected shape is
// {"name": ..., "expression": {...}, "location": {...}} with the expression
// in the tagged term representation handled by DecodeTerm.
func DecodeFile(data []byte) (*File, error) {
	var raw struct {
		Name       string          `json:"name"`
		Expression json.RawMessage `json:"expression"`
		Location   Location        `json:"location"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}
	if len(raw.Expression) == 0 {
		return nil, fmt.Errorf("decode file: missing expression")
	}
	expr, err := DecodeTerm(raw.Expression)
	if err != nil {
		return nil, err
	}
	return &File{Name: raw.Name, Expression: expr, Location: raw.Location}, nil
}

// DecodeTerm decodes one term from the tagged representation: an object with
// a "kind" discriminator and per-kind fields.
func DecodeTerm(data []byte) (Term, error) {
	var envelope struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode term: %w", err)
	}

	switch envelope.Kind {
	case "Int":
		var raw struct {
			Value    int64    `json:"value"`
			Location Location `json:"location"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode Int: %w", err)
		}
		return &Int{Value: raw.Value, Location: raw.Location}, nil

	case "Str":
		var raw struct {
			Value    string   `json:"value"`
			Location Location `json:"location"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode Str: %w", err)
		}
		return &Str{Value: raw.Value, Location: raw.Location}, nil

	case "Bool":
		var raw struct {
			Value    bool     `json:"value"`
			Location Location `json:"location"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode Bool: %w", err)
		}
		return &Bool{Value: raw.Value, Location: raw.Location}, nil

	case "Var":
		var raw Var
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode Var: %w", err)
		}
		return &raw, nil

	case "Let":
		var raw struct {
			Name     Var             `json:"name"`
			Value    json.RawMessage `json:"value"`
			Next     json.RawMessage `json:"next"`
			Location Location        `json:"location"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode Let: %w", err)
		}
		value, err := DecodeTerm(raw.Value)
		if err != nil {
			return nil, err
		}
		next, err := DecodeTerm(raw.Next)
		if err != nil {
			return nil, err
		}
		return &Let{Name: raw.Name, Value: value, Next: next, Location: raw.Location}, nil

	case "If":
		var raw struct {
			Condition json.RawMessage `json:"condition"`
			Then      json.RawMessage `json:"then"`
			Otherwise json.RawMessage `json:"otherwise"`
			Location  Location        `json:"location"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode If: %w", err)
		}
		cond, err := DecodeTerm(raw.Condition)
		if err != nil {
			return nil, err
		}
		then, err := DecodeTerm(raw.Then)
		if err != nil {
			return nil, err
		}
		otherwise, err := DecodeTerm(raw.Otherwise)
		if err != nil {
			return nil, err
		}
		return &If{Condition: cond, Then: then, Otherwise: otherwise, Location: raw.Location}, nil

	case "Binary":
		var raw struct {
			LHS      json.RawMessage `json:"lhs"`
			Op       string          `json:"op"`
			RHS      json.RawMessage `json:"rhs"`
			Location Location        `json:"location"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode Binary: %w", err)
		}
		op, err := decodeOp(raw.Op)
		if err != nil {
			return nil, err
		}
		lhs, err := DecodeTerm(raw.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := DecodeTerm(raw.RHS)
		if err != nil {
			return nil, err
		}
		return &Binary{LHS: lhs, Op: op, RHS: rhs, Location: raw.Location}, nil

	case "Function":
		var raw struct {
			Parameters []Var           `json:"parameters"`
			Value      json.RawMessage `json:"value"`
			Location   Location        `json:"location"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode Function: %w", err)
		}
		body, err := DecodeTerm(raw.Value)
		if err != nil {
			return nil, err
		}
		return &Function{Parameters: raw.Parameters, Body: body, Location: raw.Location}, nil

	case "Call":
		var raw struct {
			Callee    json.RawMessage   `json:"callee"`
			Arguments []json.RawMessage `json:"arguments"`
			Location  Location          `json:"location"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode Call: %w", err)
		}
		callee, err := DecodeTerm(raw.Callee)
		if err != nil {
			return nil, err
		}
		args := make([]Term, len(raw.Arguments))
		for i, a := range raw.Arguments {
			arg, err := DecodeTerm(a)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return &Call{Callee: callee, Arguments: args, Location: raw.Location}, nil

	case "Print":
		value, loc, err := decodeValueField(data, "Print")
		if err != nil {
			return nil, err
		}
		return &Print{Value: value, Location: loc}, nil

	case "Tuple":
		var raw struct {
			First    json.RawMessage `json:"first"`
			Second   json.RawMessage `json:"second"`
			Location Location        `json:"location"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode Tuple: %w", err)
		}
		first, err := DecodeTerm(raw.First)
		if err != nil {
			return nil, err
		}
		second, err := DecodeTerm(raw.Second)
		if err != nil {
			return nil, err
		}
		return &Tuple{First: first, Second: second, Location: raw.Location}, nil

	case "First":
		value, loc, err := decodeValueField(data, "First")
		if err != nil {
			return nil, err
		}
		return &First{Value: value, Location: loc}, nil

	case "Second":
		value, loc, err := decodeValueField(data, "Second")
		if err != nil {
			return nil, err
		}
		return &Second{Value: value, Location: loc}, nil

	case "":
		return nil, fmt.Errorf("decode term: missing kind")

	default:
		return nil, fmt.Errorf("decode term: unknown kind %q", envelope.Kind)
	}
}

// decodeValueField handles the Print/First/Second shape, which share a single
// "value" child.
func decodeValueField(data []byte, kind string) (Term, Location, error) {
	var raw struct {
		Value    json.RawMessage `json:"value"`
		Location Location        `json:"location"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Location{}, fmt.Errorf("decode %s: %w", kind, err)
	}
	value, err := DecodeTerm(raw.Value)
	if err != nil {
		return nil, Location{}, err
	}
	return value, raw.Location, nil
}

func decodeOp(name string) (BinaryOp, error) {
	switch op := BinaryOp(name); op {
	case OpAdd, OpSub, OpMul, OpDiv, OpRem,
		OpEq, OpNeq, OpLt, OpGt, OpLte, OpGte,
		OpAnd, OpOr:
		return op, nil
	}
	return "", fmt.Errorf("decode Binary: unknown operator %q", name)
}
