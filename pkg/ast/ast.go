// Package ast defines the rinha expression tree evaluated by the interpreter.
package ast

// Location is a source range in the original program text.
type Location struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Filename string `json:"filename"`
}

// Term is the interface implemented by all expression nodes.
type Term interface {
	Kind() string
	TermLocation() Location
	termNode() // sealed marker
}

// BinaryOp identifies a binary operator. The names match the tags used by the
// serialized representation.
type BinaryOp string

const (
	OpAdd BinaryOp = "Add"
	OpSub BinaryOp = "Sub"
	OpMul BinaryOp = "Mul"
	OpDiv BinaryOp = "Div"
	OpRem BinaryOp = "Rem"
	OpEq  BinaryOp = "Eq"
	OpNeq BinaryOp = "Neq"
	OpLt  BinaryOp = "Lt"
	OpGt  BinaryOp = "Gt"
	OpLte BinaryOp = "Lte"
	OpGte BinaryOp = "Gte"
	OpAnd BinaryOp = "And"
	OpOr  BinaryOp = "Or"
)

// File is one program unit: a module name, its root expression, and a base
// location anchoring the whole file.
type File struct {
	Name       string
	Expression Term
	Location   Location
}

// --- Literals ---

type Int struct {
	Value    int64
	Location Location
}

func (n *Int) Kind() string           { return "Int" }
func (n *Int) TermLocation() Location { return n.Location }
func (n *Int) termNode()              {}

type Str struct {
	Value    string
	Location Location
}

func (n *Str) Kind() string           { return "Str" }
func (n *Str) TermLocation() Location { return n.Location }
func (n *Str) termNode()              {}

type Bool struct {
	Value    bool
	Location Location
}

func (n *Bool) Kind() string           { return "Bool" }
func (n *Bool) TermLocation() Location { return n.Location }
func (n *Bool) termNode()              {}

// --- Variables and bindings ---

// Var is a variable reference. As a Let name it carries the name's own
// location rather than the binding's.
type Var struct {
	Text     string   `json:"text"`
	Location Location `json:"location"`
}

func (n *Var) Kind() string           { return "Var" }
func (n *Var) TermLocation() Location { return n.Location }
func (n *Var) termNode()              {}

// Let binds Name to the result of Value and evaluates Next with the binding
// in scope.
type Let struct {
	Name     Var
	Value    Term
	Next     Term
	Location Location
}

func (n *Let) Kind() string           { return "Let" }
func (n *Let) TermLocation() Location { return n.Location }
func (n *Let) termNode()              {}

// --- Control flow ---

type If struct {
	Condition Term
	Then      Term
	Otherwise Term
	Location  Location
}

func (n *If) Kind() string           { return "If" }
func (n *If) TermLocation() Location { return n.Location }
func (n *If) termNode()              {}

// --- Operators ---

type Binary struct {
	LHS      Term
	Op       BinaryOp
	RHS      Term
	Location Location
}

func (n *Binary) Kind() string           { return "Binary" }
func (n *Binary) TermLocation() Location { return n.Location }
func (n *Binary) termNode()              {}

// --- Functions ---

type Function struct {
	Parameters []Var
	Body       Term
	Location   Location
}

func (n *Function) Kind() string           { return "Function" }
func (n *Function) TermLocation() Location { return n.Location }
func (n *Function) termNode()              {}

type Call struct {
	Callee    Term
	Arguments []Term
	Location  Location
}

func (n *Call) Kind() string           { return "Call" }
func (n *Call) TermLocation() Location { return n.Location }
func (n *Call) termNode()              {}

// --- Effects ---

type Print struct {
	Value    Term
	Location Location
}

func (n *Print) Kind() string           { return "Print" }
func (n *Print) TermLocation() Location { return n.Location }
func (n *Print) termNode()              {}

// --- Tuples ---

type Tuple struct {
	First    Term
	Second   Term
	Location Location
}

func (n *Tuple) Kind() string           { return "Tuple" }
func (n *Tuple) TermLocation() Location { return n.Location }
func (n *Tuple) termNode()              {}

type First struct {
	Value    Term
	Location Location
}

func (n *First) Kind() string           { return "First" }
func (n *First) TermLocation() Location { return n.Location }
func (n *First) termNode()              {}

type Second struct {
	Value    Term
	Location Location
}

func (n *Second) Kind() string           { return "Second" }
func (n *Second) TermLocation() Location { return n.Location }
func (n *Second) termNode()              {}

// IsPure classifies a term for call memoization. The classification is
// deliberately shallow: Print is impure, a Function is exactly as pure as its
// body, and every other kind counts as pure without inspecting its children.
// A Let or If wrapping a Print further down is still classified pure; changing
// this would change which calls get memoized, so it stays shallow.
func IsPure(t Term) bool {
	switch n := t.(type) {
	case *Print:
		return false
	case *Function:
		return IsPure(n.Body)
	default:
		return true
	}
}
