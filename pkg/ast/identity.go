package ast

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"strconv"
)

// Equal reports whether two terms are structurally identical, locations
// included. Two terms decoded from the same serialized text are Equal.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() || a.TermLocation() != b.TermLocation() {
		return false
	}
	switch an := a.(type) {
	case *Int:
		return an.Value == b.(*Int).Value
	case *Str:
		return an.Value == b.(*Str).Value
	case *Bool:
		return an.Value == b.(*Bool).Value
	case *Var:
		return an.Text == b.(*Var).Text
	case *Let:
		bn := b.(*Let)
		return an.Name == bn.Name && Equal(an.Value, bn.Value) && Equal(an.Next, bn.Next)
	case *If:
		bn := b.(*If)
		return Equal(an.Condition, bn.Condition) && Equal(an.Then, bn.Then) && Equal(an.Otherwise, bn.Otherwise)
	case *Binary:
		bn := b.(*Binary)
		return an.Op == bn.Op && Equal(an.LHS, bn.LHS) && Equal(an.RHS, bn.RHS)
	case *Function:
		bn := b.(*Function)
		if len(an.Parameters) != len(bn.Parameters) {
			return false
		}
		for i := range an.Parameters {
			if an.Parameters[i] != bn.Parameters[i] {
				return false
			}
		}
		return Equal(an.Body, bn.Body)
	case *Call:
		bn := b.(*Call)
		if len(an.Arguments) != len(bn.Arguments) {
			return false
		}
		for i := range an.Arguments {
			if !Equal(an.Arguments[i], bn.Arguments[i]) {
				return false
			}
		}
		return Equal(an.Callee, bn.Callee)
	case *Print:
		return Equal(an.Value, b.(*Print).Value)
	case *Tuple:
		bn := b.(*Tuple)
		return Equal(an.First, bn.First) && Equal(an.Second, bn.Second)
	case *First:
		return Equal(an.Value, b.(*First).Value)
	case *Second:
		return Equal(an.Value, b.(*Second).Value)
	}
	return false
}

// Fingerprint returns a 64-bit digest of a term's full structural identity:
// node kinds, field contents, and locations. Structurally Equal terms have
// equal fingerprints.
func Fingerprint(t Term) uint64 {
	h := fnv.New64a()
	writeTerm(h, t)
	return h.Sum64()
}

func writeTerm(w io.Writer, t Term) {
	if t == nil {
		io.WriteString(w, "<nil>")
		return
	}
	io.WriteString(w, t.Kind())
	writeLocation(w, t.TermLocation())
	switch n := t.(type) {
	case *Int:
		writeInt64(w, n.Value)
	case *Str:
		writeInt64(w, int64(len(n.Value)))
		io.WriteString(w, n.Value)
	case *Bool:
		io.WriteString(w, strconv.FormatBool(n.Value))
	case *Var:
		io.WriteString(w, n.Text)
	case *Let:
		writeVar(w, n.Name)
		writeTerm(w, n.Value)
		writeTerm(w, n.Next)
	case *If:
		writeTerm(w, n.Condition)
		writeTerm(w, n.Then)
		writeTerm(w, n.Otherwise)
	case *Binary:
		io.WriteString(w, string(n.Op))
		writeTerm(w, n.LHS)
		writeTerm(w, n.RHS)
	case *Function:
		writeInt64(w, int64(len(n.Parameters)))
		for _, p := range n.Parameters {
			writeVar(w, p)
		}
		writeTerm(w, n.Body)
	case *Call:
		writeTerm(w, n.Callee)
		writeInt64(w, int64(len(n.Arguments)))
		for _, a := range n.Arguments {
			writeTerm(w, a)
		}
	case *Print:
		writeTerm(w, n.Value)
	case *Tuple:
		writeTerm(w, n.First)
		writeTerm(w, n.Second)
	case *First:
		writeTerm(w, n.Value)
	case *Second:
		writeTerm(w, n.Value)
	}
}

func writeVar(w io.Writer, v Var) {
	writeInt64(w, int64(len(v.Text)))
	io.WriteString(w, v.Text)
	writeLocation(w, v.Location)
}

func writeLocation(w io.Writer, loc Location) {
	writeInt64(w, int64(loc.Start))
	writeInt64(w, int64(loc.End))
	io.WriteString(w, loc.Filename)
}

func writeInt64(w io.Writer, v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	w.Write(buf[:])
}
