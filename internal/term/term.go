// Package term implements the KIF-like S-expression term language: the
// closed Atom/Var/Lst sum type, interning, and the structural
// attributes (vars, weight, Skolem detection) every other package in
// this module builds on.
package term

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-set/v3"
)

// SkolemPrefix is the reserved prefix for generated Skolem constants
// and functions. An Atom whose value begins with this prefix is
// treated as a Skolem term throughout the engine.
const SkolemPrefix = "skolem$"

// Term is the closed sum type of the logic: Atom, Var, or Lst. It is
// intentionally a marker interface — type switches and the accessor
// methods below are the only supported ways to inspect a Term, so the
// set of implementations can never grow outside this package.
type Term interface {
	fmt.Stringer

	// Vars returns the set of Var names appearing anywhere in the term.
	Vars() *set.Set[string]

	// Weight is the structural size: an atom is 1, a list is
	// 1 + sum(weight(child)).
	Weight() int

	// ContainsSkolem reports whether any Atom reachable from this term
	// has a value beginning with SkolemPrefix.
	ContainsSkolem() bool

	// Equal reports structural equality (Atoms compared after
	// interning, Vars by name, Lst by ordered element equality).
	Equal(other Term) bool

	term() // unexported: seals the interface to this package.
}

// Atom is a symbol or string literal. Atoms compare by Value alone
// (IsQuoted is ignored), so two Atoms with the same Value are equal
// whether or not they were built by NewAtom. NewAtom records every
// value in a process-wide table; Atom itself is a plain value type,
// not a shared pointer.
type Atom struct {
	Value    string
	IsQuoted bool // lexical flag; printer-only, does not affect Equal
}

// Var is a logic variable. Name must begin with "?".
type Var struct {
	Name string
}

// Lst is an ordered, possibly empty sequence of child terms. The
// operator, when Lst is nonempty, is Children[0].
type Lst struct {
	Children []Term
}

func (Atom) term() {}
func (Var) term()  {}
func (Lst) term()  {}

var internTable sync.Map // atom value -> struct{}{}, for every value NewAtom has seen

// NewAtom constructs an interned Atom. A bare (unquoted) symbol atom
// can never be empty per the lexical grammar (spec.md §4.1): the
// lexer's bare-atom path itself refuses to emit a zero-length token,
// so an empty unquoted value here means a caller built one
// programmatically, which is a bug, not a runtime input error, and
// panics. A quoted string literal has no such constraint — `""` is a
// well-formed, if unusual, KIF string atom — so it is accepted as-is.
func NewAtom(value string, quoted bool) Atom {
	if value == "" && !quoted {
		panic("term: empty atom value")
	}
	internTable.LoadOrStore(value, struct{}{})
	return Atom{Value: value, IsQuoted: quoted}
}

// NewVar constructs a Var. Panics if name is empty or does not begin
// with "?", mirroring the grammar constraint for the same reason as
// NewAtom.
func NewVar(name string) Var {
	if len(name) < 2 || name[0] != '?' {
		panic(fmt.Sprintf("term: invalid variable name %q", name))
	}
	return Var{Name: name}
}

// NewList constructs a Lst from the given children (nil/empty allowed).
func NewList(children ...Term) Lst {
	return Lst{Children: children}
}

func (a Atom) String() string {
	if a.IsQuoted {
		return quoteString(a.Value)
	}
	return a.Value
}

func (v Var) String() string { return v.Name }

func (l Lst) String() string {
	parts := make([]string, len(l.Children))
	for i, c := range l.Children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (a Atom) Vars() *set.Set[string] { return set.New[string](0) }

func (v Var) Vars() *set.Set[string] {
	s := set.New[string](1)
	s.Insert(v.Name)
	return s
}

func (l Lst) Vars() *set.Set[string] {
	s := set.New[string](0)
	for _, c := range l.Children {
		for _, name := range c.Vars().Slice() {
			s.Insert(name)
		}
	}
	return s
}

func (a Atom) Weight() int { return 1 }
func (v Var) Weight() int  { return 1 }
func (l Lst) Weight() int {
	w := 1
	for _, c := range l.Children {
		w += c.Weight()
	}
	return w
}

func (a Atom) ContainsSkolem() bool { return strings.HasPrefix(a.Value, SkolemPrefix) }
func (v Var) ContainsSkolem() bool { return false }
func (l Lst) ContainsSkolem() bool {
	for _, c := range l.Children {
		if c.ContainsSkolem() {
			return true
		}
	}
	return false
}

func (a Atom) Equal(other Term) bool {
	o, ok := other.(Atom)
	return ok && o.Value == a.Value
}

func (v Var) Equal(other Term) bool {
	o, ok := other.(Var)
	return ok && o.Name == v.Name
}

func (l Lst) Equal(other Term) bool {
	o, ok := other.(Lst)
	if !ok || len(o.Children) != len(l.Children) {
		return false
	}
	for i, c := range l.Children {
		if !c.Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Operator returns Children[0] and true if l is nonempty, else
// (nil, false).
func (l Lst) Operator() (Term, bool) {
	if len(l.Children) == 0 {
		return nil, false
	}
	return l.Children[0], true
}

// OperatorSymbol returns the operator's Atom value, or "" if the list
// is empty or its operator is not an Atom.
func (l Lst) OperatorSymbol() string {
	op, ok := l.Operator()
	if !ok {
		return ""
	}
	a, ok := op.(Atom)
	if !ok {
		return ""
	}
	return a.Value
}

// Arity returns the number of arguments after the operator (0 for an
// empty list, len(Children)-1 otherwise).
func (l Lst) Arity() int {
	if len(l.Children) == 0 {
		return 0
	}
	return len(l.Children) - 1
}
