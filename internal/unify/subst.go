// Package unify implements unification, one-way matching, and
// substitution over internal/term's Term sum type.
package unify

import "github.com/codenerd/reasonkit/internal/term"

// Subst is a variable binding environment. The zero value is the
// empty substitution. Subst is treated as immutable by convention:
// every function that extends one returns a new Subst rather than
// mutating its argument, so a caller holding a Subst never observes
// it change underfoot.
type Subst map[string]term.Term

// Empty returns a fresh empty substitution.
func Empty() Subst {
	return Subst{}
}

// extend returns a new Subst equal to s plus name->t.
func (s Subst) extend(name string, t term.Term) Subst {
	out := make(Subst, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[name] = t
	return out
}

// Deref follows variable bindings in s until reaching a non-variable
// term or an unbound variable.
func Deref(t term.Term, s Subst) term.Term {
	for {
		v, ok := t.(term.Var)
		if !ok {
			return t
		}
		bound, ok := s[v.Name]
		if !ok {
			return t
		}
		t = bound
	}
}

// Substitute applies s to t recursively and returns the resulting
// term. Substitute is idempotent: Substitute(Substitute(t, s), s)
// equals Substitute(t, s), because every variable reachable in the
// result has already been fully dereferenced through s.
func Substitute(t term.Term, s Subst) term.Term {
	if len(s) == 0 {
		return t
	}
	switch v := t.(type) {
	case term.Atom:
		return v
	case term.Var:
		bound := Deref(v, s)
		if _, stillVar := bound.(term.Var); stillVar {
			return bound
		}
		return Substitute(bound, s)
	case term.Lst:
		children := make([]term.Term, len(v.Children))
		changed := false
		for i, c := range v.Children {
			nc := Substitute(c, s)
			children[i] = nc
			if !changed && !sameTerm(nc, c) {
				changed = true
			}
		}
		if !changed {
			return v
		}
		return term.NewList(children...)
	default:
		return t
	}
}

func sameTerm(a, b term.Term) bool {
	return a.Equal(b)
}
