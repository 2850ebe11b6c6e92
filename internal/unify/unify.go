package unify

import "github.com/codenerd/reasonkit/internal/term"

// Unify computes the most general unifier of a and b extending s, or
// reports failure. Variables already bound in s are dereferenced
// before comparison. An occur check prevents binding a variable to a
// term that (after dereferencing) contains that same variable.
func Unify(a, b term.Term, s Subst) (Subst, bool) {
	a = Deref(a, s)
	b = Deref(b, s)

	av, aIsVar := a.(term.Var)
	bv, bIsVar := b.(term.Var)

	switch {
	case aIsVar && bIsVar && av.Name == bv.Name:
		return s, true
	case aIsVar:
		return bindVar(av, b, s)
	case bIsVar:
		return bindVar(bv, a, s)
	}

	aAtom, aIsAtom := a.(term.Atom)
	bAtom, bIsAtom := b.(term.Atom)
	if aIsAtom || bIsAtom {
		if aIsAtom && bIsAtom && aAtom.Value == bAtom.Value {
			return s, true
		}
		return nil, false
	}

	aLst, aOk := a.(term.Lst)
	bLst, bOk := b.(term.Lst)
	if !aOk || !bOk {
		return nil, false
	}
	if len(aLst.Children) != len(bLst.Children) {
		return nil, false
	}

	cur := s
	for i := range aLst.Children {
		next, ok := Unify(aLst.Children[i], bLst.Children[i], cur)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func bindVar(v term.Var, t term.Term, s Subst) (Subst, bool) {
	if occurs(v.Name, t, s) {
		return nil, false
	}
	return s.extend(v.Name, t), true
}

// occurs reports whether variable name appears anywhere inside t,
// following bindings already present in s.
func occurs(name string, t term.Term, s Subst) bool {
	t = Deref(t, s)
	switch v := t.(type) {
	case term.Var:
		return v.Name == name
	case term.Lst:
		for _, c := range v.Children {
			if occurs(name, c, s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
