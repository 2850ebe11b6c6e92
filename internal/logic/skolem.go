// Package logic implements existential elimination (Skolemization)
// and double-negation simplification over internal/term terms.
package logic

import (
	"github.com/codenerd/reasonkit/internal/term"
	"github.com/codenerd/reasonkit/internal/unify"
)

// Skolemize replaces every existentially quantified variable reachable
// in t with a fresh Skolem constant (no enclosing universal context)
// or a fresh Skolem function applied to universalVars (when a
// universal context is present). Free, non-quantified variables are
// left intact. universalVars accumulates as nested `forall` forms are
// encountered during the walk.
func Skolemize(t term.Term, universalVars []term.Var, src unify.FreshSource) term.Term {
	lst, ok := t.(term.Lst)
	if !ok {
		return t
	}

	switch lst.OperatorSymbol() {
	case "exists":
		if len(lst.Children) != 3 {
			return rebuildChildren(lst, universalVars, src)
		}
		varList, ok := lst.Children[1].(term.Lst)
		if !ok {
			return rebuildChildren(lst, universalVars, src)
		}
		body := lst.Children[2]

		subst := make(map[string]term.Term)
		for _, vt := range varList.Children {
			v, ok := vt.(term.Var)
			if !ok {
				continue
			}
			subst[v.Name] = skolemTerm(universalVars, src)
		}
		substituted := substituteNames(body, subst)
		return Skolemize(substituted, universalVars, src)

	case "forall":
		if len(lst.Children) != 3 {
			return rebuildChildren(lst, universalVars, src)
		}
		varList, ok := lst.Children[1].(term.Lst)
		if !ok {
			return rebuildChildren(lst, universalVars, src)
		}
		nestedUniversal := append(append([]term.Var{}, universalVars...), varsOf(varList)...)
		body := Skolemize(lst.Children[2], nestedUniversal, src)
		return term.NewList(lst.Children[0], lst.Children[1], body)

	default:
		return rebuildChildren(lst, universalVars, src)
	}
}

func rebuildChildren(lst term.Lst, universalVars []term.Var, src unify.FreshSource) term.Term {
	children := make([]term.Term, len(lst.Children))
	for i, c := range lst.Children {
		children[i] = Skolemize(c, universalVars, src)
	}
	return term.NewList(children...)
}

func varsOf(lst term.Lst) []term.Var {
	out := make([]term.Var, 0, len(lst.Children))
	for _, c := range lst.Children {
		if v, ok := c.(term.Var); ok {
			out = append(out, v)
		}
	}
	return out
}

// skolemTerm builds a fresh Skolem constant, or a Skolem function
// applied to universalVars if any are in scope.
func skolemTerm(universalVars []term.Var, src unify.FreshSource) term.Term {
	sym := term.NewAtom(term.SkolemPrefix+src(), false)
	if len(universalVars) == 0 {
		return sym
	}
	children := make([]term.Term, 0, len(universalVars)+1)
	children = append(children, sym)
	for _, v := range universalVars {
		children = append(children, v)
	}
	return term.NewList(children...)
}

// substituteNames replaces bare variable occurrences by name (not via
// unify.Subst, since that operates on bound variables produced by
// unification; here we are rewriting the term's own quantified
// variables, which are never "bound" in the unify.Subst sense).
func substituteNames(t term.Term, names map[string]term.Term) term.Term {
	switch v := t.(type) {
	case term.Var:
		if repl, ok := names[v.Name]; ok {
			return repl
		}
		return v
	case term.Lst:
		children := make([]term.Term, len(v.Children))
		for i, c := range v.Children {
			children[i] = substituteNames(c, names)
		}
		return term.NewList(children...)
	default:
		return t
	}
}
