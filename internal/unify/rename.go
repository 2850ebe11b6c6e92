package unify

import "github.com/codenerd/reasonkit/internal/term"

// FreshSource yields successive fresh suffixes for variable renaming.
// A *Cognition or rule-application call site typically backs this
// with an atomic counter so concurrent renamings never collide.
type FreshSource func() string

// Rename returns a term equal to t with every variable uniformly
// alpha-renamed to a fresh name, using src to mint suffixes. Two
// occurrences of the same variable in t always receive the same
// fresh name within a single Rename call.
func Rename(t term.Term, src FreshSource) term.Term {
	mapping := make(map[string]string)
	return renameWith(t, mapping, src)
}

func renameWith(t term.Term, mapping map[string]string, src FreshSource) term.Term {
	switch v := t.(type) {
	case term.Var:
		fresh, ok := mapping[v.Name]
		if !ok {
			fresh = v.Name + "$" + src()
			mapping[v.Name] = fresh
		}
		return term.NewVar(fresh)
	case term.Lst:
		children := make([]term.Term, len(v.Children))
		for i, c := range v.Children {
			children[i] = renameWith(c, mapping, src)
		}
		return term.NewList(children...)
	default:
		return t
	}
}
