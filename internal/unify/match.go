package unify

import "github.com/codenerd/reasonkit/internal/term"

// Match performs one-way matching: only pattern's variables may bind,
// to whatever subterm of target occupies the corresponding position.
// Constants and list shapes in pattern must equal the corresponding
// positions in target exactly; target-side variables are opaque to
// the match (never bound, compared only for structural equality with
// whatever the pattern variable is already bound to).
func Match(pattern, target term.Term, s Subst) (Subst, bool) {
	switch p := pattern.(type) {
	case term.Var:
		if bound, ok := s[p.Name]; ok {
			return s, bound.Equal(target)
		}
		return s.extend(p.Name, target), true
	case term.Atom:
		t, ok := target.(term.Atom)
		if !ok || t.Value != p.Value {
			return nil, false
		}
		return s, true
	case term.Lst:
		t, ok := target.(term.Lst)
		if !ok || len(t.Children) != len(p.Children) {
			return nil, false
		}
		cur := s
		for i := range p.Children {
			next, ok := Match(p.Children[i], t.Children[i], cur)
			if !ok {
				return nil, false
			}
			cur = next
		}
		return cur, true
	default:
		return nil, false
	}
}

// Generalizes reports whether pattern generalizes target: i.e.
// Match(pattern, target, Empty()) succeeds.
func Generalizes(pattern, target term.Term) bool {
	_, ok := Match(pattern, target, Empty())
	return ok
}

// IsInstanceOf reports whether target is an instance of pattern
// (symmetric framing of Generalizes, provided for call-site clarity
// at findInstancesOf/findGeneralizationsOf sites).
func IsInstanceOf(target, pattern term.Term) bool {
	return Generalizes(pattern, target)
}
