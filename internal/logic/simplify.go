package logic

import "github.com/codenerd/reasonkit/internal/term"

// maxSimplifyDepth bounds the simplification fixpoint per spec.md
// §4.3: "repeatedly applies ... to a fixed point capped at depth 5".
const maxSimplifyDepth = 5

// Warner receives a single warning message. internal/logging.Logger
// satisfies this structurally; logic deliberately does not import
// internal/logging to avoid a dependency edge between a pure-algorithm
// package and the ambient logging stack.
type Warner interface {
	Warnf(format string, args ...interface{})
}

// Simplify repeatedly rewrites (not (not X)) -> X and recurses into
// list children until a fixed point, or until maxSimplifyDepth passes
// have run without convergence (in which case, if w is non-nil, a
// warning is logged and the best-effort result after the last pass is
// returned).
func Simplify(t term.Term, w Warner) term.Term {
	cur := t
	for i := 0; i < maxSimplifyDepth; i++ {
		next, changed := simplifyOnce(cur)
		if !changed {
			return next
		}
		cur = next
	}
	if w != nil {
		w.Warnf("simplify: did not converge within %d passes", maxSimplifyDepth)
	}
	return cur
}

func simplifyOnce(t term.Term) (term.Term, bool) {
	lst, ok := t.(term.Lst)
	if !ok {
		return t, false
	}

	if lst.OperatorSymbol() == "not" && lst.Arity() == 1 {
		if inner, ok := lst.Children[1].(term.Lst); ok && inner.OperatorSymbol() == "not" && inner.Arity() == 1 {
			simplified, _ := simplifyOnce(inner.Children[1])
			return simplified, true
		}
	}

	changed := false
	children := make([]term.Term, len(lst.Children))
	for i, c := range lst.Children {
		nc, didChange := simplifyOnce(c)
		children[i] = nc
		changed = changed || didChange
	}
	if !changed {
		return lst, false
	}
	return term.NewList(children...), true
}
