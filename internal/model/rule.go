package model

import "github.com/codenerd/reasonkit/internal/term"

// RuleID uniquely identifies a Rule.
type RuleID string

// Rule is an implication or bi-implication over terms (spec.md §3).
type Rule struct {
	ID           RuleID
	Form         term.Lst // operator "=>" or "<=>", three elements
	Antecedent   term.Term
	Consequent   term.Term
	Priority     float64
	Antecedents  []term.Term // conjuncts
	SourceNoteID string
}

// NewRule validates Form against spec.md §3's Rule invariants and
// constructs a Rule. It returns warnings (never errors) for
// consequent variables unbound by the antecedent or a local
// quantifier, but only when Form's operator is "<=>" — spec.md §3
// states this check is "only for <=>".
func NewRule(id RuleID, form term.Lst, priority float64, sourceNoteID string) (*Rule, []string, error) {
	op := form.OperatorSymbol()
	if op != "=>" && op != "<=>" {
		return nil, nil, NewValidationError("rule form operator must be => or <=>")
	}
	if len(form.Children) != 3 {
		return nil, nil, NewValidationError("rule form must have three elements: (op antecedent consequent)")
	}

	antecedent := form.Children[1]
	consequent := form.Children[2]

	conjuncts, err := splitAntecedent(antecedent)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	if op == "<=>" {
		warnings = unboundConsequentVars(antecedent, consequent)
	}

	return &Rule{
		ID:           id,
		Form:         form,
		Antecedent:   antecedent,
		Consequent:   consequent,
		Priority:     priority,
		Antecedents:  conjuncts,
		SourceNoteID: sourceNoteID,
	}, warnings, nil
}

// splitAntecedent validates that antecedent is either a single list,
// `(not list)`, `(and clause ...)` with each clause a list or
// `(not list)`, or the literal atom `true`, and returns its conjuncts
// (a single-element slice for the first two shapes).
func splitAntecedent(antecedent term.Term) ([]term.Term, error) {
	if a, ok := antecedent.(term.Atom); ok {
		if a.Value == "true" {
			return nil, nil
		}
		return nil, NewValidationError("bare atom antecedent must be the literal atom true")
	}

	lst, ok := antecedent.(term.Lst)
	if !ok {
		return nil, NewValidationError("antecedent must be a list, (not list), (and clause...), or true")
	}

	if lst.OperatorSymbol() == "and" {
		clauses := lst.Children[1:]
		for _, c := range clauses {
			if !isClause(c) {
				return nil, NewValidationError("each antecedent clause must be a list or (not list)")
			}
		}
		return clauses, nil
	}

	if !isClause(lst) {
		return nil, NewValidationError("antecedent must be a list or (not list)")
	}
	return []term.Term{lst}, nil
}

func isClause(t term.Term) bool {
	lst, ok := t.(term.Lst)
	if !ok {
		return false
	}
	if lst.OperatorSymbol() == "not" {
		if lst.Arity() != 1 {
			return false
		}
		_, ok := lst.Children[1].(term.Lst)
		return ok
	}
	return true
}

// unboundConsequentVars returns, as printed strings, every variable in
// consequent not bound by antecedent or a local `forall`/`exists`
// quantifier within consequent itself.
func unboundConsequentVars(antecedent, consequent term.Term) []string {
	bound := antecedent.Vars()
	localQuant := quantifiedVarsIn(consequent)

	var unbound []string
	for _, v := range consequent.Vars().Slice() {
		if bound.Contains(v) || localQuant.Contains(v) {
			continue
		}
		unbound = append(unbound, v)
	}
	return unbound
}

func quantifiedVarsIn(t term.Term) *setOfStrings {
	out := newSetOfStrings()
	lst, ok := t.(term.Lst)
	if !ok {
		return out
	}
	op := lst.OperatorSymbol()
	if (op == "forall" || op == "exists") && len(lst.Children) == 3 {
		if varList, ok := lst.Children[1].(term.Lst); ok {
			for _, c := range varList.Children {
				if v, ok := c.(term.Var); ok {
					out.insert(v.Name)
				}
			}
		}
	}
	for _, c := range lst.Children {
		out.union(quantifiedVarsIn(c))
	}
	return out
}

// setOfStrings is a tiny local helper so this file does not need to
// depend on go-set for a throwaway set used only inside this
// function's recursion.
type setOfStrings struct{ m map[string]struct{} }

func newSetOfStrings() *setOfStrings { return &setOfStrings{m: make(map[string]struct{})} }
func (s *setOfStrings) insert(v string) { s.m[v] = struct{}{} }
func (s *setOfStrings) Contains(v string) bool {
	_, ok := s.m[v]
	return ok
}
func (s *setOfStrings) union(other *setOfStrings) {
	for k := range other.m {
		s.m[k] = struct{}{}
	}
}
