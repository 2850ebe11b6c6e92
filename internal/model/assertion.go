package model

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/codenerd/reasonkit/internal/term"
)

// AssertionID uniquely identifies a committed Assertion, minted with
// google/uuid at commit time.
type AssertionID string

// AssertionType classifies an assertion's quantification/ground
// status per spec.md §3.
type AssertionType int

const (
	Ground AssertionType = iota
	Skolemized
	Universal
)

func (t AssertionType) String() string {
	switch t {
	case Ground:
		return "GROUND"
	case Skolemized:
		return "SKOLEMIZED"
	case Universal:
		return "UNIVERSAL"
	default:
		return "UNKNOWN"
	}
}

// Assertion is a committed term with provenance and activity status.
// Once constructed, the scalar/slice fields are never mutated in
// place by any caller except the owning TMS under its write lock
// (spec.md §3 "Ownership/lifecycle"); Knowledge and Cognition hold
// only AssertionID and re-fetch through the TMS.
type Assertion struct {
	ID               AssertionID
	Kif              term.Lst
	Priority         float64
	Timestamp        int64 // monotonic sequence, not wall-clock
	SourceNoteID     string // "" if none
	JustificationIDs *set.Set[AssertionID]
	Type             AssertionType
	IsEquality       bool
	IsOrientedEq     bool
	Negated          bool
	QuantifiedVars   []term.Var
	DerivationDepth  int
	IsActive         bool
	KB               string
}

// AssertionParams are the caller-supplied fields used to construct an
// Assertion; derived/invariant fields (Negated, Type, effective-term
// consistency) are computed and checked by NewAssertion, not supplied
// directly.
type AssertionParams struct {
	ID               AssertionID
	Kif              term.Lst
	Priority         float64
	Timestamp        int64
	SourceNoteID     string
	Justifications   []AssertionID
	IsEquality       bool
	IsOrientedEq     bool
	QuantifiedVars   []term.Var
	DerivationDepth  int
	KB               string
}

// NewAssertion constructs and validates an Assertion per spec.md §3's
// invariants:
//   - Negated iff Kif's operator is "not".
//   - Type is Universal iff Kif's operator is "forall" and
//     QuantifiedVars is nonempty; every other type has empty
//     QuantifiedVars.
func NewAssertion(p AssertionParams) (*Assertion, error) {
	op := p.Kif.OperatorSymbol()
	negated := op == "not"

	isForall := op == "forall" && len(p.QuantifiedVars) > 0
	if op == "forall" && len(p.QuantifiedVars) == 0 {
		return nil, NewValidationError("forall operator requires nonempty QuantifiedVars")
	}
	if op != "forall" && len(p.QuantifiedVars) > 0 {
		return nil, NewValidationError("QuantifiedVars must be empty for non-UNIVERSAL assertions")
	}

	typ := Ground
	if isForall {
		typ = Universal
		if len(p.Kif.Children) != 3 {
			return nil, NewValidationError("forall form must have three elements: (forall (vars) body)")
		}
	}

	just := set.New[AssertionID](len(p.Justifications))
	for _, j := range p.Justifications {
		if j == p.ID {
			return nil, NewValidationError("assertion cannot justify itself")
		}
		just.Insert(j)
	}

	return &Assertion{
		ID:               p.ID,
		Kif:              p.Kif,
		Priority:         p.Priority,
		Timestamp:        p.Timestamp,
		SourceNoteID:     p.SourceNoteID,
		JustificationIDs: just,
		Type:             typ,
		IsEquality:       p.IsEquality,
		IsOrientedEq:     p.IsOrientedEq,
		Negated:          negated,
		QuantifiedVars:   p.QuantifiedVars,
		DerivationDepth:  p.DerivationDepth,
		IsActive:         false,
		KB:               p.KB,
	}, nil
}

// EffectiveTerm returns the term spec.md §3 calls the "effective
// term": Kif.Children[2] for UNIVERSAL, Kif.Children[1] for a negated
// non-universal assertion, otherwise Kif itself.
func (a *Assertion) EffectiveTerm() term.Term {
	switch {
	case a.Type == Universal:
		return a.Kif.Children[2]
	case a.Negated && len(a.Kif.Children) > 1:
		return a.Kif.Children[1]
	default:
		return a.Kif
	}
}

// DemoteToSkolemized returns a copy of a with Type set to Skolemized
// if a is GROUND (any other type is returned unchanged, as a itself),
// per Knowledge.commit step 2 ("demote derivedType from
// GROUND to SKOLEMIZED if the term contains a Skolem atom").
func (a *Assertion) DemoteToSkolemized() *Assertion {
	if a.Type != Ground {
		return a
	}
	cp := *a
	cp.Type = Skolemized
	return &cp
}
