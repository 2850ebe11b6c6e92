package model

import "github.com/codenerd/reasonkit/internal/term"

// PotentialAssertion is what an external caller submits before it is
// admitted into a KB (spec.md §6 "External input contract"). It is
// plain data: Knowledge.commit decides whether it becomes a committed
// Assertion.
type PotentialAssertion struct {
	Kif      term.Lst
	Priority float64
	Support  []AssertionID

	// SourceNoteID is the originator recorded on the resulting
	// Assertion (spec.md §3's Assertion.sourceNoteId). TargetNoteID,
	// when nonempty, overrides it as the KB to commit into
	// (Cognition.TryCommit selects the KB by TargetNoteID if set, else
	// SourceNoteID).
	SourceNoteID string
	TargetNoteID string

	IsEquality      bool
	IsNegated       bool
	IsOrientedEq    bool
	DerivedType     AssertionType
	QuantifiedVars  []term.Var
	DerivationDepth int
}

// KBTarget returns the KB id this potential assertion should commit
// into: TargetNoteID if set, else SourceNoteID.
func (p PotentialAssertion) KBTarget() string {
	if p.TargetNoteID != "" {
		return p.TargetNoteID
	}
	return p.SourceNoteID
}

// Validate checks that the equality/negation flags are consistent
// with the kif shape, per spec.md §6: "equality flags must be
// consistent with the kif shape".
func (p PotentialAssertion) Validate() error {
	op := p.Kif.OperatorSymbol()
	if p.IsNegated != (op == "not") {
		return NewValidationError("isNegated flag inconsistent with kif operator")
	}
	if p.IsEquality && op != "not" && op != "=" {
		return NewValidationError("isEquality flag inconsistent with kif shape")
	}
	if p.IsOrientedEq && !p.IsEquality {
		return NewValidationError("isOrientedEquality requires isEquality")
	}
	if p.DerivedType == Universal && len(p.QuantifiedVars) == 0 {
		return NewValidationError("UNIVERSAL potential assertion requires nonempty QuantifiedVars")
	}
	return nil
}
