package main

import (
	"fmt"
	"io"
	"os"

	"github.com/codenerd/reasonkit/internal/model"
	"github.com/codenerd/reasonkit/internal/term"
)

// readKIFForms parses every top-level KIF list from path, or from
// stdin if path is "" or "-".
func readKIFForms(path string) ([]term.Lst, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reason: read input: %w", err)
	}

	parsed, err := term.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrParse, err)
	}

	forms := make([]term.Lst, 0, len(parsed))
	for _, t := range parsed {
		lst, ok := t.(term.Lst)
		if !ok {
			return nil, fmt.Errorf("%w: top-level form %q is not a list", model.ErrParse, term.Print(t))
		}
		forms = append(forms, lst)
	}
	return forms, nil
}

// isRuleForm reports whether form is a rule ("=>" implication),
// routed to Cognition.AddRule rather than TryCommit.
func isRuleForm(form term.Lst) bool {
	return form.OperatorSymbol() == "=>"
}

// kifToPotentialAssertion builds a PotentialAssertion from a raw
// parsed KIF form, inferring the equality/negation/quantification
// flags Knowledge.Commit's invariants require (spec.md §3, §6) from
// the form's own shape — the same translation any external caller
// (this CLI, a WebSocket handler) must perform before calling
// Cognition.TryCommit.
func kifToPotentialAssertion(form term.Lst, priority float64, sourceNote, targetNote string) (model.PotentialAssertion, error) {
	op := form.OperatorSymbol()

	pa := model.PotentialAssertion{
		Kif:          form,
		Priority:     priority,
		SourceNoteID: sourceNote,
		TargetNoteID: targetNote,
		IsNegated:    op == "not",
	}

	switch {
	case op == "=":
		pa.IsEquality = true
	case op == "not" && form.Arity() == 1:
		if inner, ok := form.Children[1].(term.Lst); ok && inner.OperatorSymbol() == "=" {
			pa.IsEquality = true
		}
	}

	if op == "forall" {
		if form.Arity() != 2 {
			return model.PotentialAssertion{}, fmt.Errorf("%w: forall form must have arity 2: (forall (vars) body)", model.ErrValidation)
		}
		varList, ok := form.Children[1].(term.Lst)
		if !ok {
			return model.PotentialAssertion{}, fmt.Errorf("%w: forall's second element must be a variable list", model.ErrValidation)
		}
		vars := make([]term.Var, 0, len(varList.Children))
		for _, vt := range varList.Children {
			v, ok := vt.(term.Var)
			if !ok {
				return model.PotentialAssertion{}, fmt.Errorf("%w: forall variable list must contain only variables", model.ErrValidation)
			}
			vars = append(vars, v)
		}
		pa.DerivedType = model.Universal
		pa.QuantifiedVars = vars
	} else {
		pa.DerivedType = model.Ground
	}

	if err := pa.Validate(); err != nil {
		return model.PotentialAssertion{}, err
	}
	return pa, nil
}
