// Package model defines the typed assertion/rule data model
// (spec.md §3) and the engine's error taxonomy (spec.md §7).
package model

import "errors"

// Sentinel errors forming the error taxonomy. Callers use errors.Is
// to classify a failure; construction errors (ValidationError) wrap
// additional detail, so errors.As also works for those.
var (
	// ErrParse signals a caller-supplied KIF form failed to parse, or
	// a parsed term was not a top-level list. Surfaced by external
	// input callers (cmd/reason) before a PotentialAssertion is ever
	// built.
	ErrParse = errors.New("model: parse error")

	// ErrValidation signals an assertion/rule invariant violation at
	// construction time. Reported synchronously to the caller.
	ErrValidation = errors.New("model: validation error")

	// ErrCapacity signals a KB remained over capacity after eviction.
	// Knowledge.Commit returns it with a nil Assertion, never as a
	// panic. No event is published for the rejection itself; Evicted
	// events are published only for assertions actually evicted.
	ErrCapacity = errors.New("model: capacity error")

	// ErrUnknownSupport signals TMS.Add referenced an unknown support
	// assertion id.
	ErrUnknownSupport = errors.New("model: unknown support error")

	// ErrCycle signals TMS.Add would close a justification cycle.
	ErrCycle = errors.New("model: cycle error")

	// ErrQuery signals a query pattern is not a single list, or an
	// ACHIEVE_GOAL operator failed.
	ErrQuery = errors.New("model: query error")
)

// ValidationError carries detail about which invariant failed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "model: validation error: " + e.Reason }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError with the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}
