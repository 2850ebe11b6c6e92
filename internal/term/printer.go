package term

// Print renders t in the canonical surface form that Parse
// re-parses to an equal term. Term.String already implements this;
// Print exists as the documented entry point spec.md §4.1 names.
func Print(t Term) string {
	return t.String()
}
