package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	assertNote     string
	assertTarget   string
	assertPriority float64
)

// assertCmd submits every top-level KIF form in a file (or stdin) to
// the running Cognition instance, routing "=>" forms to AddRule and
// everything else through TryCommit.
var assertCmd = &cobra.Command{
	Use:   "assert [file]",
	Short: "Submit KIF assertions and rules from a file or stdin",
	Long: `Reads one or more top-level KIF forms from a file, or from stdin
when no file is given (or "-" is given), and submits each to the
engine: "=>" forms become rules, everything else becomes a potential
assertion committed into the note named by --note.

Example:
  reason assert facts.kif --note projectX
  cat facts.kif | reason assert --priority 0.8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAssert,
}

func init() {
	assertCmd.Flags().StringVar(&assertNote, "note", "global", "source note id to commit into")
	assertCmd.Flags().StringVar(&assertTarget, "target-note", "", "target note id, if different from --note")
	assertCmd.Flags().Float64Var(&assertPriority, "priority", 1.0, "priority for submitted assertions/rules")
}

func runAssert(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	forms, err := readKIFForms(path)
	if err != nil {
		return err
	}

	var committed, ruled, skipped int
	for _, form := range forms {
		if isRuleForm(form) {
			if _, err := cog.AddRule(form, assertPriority, assertNote); err != nil {
				return fmt.Errorf("reason: add rule %s: %w", form.String(), err)
			}
			ruled++
			continue
		}

		pa, err := kifToPotentialAssertion(form, assertPriority, assertNote, assertTarget)
		if err != nil {
			return fmt.Errorf("reason: build potential assertion from %s: %w", form.String(), err)
		}
		a, err := cog.TryCommit(pa, "cli")
		if err != nil {
			return fmt.Errorf("reason: commit %s: %w", form.String(), err)
		}
		if a == nil {
			skipped++
			continue
		}
		committed++
	}

	cmd.Printf("committed %d assertion(s), %d rule(s), %d skipped (trivially-true/duplicate/subsumed)\n", committed, ruled, skipped)
	return nil
}
