package main

import (
	"github.com/spf13/cobra"
)

var statusNote string

// statusCmd reports the active-assertion count for a KB and the
// currently registered rule set, a quick operational check analogous
// to the teacher's own "nerd status" inspection commands.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a KB's assertion count and the registered rule set",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusNote, "note", "global", "note id to report on")
}

func runStatus(cmd *cobra.Command, args []string) error {
	kb := cog.KB(statusNote)
	cmd.Printf("kb %q: %d active assertion(s)\n", statusNote, kb.Count())

	rules := cog.Rules()
	cmd.Printf("%d rule(s) registered:\n", len(rules))
	for _, r := range rules {
		cmd.Printf("  %s  %s\n", r.ID, r.Form.String())
	}

	notes := cog.ActiveNotes()
	cmd.Printf("%d active note(s): %v\n", len(notes), notes)
	return nil
}
