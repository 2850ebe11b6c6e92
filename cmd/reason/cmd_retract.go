package main

import (
	"github.com/spf13/cobra"

	"github.com/codenerd/reasonkit/internal/model"
)

var retractNote string

// retractCmd retracts a single assertion by id from the KB named by
// --note, cascading through the TMS to every dependent.
var retractCmd = &cobra.Command{
	Use:   "retract [assertion-id]",
	Short: "Retract an assertion by id, cascading to its dependents",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetract,
}

func init() {
	retractCmd.Flags().StringVar(&retractNote, "note", "global", "note id the assertion lives in")
}

func runRetract(cmd *cobra.Command, args []string) error {
	kb := cog.KB(retractNote)
	kb.Retract(model.AssertionID(args[0]), "cli")
	cmd.Printf("retracted %s (cascading to active dependents)\n", args[0])
	return nil
}
