package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codenerd/reasonkit/internal/query"
	"github.com/codenerd/reasonkit/internal/term"
	"github.com/codenerd/reasonkit/internal/unify"
)

var (
	queryType      string
	queryTargetKB  string
	queryTimeoutMs int
)

// queryCmd evaluates a single KIF pattern against the running
// Cognition instance via query.Executor, mirroring the
// ASK_BINDINGS/ASK_TRUE_FALSE/ACHIEVE_GOAL surface spec.md §4.8
// defines for any external caller.
var queryCmd = &cobra.Command{
	Use:   "query [pattern]",
	Short: "Run an ASK_BINDINGS / ASK_TRUE_FALSE / ACHIEVE_GOAL query",
	Long: `Parses a single KIF pattern (e.g. "(likes ?who Bob)") and evaluates
it as a query of the given --type against the global KB plus active
notes, or against --target-note alone if given.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryType, "type", "ASK_BINDINGS", "ASK_BINDINGS | ASK_TRUE_FALSE | ACHIEVE_GOAL")
	queryCmd.Flags().StringVar(&queryTargetKB, "target-note", "", "restrict the query to a single note's KB (default: global+active)")
	queryCmd.Flags().IntVar(&queryTimeoutMs, "timeout-ms", 0, "optional query deadline in milliseconds")
}

func runQuery(cmd *cobra.Command, args []string) error {
	forms, err := term.Parse(args[0])
	if err != nil {
		return fmt.Errorf("reason: parse pattern: %w", err)
	}
	if len(forms) != 1 {
		return fmt.Errorf("reason: query pattern must be a single KIF form, got %d", len(forms))
	}
	pattern, ok := forms[0].(term.Lst)
	if !ok {
		return fmt.Errorf("reason: query pattern must be a list")
	}

	q := query.Query{
		ID:         "cli",
		Type:       query.Type(queryType),
		Pattern:    pattern,
		Parameters: map[string]interface{}{},
	}
	if queryTargetKB != "" {
		q.TargetKBID = &queryTargetKB
	}
	if queryTimeoutMs > 0 {
		q.Parameters["timeoutMs"] = queryTimeoutMs
	}

	result := exec.Execute(context.Background(), q)
	cmd.Printf("status: %s\n", result.Status)
	if result.Explanation != "" {
		cmd.Printf("explanation: %s\n", result.Explanation)
	}
	for i, b := range result.Bindings {
		cmd.Printf("binding %d: %s\n", i, formatSubst(b))
	}
	return nil
}

func formatSubst(s unify.Subst) string {
	if len(s) == 0 {
		return "{}"
	}
	out := "{"
	first := true
	for name, t := range s {
		if !first {
			out += ", "
		}
		first = false
		out += fmt.Sprintf("%s=%s", name, term.Print(t))
	}
	return out + "}"
}
