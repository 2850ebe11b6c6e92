// Package query implements the Query Executor (spec.md §4.8):
// read-only, idempotent ASK_BINDINGS/ASK_TRUE_FALSE/ACHIEVE_GOAL
// evaluation against Cognition's KBs and the shared TMS.
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/codenerd/reasonkit/internal/cognition"
	"github.com/codenerd/reasonkit/internal/model"
	"github.com/codenerd/reasonkit/internal/term"
	"github.com/codenerd/reasonkit/internal/tms"
	"github.com/codenerd/reasonkit/internal/unify"
)

// Type enumerates the query kinds spec.md §4.8 defines.
type Type string

const (
	AskBindings  Type = "ASK_BINDINGS"
	AskTrueFalse Type = "ASK_TRUE_FALSE"
	AchieveGoal  Type = "ACHIEVE_GOAL"
)

// Query is the executor's input. TargetKBID restricts the search to a
// single KB; nil means global-plus-active-notes. Parameters may carry
// "timeoutMs" (int) to bound execution.
type Query struct {
	ID         string
	Type       Type
	Pattern    term.Lst
	TargetKBID *string
	Parameters map[string]interface{}
}

// Status is the outcome of executing a Query.
type Status string

const (
	Success Status = "SUCCESS"
	Failure Status = "FAILURE"
	Timeout Status = "TIMEOUT"
	Error   Status = "ERROR"
)

// Result is what Execute returns.
type Result struct {
	Status      Status
	Bindings    []unify.Subst
	Explanation string
}

// OperatorFunc is the external goal-resolution hook ACHIEVE_GOAL
// defers to for a registered operator symbol: given the goal term and
// the bindings accumulated so far, it returns the bindings resulting
// from executing the operator (operator machinery itself lives
// outside this package, per spec.md §4.8: "operator machinery is
// external, the executor only exposes the goal-resolution hook").
type OperatorFunc func(ctx context.Context, goal term.Lst, bindings unify.Subst) (unify.Subst, error)

// Executor evaluates Queries against a Cognition instance.
type Executor struct {
	cog       *cognition.Cognition
	tmsStore  *tms.Store
	operators map[string]OperatorFunc
}

// New constructs an Executor.
func New(cog *cognition.Cognition, tmsStore *tms.Store) *Executor {
	return &Executor{cog: cog, tmsStore: tmsStore, operators: make(map[string]OperatorFunc)}
}

// RegisterOperator registers fn as the ACHIEVE_GOAL resolver for
// goals whose head symbol is name.
func (e *Executor) RegisterOperator(name string, fn OperatorFunc) {
	e.operators[name] = fn
}

// Execute evaluates q, honoring ctx cancellation/deadline and an
// optional "timeoutMs" parameter.
func (e *Executor) Execute(ctx context.Context, q Query) Result {
	ctx, cancel := e.withDeadline(ctx, q)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return timeoutOrError(err)
	}

	switch q.Type {
	case AskBindings:
		bindings := e.askBindings(q)
		if err := ctx.Err(); err != nil {
			return timeoutOrError(err)
		}
		return Result{Status: Success, Bindings: bindings}

	case AskTrueFalse:
		bindings := e.askBindings(q)
		if err := ctx.Err(); err != nil {
			return timeoutOrError(err)
		}
		if len(bindings) > 0 {
			return Result{Status: Success}
		}
		return Result{Status: Failure, Explanation: "no active assertion unifies with the pattern"}

	case AchieveGoal:
		return e.achieveGoal(ctx, q)

	default:
		return Result{Status: Error, Explanation: fmt.Sprintf("%v: unknown query type %q", model.ErrQuery, q.Type)}
	}
}

func (e *Executor) withDeadline(ctx context.Context, q Query) (context.Context, context.CancelFunc) {
	if ms, ok := q.Parameters["timeoutMs"].(int); ok && ms > 0 {
		return context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
	}
	return context.WithCancel(ctx)
}

func timeoutOrError(err error) Result {
	if err == context.DeadlineExceeded {
		return Result{Status: Timeout, Explanation: err.Error()}
	}
	return Result{Status: Error, Explanation: err.Error()}
}

// candidates returns every active assertion in q's scope (its target
// KB, or global-plus-active-notes) that may unify with q.Pattern.
func (e *Executor) candidates(q Query) []*model.Assertion {
	if q.TargetKBID != nil {
		kb := e.cog.KB(*q.TargetKBID)
		ids := kb.FindUnifiable(q.Pattern)
		out := make([]*model.Assertion, 0, len(ids))
		for _, id := range ids {
			if a, ok := e.tmsStore.Get(id); ok && a.IsActive {
				out = append(out, a)
			}
		}
		return out
	}
	results, _ := e.cog.FindAssertionsAcrossActiveKbs(q.Pattern, nil)
	return results
}

// askBindings returns the deterministic, deduplicated set of variable
// bindings under which q.Pattern unifies with an active assertion in
// scope: ordered by priority desc, timestamp asc, assertion id asc
// (spec.md §4.8), then projected onto q.Pattern's own variables and
// deduplicated.
func (e *Executor) askBindings(q Query) []unify.Subst {
	cands := e.candidates(q)
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Priority != cands[j].Priority {
			return cands[i].Priority > cands[j].Priority
		}
		if cands[i].Timestamp != cands[j].Timestamp {
			return cands[i].Timestamp < cands[j].Timestamp
		}
		return cands[i].ID < cands[j].ID
	})

	patternVars := q.Pattern.Vars()
	seen := make(map[string]bool)
	var out []unify.Subst
	for _, c := range cands {
		subst, ok := unify.Unify(q.Pattern, c.Kif, unify.Empty())
		if !ok {
			continue
		}
		projected := projectSubst(subst, patternVars.Slice())
		key := substKey(projected)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, projected)
	}
	return out
}

func (e *Executor) achieveGoal(ctx context.Context, q Query) Result {
	bindings := e.askBindings(q)
	if err := ctx.Err(); err != nil {
		return timeoutOrError(err)
	}
	if len(bindings) > 0 {
		return Result{Status: Success, Bindings: bindings}
	}

	op, ok := e.operators[q.Pattern.OperatorSymbol()]
	if !ok {
		return Result{Status: Failure, Explanation: "goal unsatisfied and no registered operator for its head symbol"}
	}
	resultSubst, err := op(ctx, q.Pattern, unify.Empty())
	if err != nil {
		if err == context.DeadlineExceeded {
			return timeoutOrError(err)
		}
		return Result{Status: Error, Explanation: fmt.Sprintf("%v: operator %q failed: %v", model.ErrQuery, q.Pattern.OperatorSymbol(), err)}
	}
	return Result{Status: Success, Bindings: []unify.Subst{resultSubst}}
}

func projectSubst(s unify.Subst, vars []string) unify.Subst {
	out := unify.Empty()
	for _, v := range vars {
		val := unify.Substitute(term.NewVar(v), s)
		out[v] = val
	}
	return out
}

func substKey(s unify.Subst) string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(term.Print(s[name]))
		b.WriteByte(';')
	}
	return b.String()
}
