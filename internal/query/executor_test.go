package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/codenerd/reasonkit/internal/cognition"
	"github.com/codenerd/reasonkit/internal/events"
	"github.com/codenerd/reasonkit/internal/model"
	"github.com/codenerd/reasonkit/internal/term"
	"github.com/codenerd/reasonkit/internal/tms"
	"github.com/codenerd/reasonkit/internal/unify"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newExecutor(t *testing.T) (*Executor, *cognition.Cognition) {
	t.Helper()
	bus := events.NewBus(nil)
	store := tms.New(bus, nil)
	cog := cognition.New(10, 0.9, store, bus, nil)
	t.Cleanup(func() {
		cog.Close()
		bus.Close()
	})
	return New(cog, store), cog
}

func parseLst(t *testing.T, s string) term.Lst {
	t.Helper()
	terms, err := term.Parse(s)
	require.NoError(t, err)
	return terms[0].(term.Lst)
}

func TestAskBindingsReturnsMatches(t *testing.T) {
	exec, cog := newExecutor(t)
	_, err := cog.TryCommit(model.PotentialAssertion{Kif: parseLst(t, "(likes Alice Bob)"), Priority: 1.0, SourceNoteID: "global"}, "user")
	require.NoError(t, err)
	_, err = cog.TryCommit(model.PotentialAssertion{Kif: parseLst(t, "(likes Alice Carol)"), Priority: 1.0, SourceNoteID: "global"}, "user")
	require.NoError(t, err)

	res := exec.Execute(context.Background(), Query{Type: AskBindings, Pattern: parseLst(t, "(likes Alice ?who)")})
	assert.Equal(t, Success, res.Status)
	require.Len(t, res.Bindings, 2)

	who0 := term.Print(res.Bindings[0]["?who"])
	who1 := term.Print(res.Bindings[1]["?who"])
	assert.ElementsMatch(t, []string{"Bob", "Carol"}, []string{who0, who1})
}

func TestAskBindingsDeterministicOrder(t *testing.T) {
	exec, cog := newExecutor(t)
	_, err := cog.TryCommit(model.PotentialAssertion{Kif: parseLst(t, "(p a)"), Priority: 0.2, SourceNoteID: "global"}, "user")
	require.NoError(t, err)
	_, err = cog.TryCommit(model.PotentialAssertion{Kif: parseLst(t, "(p b)"), Priority: 0.9, SourceNoteID: "global"}, "user")
	require.NoError(t, err)

	res := exec.Execute(context.Background(), Query{Type: AskBindings, Pattern: parseLst(t, "(p ?x)")})
	require.Len(t, res.Bindings, 2)
	assert.Equal(t, "b", term.Print(res.Bindings[0]["?x"]), "priority 0.9 must sort first")
	assert.Equal(t, "a", term.Print(res.Bindings[1]["?x"]))
}

func TestAskTrueFalse(t *testing.T) {
	exec, cog := newExecutor(t)
	_, err := cog.TryCommit(model.PotentialAssertion{Kif: parseLst(t, "(p a)"), Priority: 1.0, SourceNoteID: "global"}, "user")
	require.NoError(t, err)

	res := exec.Execute(context.Background(), Query{Type: AskTrueFalse, Pattern: parseLst(t, "(p a)")})
	assert.Equal(t, Success, res.Status)
	assert.Empty(t, res.Bindings)

	res = exec.Execute(context.Background(), Query{Type: AskTrueFalse, Pattern: parseLst(t, "(p b)")})
	assert.Equal(t, Failure, res.Status)
}

func TestAchieveGoalFallsBackToOperator(t *testing.T) {
	exec, _ := newExecutor(t)
	called := false
	exec.RegisterOperator("add", func(ctx context.Context, goal term.Lst, bindings unify.Subst) (unify.Subst, error) {
		called = true
		out := unify.Empty()
		out["?sum"] = term.NewAtom("3", false)
		return out, nil
	})

	res := exec.Execute(context.Background(), Query{Type: AchieveGoal, Pattern: parseLst(t, "(add 1 2 ?sum)")})
	assert.True(t, called)
	assert.Equal(t, Success, res.Status)
	require.Len(t, res.Bindings, 1)
	assert.Equal(t, "3", term.Print(res.Bindings[0]["?sum"]))
}

func TestAchieveGoalFailsWithoutOperatorOrMatch(t *testing.T) {
	exec, _ := newExecutor(t)
	res := exec.Execute(context.Background(), Query{Type: AchieveGoal, Pattern: parseLst(t, "(mystery a b)")})
	assert.Equal(t, Failure, res.Status)
}

func TestExecuteRespectsTimeout(t *testing.T) {
	exec, _ := newExecutor(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	res := exec.Execute(ctx, Query{Type: AskBindings, Pattern: parseLst(t, "(p ?x)")})
	assert.Equal(t, Timeout, res.Status)
}
