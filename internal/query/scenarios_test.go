package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codenerd/reasonkit/internal/cognition"
	"github.com/codenerd/reasonkit/internal/events"
	"github.com/codenerd/reasonkit/internal/model"
	"github.com/codenerd/reasonkit/internal/query"
	"github.com/codenerd/reasonkit/internal/term"
	"github.com/codenerd/reasonkit/internal/tms"
)

// TestMain is defined once for this package's test binary in
// executor_test.go; this file only adds test functions.

func parseLst(t *testing.T, s string) term.Lst {
	t.Helper()
	terms, err := term.Parse(s)
	require.NoError(t, err)
	return terms[0].(term.Lst)
}

// TestEndToEndScenarios drives spec.md §8's six numbered end-to-end
// scenarios through Cognition (and, for scenario 6, query.Executor),
// in one integration test per SPEC_FULL.md §8.
func TestEndToEndScenarios(t *testing.T) {
	t.Run("scenario1_parse_two_top_level_lists", func(t *testing.T) {
		terms, err := term.Parse(`((likes Alice Bob) (not (likes ?x Carol)))`)
		require.NoError(t, err)
		require.Len(t, terms, 1)

		lst := terms[0].(term.Lst)
		require.Len(t, lst.Children, 2)
		assert.Equal(t, []string{"?x"}, lst.Children[1].Vars().Slice())
	})

	t.Run("scenario2_duplicate_commit_rejected", func(t *testing.T) {
		bus := events.NewBus(nil)
		store := tms.New(bus, nil)
		c := cognition.New(10, 0.9, store, bus, nil)
		defer func() { c.Close(); bus.Close() }()

		pa := model.PotentialAssertion{Kif: parseLst(t, "(p a)"), Priority: 1.0, SourceNoteID: "global"}
		a1, err := c.TryCommit(pa, "user")
		require.NoError(t, err)
		require.NotNil(t, a1)

		a2, err := c.TryCommit(pa, "user")
		assert.Error(t, err)
		assert.Nil(t, a2)
		assert.Equal(t, 1, c.KB("global").Count())
	})

	t.Run("scenario3_universal_assertion_shape", func(t *testing.T) {
		bus := events.NewBus(nil)
		store := tms.New(bus, nil)
		c := cognition.New(10, 0.9, store, bus, nil)
		defer func() { c.Close(); bus.Close() }()

		pa := model.PotentialAssertion{
			Kif:            parseLst(t, "(forall (?x) (=> (man ?x) (mortal ?x)))"),
			Priority:       1.0,
			SourceNoteID:   "global",
			DerivedType:    model.Universal,
			QuantifiedVars: []term.Var{term.NewVar("?x")},
		}
		a, err := c.TryCommit(pa, "user")
		require.NoError(t, err)
		require.NotNil(t, a)

		assert.Equal(t, model.Universal, a.Type)
		require.Len(t, a.QuantifiedVars, 1)
		assert.Equal(t, "?x", a.QuantifiedVars[0].Name)
		assert.True(t, a.EffectiveTerm().Equal(parseLst(t, "(=> (man ?x) (mortal ?x))")))
	})

	t.Run("scenario4_capacity_eviction", func(t *testing.T) {
		bus := events.NewBus(nil)
		store := tms.New(bus, nil)
		c := cognition.New(2, 0.9, store, bus, nil)
		defer func() { c.Close(); bus.Close() }()

		kb := c.KB("global")
		commit := func(kif string, priority float64) *model.Assertion {
			a, err := c.TryCommit(model.PotentialAssertion{Kif: parseLst(t, kif), Priority: priority, SourceNoteID: "global"}, "user")
			require.NoError(t, err)
			require.NotNil(t, a)
			return a
		}

		commit("(p a)", 0.9)
		commit("(p b)", 0.5)
		third := commit("(p c)", 0.8)

		assert.Equal(t, 2, kb.Count())
		assert.Empty(t, kb.FindUnifiable(parseLst(t, "(p b)")), "priority-0.5 fact should have been evicted")
		assert.Contains(t, kb.FindUnifiable(parseLst(t, "(p ?x)")), third.ID)
	})

	t.Run("scenario5_retract_cascade_ordering", func(t *testing.T) {
		bus := events.NewBus(nil)
		store := tms.New(bus, nil)
		c := cognition.New(10, 0.9, store, bus, nil)
		defer func() { c.Close(); bus.Close() }()

		a, err := c.TryCommit(model.PotentialAssertion{Kif: parseLst(t, "(p a)"), Priority: 1.0, SourceNoteID: "global"}, "user")
		require.NoError(t, err)

		b, err := c.TryCommit(model.PotentialAssertion{Kif: parseLst(t, "(q a)"), Priority: 1.0, SourceNoteID: "global", Support: []model.AssertionID{a.ID}}, "rule")
		require.NoError(t, err)

		ch := bus.Subscribe()
		defer bus.Unsubscribe(ch)

		kb := c.KB("global")
		kb.Retract(a.ID, "user")

		var bDeactivated, aRetracted *uint64
		deadline := time.After(time.Second)
	drain:
		for {
			select {
			case e := <-ch:
				if e.Type == events.StateChanged && e.AssertionID == b.ID && !e.IsActive {
					seq := e.Seq
					bDeactivated = &seq
				}
				if e.Type == events.Retracted && e.AssertionID == a.ID {
					seq := e.Seq
					aRetracted = &seq
				}
				if bDeactivated != nil && aRetracted != nil {
					break drain
				}
			case <-deadline:
				break drain
			}
		}

		require.NotNil(t, bDeactivated, "B's deactivation StateChanged event must be observed")
		require.NotNil(t, aRetracted, "A's Retracted event must be observed")
		assert.Less(t, *bDeactivated, *aRetracted, "B must deactivate strictly before A's Retracted event is emitted")

		assert.False(t, store.IsActive(a.ID))
		assert.False(t, store.IsActive(b.ID))

		kb.Retract(a.ID, "user") // second retract of A is a no-op
		assert.False(t, store.IsActive(a.ID))
	})

	t.Run("scenario6_ask_bindings_ordering", func(t *testing.T) {
		bus := events.NewBus(nil)
		store := tms.New(bus, nil)
		c := cognition.New(10, 0.9, store, bus, nil)
		defer func() { c.Close(); bus.Close() }()
		exec := query.New(c, store)

		alice, err := c.TryCommit(model.PotentialAssertion{Kif: parseLst(t, "(likes Alice Bob)"), Priority: 0.5, SourceNoteID: "global"}, "user")
		require.NoError(t, err)
		carol, err := c.TryCommit(model.PotentialAssertion{Kif: parseLst(t, "(likes Carol Bob)"), Priority: 0.9, SourceNoteID: "global"}, "user")
		require.NoError(t, err)

		result := exec.Execute(context.Background(), query.Query{
			ID:      "q",
			Type:    query.AskBindings,
			Pattern: parseLst(t, "(likes ?who Bob)"),
		})

		require.Equal(t, query.Success, result.Status)
		require.Len(t, result.Bindings, 2)
		assert.Equal(t, carol.Kif.Children[1], result.Bindings[0]["?who"], "higher-priority Carol binding must come first")
		assert.Equal(t, alice.Kif.Children[1], result.Bindings[1]["?who"])
	})
}
