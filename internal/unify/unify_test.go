package unify

import (
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/codenerd/reasonkit/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse1(t *testing.T, s string) term.Term {
	t.Helper()
	terms, err := term.Parse(s)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	return terms[0]
}

func TestUnifySoundness(t *testing.T) {
	a := parse1(t, `(p ?x a)`)
	b := parse1(t, `(p b ?y)`)
	s, ok := Unify(a, b, Empty())
	require.True(t, ok)

	subA := Substitute(a, s)
	subB := Substitute(b, s)
	assert.True(t, subA.Equal(subB), "unify soundness: %s vs %s", subA, subB)
}

func TestOccurCheck(t *testing.T) {
	x := term.NewVar("?x")
	fx := parse1(t, `(f ?x)`)
	_, ok := Unify(x, fx, Empty())
	assert.False(t, ok)
}

func TestUnifyArityMismatch(t *testing.T) {
	a := parse1(t, `(p a b)`)
	b := parse1(t, `(p a b c)`)
	_, ok := Unify(a, b, Empty())
	assert.False(t, ok)
}

func TestSubstituteIdempotent(t *testing.T) {
	a := parse1(t, `(p ?x a)`)
	b := parse1(t, `(p b ?y)`)
	s, ok := Unify(a, b, Empty())
	require.True(t, ok)

	once := Substitute(a, s)
	twice := Substitute(once, s)
	assert.True(t, once.Equal(twice))
}

func TestMatchOneWay(t *testing.T) {
	pattern := parse1(t, `(likes ?who Bob)`)
	target := parse1(t, `(likes Alice Bob)`)
	s, ok := Match(pattern, target, Empty())
	require.True(t, ok)
	assert.Equal(t, "Alice", s["?who"].String())

	// Pattern vars may not be bound from the target side; constants
	// and shape must match exactly.
	_, ok = Match(pattern, parse1(t, `(likes Alice Carol)`), Empty())
	assert.False(t, ok)
}

func TestMatchConsistency(t *testing.T) {
	pattern := parse1(t, `(eq ?x ?x)`)
	ok := Generalizes(pattern, parse1(t, `(eq a a)`))
	assert.True(t, ok)
	ok = Generalizes(pattern, parse1(t, `(eq a b)`))
	assert.False(t, ok)
}

func TestGeneralizesAndInstanceOf(t *testing.T) {
	general := parse1(t, `(p ?x)`)
	specific := parse1(t, `(p a)`)
	assert.True(t, Generalizes(general, specific))
	assert.True(t, IsInstanceOf(specific, general))
	assert.False(t, Generalizes(specific, general))
}

func TestRenameUniform(t *testing.T) {
	original := parse1(t, `(p ?x (q ?x ?y))`)
	var counter atomic.Int64
	src := func() string { return strconv.FormatInt(counter.Add(1), 10) }
	renamed := Rename(original, src)

	vars := renamed.Vars().Slice()
	assert.Len(t, vars, 2)
	assert.False(t, renamed.Equal(original))

	lst := renamed.(term.Lst)
	inner := lst.Children[2].(term.Lst)
	assert.Equal(t, inner.Children[1].String(), lst.Children[1].String(), "same original var renamed consistently")
}
