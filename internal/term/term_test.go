package term

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		`(likes Alice Bob)`,
		`(not (likes ?x Carol))`,
		`(forall (?x) (=> (man ?x) (mortal ?x)))`,
		`"a \"quoted\" string"`,
		`?y`,
	}
	for _, s := range cases {
		terms, err := Parse(s)
		require.NoError(t, err)
		require.Len(t, terms, 1)

		printed := Print(terms[0])
		reparsed, err := Parse(printed)
		require.NoError(t, err)
		require.Len(t, reparsed, 1)
		assert.True(t, terms[0].Equal(reparsed[0]), "round-trip mismatch: %s -> %s", s, printed)
	}
}

func TestParseEmptyStringLiteralDoesNotPanic(t *testing.T) {
	terms, err := Parse(`""`)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	atom, ok := terms[0].(Atom)
	require.True(t, ok)
	assert.Equal(t, "", atom.Value)
	assert.True(t, atom.IsQuoted)
	assert.Equal(t, `""`, Print(atom))
}

func TestParseTwoTopLevelLists(t *testing.T) {
	terms, err := Parse(`((likes Alice Bob) (not (likes ?x Carol)))`)
	require.NoError(t, err)
	require.Len(t, terms, 1)

	lst, ok := terms[0].(Lst)
	require.True(t, ok)
	require.Len(t, lst.Children, 2)

	second := lst.Children[1]
	vars := second.Vars().Slice()
	assert.Equal(t, []string{"?x"}, vars)
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		`(foo`,
		`foo)`,
		`"unterminated`,
		`"bad \q escape"`,
		`?`,
	}
	for _, s := range cases {
		_, err := Parse(s)
		assert.Error(t, err, "expected parse error for %q", s)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr)
	}
}

func TestWeightAndSkolem(t *testing.T) {
	terms, err := Parse(`(p (skolem$f ?x) a)`)
	require.NoError(t, err)
	lst := terms[0].(Lst)
	assert.Equal(t, 6, lst.Weight())
	assert.True(t, lst.ContainsSkolem())

	plain, _ := Parse(`(p a b)`)
	assert.False(t, plain[0].ContainsSkolem())
}

func TestEqualityStructural(t *testing.T) {
	a, _ := Parse(`(p ?x a)`)
	b, _ := Parse(`(p ?x a)`)
	c, _ := Parse(`(p a ?x)`)
	assert.True(t, a[0].Equal(b[0]))
	assert.False(t, a[0].Equal(c[0]))
	assert.Empty(t, cmp.Diff(a[0].String(), b[0].String()))
}

func TestOperatorAndArity(t *testing.T) {
	terms, _ := Parse(`(likes Alice Bob)`)
	lst := terms[0].(Lst)
	assert.Equal(t, "likes", lst.OperatorSymbol())
	assert.Equal(t, 2, lst.Arity())

	empty := NewList()
	assert.Equal(t, "", empty.OperatorSymbol())
	assert.Equal(t, 0, empty.Arity())
}
